package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastkit/internal/dbus"
)

func fixedClock() func() time.Time {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusShown, "shown"},
		{StatusExpired, "expired"},
		{StatusDismissed, "dismissed"},
		{StatusClosed, "closed"},
		{Status(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.status.String())
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry(fixedClock())

	n := &dbus.Notification{AppName: "mail", Summary: "hi", Actions: []string{"default", "Open"}}
	rec := r.Register("01A", 7, n)
	assert.Equal(t, StatusShown, rec.Status)
	assert.True(t, rec.DefaultAction)

	got, ok := r.ByDBusID(7)
	require.True(t, ok)
	assert.Equal(t, "01A", got.EntryID)

	got, ok = r.ByEntryID("01A")
	require.True(t, ok)
	assert.Equal(t, uint32(7), got.DBusID)

	_, ok = r.ByDBusID(8)
	assert.False(t, ok)
}

func TestRegistry_ReplacementForgetsOldEntry(t *testing.T) {
	r := NewRegistry(fixedClock())

	r.Register("01A", 7, &dbus.Notification{Summary: "v1"})
	r.Register("01B", 7, &dbus.Notification{Summary: "v2"})

	assert.Equal(t, 1, r.Count())
	_, ok := r.Close("01A", dbus.CloseReasonClosed)
	assert.False(t, ok, "replaced entries are not reported")

	rec, ok := r.ByDBusID(7)
	require.True(t, ok)
	assert.Equal(t, "v2", rec.Summary)
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry(fixedClock())
	r.Register("01A", 1, &dbus.Notification{})
	r.Register("01B", 2, &dbus.Notification{})

	rec, ok := r.Close("01A", dbus.CloseReasonExpired)
	require.True(t, ok)
	assert.Equal(t, StatusExpired, rec.Status)
	assert.True(t, rec.ClosedAt.After(rec.ShownAt))

	rec, ok = r.Close("01B", dbus.CloseReasonDismissed)
	require.True(t, ok)
	assert.Equal(t, StatusDismissed, rec.Status)

	assert.Zero(t, r.Count())
	assert.Empty(t, r.Shown())
}

func TestRegistry_ForgetAndShown(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("01B", 2, &dbus.Notification{})
	r.Register("01A", 1, &dbus.Notification{})

	shown := r.Shown()
	require.Len(t, shown, 2)
	assert.Equal(t, "01A", shown[0].EntryID)

	r.Forget(1)
	r.Forget(99)
	assert.Equal(t, 1, r.Count())
	_, ok := r.ByEntryID("01A")
	assert.False(t, ok)
}
