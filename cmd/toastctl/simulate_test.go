package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/geometry"
)

func testScenario() scenario {
	return scenario{
		urgency:   config.UrgencyNormal,
		count:     1,
		interval:  time.Second,
		container: geometry.Size{Width: 1280, Height: 720},
	}
}

func find(events []Event, kind string) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func TestRunVirtual_SingleToast(t *testing.T) {
	events, err := runVirtual(config.DefaultConfig(), nil, testScenario(), 0, nil)
	require.NoError(t, err)

	require.Len(t, find(events, "active"), 1)
	require.Len(t, find(events, "inactive"), 1)

	appeared := find(events, "did appear")
	require.Len(t, appeared, 1)
	assert.InDelta(t, 300*time.Millisecond, appeared[0].At, float64(50*time.Millisecond))
	assert.Contains(t, appeared[0].Detail, "480x")

	removed := find(events, "removed")
	require.Len(t, removed, 1)
	assert.Equal(t, "timeout", removed[0].Detail)
	assert.Equal(t, "toast #1", removed[0].Entry)
	assert.InDelta(t, 10600*time.Millisecond, removed[0].At, float64(100*time.Millisecond))
	assert.Zero(t, removed[0].Active)

	haptics := find(events, "haptic")
	require.Len(t, haptics, 1)
	assert.Equal(t, string(attr.HapticSuccess), haptics[0].Detail)

	windows := find(events, "window")
	require.Len(t, windows, 3)
	assert.Equal(t, "overlay", windows[0].Detail)
	assert.Equal(t, "main", windows[1].Detail)
	assert.Equal(t, "released", windows[2].Detail)
}

func TestRunVirtual_PushOut(t *testing.T) {
	sc := testScenario()
	sc.count = 2

	events, err := runVirtual(config.DefaultConfig(), nil, sc, 0, nil)
	require.NoError(t, err)

	removed := find(events, "removed")
	require.Len(t, removed, 2)
	assert.Equal(t, "toast #1", removed[0].Entry)
	assert.Equal(t, "pushed_out", removed[0].Detail)
	assert.Equal(t, "toast #2", removed[1].Entry)
	assert.Equal(t, "timeout", removed[1].Detail)

	released := 0
	for _, ev := range find(events, "window") {
		if ev.Detail == "released" {
			released++
		}
	}
	assert.Equal(t, 1, released, "window stays up between the two toasts")

	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.Active, 0)
		assert.LessOrEqual(t, ev.Active, 2)
	}
}

func TestRunVirtual_Gestures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(sc *scenario)
		reason string
		at     time.Duration
	}{
		{
			name: "tap dismisses critical",
			setup: func(sc *scenario) {
				sc.urgency = config.UrgencyCritical
				sc.tapAt = 1500 * time.Millisecond
			},
			reason: "tap",
			at:     1800 * time.Millisecond,
		},
		{
			name: "swipe from the bottom",
			setup: func(sc *scenario) {
				sc.position = attr.PositionBottom
				sc.swipeAt = time.Second
			},
			reason: "swipe",
			at:     1300 * time.Millisecond,
		},
		{
			name: "screen tap is forwarded",
			setup: func(sc *scenario) {
				sc.screenAt = time.Second
			},
			reason: "timeout",
			at:     10600 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := testScenario()
			tt.setup(&sc)

			events, err := runVirtual(config.DefaultConfig(), nil, sc, 0, nil)
			require.NoError(t, err)

			removed := find(events, "removed")
			require.Len(t, removed, 1)
			assert.Equal(t, tt.reason, removed[0].Detail)
			assert.InDelta(t, tt.at, removed[0].At, float64(150*time.Millisecond))
		})
	}
}

func TestRunVirtual_ScreenTapForwarded(t *testing.T) {
	sc := testScenario()
	sc.screenAt = time.Second

	events, err := runVirtual(config.DefaultConfig(), nil, sc, 0, nil)
	require.NoError(t, err)

	taps := find(events, "screen tap")
	require.Len(t, taps, 1)
	assert.Equal(t, "forwarded", taps[0].Detail)
	assert.Equal(t, 1, taps[0].Active)
}

func TestRunVirtual_Until(t *testing.T) {
	events, err := runVirtual(config.DefaultConfig(), nil, testScenario(), 2*time.Second, nil)
	require.NoError(t, err)

	assert.Len(t, find(events, "did appear"), 1)
	assert.Empty(t, find(events, "removed"), "stopped before the timeout")
}

func TestRunVirtual_UnknownPreset(t *testing.T) {
	sc := testScenario()
	sc.preset = "missing"

	_, err := runVirtual(config.DefaultConfig(), nil, sc, 0, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrPresetNotFound)
}

func TestRunRealtime(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Timeouts.Normal = config.Duration(20 * time.Millisecond)
	cfg.Animation.Entrance.Kind = config.TransitionNone
	cfg.Animation.Exit.Kind = config.TransitionNone

	var live []Event
	start := time.Now()
	events, err := runRealtime(context.Background(), cfg, nil, testScenario(), 5*time.Second,
		func(ev Event) { live = append(live, ev) }, nil)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second, "finishes once the toast is gone")
	assert.Equal(t, events, live)
	removed := find(events, "removed")
	require.Len(t, removed, 1)
	assert.Equal(t, "timeout", removed[0].Detail)
}

func TestParseUrgency(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"low", config.UrgencyLow, false},
		{"Normal", config.UrgencyNormal, false},
		{"", config.UrgencyNormal, false},
		{"2", config.UrgencyCritical, false},
		{"urgent", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseUrgency(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteTrace(t *testing.T) {
	events := []Event{
		{At: 0, Kind: "window", Detail: "overlay", Active: 0},
		{At: 300 * time.Millisecond, AtMS: 300, Entry: "toast #1", Kind: "active", Active: 1},
		{At: 1500 * time.Millisecond, AtMS: 1500, Entry: "toast #1", Kind: "removed", Detail: "tap"},
	}

	var text bytes.Buffer
	require.NoError(t, writeTrace(&text, "text", events))
	assert.Contains(t, text.String(), "+300ms")
	assert.Contains(t, text.String(), "removed         tap")
	assert.Contains(t, text.String(), "1 toast shown, 1 removed, 3 events over 1.5s")

	var js bytes.Buffer
	require.NoError(t, writeTrace(&js, "json", events))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "removed", decoded[2]["event"])
	assert.EqualValues(t, 1500, decoded[2]["at_ms"])

	var y bytes.Buffer
	require.NoError(t, writeTrace(&y, "yaml", events))
	assert.Contains(t, y.String(), "event: removed")
	assert.Contains(t, y.String(), "at_ms: 1500")
}
