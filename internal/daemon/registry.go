package daemon

import (
	"sort"
	"sync"
	"time"

	"github.com/jmylchreest/toastkit/internal/dbus"
)

// Status is the lifecycle of a notification from the bus's point of view.
type Status int

const (
	// StatusShown means the toast is on screen.
	StatusShown Status = iota
	// StatusExpired means the toast timed out.
	StatusExpired
	// StatusDismissed means the user dismissed the toast.
	StatusDismissed
	// StatusClosed means the toast was closed programmatically or replaced.
	StatusClosed
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusShown:
		return "shown"
	case StatusExpired:
		return "expired"
	case StatusDismissed:
		return "dismissed"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

func statusFor(r dbus.CloseReason) Status {
	switch r {
	case dbus.CloseReasonExpired:
		return StatusExpired
	case dbus.CloseReasonDismissed:
		return StatusDismissed
	default:
		return StatusClosed
	}
}

// Record ties a D-Bus notification ID to the entry presenting it.
type Record struct {
	EntryID       string
	DBusID        uint32
	AppName       string
	Summary       string
	DefaultAction bool // the client offered a "default" action
	Status        Status
	ShownAt       time.Time
	ClosedAt      time.Time
}

// Registry maps D-Bus notification IDs to entry IDs in both directions.
type Registry struct {
	mu  sync.RWMutex
	now func() time.Time

	byEntryID map[string]*Record
	byDBusID  map[uint32]string
}

// NewRegistry creates an empty Registry. A nil clock uses time.Now.
func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		now:       now,
		byEntryID: make(map[string]*Record),
		byDBusID:  make(map[uint32]string),
	}
}

// Register records that entryID presents notification n under dbusID.
// Registering a D-Bus ID again (a replacement) forgets the previous entry,
// so its removal is not reported to clients.
func (r *Registry) Register(entryID string, dbusID uint32, n *dbus.Notification) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byDBusID[dbusID]; ok {
		delete(r.byEntryID, old)
	}

	rec := &Record{
		EntryID:       entryID,
		DBusID:        dbusID,
		AppName:       n.AppName,
		Summary:       n.Summary,
		DefaultAction: n.HasAction("default"),
		Status:        StatusShown,
		ShownAt:       r.now(),
	}
	r.byEntryID[entryID] = rec
	r.byDBusID[dbusID] = entryID
	return rec
}

// ByEntryID returns the record for an entry.
func (r *Registry) ByEntryID(entryID string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byEntryID[entryID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// ByDBusID returns the record for a D-Bus ID.
func (r *Registry) ByDBusID(dbusID uint32) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entryID, ok := r.byDBusID[dbusID]
	if !ok {
		return Record{}, false
	}
	return *r.byEntryID[entryID], true
}

// Close forgets the entry and returns its final record. ok is false when the
// entry is unknown or was replaced.
func (r *Registry) Close(entryID string, reason dbus.CloseReason) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byEntryID[entryID]
	if !ok {
		return Record{}, false
	}
	rec.Status = statusFor(reason)
	rec.ClosedAt = r.now()

	delete(r.byEntryID, entryID)
	if r.byDBusID[rec.DBusID] == entryID {
		delete(r.byDBusID, rec.DBusID)
	}
	return *rec, true
}

// Forget drops the mapping for dbusID without closing it.
func (r *Registry) Forget(dbusID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entryID, ok := r.byDBusID[dbusID]; ok {
		delete(r.byEntryID, entryID)
		delete(r.byDBusID, dbusID)
	}
}

// Shown returns every tracked record, oldest first.
func (r *Registry) Shown() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Record, 0, len(r.byEntryID))
	for _, rec := range r.byEntryID {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryID < out[j].EntryID })
	return out
}

// Count returns the number of tracked notifications.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEntryID)
}
