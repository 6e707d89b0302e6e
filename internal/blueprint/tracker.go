package blueprint

import "sync"

// Tracker keeps the last seen raw text of each top-level section of one
// document, so callers can tell which sections changed between refreshes.
type Tracker struct {
	mu        sync.Mutex
	snapshots map[string]string
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{snapshots: make(map[string]string)}
}

// Diff records raw as the new snapshot of section name and reports whether it
// differs from the previous one. The first observation of a non-empty
// section counts as a change.
func (t *Tracker) Diff(name, raw string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, seen := t.snapshots[name]
	t.snapshots[name] = raw
	if !seen {
		return raw != ""
	}
	return prev != raw
}

// Reset forgets every snapshot.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshots = make(map[string]string)
}
