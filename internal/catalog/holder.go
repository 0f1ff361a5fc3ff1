package catalog

import (
	"sync"
	"time"
)

// Holder keeps the most recently started load that has completed. A load
// that finishes after a newer one has been committed is discarded.
type Holder struct {
	mu        sync.Mutex
	issued    uint64
	committed uint64
	snapshot  *Snapshot
	loadedAt  time.Time
	now       func() time.Time
}

func NewHolder() *Holder {
	return NewHolderWithClock(time.Now)
}

// NewHolderWithClock returns a holder that stamps commits using now.
func NewHolderWithClock(now func() time.Time) *Holder {
	return &Holder{now: now}
}

// Begin reserves a ticket for a load that is about to start.
func (h *Holder) Begin() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.issued++
	return h.issued
}

// Commit installs snapshot if ticket is newer than the last committed load.
func (h *Holder) Commit(ticket uint64, snapshot *Snapshot) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if snapshot == nil || ticket <= h.committed {
		return false
	}
	h.committed = ticket
	h.snapshot = snapshot
	h.loadedAt = h.now()
	return true
}

// Current returns the installed snapshot and when it was committed.
// The snapshot is nil before the first commit.
func (h *Holder) Current() (*Snapshot, time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot, h.loadedAt
}

// Invalidate forgets the installed snapshot so the next read reloads.
// Loads already in flight may still commit.
func (h *Holder) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot = nil
	h.loadedAt = time.Time{}
}
