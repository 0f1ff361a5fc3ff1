package catalog

import (
	"testing"
	"time"
)

func TestHolder_LatestStartedLoadWins(t *testing.T) {
	t.Parallel()

	holder := NewHolder()
	older := holder.Begin()
	newer := holder.Begin()

	first := testSnapshot()
	second := EmptySnapshot()

	if !holder.Commit(newer, first) {
		t.Fatal("expected newer load to commit")
	}
	if holder.Commit(older, second) {
		t.Fatal("stale load must be discarded")
	}

	current, _ := holder.Current()
	if current != first {
		t.Fatal("stale load replaced the newer snapshot")
	}
}

func TestHolder_CommitNilOrRepeated(t *testing.T) {
	t.Parallel()

	holder := NewHolder()
	ticket := holder.Begin()
	if holder.Commit(ticket, nil) {
		t.Fatal("nil snapshot committed")
	}
	if !holder.Commit(ticket, testSnapshot()) {
		t.Fatal("expected commit")
	}
	if holder.Commit(ticket, testSnapshot()) {
		t.Fatal("ticket committed twice")
	}
}

func TestHolder_CurrentAndInvalidate(t *testing.T) {
	t.Parallel()

	loadedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	holder := NewHolder()
	holder.now = func() time.Time { return loadedAt }

	if snapshot, at := holder.Current(); snapshot != nil || !at.IsZero() {
		t.Fatal("expected empty holder")
	}

	snapshot := testSnapshot()
	holder.Commit(holder.Begin(), snapshot)
	got, at := holder.Current()
	if got != snapshot || !at.Equal(loadedAt) {
		t.Fatalf("Current() = %p, %s", got, at)
	}

	holder.Invalidate()
	if got, _ := holder.Current(); got != nil {
		t.Fatal("expected snapshot to be cleared")
	}

	holder.Commit(holder.Begin(), snapshot)
	if got, _ := holder.Current(); got != snapshot {
		t.Fatal("expected reload after invalidate to commit")
	}
}
