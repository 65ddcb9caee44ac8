package optimistic

import (
	"testing"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
)

func TestCache_GetUnknownReport(t *testing.T) {
	c := NewCache()
	snap, ok := c.Get("r1")
	if ok {
		t.Error("unknown report should return ok=false")
	}
	if snap.Disposition != model.DispositionNone {
		t.Errorf("unknown report disposition = %s, want none", snap.Disposition)
	}
}

func TestCache_ApplyOptimistic_Confirm(t *testing.T) {
	c := NewCache()
	c.Seed("r1", Snapshot{Disposition: model.DispositionNone, Confirmations: 2, Flags: 1})

	snap := c.ApplyOptimistic("r1", model.DispositionConfirmed)
	if snap.Disposition != model.DispositionConfirmed {
		t.Errorf("disposition = %s, want confirmed", snap.Disposition)
	}
	if snap.Confirmations != 3 {
		t.Errorf("confirmations = %d, want 3", snap.Confirmations)
	}
	if snap.Flags != 1 {
		t.Errorf("flags = %d, want 1", snap.Flags)
	}
}

func TestCache_ApplyOptimistic_SwitchIsExclusive(t *testing.T) {
	c := NewCache()
	c.Seed("r1", Snapshot{Disposition: model.DispositionConfirmed, Confirmations: 3, Flags: 0})

	// Switching confirm -> flag must move the count, never double-count.
	snap := c.ApplyOptimistic("r1", model.DispositionFlagged)
	if snap.Disposition != model.DispositionFlagged {
		t.Errorf("disposition = %s, want flagged", snap.Disposition)
	}
	if snap.Confirmations != 2 {
		t.Errorf("confirmations = %d, want 2", snap.Confirmations)
	}
	if snap.Flags != 1 {
		t.Errorf("flags = %d, want 1", snap.Flags)
	}
}

func TestCache_ApplyOptimistic_SameStateNoOp(t *testing.T) {
	c := NewCache()
	c.Seed("r1", Snapshot{Disposition: model.DispositionConfirmed, Confirmations: 3})

	snap := c.ApplyOptimistic("r1", model.DispositionConfirmed)
	if snap.Confirmations != 3 {
		t.Errorf("confirmations = %d, want 3 (no double count)", snap.Confirmations)
	}
}

func TestCache_ApplyOptimistic_Clear(t *testing.T) {
	c := NewCache()
	c.Seed("r1", Snapshot{Disposition: model.DispositionFlagged, Confirmations: 1, Flags: 2})

	snap := c.ApplyOptimistic("r1", model.DispositionNone)
	if snap.Disposition != model.DispositionNone {
		t.Errorf("disposition = %s, want none", snap.Disposition)
	}
	if snap.Flags != 1 {
		t.Errorf("flags = %d, want 1", snap.Flags)
	}
	if snap.Confirmations != 1 {
		t.Errorf("confirmations = %d, want 1", snap.Confirmations)
	}
}

func TestCache_Reconcile_ServerWins(t *testing.T) {
	c := NewCache()
	c.Seed("r1", Snapshot{Disposition: model.DispositionNone, Confirmations: 2})
	c.ApplyOptimistic("r1", model.DispositionConfirmed)

	// Server disagrees with the optimistic view (e.g. own-report rejection).
	server := Snapshot{Disposition: model.DispositionNone, Confirmations: 2}
	snap := c.Reconcile("r1", server)
	if snap != server {
		t.Errorf("reconciled snapshot = %+v, want %+v", snap, server)
	}

	// After reconcile the overlay is gone.
	got, _ := c.Get("r1")
	if got != server {
		t.Errorf("post-reconcile Get = %+v, want %+v", got, server)
	}
}

func TestCache_Rollback(t *testing.T) {
	c := NewCache()
	known := Snapshot{Disposition: model.DispositionNone, Confirmations: 5, Flags: 1}
	c.Seed("r1", known)
	c.ApplyOptimistic("r1", model.DispositionFlagged)

	snap := c.Rollback("r1")
	if snap != known {
		t.Errorf("rollback snapshot = %+v, want %+v", snap, known)
	}
	got, _ := c.Get("r1")
	if got != known {
		t.Errorf("post-rollback Get = %+v, want %+v", got, known)
	}
}

func TestCache_SeedKeepsPendingOverlay(t *testing.T) {
	c := NewCache()
	c.ApplyOptimistic("r1", model.DispositionConfirmed)

	// A list refresh lands while the confirm request is still in flight.
	c.Seed("r1", Snapshot{Disposition: model.DispositionNone, Confirmations: 4})

	snap, _ := c.Get("r1")
	if snap.Disposition != model.DispositionConfirmed {
		t.Errorf("disposition = %s, want confirmed (overlay kept)", snap.Disposition)
	}
	if snap.Confirmations != 5 {
		t.Errorf("confirmations = %d, want 5", snap.Confirmations)
	}
}

func TestCache_Forget(t *testing.T) {
	c := NewCache()
	c.Seed("r1", Snapshot{Disposition: model.DispositionConfirmed, Confirmations: 1})
	c.Forget("r1")
	if _, ok := c.Get("r1"); ok {
		t.Error("forgotten report should return ok=false")
	}
}
