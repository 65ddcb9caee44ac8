// Package optimistic is a small client-side helper for UIs that mirror
// report dispositions. It keeps one entry per report: the last
// server-confirmed state plus at most one outstanding optimistic change,
// applied locally while the request is in flight. The server response
// always wins on reconcile.
package optimistic

import (
	"sync"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
)

// Snapshot is the disposition view for a single report as the client
// should render it.
type Snapshot struct {
	Disposition   string // none, confirmed, or flagged
	Confirmations int
	Flags         int
}

// entry pairs the last-known-good snapshot with the pending optimistic
// disposition, if any. pending is nil when nothing is in flight.
type entry struct {
	known   Snapshot
	pending *string
}

// Cache tracks per-report disposition state with optimistic overlays.
// Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Get returns the snapshot the client should display: the last-known-good
// state with the pending change applied on top. ok is false when the
// report has never been seen.
func (c *Cache) Get(reportID string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[reportID]
	if !ok {
		return Snapshot{Disposition: model.DispositionNone}, false
	}
	return e.view(), true
}

// Seed records the server-confirmed state for a report, e.g. from a list
// response. It does not disturb a pending optimistic change.
func (c *Cache) Seed(reportID string, known Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[reportID]
	if !ok {
		c.entries[reportID] = &entry{known: known}
		return
	}
	e.known = known
}

// ApplyOptimistic overlays a disposition change before the server has
// answered, and returns the snapshot to display. Setting the same state
// twice is a no-op; switching states replaces the previous overlay, so a
// report never shows both confirmed and flagged.
func (c *Cache) ApplyOptimistic(reportID, state string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[reportID]
	if !ok {
		e = &entry{known: Snapshot{Disposition: model.DispositionNone}}
		c.entries[reportID] = e
	}

	if state == model.DispositionNone {
		none := model.DispositionNone
		e.pending = &none
	} else {
		s := state
		e.pending = &s
	}
	return e.view()
}

// Reconcile replaces the entry with the authoritative server response and
// clears any pending overlay. The server state always wins, even if it
// disagrees with what was shown optimistically.
func (c *Cache) Reconcile(reportID string, server Snapshot) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[reportID] = &entry{known: server}
	return server
}

// Rollback drops the pending overlay after a failed request, restoring
// the last-known-good snapshot.
func (c *Cache) Rollback(reportID string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[reportID]
	if !ok {
		return Snapshot{Disposition: model.DispositionNone}
	}
	e.pending = nil
	return e.known
}

// Forget removes a report entirely, e.g. after it expires out of the UI.
func (c *Cache) Forget(reportID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, reportID)
}

// view computes the display snapshot: known state adjusted by the pending
// disposition change. Counter deltas mirror the ledger's toggle rules.
func (e *entry) view() Snapshot {
	if e.pending == nil {
		return e.known
	}

	s := e.known
	prev := s.Disposition
	next := *e.pending
	if prev == next {
		return s
	}

	switch prev {
	case model.DispositionConfirmed:
		s.Confirmations--
	case model.DispositionFlagged:
		s.Flags--
	}
	switch next {
	case model.DispositionConfirmed:
		s.Confirmations++
	case model.DispositionFlagged:
		s.Flags++
	}
	s.Disposition = next
	return s
}
