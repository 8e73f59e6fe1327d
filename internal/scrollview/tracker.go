// Package scrollview tracks which list items a scrollable viewport is
// showing and keeps the logical scroll position stable when items are
// prepended in front of it.
package scrollview

import "sync"

// ItemPosition describes one currently visible item. Edges are
// fractions of the viewport extent: 0 is the viewport start, 1 the
// viewport end. An item half scrolled off the top has a negative
// leading edge.
type ItemPosition struct {
	Index        int
	LeadingEdge  float64
	TrailingEdge float64
}

// Tracker consumes visible-position updates pushed by the viewport
// and answers the two queries the trigger logic needs. Before the
// first update, or when nothing is visible, both queries report
// unknown; triggers must treat unknown as "do nothing" so no fetch
// fires before layout settles.
type Tracker struct {
	mu        sync.RWMutex
	positions []ItemPosition
}

// NewTracker creates a tracker with no known positions.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update replaces the set of visible positions. The viewport calls
// this on every scroll change.
func (t *Tracker) Update(positions []ItemPosition) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.positions = make([]ItemPosition, len(positions))
	copy(t.positions, positions)
}

// Clear forgets all positions, e.g. when the viewport is discarded.
// Indices from a discarded viewport are meaningless.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.positions = nil
}

// FirstVisibleIndex returns the lowest index with any part inside the
// viewport. ok is false when no item is visible.
func (t *Tracker) FirstVisibleIndex() (index int, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, p := range t.positions {
		if p.TrailingEdge <= 0 {
			continue
		}
		if !ok || p.Index < index {
			index = p.Index
			ok = true
		}
	}
	return index, ok
}

// LastVisibleIndex returns the highest index with any part inside the
// viewport. ok is false when no item is visible.
func (t *Tracker) LastVisibleIndex() (index int, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, p := range t.positions {
		if p.LeadingEdge >= 1 {
			continue
		}
		if !ok || p.Index > index {
			index = p.Index
			ok = true
		}
	}
	return index, ok
}
