package scrollview

import (
	"sync"
	"time"
)

// animateDuration bounds the slide used for near jumps.
const animateDuration = 150 * time.Millisecond

// Anchor maintains the logical "current index" used to restore the
// visual position after items are prepended. When N items land in
// front of the list, every existing index shifts by N; the anchor
// shifts with them so the item the user was looking at stays put.
type Anchor struct {
	mu      sync.Mutex
	current int
}

// NewAnchor creates an anchor at index 0.
func NewAnchor() *Anchor {
	return &Anchor{}
}

// Current returns the current logical scroll index.
func (a *Anchor) Current() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Set moves the anchor to index.
func (a *Anchor) Set(index int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = index
}

// ApplyPrepend recomputes the anchor after count items were prepended
// while firstVisibleBefore was the first visible index, and returns
// the corrected index.
func (a *Anchor) ApplyPrepend(count, firstVisibleBefore int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = count + firstVisibleBefore
	return a.current
}

// Reset moves the anchor back to 0, e.g. after a full refresh.
func (a *Anchor) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = 0
}

// ScrollPlan tells the viewport how to reach a target index.
type ScrollPlan struct {
	Target   int
	Animate  bool
	Duration time.Duration
}

// PlanScroll decides between a direct jump and a short bounded slide.
// Far destinations jump so the user is not dragged through a long
// animation; destinations already within or adjacent to the visible
// range slide over animateDuration. With no visible range known the
// plan is always a jump.
func PlanScroll(target, firstVisible, lastVisible int, visibleKnown bool) ScrollPlan {
	if visibleKnown && target >= firstVisible-1 && target <= lastVisible+1 {
		return ScrollPlan{Target: target, Animate: true, Duration: animateDuration}
	}
	return ScrollPlan{Target: target}
}
