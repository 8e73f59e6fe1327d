package paging

import (
	"context"
	"sync"
)

// PageRequestListener receives a directional page request. The
// context is cancelled by CancelOutstanding (or a refresh); listeners
// treat cancellation as "ignore this result", not as a guarantee the
// underlying work stops.
type PageRequestListener[K comparable] func(ctx context.Context, key K, direction Direction)

// StatusListener receives edge-triggered status transitions.
type StatusListener func(status Status)

// BuildListener is informational: fired after a page mutation lands,
// with the new item count and whether more pages exist either way.
type BuildListener func(itemCount int, hasNextPage, hasPreviousPage bool)

type requestEntry[K comparable] struct {
	id int
	fn PageRequestListener[K]
}

type statusEntry struct {
	id int
	fn StatusListener
}

type buildEntry struct {
	id int
	fn BuildListener
}

// Coordinator fans a directional page request out to registered
// listeners at most once per key while a fetch for that key is
// outstanding, and owns the cancellable handle for the most recent
// request.
//
// Listener notification iterates over a snapshot taken at
// notification time, so subscribing or unsubscribing from inside a
// listener never affects the round in progress.
type Coordinator[K comparable] struct {
	mu sync.Mutex

	nextID           int
	requestListeners []requestEntry[K]
	statusListeners  []statusEntry
	buildListeners   []buildEntry

	inflight   map[K]struct{}
	cancelLast context.CancelFunc
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator[K comparable]() *Coordinator[K] {
	return &Coordinator[K]{
		inflight: make(map[K]struct{}),
	}
}

// AddPageRequestListener registers a fetch listener and returns an
// unsubscribe function.
func (c *Coordinator[K]) AddPageRequestListener(fn PageRequestListener[K]) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.requestListeners = append(c.requestListeners, requestEntry[K]{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, e := range c.requestListeners {
			if e.id == id {
				c.requestListeners = append(c.requestListeners[:i], c.requestListeners[i+1:]...)
				break
			}
		}
	}
}

// AddStatusListener registers a status listener and returns an
// unsubscribe function.
func (c *Coordinator[K]) AddStatusListener(fn StatusListener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.statusListeners = append(c.statusListeners, statusEntry{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, e := range c.statusListeners {
			if e.id == id {
				c.statusListeners = append(c.statusListeners[:i], c.statusListeners[i+1:]...)
				break
			}
		}
	}
}

// AddBuildListener registers a build-completion listener and returns
// an unsubscribe function.
func (c *Coordinator[K]) AddBuildListener(fn BuildListener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.buildListeners = append(c.buildListeners, buildEntry{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, e := range c.buildListeners {
			if e.id == id {
				c.buildListeners = append(c.buildListeners[:i], c.buildListeners[i+1:]...)
				break
			}
		}
	}
}

// RequestPage fans out a request for key to all fetch listeners,
// unless a fetch for that key is already outstanding. It does not
// await completion. Returns false when the request was suppressed as
// a duplicate.
//
// The key stays in the in-flight set until Release (settlement) or
// Reset (refresh); recording an error on the controller alone does
// not release it.
func (c *Coordinator[K]) RequestPage(key K, direction Direction) bool {
	c.mu.Lock()
	if _, dup := c.inflight[key]; dup {
		c.mu.Unlock()
		return false
	}
	c.inflight[key] = struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelLast = cancel

	listeners := make([]requestEntry[K], len(c.requestListeners))
	copy(listeners, c.requestListeners)
	c.mu.Unlock()

	for _, e := range listeners {
		e.fn(ctx, key, direction)
	}
	return true
}

// Release removes key from the in-flight set. Called by whoever
// settles the fetch, success or failure.
func (c *Coordinator[K]) Release(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

// InFlight reports whether a fetch for key is outstanding.
func (c *Coordinator[K]) InFlight(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[key]
	return ok
}

// CancelOutstanding cancels the most recent request handle, if any.
// It does not touch the in-flight set.
func (c *Coordinator[K]) CancelOutstanding() {
	c.mu.Lock()
	cancel := c.cancelLast
	c.cancelLast = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Reset cancels the outstanding handle and clears the whole in-flight
// set. Used by refresh.
func (c *Coordinator[K]) Reset() {
	c.mu.Lock()
	cancel := c.cancelLast
	c.cancelLast = nil
	c.inflight = make(map[K]struct{})
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// NotifyStatusListeners fans a status transition out to all status
// listeners. The caller is responsible for only invoking it on actual
// transitions.
func (c *Coordinator[K]) NotifyStatusListeners(status Status) {
	c.mu.Lock()
	listeners := make([]statusEntry, len(c.statusListeners))
	copy(listeners, c.statusListeners)
	c.mu.Unlock()

	for _, e := range listeners {
		e.fn(status)
	}
}

// NotifyBuildListeners fans a build completion out to all build
// listeners.
func (c *Coordinator[K]) NotifyBuildListeners(itemCount int, hasNextPage, hasPreviousPage bool) {
	c.mu.Lock()
	listeners := make([]buildEntry, len(c.buildListeners))
	copy(listeners, c.buildListeners)
	c.mu.Unlock()

	for _, e := range listeners {
		e.fn(itemCount, hasNextPage, hasPreviousPage)
	}
}
