package paging

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"feedscroll/internal/scrollview"
)

// ScheduleFunc defers fn to the next scheduling quantum of the host
// event loop, so a mutation's effect on layout is visible before the
// next trigger decision reads viewport indices. The default runs fn
// on a fresh goroutine; tests inject a manual queue.
type ScheduleFunc func(fn func())

// Config carries the construction-time knobs for a Controller.
type Config[K comparable] struct {
	// FirstPageKey seeds the forward direction. Required.
	FirstPageKey K
	// FirstPreviousPageKey seeds the backward direction. Nil means
	// the list is forward-only at start.
	FirstPreviousPageKey *K
	// NextItemsThreshold is how many not-yet-visible trailing items
	// remain before the next page is requested. Defaults to 30.
	NextItemsThreshold int
	// PreviousItemsThreshold is the same for the backward direction.
	// Defaults to 5.
	PreviousItemsThreshold int
	// Schedule defers trigger re-arming past the current update pass.
	Schedule ScheduleFunc
}

// Controller owns one paging session: the current State snapshot, the
// request coordinator, and the viewport-driven trigger logic. All
// mutations replace the snapshot wholesale and re-derive the status;
// status listeners are notified synchronously and only on actual
// transitions.
//
// Using a Controller after Close is a bug in the owner and panics.
type Controller[K comparable, I any] struct {
	logger logrus.FieldLogger
	coord  *Coordinator[K]

	mu              sync.Mutex
	state           State[K, I]
	firstKey        K
	firstPrevKey    *K
	nextThreshold   int
	prevThreshold   int
	requestsAllowed bool
	lastStatus      Status
	notifiedOnce    bool
	closed          bool

	schedule ScheduleFunc

	tracker *scrollview.Tracker
	anchor  *scrollview.Anchor
}

// NewController creates a controller in the loadingFirstPage state.
// No fetch is requested until Start: the very first request is driven
// by the controller's own status notification, so callers register
// their listeners between NewController and Start.
func NewController[K comparable, I any](logger logrus.FieldLogger, cfg Config[K]) *Controller[K, I] {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if cfg.NextItemsThreshold <= 0 {
		cfg.NextItemsThreshold = 30
	}
	if cfg.PreviousItemsThreshold <= 0 {
		cfg.PreviousItemsThreshold = 5
	}
	schedule := cfg.Schedule
	if schedule == nil {
		schedule = func(fn func()) { go fn() }
	}

	c := &Controller[K, I]{
		logger:          logger.WithField("component", "paging"),
		coord:           NewCoordinator[K](),
		state:           newInitialState[K, I](cfg.FirstPageKey, cfg.FirstPreviousPageKey, 1),
		firstKey:        cfg.FirstPageKey,
		firstPrevKey:    copyKey(cfg.FirstPreviousPageKey),
		nextThreshold:   cfg.NextItemsThreshold,
		prevThreshold:   cfg.PreviousItemsThreshold,
		requestsAllowed: true,
		schedule:        schedule,
	}

	// The first page is fetched by reacting to the loadingFirstPage
	// status, not by the constructor.
	c.coord.AddStatusListener(func(st Status) {
		if st == StatusLoadingFirstPage {
			c.maybeRequestFirstPage()
		}
	})

	return c
}

// AttachViewport wires the viewport position source and the scroll
// anchor. Call again with a fresh tracker whenever the surrounding
// viewport is recreated; index math against a discarded viewport is
// meaningless.
func (c *Controller[K, I]) AttachViewport(tracker *scrollview.Tracker, anchor *scrollview.Anchor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker = tracker
	c.anchor = anchor
}

// AddPageRequestListener registers a fetch listener. Every accepted
// request must eventually settle through exactly one of AppendPage,
// PrependPage or FailPage for its key, or that key stays blocked
// until the next Refresh.
func (c *Controller[K, I]) AddPageRequestListener(fn PageRequestListener[K]) func() {
	return c.coord.AddPageRequestListener(fn)
}

// AddStatusListener registers a listener fired synchronously on every
// status transition.
func (c *Controller[K, I]) AddStatusListener(fn StatusListener) func() {
	return c.coord.AddStatusListener(fn)
}

// AddBuildListener registers an informational listener fired after a
// page mutation lands.
func (c *Controller[K, I]) AddBuildListener(fn BuildListener) func() {
	return c.coord.AddBuildListener(fn)
}

// Start announces the initial loadingFirstPage status, which in turn
// issues the first page request. Call once, after listeners are
// registered.
func (c *Controller[K, I]) Start() {
	c.mu.Lock()
	c.ensureOpen()
	c.mu.Unlock()
	c.notifyStatus()
}

// Snapshot returns the current immutable state.
func (c *Controller[K, I]) Snapshot() State[K, I] {
	c.mu.Lock()
	c.ensureOpen()
	st := c.state
	c.mu.Unlock()
	return st
}

// Items returns the currently loaded items.
func (c *Controller[K, I]) Items() []I {
	return c.Snapshot().Items()
}

// Status returns the status derived from the current state.
func (c *Controller[K, I]) Status() Status {
	return ResolveStatus(c.Snapshot())
}

// Version returns the current refresh generation. Responses to
// fetches started against an older version must be dropped by the
// caller.
func (c *Controller[K, I]) Version() uint64 {
	return c.Snapshot().Version()
}

// AppendPage settles the outstanding forward fetch: items are
// concatenated after the existing ones, the forward key is replaced
// (nil marks forward pagination exhausted) and any recorded error is
// cleared. prevKey is only honored on a bidirectional seed load.
func (c *Controller[K, I]) AppendPage(items []I, nextKey, prevKey *K) {
	c.mu.Lock()
	c.ensureOpen()
	settled, had := c.state.NextKey()
	c.state = c.state.withAppended(items, nextKey, prevKey)
	count, hasNext, hasPrev := c.buildInfoLocked()
	c.mu.Unlock()

	if had {
		c.coord.Release(settled)
	}
	c.logger.WithFields(logrus.Fields{"items": len(items), "total": count}).Debug("Page appended")

	c.notifyStatus()
	c.coord.NotifyBuildListeners(count, hasNext, hasPrev)
	c.schedule(c.updateLoadingState)
}

// PrependPage settles the outstanding backward fetch: items are
// concatenated before the existing ones and the backward key is
// replaced. Before the new state lands, the scroll anchor is
// corrected so the item the user was looking at keeps its visual
// offset.
func (c *Controller[K, I]) PrependPage(items []I, prevKey, nextKey *K) {
	c.mu.Lock()
	c.ensureOpen()
	settled, had := c.state.PreviousKey()

	firstVisible := 0
	if c.tracker != nil {
		if fv, ok := c.tracker.FirstVisibleIndex(); ok {
			firstVisible = fv
		}
	}
	anchor := c.anchor
	c.state = c.state.withPrepended(items, prevKey, nextKey)
	count, hasNext, hasPrev := c.buildInfoLocked()
	c.mu.Unlock()

	if anchor != nil {
		anchor.ApplyPrepend(len(items), firstVisible)
	}
	if had {
		c.coord.Release(settled)
	}
	c.logger.WithFields(logrus.Fields{"items": len(items), "total": count}).Debug("Page prepended")

	c.notifyStatus()
	c.coord.NotifyBuildListeners(count, hasNext, hasPrev)
	c.schedule(c.updateLoadingState)
}

// SetError records a failed fetch. The in-flight entry for the failed
// key is not released; settlement does that separately (FailPage), so
// duplicate triggers for the key stay suppressed meanwhile.
func (c *Controller[K, I]) SetError(err error) {
	c.mu.Lock()
	c.ensureOpen()
	c.state = c.state.withError(err)
	c.mu.Unlock()

	c.logger.WithError(err).Debug("Page fetch error recorded")
	c.notifyStatus()
}

// FailPage is the normal failure settlement path: records err and
// releases key so a later retry can re-request it.
func (c *Controller[K, I]) FailPage(key K, err error) {
	c.SetError(err)
	c.coord.Release(key)
}

// Refresh abandons the session: the outstanding request is cancelled,
// the in-flight set cleared, the anchor reset and the state replaced
// with a fresh initial one, bumping the version so stale responses
// can be recognized. A non-nil key re-seeds the first page.
func (c *Controller[K, I]) Refresh(key *K) {
	c.mu.Lock()
	c.ensureOpen()
	if key != nil {
		c.firstKey = *key
	}
	version := c.state.Version() + 1
	c.state = newInitialState[K, I](c.firstKey, copyKey(c.firstPrevKey), version)
	c.requestsAllowed = true
	tracker, anchor := c.tracker, c.anchor
	c.mu.Unlock()

	c.coord.Reset()
	if anchor != nil {
		anchor.Reset()
	}
	if tracker != nil {
		tracker.Clear()
	}
	c.logger.WithField("version", version).Info("Refreshing")

	c.notifyStatus()
	// The status may not have transitioned when a refresh lands during
	// the first load; request the first page regardless. De-duplication
	// keeps this idempotent.
	c.maybeRequestFirstPage()
}

// RetryLastFailedRequest clears the recorded error only. The request
// itself is re-issued by the usual mechanisms: the first-page
// bootstrap when nothing was loaded yet, otherwise the trigger checks
// against the unchanged viewport.
func (c *Controller[K, I]) RetryLastFailedRequest() {
	c.mu.Lock()
	c.ensureOpen()
	if c.state.Err() == nil {
		c.mu.Unlock()
		return
	}
	c.state = c.state.withErrorCleared()
	c.requestsAllowed = true
	c.mu.Unlock()

	c.logger.Debug("Retrying last failed request")
	c.notifyStatus()
	c.schedule(c.recheckTriggers)
}

// CheckNextPageRequest runs the forward trigger check for a visible
// index: once index crosses itemCount - nextThreshold and a forward
// key exists, that page is requested. Firing closes the request gate
// until the resulting mutation re-arms it, so rapid viewport updates
// cannot storm duplicate triggers.
func (c *Controller[K, I]) CheckNextPageRequest(index int) {
	c.mu.Lock()
	c.ensureOpen()
	c.mu.Unlock()
	c.checkNext(index)
}

func (c *Controller[K, I]) checkNext(index int) {
	c.mu.Lock()
	if c.closed || !c.requestsAllowed || c.state.Err() != nil {
		c.mu.Unlock()
		return
	}
	key, ok := c.state.NextKey()
	if !ok {
		c.mu.Unlock()
		return
	}
	trigger := c.state.Len() - c.nextThreshold
	if trigger < 0 {
		trigger = 0
	}
	if index < trigger {
		c.mu.Unlock()
		return
	}
	c.requestsAllowed = false
	c.mu.Unlock()

	if c.coord.RequestPage(key, DirectionNext) {
		c.logger.WithField("index", index).Debug("Next page requested")
	}
}

// CheckPreviousPageRequest runs the backward trigger check: once
// index comes within previousThreshold of the list start and a
// backward key exists, that page is requested.
func (c *Controller[K, I]) CheckPreviousPageRequest(index int) {
	c.mu.Lock()
	c.ensureOpen()
	c.mu.Unlock()
	c.checkPrev(index)
}

func (c *Controller[K, I]) checkPrev(index int) {
	c.mu.Lock()
	if c.closed || !c.requestsAllowed || c.state.Err() != nil {
		c.mu.Unlock()
		return
	}
	key, ok := c.state.PreviousKey()
	if !ok {
		c.mu.Unlock()
		return
	}
	trigger := c.prevThreshold
	if index > trigger {
		c.mu.Unlock()
		return
	}
	c.requestsAllowed = false
	c.mu.Unlock()

	if c.coord.RequestPage(key, DirectionPrevious) {
		c.logger.WithField("index", index).Debug("Previous page requested")
	}
}

// Close disposes the controller and cancels the outstanding request.
// Every other method panics afterwards; use after Close is a bug in
// the owner, not a condition to tolerate.
func (c *Controller[K, I]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.coord.CancelOutstanding()
}

// updateLoadingState re-arms the trigger gate after a mutation and
// re-runs the checks against the current viewport. Runs one
// scheduling quantum after the mutation so layout has caught up.
func (c *Controller[K, I]) updateLoadingState() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.requestsAllowed = true
	c.mu.Unlock()
	c.recheckTriggers()
}

func (c *Controller[K, I]) recheckTriggers() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	tracker := c.tracker
	c.mu.Unlock()
	if tracker == nil {
		return
	}
	if last, ok := tracker.LastVisibleIndex(); ok {
		c.checkNext(last)
	}
	if first, ok := tracker.FirstVisibleIndex(); ok {
		c.checkPrev(first)
	}
}

// maybeRequestFirstPage issues the initial request when the state is
// still unloaded and error-free and no fetch for the first key is
// outstanding. Idempotent by construction.
func (c *Controller[K, I]) maybeRequestFirstPage() {
	c.mu.Lock()
	if c.closed || c.state.HasItems() || c.state.Err() != nil {
		c.mu.Unlock()
		return
	}
	key := c.firstKey
	c.mu.Unlock()

	if c.coord.RequestPage(key, DirectionInitial) {
		c.logger.Debug("First page requested")
	}
}

// notifyStatus re-derives the status and fans it out when it differs
// from the last announced one. Listeners run outside the lock; the
// notification happens before the caller returns, so listeners never
// observe a state whose transition was not announced first.
func (c *Controller[K, I]) notifyStatus() {
	c.mu.Lock()
	st := ResolveStatus(c.state)
	if c.notifiedOnce && st == c.lastStatus {
		c.mu.Unlock()
		return
	}
	c.lastStatus = st
	c.notifiedOnce = true
	c.mu.Unlock()

	c.logger.WithField("status", st.String()).Debug("Status changed")
	c.coord.NotifyStatusListeners(st)
}

func (c *Controller[K, I]) buildInfoLocked() (count int, hasNext, hasPrev bool) {
	count = c.state.Len()
	_, hasNext = c.state.NextKey()
	_, hasPrev = c.state.PreviousKey()
	return count, hasNext, hasPrev
}

// ensureOpen must be called with c.mu held. It releases the lock
// before panicking so a recovered panic leaves the controller usable
// for the next (equally doomed) call instead of wedging it.
func (c *Controller[K, I]) ensureOpen() {
	if c.closed {
		c.mu.Unlock()
		panic("paging: controller used after Close")
	}
}
