package ui

import (
	"time"

	"feedscroll/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// DeferredMsg carries work the paging layer scheduled onto the update
// loop, so deferred trigger re-arming runs between update passes
// rather than on a stray goroutine.
type DeferredMsg struct {
	Fn func()
}

// scrollStepMsg advances an animated scroll by one line toward target.
type scrollStepMsg struct {
	target int
	every  time.Duration
}
