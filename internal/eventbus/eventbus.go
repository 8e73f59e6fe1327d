// Package eventbus decouples the feed backend from the UI: services
// publish domain events onto a buffered channel and a single
// dispatcher goroutine fans them out to subscribers.
package eventbus

import (
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"

	"feedscroll/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type handlerEntry struct {
	id int
	fn EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	logger    logrus.FieldLogger
	mu        sync.Mutex
	nextID    int
	handlers  map[EventType][]handlerEntry
	eventChan chan DomainEvent
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a new event bus and starts its dispatcher.
func New(logger logrus.FieldLogger) EventBus {
	b := &bus{
		logger:    logger.WithField("component", "eventbus"),
		handlers:  make(map[EventType][]handlerEntry),
		eventChan: make(chan DomainEvent, 256),
		quit:      make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish publishes an event to all subscribers. Never blocks; when
// the buffer is full the event is dropped and logged.
func (b *bus) Publish(event DomainEvent) {
	select {
	case b.eventChan <- event:
	default:
		b.logger.WithField("event", event.Type()).Warn("Event bus full, dropping event")
	}
}

// Subscribe subscribes to events of a specific type and returns an
// unsubscribe function.
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], handlerEntry{id: id, fn: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		entries := b.handlers[eventType]
		for i, e := range entries {
			if e.id == id {
				b.handlers[eventType] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher. Pending events are discarded.
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
		b.wg.Wait()
	})
}

// dispatch handles event distribution to subscribers.
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.mu.Lock()
			entries := b.handlers[event.Type()]
			snapshot := make([]handlerEntry, len(entries))
			copy(snapshot, entries)
			b.mu.Unlock()

			for _, e := range snapshot {
				b.invoke(e.fn, event)
			}

		case <-b.quit:
			return
		}
	}
}

func (b *bus) invoke(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithFields(logrus.Fields{
				"event": event.Type(),
				"panic": r,
			}).Errorf("Event handler panic\n%s", debug.Stack())
		}
	}()
	h(event)
}
