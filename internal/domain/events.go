package domain

import "context"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventPageRequested    EventType = "PageRequested"
	EventPageLoaded       EventType = "PageLoaded"
	EventPageFailed       EventType = "PageFailed"
	EventStatusChanged    EventType = "StatusChanged"
	EventRefreshRequested EventType = "RefreshRequested"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// PageRequestedEvent is emitted when the paging controller asks for a
// page. Version is the refresh generation the request belongs to;
// responders echo it back so stale responses can be dropped.
type PageRequestedEvent struct {
	Ctx       context.Context
	Key       PageKey
	Direction string
	Version   uint64
}

func (e PageRequestedEvent) Type() EventType { return EventPageRequested }

// PageLoadedEvent is emitted when the feed backend resolved a page.
// NextKey/PrevKey are nil when pagination is exhausted in that
// direction.
type PageLoadedEvent struct {
	Key       PageKey
	Direction string
	Version   uint64
	Items     []FeedItem
	NextKey   *PageKey
	PrevKey   *PageKey
}

func (e PageLoadedEvent) Type() EventType { return EventPageLoaded }

// PageFailedEvent is emitted when the feed backend failed to resolve
// a page.
type PageFailedEvent struct {
	Key     PageKey
	Version uint64
	Err     error
}

func (e PageFailedEvent) Type() EventType { return EventPageFailed }

// StatusChangedEvent is emitted on every paging status transition.
type StatusChangedEvent struct {
	Status string
}

func (e StatusChangedEvent) Type() EventType { return EventStatusChanged }

// RefreshRequestedEvent is emitted when the user asks for a full
// refresh of the feed.
type RefreshRequestedEvent struct{}

func (e RefreshRequestedEvent) Type() EventType { return EventRefreshRequested }
