package domain

import (
	"time"

	"github.com/google/uuid"
)

// FeedItem is one entry in the scrolling feed.
type FeedItem struct {
	ID        uuid.UUID
	Author    string
	Body      string
	CreatedAt time.Time
}

// PageKey identifies one page of the feed. Keys are dense integer
// offsets: page k is followed by k+1 and preceded by k-1.
type PageKey = int
