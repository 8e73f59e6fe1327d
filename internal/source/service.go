// Package source implements the feed backend the demo scrolls
// through: a simulated remote service that resolves keyed pages with
// configurable latency and failure injection.
package source

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"feedscroll/internal/config"
	"feedscroll/internal/domain"
	"feedscroll/internal/eventbus"
)

var authors = []string{
	"ada", "brian", "donald", "dana", "edsger", "frances", "grace",
	"hedy", "ivan", "joan", "ken", "lynn", "margaret", "niklaus",
}

var bodies = []string{
	"Shipping a small fix for the flaky watcher, should calm the CI down.",
	"Anyone else seeing the cache hit rate drop after the last deploy?",
	"TIL you can bisect with a script. Life changing.",
	"The new dashboard is live. Feedback welcome.",
	"Rewrote the parser over the weekend. 40% fewer allocations.",
	"Reminder: backfill job runs tonight, expect elevated queue depth.",
	"Hot take: most retries should just be a refresh button.",
	"Finally tracked down that off-by-one in the window math.",
	"Pairing session notes are up on the wiki.",
	"Benchmarks look good, merging after review.",
}

// Service simulates a feed backend. It listens for page requests on
// the bus and answers with loaded or failed pages. Resolved pages go
// through an LRU cache so a re-fetch of a key after a refresh is
// instant.
type Service struct {
	logger logrus.FieldLogger
	bus    eventbus.EventBus
	cfg    config.FeedConfig

	cache    *lru.Cache[domain.PageKey, []domain.FeedItem]
	requests atomic.Uint64

	unsubscribe func()
}

// NewService creates the feed service and subscribes it to page
// request events.
func NewService(logger logrus.FieldLogger, bus eventbus.EventBus, cfg config.FeedConfig) (*Service, error) {
	cache, err := lru.New[domain.PageKey, []domain.FeedItem](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create page cache: %w", err)
	}

	s := &Service{
		logger: logger.WithField("component", "source"),
		bus:    bus,
		cfg:    cfg,
		cache:  cache,
	}
	s.unsubscribe = bus.Subscribe(domain.EventPageRequested, s.handlePageRequested)
	return s, nil
}

// Stop detaches the service from the bus.
func (s *Service) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Service) handlePageRequested(e eventbus.DomainEvent) {
	req, ok := e.(domain.PageRequestedEvent)
	if !ok {
		return
	}
	go s.resolve(req)
}

// resolve produces exactly one PageLoaded or PageFailed for the
// request. Cancelled requests still settle with a failure so the
// in-flight entry for the key is released.
func (s *Service) resolve(req domain.PageRequestedEvent) {
	log := s.logger.WithFields(logrus.Fields{
		"key":       req.Key,
		"direction": req.Direction,
	})

	if items, ok := s.cache.Get(req.Key); ok {
		log.Debug("Page served from cache")
		s.publishLoaded(req, items)
		return
	}

	n := s.requests.Add(1)

	ctx := req.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-time.After(time.Duration(s.cfg.LatencyMS) * time.Millisecond):
	case <-ctx.Done():
		log.Debug("Page request cancelled")
		s.bus.Publish(domain.PageFailedEvent{Key: req.Key, Version: req.Version, Err: ctx.Err()})
		return
	}

	if s.cfg.FailEveryN > 0 && n%uint64(s.cfg.FailEveryN) == 0 {
		log.Debug("Injected page failure")
		s.bus.Publish(domain.PageFailedEvent{
			Key:     req.Key,
			Version: req.Version,
			Err:     fmt.Errorf("feed backend unavailable (request %d)", n),
		})
		return
	}

	items := s.generatePage(req.Key)
	s.cache.Add(req.Key, items)
	log.WithField("items", len(items)).Debug("Page resolved")
	s.publishLoaded(req, items)
}

func (s *Service) publishLoaded(req domain.PageRequestedEvent, items []domain.FeedItem) {
	var next, prev *domain.PageKey
	if req.Key+1 < s.cfg.TotalPages {
		k := req.Key + 1
		next = &k
	}
	if req.Key > 0 {
		k := req.Key - 1
		prev = &k
	}
	s.bus.Publish(domain.PageLoadedEvent{
		Key:       req.Key,
		Direction: req.Direction,
		Version:   req.Version,
		Items:     items,
		NextKey:   next,
		PrevKey:   prev,
	})
}

// generatePage builds a deterministic page for a key so scrolling
// back to the same offset shows the same content.
func (s *Service) generatePage(key domain.PageKey) []domain.FeedItem {
	items := make([]domain.FeedItem, 0, s.cfg.PageSize)
	base := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < s.cfg.PageSize; i++ {
		seq := key*s.cfg.PageSize + i
		items = append(items, domain.FeedItem{
			ID:        uuid.New(),
			Author:    authors[seq%len(authors)],
			Body:      fmt.Sprintf("#%d %s", seq, bodies[seq%len(bodies)]),
			CreatedAt: base.Add(time.Duration(seq) * time.Minute),
		})
	}
	return items
}
