package ui

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"feedscroll/internal/config"
	"feedscroll/internal/domain"
	"feedscroll/internal/eventbus"
	"feedscroll/internal/paging"
	"feedscroll/internal/scrollview"
)

type recordedRequest struct {
	key       domain.PageKey
	direction paging.Direction
}

type fixture struct {
	model    *Model
	ctrl     *paging.Controller[domain.PageKey, domain.FeedItem]
	requests *[]recordedRequest
}

func newFixture(t *testing.T, pagingCfg paging.Config[domain.PageKey]) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	bus := eventbus.New(logger)
	t.Cleanup(bus.Close)

	tracker := scrollview.NewTracker()
	anchor := scrollview.NewAnchor()

	// Run deferred work inline so tests stay single-threaded.
	pagingCfg.Schedule = func(fn func()) { fn() }
	ctrl := paging.NewController[domain.PageKey, domain.FeedItem](logger, pagingCfg)
	t.Cleanup(ctrl.Close)
	ctrl.AttachViewport(tracker, anchor)

	var requests []recordedRequest
	ctrl.AddPageRequestListener(func(ctx context.Context, key domain.PageKey, direction paging.Direction) {
		requests = append(requests, recordedRequest{key: key, direction: direction})
	})

	m := NewModel(logger, bus, config.Default(), ctrl, tracker, anchor)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return &fixture{model: m, ctrl: ctrl, requests: &requests}
}

func feedItems(n int) []domain.FeedItem {
	items := make([]domain.FeedItem, n)
	for i := range items {
		items[i] = domain.FeedItem{Author: "ada", Body: "post", CreatedAt: time.Now()}
	}
	return items
}

func intPtr(i int) *int { return &i }

func TestModelInitialLoadTriggersPrefetch(t *testing.T) {
	f := newFixture(t, paging.Config[domain.PageKey]{FirstPageKey: 0})
	f.ctrl.Start()
	require.Equal(t, []recordedRequest{{key: 0, direction: paging.DirectionInitial}}, *f.requests)

	f.model.Update(EventMsg{Event: domain.PageLoadedEvent{
		Key:       0,
		Direction: "initial",
		Version:   f.ctrl.Version(),
		Items:     feedItems(35),
		NextKey:   intPtr(1),
	}})

	require.Len(t, f.ctrl.Items(), 35)
	// With the default threshold of 30 the window bottom is already
	// past the trigger index, so the next page was prefetched.
	require.Equal(t, recordedRequest{key: 1, direction: paging.DirectionNext}, (*f.requests)[1])
}

func TestModelPrependKeepsVisualPosition(t *testing.T) {
	f := newFixture(t, paging.Config[domain.PageKey]{
		FirstPageKey:         5,
		FirstPreviousPageKey: intPtr(4),
	})
	f.ctrl.Start()

	f.model.Update(EventMsg{Event: domain.PageLoadedEvent{
		Key:       5,
		Direction: "initial",
		Version:   f.ctrl.Version(),
		Items:     feedItems(40),
		NextKey:   intPtr(6),
		PrevKey:   intPtr(4),
	}})
	require.Equal(t, 0, f.model.offset)

	f.model.Update(EventMsg{Event: domain.PageLoadedEvent{
		Key:       4,
		Direction: "previous",
		Version:   f.ctrl.Version(),
		Items:     feedItems(25),
		PrevKey:   intPtr(3),
	}})

	// 25 items landed in front; the window follows the content so the
	// same items stay on screen.
	require.Equal(t, 25, f.model.offset)
	require.Len(t, f.ctrl.Items(), 65)
}

func TestModelDropsStaleResponses(t *testing.T) {
	f := newFixture(t, paging.Config[domain.PageKey]{FirstPageKey: 0})
	f.ctrl.Start()

	stale := domain.PageLoadedEvent{
		Key:       0,
		Direction: "initial",
		Version:   f.ctrl.Version(),
		Items:     feedItems(10),
		NextKey:   intPtr(1),
	}

	f.ctrl.Refresh(nil) // bumps the version past the in-flight response
	f.model.Update(EventMsg{Event: stale})

	require.Empty(t, f.ctrl.Items(), "stale page must not be applied")
}

func TestModelScrollClamping(t *testing.T) {
	f := newFixture(t, paging.Config[domain.PageKey]{FirstPageKey: 0})
	f.ctrl.Start()
	f.model.Update(EventMsg{Event: domain.PageLoadedEvent{
		Key:       0,
		Direction: "initial",
		Version:   f.ctrl.Version(),
		Items:     feedItems(50),
	}})

	f.model.scrollBy(-10)
	require.Equal(t, 0, f.model.offset)

	f.model.scrollTo(10_000)
	require.Equal(t, f.model.maxOffset(), f.model.offset)
}

func TestModelFailureThenRetry(t *testing.T) {
	f := newFixture(t, paging.Config[domain.PageKey]{FirstPageKey: 0})
	f.ctrl.Start()

	f.model.Update(EventMsg{Event: domain.PageFailedEvent{
		Key:     0,
		Version: f.ctrl.Version(),
		Err:     errors.New("backend down"),
	}})
	require.Equal(t, paging.StatusFirstPageError, f.ctrl.Status())
	require.Len(t, *f.requests, 1)

	f.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.Equal(t, paging.StatusLoadingFirstPage, f.ctrl.Status())
	require.Len(t, *f.requests, 2, "retry re-issues the first page request")
}

func TestModelEndKeyFarTargetJumps(t *testing.T) {
	f := newFixture(t, paging.Config[domain.PageKey]{FirstPageKey: 0})
	f.ctrl.Start()
	f.model.Update(EventMsg{Event: domain.PageLoadedEvent{
		Key:       0,
		Direction: "initial",
		Version:   f.ctrl.Version(),
		Items:     feedItems(50),
	}})

	// The bottom is far outside the visible range, so the plan is an
	// immediate jump.
	_, cmd := f.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	require.Nil(t, cmd)
	require.Equal(t, f.model.maxOffset(), f.model.offset)

	_, cmd = f.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	require.Nil(t, cmd)
	require.Equal(t, 0, f.model.offset)
}

func TestModelEndKeyNearTargetSlides(t *testing.T) {
	f := newFixture(t, paging.Config[domain.PageKey]{FirstPageKey: 0})
	f.ctrl.Start()
	f.model.Update(EventMsg{Event: domain.PageLoadedEvent{
		Key:       0,
		Direction: "initial",
		Version:   f.ctrl.Version(),
		Items:     feedItems(50),
	}})

	target := f.model.maxOffset()
	f.model.scrollTo(target - 1)

	// One line from the bottom the target is inside the visible range:
	// the plan slides instead of jumping, stepping on ticks.
	_, cmd := f.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	require.NotNil(t, cmd)
	require.Equal(t, target-1, f.model.offset)

	_, cmd = f.model.Update(scrollStepMsg{target: target, every: time.Millisecond})
	require.Nil(t, cmd)
	require.Equal(t, target, f.model.offset)
}

func TestModelRunsDeferredWork(t *testing.T) {
	f := newFixture(t, paging.Config[domain.PageKey]{FirstPageKey: 0})

	ran := false
	f.model.Update(DeferredMsg{Fn: func() { ran = true }})
	require.True(t, ran)
}

func TestModelViewRendersStatus(t *testing.T) {
	f := newFixture(t, paging.Config[domain.PageKey]{FirstPageKey: 0})
	f.ctrl.Start()
	f.model.Update(EventMsg{Event: domain.StatusChangedEvent{Status: "loadingFirstPage"}})

	view := f.model.View()
	require.Contains(t, view, "feedscroll")
	require.Contains(t, view, "loading feed")
}
