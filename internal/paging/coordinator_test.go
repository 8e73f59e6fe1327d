package paging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoordinatorDeduplicatesInFlightKeys(t *testing.T) {
	c := NewCoordinator[int]()
	var calls int
	c.AddPageRequestListener(func(ctx context.Context, key int, direction Direction) {
		calls++
	})

	require.True(t, c.RequestPage(5, DirectionNext))
	require.False(t, c.RequestPage(5, DirectionNext))
	require.Equal(t, 1, calls)
	require.True(t, c.InFlight(5))
}

func TestCoordinatorIndependentKeysBothFire(t *testing.T) {
	c := NewCoordinator[int]()
	var keys []int
	c.AddPageRequestListener(func(ctx context.Context, key int, direction Direction) {
		keys = append(keys, key)
	})

	require.True(t, c.RequestPage(3, DirectionPrevious))
	require.True(t, c.RequestPage(7, DirectionNext))
	require.Equal(t, []int{3, 7}, keys)
}

func TestCoordinatorReleaseAllowsRefetch(t *testing.T) {
	c := NewCoordinator[int]()
	var calls int
	c.AddPageRequestListener(func(ctx context.Context, key int, direction Direction) {
		calls++
	})

	c.RequestPage(5, DirectionNext)
	c.Release(5)
	require.False(t, c.InFlight(5))
	require.True(t, c.RequestPage(5, DirectionNext))
	require.Equal(t, 2, calls)
}

func TestCoordinatorCancelOutstandingSignalsContext(t *testing.T) {
	c := NewCoordinator[int]()
	var got context.Context
	c.AddPageRequestListener(func(ctx context.Context, key int, direction Direction) {
		got = ctx
	})

	c.RequestPage(1, DirectionNext)
	require.NoError(t, got.Err())

	c.CancelOutstanding()
	require.ErrorIs(t, got.Err(), context.Canceled)

	// Cancellation does not release the key; settlement does.
	require.True(t, c.InFlight(1))
}

func TestCoordinatorResetClearsInFlightSet(t *testing.T) {
	c := NewCoordinator[int]()
	var got context.Context
	c.AddPageRequestListener(func(ctx context.Context, key int, direction Direction) {
		got = ctx
	})

	c.RequestPage(1, DirectionNext)
	c.RequestPage(2, DirectionNext)
	c.Reset()

	require.False(t, c.InFlight(1))
	require.False(t, c.InFlight(2))
	require.ErrorIs(t, got.Err(), context.Canceled)
}

func TestCoordinatorUnsubscribe(t *testing.T) {
	c := NewCoordinator[int]()
	var first, second int
	off := c.AddPageRequestListener(func(ctx context.Context, key int, direction Direction) {
		first++
	})
	c.AddPageRequestListener(func(ctx context.Context, key int, direction Direction) {
		second++
	})

	off()
	c.RequestPage(1, DirectionNext)
	require.Equal(t, 0, first)
	require.Equal(t, 1, second)
}

// Subscribing from inside a listener must not affect the round in
// progress.
func TestCoordinatorReentrantSubscription(t *testing.T) {
	c := NewCoordinator[int]()
	var lateCalls int
	c.AddStatusListener(func(status Status) {
		c.AddStatusListener(func(status Status) {
			lateCalls++
		})
	})

	c.NotifyStatusListeners(StatusLoadingFirstPage)
	require.Equal(t, 0, lateCalls)

	c.NotifyStatusListeners(StatusLoadingNextPage)
	require.Equal(t, 1, lateCalls)
}

func TestCoordinatorUnsubscribeDuringNotification(t *testing.T) {
	c := NewCoordinator[int]()
	var offSecond func()
	var secondCalls int
	c.AddStatusListener(func(status Status) {
		offSecond()
	})
	offSecond = c.AddStatusListener(func(status Status) {
		secondCalls++
	})

	// The snapshot taken before the round still includes the second
	// listener.
	c.NotifyStatusListeners(StatusCompleted)
	require.Equal(t, 1, secondCalls)

	c.NotifyStatusListeners(StatusCompleted)
	require.Equal(t, 1, secondCalls)
}

func TestCoordinatorBuildListeners(t *testing.T) {
	c := NewCoordinator[int]()
	var count int
	var next, prev bool
	c.AddBuildListener(func(itemCount int, hasNextPage, hasPreviousPage bool) {
		count, next, prev = itemCount, hasNextPage, hasPreviousPage
	})

	c.NotifyBuildListeners(42, true, false)
	require.Equal(t, 42, count)
	require.True(t, next)
	require.False(t, prev)
}
