package paging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func keyPtr(k int) *int { return &k }

func TestResolveStatusInitialState(t *testing.T) {
	s := newInitialState[int, string](0, nil, 1)
	require.Equal(t, StatusLoadingFirstPage, ResolveStatus(s))
}

func TestResolveStatusFirstPageError(t *testing.T) {
	s := newInitialState[int, string](0, nil, 1).withError(errors.New("boom"))
	require.Equal(t, StatusFirstPageError, ResolveStatus(s))
}

// A page that just finished still reports as loading while the next
// key exists and no error is set. The loading checks run before the
// completion checks on purpose.
func TestResolveStatusLoadingBeatsCompletion(t *testing.T) {
	s := newInitialState[int, string](0, nil, 1).
		withAppended([]string{"a", "b", "c"}, keyPtr(1), nil)
	require.Equal(t, StatusLoadingNextPage, ResolveStatus(s))
}

func TestResolveStatusCompleted(t *testing.T) {
	s := newInitialState[int, string](0, nil, 1).
		withAppended([]string{"a", "b", "c"}, nil, nil)
	require.Equal(t, StatusCompleted, ResolveStatus(s))
}

func TestResolveStatusNextCompletedKeepsPreviousOpen(t *testing.T) {
	// Bidirectional seed: backward pagination still has pages.
	s := newInitialState[int, string](5, keyPtr(4), 1).
		withAppended([]string{"a"}, nil, nil)
	require.Equal(t, StatusNextCompleted, ResolveStatus(s))
}

func TestResolveStatusPreviousCompleted(t *testing.T) {
	// Backward pagination exhausted while forward pages remain.
	s := newInitialState[int, string](5, keyPtr(4), 1).
		withAppended([]string{"a"}, keyPtr(6), nil).
		withPrepended([]string{"z"}, nil, nil)
	require.Equal(t, DirectionPrevious, s.Direction())
	require.Equal(t, StatusPreviousCompleted, ResolveStatus(s))

	// The completion check outranks the error checks, so a recorded
	// error does not change the answer here.
	withErr := s.withError(errors.New("x"))
	require.Equal(t, StatusPreviousCompleted, ResolveStatus(withErr))
}

func TestResolveStatusLoadingPreviousPage(t *testing.T) {
	s := newInitialState[int, string](5, keyPtr(4), 1).
		withAppended([]string{"a"}, keyPtr(6), nil).
		withPrepended([]string{"z"}, keyPtr(3), nil)
	require.Equal(t, StatusLoadingPreviousPage, ResolveStatus(s))
}

func TestResolveStatusNoItemsFound(t *testing.T) {
	s := newInitialState[int, string](0, nil, 1).
		withAppended(nil, nil, nil)
	require.True(t, s.HasItems())
	require.Equal(t, StatusNoItemsFound, ResolveStatus(s))
}

func TestResolveStatusEmptyPageWithMoreKeepsLoading(t *testing.T) {
	s := newInitialState[int, string](0, nil, 1).
		withAppended(nil, keyPtr(1), nil)
	require.Equal(t, StatusLoadingNextPage, ResolveStatus(s))
}

func TestResolveStatusNextPageError(t *testing.T) {
	s := newInitialState[int, string](0, nil, 1).
		withAppended([]string{"a"}, keyPtr(1), nil).
		withError(errors.New("boom"))
	require.Equal(t, StatusNextPageError, ResolveStatus(s))
}

func TestResolveStatusPreviousPageError(t *testing.T) {
	s := newInitialState[int, string](5, keyPtr(4), 1).
		withAppended([]string{"a"}, keyPtr(6), nil).
		withPrepended([]string{"z"}, keyPtr(3), nil).
		withError(errors.New("boom"))
	require.Equal(t, StatusPreviousPageError, ResolveStatus(s))
}

// Every reachable snapshot resolves to exactly one status; resolving
// twice yields the same answer.
func TestResolveStatusIdempotent(t *testing.T) {
	states := []State[int, string]{
		newInitialState[int, string](0, nil, 1),
		newInitialState[int, string](0, nil, 1).withError(errors.New("e")),
		newInitialState[int, string](0, nil, 1).withAppended([]string{"a"}, keyPtr(1), nil),
		newInitialState[int, string](0, nil, 1).withAppended([]string{"a"}, nil, nil),
		newInitialState[int, string](5, keyPtr(4), 1).withAppended([]string{"a"}, keyPtr(6), nil).withPrepended([]string{"z"}, keyPtr(3), nil),
	}
	for _, s := range states {
		require.Equal(t, ResolveStatus(s), ResolveStatus(s))
	}
}
