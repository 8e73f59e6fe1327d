package paging

// Status is the single loading/error/completion condition derived
// from a State snapshot. Exactly one status applies to any reachable
// snapshot.
type Status int

const (
	StatusLoadingFirstPage Status = iota
	StatusLoadingNextPage
	StatusLoadingPreviousPage
	StatusCompleted
	StatusPreviousCompleted
	StatusNextCompleted
	StatusNoItemsFound
	StatusFirstPageError
	StatusNextPageError
	StatusPreviousPageError
)

func (s Status) String() string {
	switch s {
	case StatusLoadingFirstPage:
		return "loadingFirstPage"
	case StatusLoadingNextPage:
		return "loadingNextPage"
	case StatusLoadingPreviousPage:
		return "loadingPreviousPage"
	case StatusCompleted:
		return "completed"
	case StatusPreviousCompleted:
		return "previousCompleted"
	case StatusNextCompleted:
		return "nextCompleted"
	case StatusNoItemsFound:
		return "noItemsFound"
	case StatusFirstPageError:
		return "firstPageError"
	case StatusNextPageError:
		return "nextPageError"
	case StatusPreviousPageError:
		return "previousPageError"
	default:
		return "unknown"
	}
}

// IsError reports whether the status is one of the three error states.
func (s Status) IsError() bool {
	return s == StatusFirstPageError || s == StatusNextPageError || s == StatusPreviousPageError
}

// IsLoading reports whether the status is one of the three loading states.
func (s Status) IsLoading() bool {
	return s == StatusLoadingFirstPage || s == StatusLoadingNextPage || s == StatusLoadingPreviousPage
}

// ResolveStatus derives the status for a snapshot. It is a pure
// function of the snapshot; resolving the same snapshot twice yields
// the same status.
//
// The predicates run in a fixed priority order and the first match
// wins. The loading checks deliberately run before the completion
// checks: a page that just finished with no more keys in one
// direction still reports as loading while the opposite key exists
// and no error is recorded. UI affordances (spinner vs end-of-list
// marker) depend on this exact precedence, so it must not be
// "cleaned up".
func ResolveStatus[K comparable, I any](s State[K, I]) Status {
	var (
		_, hasNext = s.NextKey()
		_, hasPrev = s.PreviousKey()
		loaded     = s.HasItems()
		nonEmpty   = loaded && s.Len() > 0
		forward    = s.direction == DirectionInitial || s.direction == DirectionNext
	)

	switch {
	case forward && loaded && hasNext && s.err == nil:
		return StatusLoadingNextPage
	case s.direction == DirectionPrevious && loaded && hasPrev && s.err == nil:
		return StatusLoadingPreviousPage
	case nonEmpty && !hasPrev && !hasNext:
		return StatusCompleted
	case nonEmpty && !hasPrev:
		return StatusPreviousCompleted
	case nonEmpty && !hasNext:
		return StatusNextCompleted
	case !loaded && s.err == nil:
		return StatusLoadingFirstPage
	case forward && loaded && hasNext:
		return StatusNextPageError
	case s.direction == DirectionPrevious && loaded && hasPrev:
		return StatusPreviousPageError
	case loaded && s.Len() == 0:
		return StatusNoItemsFound
	default:
		return StatusFirstPageError
	}
}
