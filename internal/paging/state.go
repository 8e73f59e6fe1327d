package paging

// State is an immutable snapshot of one page-load session. The
// controller replaces it wholesale on every mutation; nothing mutates
// a snapshot in place. A zero State is not meaningful - use
// newInitialState.
//
// items distinguishes "no page has ever completed" (loaded == false)
// from "first page loaded zero items" (loaded == true, empty slice).
type State[K comparable, I any] struct {
	items     []I
	loaded    bool
	err       error
	nextKey   *K
	prevKey   *K
	direction Direction
	version   uint64
}

// newInitialState builds the snapshot a fresh or refreshed session
// starts from: no items, nextKey seeded with the first page key,
// prevKey optionally seeded for bidirectional lists.
func newInitialState[K comparable, I any](firstKey K, firstPrevKey *K, version uint64) State[K, I] {
	next := firstKey
	return State[K, I]{
		nextKey:   &next,
		prevKey:   copyKey(firstPrevKey),
		direction: DirectionInitial,
		version:   version,
	}
}

// Items returns the loaded items. The returned slice is shared with
// the snapshot; callers must not modify it.
func (s State[K, I]) Items() []I { return s.items }

// HasItems reports whether any page has completed, including an empty
// first page.
func (s State[K, I]) HasItems() bool { return s.loaded }

// Len returns the number of loaded items.
func (s State[K, I]) Len() int { return len(s.items) }

// Err returns the error from the most recent failed fetch, if any.
func (s State[K, I]) Err() error { return s.err }

// NextKey returns the key for the next forward page. ok is false when
// forward pagination is exhausted.
func (s State[K, I]) NextKey() (key K, ok bool) {
	if s.nextKey == nil {
		return key, false
	}
	return *s.nextKey, true
}

// PreviousKey returns the key for the next backward page. ok is false
// when backward pagination is exhausted.
func (s State[K, I]) PreviousKey() (key K, ok bool) {
	if s.prevKey == nil {
		return key, false
	}
	return *s.prevKey, true
}

// Direction returns the direction that produced this snapshot.
func (s State[K, I]) Direction() Direction { return s.direction }

// Version returns the refresh generation this snapshot belongs to.
// Fetches started against an older version must be disregarded by the
// caller once the controller has moved on.
func (s State[K, I]) Version() uint64 { return s.version }

// withAppended returns a new snapshot with items concatenated after
// the existing ones and the forward key replaced. prevKey is only
// installed when supplied (a bidirectional seed load); otherwise the
// existing backward key is kept. Any recorded error is dropped.
func (s State[K, I]) withAppended(items []I, nextKey, prevKey *K) State[K, I] {
	direction := DirectionNext
	if !s.loaded && prevKey != nil {
		direction = DirectionInitial
	}
	out := State[K, I]{
		items:     concat(s.items, items),
		loaded:    true,
		nextKey:   copyKey(nextKey),
		prevKey:   s.prevKey,
		direction: direction,
		version:   s.version,
	}
	if prevKey != nil {
		out.prevKey = copyKey(prevKey)
	}
	return out
}

// withPrepended returns a new snapshot with items concatenated before
// the existing ones and the backward key replaced. nextKey is only
// installed when supplied. Any recorded error is dropped.
func (s State[K, I]) withPrepended(items []I, prevKey, nextKey *K) State[K, I] {
	out := State[K, I]{
		items:     concat(items, s.items),
		loaded:    true,
		nextKey:   s.nextKey,
		prevKey:   copyKey(prevKey),
		direction: DirectionPrevious,
		version:   s.version,
	}
	if nextKey != nil {
		out.nextKey = copyKey(nextKey)
	}
	return out
}

// withError returns a new snapshot recording a failed fetch. Items,
// keys and direction are untouched.
func (s State[K, I]) withError(err error) State[K, I] {
	out := s
	out.err = err
	return out
}

// withErrorCleared returns a new snapshot with the error slot empty.
func (s State[K, I]) withErrorCleared() State[K, I] {
	out := s
	out.err = nil
	return out
}

func copyKey[K comparable](k *K) *K {
	if k == nil {
		return nil
	}
	v := *k
	return &v
}

func concat[I any](a, b []I) []I {
	out := make([]I, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
