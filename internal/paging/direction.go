package paging

// Direction records which side of the loaded list the most recent
// fetch extended. It disambiguates status resolution only; it never
// gates future requests.
type Direction int

const (
	// DirectionInitial is the direction of the very first page load.
	DirectionInitial Direction = iota
	// DirectionNext means the last fetch appended to the end of the list.
	DirectionNext
	// DirectionPrevious means the last fetch prepended to the start.
	DirectionPrevious
)

func (d Direction) String() string {
	switch d {
	case DirectionInitial:
		return "initial"
	case DirectionNext:
		return "next"
	case DirectionPrevious:
		return "previous"
	default:
		return "unknown"
	}
}
