package wizard

import "errors"

var (
	// ErrNoQualityFunc is returned when an operation needs a quality
	// function and none is registered or supplied.
	ErrNoQualityFunc = errors.New("no quality function registered")

	// ErrNoSimilarityFunc is returned when an operation needs a similarity
	// function and none is registered or supplied.
	ErrNoSimilarityFunc = errors.New("no similarity function registered")

	// ErrNotInList reports a navigation precondition violation: the value
	// being moved from (or to) is not a member of its list. Navigation
	// clamps at list boundaries, so normal UI flow never triggers this.
	ErrNotInList = errors.New("cluster is not in the list")

	// ErrEmptyList reports a jump (first/last) on an empty list.
	ErrEmptyList = errors.New("list is empty")

	// ErrMalformedUpdate reports a defect in event construction, such as an
	// added cluster with no descendant pair or a deletion of an unknown id.
	ErrMalformedUpdate = errors.New("malformed cluster update")

	// ErrInvariant reports an internal consistency violation detected after
	// applying an update. The update is aborted; the wizard state should be
	// treated as suspect and rebuilt from the session.
	ErrInvariant = errors.New("wizard invariant violated")
)
