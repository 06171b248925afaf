package session

import "errors"

var (
	// ErrNoSession indicates no snapshot has been imported into the database yet.
	ErrNoSession = errors.New("no session imported")

	// ErrUnknownCluster indicates an operation referenced a cluster id that is
	// not present in the session.
	ErrUnknownCluster = errors.New("unknown cluster")

	// ErrUnknownGroup indicates a label that is not unsorted, good, or ignored.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrNothingToUndo indicates the journal has no action behind the cursor.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the journal has no action ahead of the cursor.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrInvalidSnapshot indicates a snapshot document failed validation.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
