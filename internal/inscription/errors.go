package inscription

import "errors"

var (
	ErrNotFound         = errors.New("inscription not found")
	ErrAlreadyInscribed = errors.New("user already inscribed in this event")
	// ErrRoleConflict is the cross-role exclusion: one user may hold at
	// most one of participant/evaluator/attendee in a given event.
	ErrRoleConflict = errors.New("user already holds another role in this event")
)
