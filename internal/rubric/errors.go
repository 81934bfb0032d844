package rubric

import "errors"

var (
	ErrNotFound         = errors.New("criterion not found")
	ErrInvalidWeight    = errors.New("weight must be in (0,100]")
	ErrEmptyDescription = errors.New("description must not be blank")
	ErrEventNotMutable  = errors.New("event is finalized or cancelled")
	// ErrCriterionInUse: at least one score references the criterion.
	// Weight updates need force; deletes are refused outright.
	ErrCriterionInUse = errors.New("criterion is referenced by existing scores")
)
