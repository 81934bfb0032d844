package scoring

import "errors"

var (
	ErrNotFound               = errors.New("score not found")
	ErrOutOfRange             = errors.New("value must be an integer in [0,100]")
	ErrEvaluatorNotApproved   = errors.New("evaluator is not approved for this event")
	ErrParticipantNotAccepted = errors.New("participant is not accepted in this event")
	ErrCrossEventMismatch     = errors.New("evaluator, criterion and participant must belong to the same event")
)
