package scoring

import "time"

// Score is one evaluator's integer mark for one participant on one
// criterion. Unique on (evaluator, criterion, participant); writes to an
// existing triple replace the value.
type Score struct {
	EvaluatorID   int64     `json:"evaluator_id"`
	CriterionID   int64     `json:"criterion_id"`
	ParticipantID int64     `json:"participant_id"`
	Value         int       `json:"value"` // [0,100]
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}
