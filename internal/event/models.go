package event

import "time"

type State string

const (
	StateDraft     State = "Draft"
	StateActive    State = "Active"
	StateFinalized State = "Finalized"
	StateCancelled State = "Cancelled"
)

// CanTransition reports whether from -> to is a legal lifecycle move.
// The lifecycle is monotone: Draft -> Active -> {Finalized, Cancelled}.
func CanTransition(from, to State) bool {
	switch from {
	case StateDraft:
		return to == StateActive || to == StateCancelled
	case StateActive:
		return to == StateFinalized || to == StateCancelled
	default:
		return false
	}
}

// Mutable reports whether rubric and inscription writes are still allowed.
func (s State) Mutable() bool {
	return s == StateDraft || s == StateActive
}

func ValidState(s State) bool {
	switch s {
	case StateDraft, StateActive, StateFinalized, StateCancelled:
		return true
	}
	return false
}

// Policy is the per-event engine configuration. Defaults come from the
// environment; admins may override per event.
type Policy struct {
	NMin                 int     `json:"n_min"`                 // distinct participants an evaluator must score for a certificate
	DiscrepancyThreshold float64 `json:"discrepancy_threshold"` // stdev above which a cell is flagged
	IncludeScoreOnCert   bool    `json:"include_score_on_cert"`
}

type Event struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	City        string    `json:"city,omitempty"`
	Venue       string    `json:"venue,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	State       State     `json:"state"`
	OwnerID     int64     `json:"owner_id"`
	Capacity    int       `json:"capacity,omitempty"`
	Policy      Policy    `json:"policy"`
}
