package inscription

import (
	"strings"
	"time"
)

type ParticipantStatus string

const (
	ParticipantPreinscribed ParticipantStatus = "Preinscribed"
	ParticipantAccepted     ParticipantStatus = "Accepted"
	ParticipantRejected     ParticipantStatus = "Rejected"
	ParticipantCancelled    ParticipantStatus = "Cancelled"
)

type EvaluatorStatus string

const (
	EvaluatorPending   EvaluatorStatus = "Pending"
	EvaluatorApproved  EvaluatorStatus = "Approved"
	EvaluatorRejected  EvaluatorStatus = "Rejected"
	EvaluatorCancelled EvaluatorStatus = "Cancelled"
)

type AttendeeStatus string

const (
	AttendeePending  AttendeeStatus = "Pending"
	AttendeeApproved AttendeeStatus = "Approved"
	AttendeeRejected AttendeeStatus = "Rejected"
)

// CanonicalParticipantStatus maps legacy Spanish admission strings (any
// casing) onto the canonical set. Unknown strings map to Preinscribed.
func CanonicalParticipantStatus(raw string) ParticipantStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "accepted", "aprobado", "activo":
		return ParticipantAccepted
	case "rejected", "rechazado":
		return ParticipantRejected
	case "cancelled", "cancelado":
		return ParticipantCancelled
	default:
		return ParticipantPreinscribed
	}
}

// CanonicalEvaluatorStatus maps legacy Spanish strings onto the canonical
// set. 'Activo' was used interchangeably with 'Aprobado' in old data.
func CanonicalEvaluatorStatus(raw string) EvaluatorStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approved", "aprobado", "activo":
		return EvaluatorApproved
	case "rejected", "rechazado":
		return EvaluatorRejected
	case "cancelled", "cancelado":
		return EvaluatorCancelled
	default:
		return EvaluatorPending
	}
}

// ParticipantEvent is one participant's inscription in one event. A group
// member carries LeaderID of the leader's inscription; leaders and
// individuals have LeaderID nil. Scoring is leader-only.
type ParticipantEvent struct {
	ID            int64             `json:"id"`
	EventID       int64             `json:"event_id"`
	ParticipantID int64             `json:"participant_id"`
	Status        ParticipantStatus `json:"status"`
	SubmittedAt   time.Time         `json:"submitted_at"` // primary ranking tie-breaker
	LeaderID      *int64            `json:"leader_id,omitempty"`
	IsGroup       bool              `json:"is_group,omitempty"`
	ProjectCode   string            `json:"project_code,omitempty"`
	AccessKey     string            `json:"-"`
}

type EvaluatorEvent struct {
	ID           int64           `json:"id"`
	EventID      int64           `json:"event_id"`
	EvaluatorID  int64           `json:"evaluator_id"`
	Status       EvaluatorStatus `json:"status"`
	RegisteredAt time.Time       `json:"registered_at"`
	AccessKey    string          `json:"-"`
}

type AttendeeEvent struct {
	ID           int64          `json:"id"`
	EventID      int64          `json:"event_id"`
	AttendeeID   int64          `json:"attendee_id"`
	Status       AttendeeStatus `json:"status"`
	RegisteredAt time.Time      `json:"registered_at"`
}
