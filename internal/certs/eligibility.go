// Package certs decides who may receive a certificate and turns the
// eligible set into deterministic manifests for delivery.
package certs

import (
	"context"
	"errors"

	"github.com/event-soft/eventsoft-backend/internal/event"
	"github.com/event-soft/eventsoft-backend/internal/inscription"
)

// Reason codes for ineligibility. Eligibility is data, never an error:
// callers batch-check many subjects and need per-subject answers.
const (
	ReasonEventNotFinalized = "EventNotFinalized"
	ReasonWorkIncomplete    = "WorkIncomplete"
	ReasonNotEnrolled       = "NotEnrolled"
	ReasonNotAccepted       = "NotAccepted"
	ReasonNotApproved       = "NotApproved"
)

type Result struct {
	Eligible   bool           `json:"eligible"`
	ReasonCode string         `json:"reason_code,omitempty"`
	Evidence   map[string]any `json:"evidence,omitempty"`
}

type EventGetter interface {
	Get(ctx context.Context, id int64) (event.Event, error)
}

type Inscriptions interface {
	Participant(ctx context.Context, eventID, participantID int64) (inscription.ParticipantEvent, error)
	Evaluator(ctx context.Context, eventID, evaluatorID int64) (inscription.EvaluatorEvent, error)
}

type WorkCounter interface {
	DistinctParticipantsScored(ctx context.Context, eventID, evaluatorID int64) (int, error)
}

type Eligibility struct {
	events EventGetter
	insc   Inscriptions
	work   WorkCounter
}

func NewEligibility(events EventGetter, insc Inscriptions, work WorkCounter) *Eligibility {
	return &Eligibility{events: events, insc: insc, work: work}
}

// Participant: event Finalized and the subject Accepted in it.
func (e *Eligibility) Participant(ctx context.Context, eventID, participantID int64) (Result, error) {
	ev, err := e.events.Get(ctx, eventID)
	if err != nil {
		return Result{}, err
	}
	if ev.State != event.StateFinalized {
		return Result{ReasonCode: ReasonEventNotFinalized, Evidence: map[string]any{"state": ev.State}}, nil
	}
	p, err := e.insc.Participant(ctx, eventID, participantID)
	if err != nil {
		if errors.Is(err, inscription.ErrNotFound) {
			return Result{ReasonCode: ReasonNotEnrolled}, nil
		}
		return Result{}, err
	}
	if p.Status != inscription.ParticipantAccepted {
		return Result{ReasonCode: ReasonNotAccepted, Evidence: map[string]any{"status": p.Status}}, nil
	}
	return Result{Eligible: true}, nil
}

// Evaluator: event Finalized, subject Approved, and at least NMin
// distinct participants scored. The evidence always carries the counter
// pair so callers can show progress.
func (e *Eligibility) Evaluator(ctx context.Context, eventID, evaluatorID int64) (Result, error) {
	ev, err := e.events.Get(ctx, eventID)
	if err != nil {
		return Result{}, err
	}
	if ev.State != event.StateFinalized {
		return Result{ReasonCode: ReasonEventNotFinalized, Evidence: map[string]any{"state": ev.State}}, nil
	}
	v, err := e.insc.Evaluator(ctx, eventID, evaluatorID)
	if err != nil {
		if errors.Is(err, inscription.ErrNotFound) {
			return Result{ReasonCode: ReasonNotEnrolled}, nil
		}
		return Result{}, err
	}
	if v.Status != inscription.EvaluatorApproved {
		return Result{ReasonCode: ReasonNotApproved, Evidence: map[string]any{"status": v.Status}}, nil
	}
	scored, err := e.work.DistinctParticipantsScored(ctx, eventID, evaluatorID)
	if err != nil {
		return Result{}, err
	}
	evidence := map[string]any{"scored": scored, "required": ev.Policy.NMin}
	if scored < ev.Policy.NMin {
		return Result{ReasonCode: ReasonWorkIncomplete, Evidence: evidence}, nil
	}
	return Result{Eligible: true, Evidence: evidence}, nil
}

// Award: event Finalized and an explicitly named awardee present in the
// ranking; awardees are never auto-selected. Position verification
// happens in the manifest builder, which holds the computed podium.
func (e *Eligibility) Award(ctx context.Context, eventID, participantID int64) (Result, error) {
	ev, err := e.events.Get(ctx, eventID)
	if err != nil {
		return Result{}, err
	}
	if ev.State != event.StateFinalized {
		return Result{ReasonCode: ReasonEventNotFinalized, Evidence: map[string]any{"state": ev.State}}, nil
	}
	p, err := e.insc.Participant(ctx, eventID, participantID)
	if err != nil {
		if errors.Is(err, inscription.ErrNotFound) {
			return Result{ReasonCode: ReasonNotEnrolled}, nil
		}
		return Result{}, err
	}
	if p.Status != inscription.ParticipantAccepted {
		return Result{ReasonCode: ReasonNotAccepted, Evidence: map[string]any{"status": p.Status}}, nil
	}
	return Result{Eligible: true}, nil
}
