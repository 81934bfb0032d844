package rubric

import (
	"context"
	"strings"

	"github.com/event-soft/eventsoft-backend/internal/event"
)

type Store interface {
	Insert(ctx context.Context, c Criterion) (int64, error)
	Get(ctx context.Context, id int64) (Criterion, error)
	Update(ctx context.Context, c Criterion) error
	Delete(ctx context.Context, id int64) error
	ListByEvent(ctx context.Context, eventID int64) ([]Criterion, error)
	WeightSum(ctx context.Context, eventID int64) (float64, error)
}

// EventStates is the slice of the event store the registry needs.
type EventStates interface {
	Get(ctx context.Context, id int64) (event.Event, error)
}

// ScoreCounter reports how many scores reference a criterion; implemented
// by the scoring store.
type ScoreCounter interface {
	CountByCriterion(ctx context.Context, criterionID int64) (int, error)
}

type Service struct {
	store  Store
	events EventStates
	scores ScoreCounter
}

func NewService(store Store, events EventStates, scores ScoreCounter) *Service {
	return &Service{store: store, events: events, scores: scores}
}

func (s *Service) Create(ctx context.Context, eventID int64, description string, weight float64) (int64, error) {
	if weight <= 0 || weight > 100 {
		return 0, ErrInvalidWeight
	}
	if strings.TrimSpace(description) == "" {
		return 0, ErrEmptyDescription
	}
	e, err := s.events.Get(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if !e.State.Mutable() {
		return 0, ErrEventNotMutable
	}
	return s.store.Insert(ctx, Criterion{EventID: eventID, Description: description, Weight: weight})
}

type UpdateInput struct {
	Description *string
	Weight      *float64
	Force       bool
}

// Update edits a criterion. Description edits are always allowed while the
// event is mutable. Weight edits are refused once scores reference the
// criterion unless Force is set, in which case the change is applied and a
// warning is returned.
func (s *Service) Update(ctx context.Context, criterionID int64, in UpdateInput) (Criterion, []string, error) {
	c, err := s.store.Get(ctx, criterionID)
	if err != nil {
		return Criterion{}, nil, err
	}
	e, err := s.events.Get(ctx, c.EventID)
	if err != nil {
		return Criterion{}, nil, err
	}
	if !e.State.Mutable() {
		return Criterion{}, nil, ErrEventNotMutable
	}

	var warnings []string
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return Criterion{}, nil, ErrEmptyDescription
		}
		c.Description = *in.Description
	}
	if in.Weight != nil {
		w := *in.Weight
		if w <= 0 || w > 100 {
			return Criterion{}, nil, ErrInvalidWeight
		}
		if w != c.Weight {
			n, err := s.scores.CountByCriterion(ctx, criterionID)
			if err != nil {
				return Criterion{}, nil, err
			}
			if n > 0 {
				if !in.Force {
					return Criterion{}, nil, ErrCriterionInUse
				}
				warnings = append(warnings, WarnExistingScoresMayBeInvalidated)
			}
			c.Weight = w
		}
	}

	if err := s.store.Update(ctx, c); err != nil {
		return Criterion{}, nil, err
	}
	return c, warnings, nil
}

// Delete removes an unused criterion. A criterion with scores cannot be
// deleted, force or not.
func (s *Service) Delete(ctx context.Context, criterionID int64) error {
	c, err := s.store.Get(ctx, criterionID)
	if err != nil {
		return err
	}
	n, err := s.scores.CountByCriterion(ctx, c.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCriterionInUse
	}
	return s.store.Delete(ctx, c.ID)
}

func (s *Service) List(ctx context.Context, eventID int64) ([]Criterion, error) {
	return s.store.ListByEvent(ctx, eventID)
}

// WeightSum lets callers validate rubric closure (sum == 100). The
// registry itself never enforces the sum; consolidation normalizes.
func (s *Service) WeightSum(ctx context.Context, eventID int64) (float64, error) {
	return s.store.WeightSum(ctx, eventID)
}
