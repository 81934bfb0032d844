package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/event-soft/eventsoft-backend/internal/audit"
	"github.com/event-soft/eventsoft-backend/internal/inscription"
	"github.com/event-soft/eventsoft-backend/internal/rubric"
)

type Store interface {
	Upsert(ctx context.Context, sc Score) error
	Delete(ctx context.Context, evaluatorID, criterionID, participantID int64) error
	ForParticipant(ctx context.Context, eventID, participantID int64) ([]Score, error)
	ByEvaluator(ctx context.Context, eventID, evaluatorID int64) ([]Score, error)
	ForEvent(ctx context.Context, eventID int64) ([]Score, error)
	CountByCriterion(ctx context.Context, criterionID int64) (int, error)
	DistinctParticipantsScored(ctx context.Context, eventID, evaluatorID int64) (int, error)
}

type CriterionGetter interface {
	Get(ctx context.Context, id int64) (rubric.Criterion, error)
}

type Inscriptions interface {
	Participant(ctx context.Context, eventID, participantID int64) (inscription.ParticipantEvent, error)
	Evaluator(ctx context.Context, eventID, evaluatorID int64) (inscription.EvaluatorEvent, error)
}

type Service struct {
	store    Store
	criteria CriterionGetter
	insc     Inscriptions
	log      *audit.Log
}

func NewService(store Store, criteria CriterionGetter, insc Inscriptions, log *audit.Log) *Service {
	return &Service{store: store, criteria: criteria, insc: insc, log: log}
}

// Put upserts one score. Preconditions: the criterion's event has the
// evaluator Approved and the participant Accepted, and the value is in
// range. The event in question is derived from the criterion; inscription
// lookups in that event are what enforce entity-event coherence.
func (s *Service) Put(ctx context.Context, sc Score) error {
	if sc.Value < 0 || sc.Value > 100 {
		return ErrOutOfRange
	}
	c, err := s.criteria.Get(ctx, sc.CriterionID)
	if err != nil {
		if errors.Is(err, rubric.ErrNotFound) {
			return ErrCrossEventMismatch
		}
		return err
	}
	v, err := s.insc.Evaluator(ctx, c.EventID, sc.EvaluatorID)
	if err != nil {
		if errors.Is(err, inscription.ErrNotFound) {
			return ErrCrossEventMismatch
		}
		return err
	}
	if v.Status != inscription.EvaluatorApproved {
		return ErrEvaluatorNotApproved
	}
	p, err := s.insc.Participant(ctx, c.EventID, sc.ParticipantID)
	if err != nil {
		if errors.Is(err, inscription.ErrNotFound) {
			return ErrCrossEventMismatch
		}
		return err
	}
	if p.Status != inscription.ParticipantAccepted {
		return ErrParticipantNotAccepted
	}

	if err := s.store.Upsert(ctx, sc); err != nil {
		return err
	}
	s.auditScore(ctx, "ScoreUpserted", sc)
	return nil
}

func (s *Service) Delete(ctx context.Context, evaluatorID, criterionID, participantID int64) error {
	if err := s.store.Delete(ctx, evaluatorID, criterionID, participantID); err != nil {
		return err
	}
	s.auditScore(ctx, "ScoreDeleted", Score{
		EvaluatorID: evaluatorID, CriterionID: criterionID, ParticipantID: participantID,
	})
	return nil
}

func (s *Service) ForParticipant(ctx context.Context, eventID, participantID int64) ([]Score, error) {
	return s.store.ForParticipant(ctx, eventID, participantID)
}

func (s *Service) ByEvaluator(ctx context.Context, eventID, evaluatorID int64) ([]Score, error) {
	return s.store.ByEvaluator(ctx, eventID, evaluatorID)
}

func (s *Service) ForEvent(ctx context.Context, eventID int64) ([]Score, error) {
	return s.store.ForEvent(ctx, eventID)
}

func (s *Service) auditScore(ctx context.Context, typ string, sc Score) {
	if s.log == nil {
		return
	}
	data, _ := json.Marshal(sc)
	key := fmt.Sprintf("%d:%d:%d", sc.EvaluatorID, sc.CriterionID, sc.ParticipantID)
	// Best effort; an audit failure must not fail the write.
	_ = s.log.Append(ctx, audit.Entry{Type: typ, Key: key, DataJSON: string(data)})
}
