package evalengine

import (
	"context"

	"github.com/event-soft/eventsoft-backend/internal/event"
	"github.com/event-soft/eventsoft-backend/internal/inscription"
	"github.com/event-soft/eventsoft-backend/internal/rubric"
	"github.com/event-soft/eventsoft-backend/internal/scoring"
	"github.com/event-soft/eventsoft-backend/internal/user"
)

type EventGetter interface {
	Get(ctx context.Context, id int64) (event.Event, error)
}

type CriteriaLister interface {
	ListByEvent(ctx context.Context, eventID int64) ([]rubric.Criterion, error)
}

type ScoreLister interface {
	ForEvent(ctx context.Context, eventID int64) ([]scoring.Score, error)
	ForParticipant(ctx context.Context, eventID, participantID int64) ([]scoring.Score, error)
}

type ParticipantLister interface {
	Participant(ctx context.Context, eventID, participantID int64) (inscription.ParticipantEvent, error)
	ParticipantsForEvent(ctx context.Context, eventID int64) ([]inscription.ParticipantEvent, error)
}

type Directory interface {
	Directory(ctx context.Context, ids []int64) (map[int64]user.Profile, error)
}

// Views recomputes every read-model from the store on each call. No
// caching across requests; the podium always reflects the latest
// committed scores.
type Views struct {
	events   EventGetter
	criteria CriteriaLister
	scores   ScoreLister
	insc     ParticipantLister
	users    Directory
}

func NewViews(events EventGetter, criteria CriteriaLister, scores ScoreLister, insc ParticipantLister, users Directory) *Views {
	return &Views{events: events, criteria: criteria, scores: scores, insc: insc, users: users}
}

func (v *Views) Podium(ctx context.Context, eventID int64) ([]PodiumRow, error) {
	if _, err := v.events.Get(ctx, eventID); err != nil {
		return nil, err
	}
	criteria, err := v.criteria.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	scores, err := v.scores.ForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	participants, err := v.insc.ParticipantsForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ParticipantID)
	}
	profiles, err := v.users.Directory(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(profiles))
	for id, p := range profiles {
		names[id] = p.FullName
	}

	perEval := PerEvaluator(criteria, scores)
	return Rank(participants, Cross(perEval), perEval, names), nil
}

// DetailView breaks one participant's result down by criterion and by
// evaluator.
type DetailView struct {
	ParticipantID int64             `json:"participant_id"`
	DisplayName   string            `json:"display_name"`
	PerCriterion  []CriterionDetail `json:"per_criterion"`
	PerEvaluator  []EvaluatorDetail `json:"per_evaluator"`
	CrossCons     *float64          `json:"cross_cons"`
}

type CriterionDetail struct {
	CriterionID     int64   `json:"criterion_id"`
	Description     string  `json:"description"`
	Mean            float64 `json:"mean"`
	Stdev           float64 `json:"stdev"`
	Min             int     `json:"min"`
	MinEvaluator    int64   `json:"min_eval"`
	Max             int     `json:"max"`
	MaxEvaluator    int64   `json:"max_eval"`
	HighDiscrepancy bool    `json:"high_discrepancy"`
}

type EvaluatorDetail struct {
	EvaluatorID       int64         `json:"evaluator_id"`
	DisplayName       string        `json:"display_name"`
	ScoresByCriterion map[int64]int `json:"scores_by_criterion"`
	Cons              float64       `json:"cons"`
}

func (v *Views) Detail(ctx context.Context, eventID, participantID int64) (DetailView, error) {
	ev, err := v.events.Get(ctx, eventID)
	if err != nil {
		return DetailView{}, err
	}
	if _, err := v.insc.Participant(ctx, eventID, participantID); err != nil {
		return DetailView{}, err
	}
	criteria, err := v.criteria.ListByEvent(ctx, eventID)
	if err != nil {
		return DetailView{}, err
	}
	scores, err := v.scores.ForParticipant(ctx, eventID, participantID)
	if err != nil {
		return DetailView{}, err
	}

	ids := []int64{participantID}
	seen := map[int64]bool{}
	for _, s := range scores {
		if !seen[s.EvaluatorID] {
			seen[s.EvaluatorID] = true
			ids = append(ids, s.EvaluatorID)
		}
	}
	profiles, err := v.users.Directory(ctx, ids)
	if err != nil {
		return DetailView{}, err
	}

	out := DetailView{
		ParticipantID: participantID,
		DisplayName:   profiles[participantID].FullName,
	}

	descs := make(map[int64]string, len(criteria))
	for _, c := range criteria {
		descs[c.ID] = c.Description
	}
	cells := Agreement(scores, ev.Policy.DiscrepancyThreshold)[participantID]
	for _, c := range criteria {
		st, ok := cells[c.ID]
		if !ok {
			continue
		}
		out.PerCriterion = append(out.PerCriterion, CriterionDetail{
			CriterionID:     c.ID,
			Description:     descs[c.ID],
			Mean:            st.Mean,
			Stdev:           st.Stdev,
			Min:             st.Min,
			MinEvaluator:    st.ArgMin,
			Max:             st.Max,
			MaxEvaluator:    st.ArgMax,
			HighDiscrepancy: st.HighDiscrepancy,
		})
	}

	perEval := PerEvaluator(criteria, scores)
	byEval := perEval[participantID]
	for _, vid := range ids[1:] {
		cons, ok := byEval[vid]
		if !ok {
			continue
		}
		detail := EvaluatorDetail{
			EvaluatorID:       vid,
			DisplayName:       profiles[vid].FullName,
			ScoresByCriterion: make(map[int64]int),
			Cons:              Round2(cons),
		}
		for _, s := range scores {
			if s.EvaluatorID == vid {
				detail.ScoresByCriterion[s.CriterionID] = s.Value
			}
		}
		out.PerEvaluator = append(out.PerEvaluator, detail)
	}

	if cross, ok := Cross(perEval)[participantID]; ok {
		val := Round2(cross)
		out.CrossCons = &val
	}
	return out, nil
}
