package evalengine

import (
	"context"
	"errors"
	"testing"

	"github.com/event-soft/eventsoft-backend/internal/event"
	"github.com/event-soft/eventsoft-backend/internal/inscription"
	"github.com/event-soft/eventsoft-backend/internal/rubric"
	"github.com/event-soft/eventsoft-backend/internal/scoring"
	"github.com/event-soft/eventsoft-backend/internal/user"
)

type fakeBackend struct {
	event        event.Event
	criteria     []rubric.Criterion
	scores       []scoring.Score
	participants []inscription.ParticipantEvent
	profiles     map[int64]user.Profile
}

func (f *fakeBackend) Get(_ context.Context, id int64) (event.Event, error) {
	if id != f.event.ID {
		return event.Event{}, event.ErrNotFound
	}
	return f.event, nil
}

func (f *fakeBackend) ListByEvent(_ context.Context, _ int64) ([]rubric.Criterion, error) {
	return f.criteria, nil
}

func (f *fakeBackend) ForEvent(_ context.Context, _ int64) ([]scoring.Score, error) {
	return f.scores, nil
}

func (f *fakeBackend) ForParticipant(_ context.Context, _, pid int64) ([]scoring.Score, error) {
	var out []scoring.Score
	for _, s := range f.scores {
		if s.ParticipantID == pid {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeBackend) Participant(_ context.Context, _, pid int64) (inscription.ParticipantEvent, error) {
	for _, p := range f.participants {
		if p.ParticipantID == pid {
			return p, nil
		}
	}
	return inscription.ParticipantEvent{}, inscription.ErrNotFound
}

func (f *fakeBackend) ParticipantsForEvent(_ context.Context, _ int64) ([]inscription.ParticipantEvent, error) {
	return f.participants, nil
}

func (f *fakeBackend) Directory(_ context.Context, ids []int64) (map[int64]user.Profile, error) {
	out := map[int64]user.Profile{}
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func newTestViews() *Views {
	b := &fakeBackend{
		event: event.Event{ID: 1, Name: "Feria", State: event.StateActive,
			Policy: event.Policy{NMin: 5, DiscrepancyThreshold: 3.0}},
		criteria: []rubric.Criterion{
			{ID: 1, EventID: 1, Description: "Originalidad", Weight: 30},
			{ID: 2, EventID: 1, Description: "Viabilidad", Weight: 40},
			{ID: 3, EventID: 1, Description: "Impacto", Weight: 30},
		},
		scores: agreementFixture(),
		participants: []inscription.ParticipantEvent{
			{EventID: 1, ParticipantID: 10, Status: inscription.ParticipantAccepted, SubmittedAt: ts(9, 0)},
		},
		profiles: map[int64]user.Profile{
			10: {FullName: "Juan Perez", Email: "juan@example.com"},
			1:  {FullName: "Alfa"},
			2:  {FullName: "Beta"},
			3:  {FullName: "Gamma"},
		},
	}
	return NewViews(b, b, b, b, b)
}

func TestViewsPodium(t *testing.T) {
	rows, err := newTestViews().Podium(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.DisplayName != "Juan Perez" || r.Position != 1 || r.EvaluatorCount != 3 {
		t.Fatalf("row = %+v", r)
	}
	// Evaluator consolidations: Alfa (25*30+65*40+28*30)/100 = 41.9,
	// Beta 38.6, Gamma 41.4. Cross mean 121.9/3 = 40.63.
	if r.ConsScore == nil || *r.ConsScore != 40.63 {
		t.Fatalf("cons = %v, want 40.63", r.ConsScore)
	}
}

func TestViewsPodiumUnknownEvent(t *testing.T) {
	if _, err := newTestViews().Podium(context.Background(), 99); !errors.Is(err, event.ErrNotFound) {
		t.Fatalf("got %v, want event.ErrNotFound", err)
	}
}

func TestViewsDetail(t *testing.T) {
	d, err := newTestViews().Detail(context.Background(), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if d.DisplayName != "Juan Perez" {
		t.Fatalf("display name = %q", d.DisplayName)
	}
	if len(d.PerCriterion) != 3 || len(d.PerEvaluator) != 3 {
		t.Fatalf("per_criterion=%d per_evaluator=%d, want 3/3", len(d.PerCriterion), len(d.PerEvaluator))
	}
	var viab *CriterionDetail
	for i := range d.PerCriterion {
		if d.PerCriterion[i].Description == "Viabilidad" {
			viab = &d.PerCriterion[i]
		}
	}
	if viab == nil || !viab.HighDiscrepancy || viab.Mean != 58.33 {
		t.Fatalf("viabilidad cell = %+v", viab)
	}
	if d.CrossCons == nil || *d.CrossCons != 40.63 {
		t.Fatalf("cross_cons = %v", d.CrossCons)
	}
	for _, ev := range d.PerEvaluator {
		if len(ev.ScoresByCriterion) != 3 {
			t.Fatalf("evaluator %d scores = %v", ev.EvaluatorID, ev.ScoresByCriterion)
		}
	}
}
