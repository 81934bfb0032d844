package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/event-soft/eventsoft-backend/internal/inscription"
	"github.com/event-soft/eventsoft-backend/internal/rubric"
)

type triple struct{ v, c, p int64 }

type fakeScoreStore struct{ rows map[triple]Score }

func newFakeScoreStore() *fakeScoreStore { return &fakeScoreStore{rows: map[triple]Score{}} }

func (f *fakeScoreStore) Upsert(_ context.Context, sc Score) error {
	sc.UpdatedAt = time.Now().UTC()
	f.rows[triple{sc.EvaluatorID, sc.CriterionID, sc.ParticipantID}] = sc
	return nil
}

func (f *fakeScoreStore) Delete(_ context.Context, v, c, p int64) error {
	k := triple{v, c, p}
	if _, ok := f.rows[k]; !ok {
		return ErrNotFound
	}
	delete(f.rows, k)
	return nil
}

func (f *fakeScoreStore) ForParticipant(_ context.Context, _, p int64) ([]Score, error) {
	var out []Score
	for _, sc := range f.rows {
		if sc.ParticipantID == p {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (f *fakeScoreStore) ByEvaluator(_ context.Context, _, v int64) ([]Score, error) {
	var out []Score
	for _, sc := range f.rows {
		if sc.EvaluatorID == v {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (f *fakeScoreStore) ForEvent(_ context.Context, _ int64) ([]Score, error) {
	var out []Score
	for _, sc := range f.rows {
		out = append(out, sc)
	}
	return out, nil
}

func (f *fakeScoreStore) CountByCriterion(_ context.Context, c int64) (int, error) {
	n := 0
	for _, sc := range f.rows {
		if sc.CriterionID == c {
			n++
		}
	}
	return n, nil
}

func (f *fakeScoreStore) DistinctParticipantsScored(_ context.Context, _, v int64) (int, error) {
	seen := map[int64]bool{}
	for _, sc := range f.rows {
		if sc.EvaluatorID == v {
			seen[sc.ParticipantID] = true
		}
	}
	return len(seen), nil
}

type fakeCriteria struct{ items map[int64]rubric.Criterion }

func (f fakeCriteria) Get(_ context.Context, id int64) (rubric.Criterion, error) {
	c, ok := f.items[id]
	if !ok {
		return rubric.Criterion{}, rubric.ErrNotFound
	}
	return c, nil
}

type fakeInscriptions struct {
	participants map[[2]int64]inscription.ParticipantEvent
	evaluators   map[[2]int64]inscription.EvaluatorEvent
}

func (f fakeInscriptions) Participant(_ context.Context, eventID, pid int64) (inscription.ParticipantEvent, error) {
	p, ok := f.participants[[2]int64{eventID, pid}]
	if !ok {
		return inscription.ParticipantEvent{}, inscription.ErrNotFound
	}
	return p, nil
}

func (f fakeInscriptions) Evaluator(_ context.Context, eventID, vid int64) (inscription.EvaluatorEvent, error) {
	v, ok := f.evaluators[[2]int64{eventID, vid}]
	if !ok {
		return inscription.EvaluatorEvent{}, inscription.ErrNotFound
	}
	return v, nil
}

// Fixture: event 1 has criterion 10, approved evaluator 100, accepted
// participant 200, pending evaluator 101 and preinscribed participant 201.
func newTestService() (*Service, *fakeScoreStore) {
	store := newFakeScoreStore()
	criteria := fakeCriteria{items: map[int64]rubric.Criterion{
		10: {ID: 10, EventID: 1, Description: "Creatividad", Weight: 50},
		20: {ID: 20, EventID: 2, Description: "Otra", Weight: 50},
	}}
	insc := fakeInscriptions{
		participants: map[[2]int64]inscription.ParticipantEvent{
			{1, 200}: {EventID: 1, ParticipantID: 200, Status: inscription.ParticipantAccepted},
			{1, 201}: {EventID: 1, ParticipantID: 201, Status: inscription.ParticipantPreinscribed},
		},
		evaluators: map[[2]int64]inscription.EvaluatorEvent{
			{1, 100}: {EventID: 1, EvaluatorID: 100, Status: inscription.EvaluatorApproved},
			{1, 101}: {EventID: 1, EvaluatorID: 101, Status: inscription.EvaluatorPending},
		},
	}
	return NewService(store, criteria, insc, nil), store
}

func TestPutRangeValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, v := range []int{-1, 101} {
		err := svc.Put(ctx, Score{EvaluatorID: 100, CriterionID: 10, ParticipantID: 200, Value: v})
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("value %d: got %v, want ErrOutOfRange", v, err)
		}
	}
	for _, v := range []int{0, 100} {
		err := svc.Put(ctx, Score{EvaluatorID: 100, CriterionID: 10, ParticipantID: 200, Value: v})
		if err != nil {
			t.Fatalf("boundary value %d rejected: %v", v, err)
		}
	}
}

func TestPutStatusGuards(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	err := svc.Put(ctx, Score{EvaluatorID: 101, CriterionID: 10, ParticipantID: 200, Value: 80})
	if !errors.Is(err, ErrEvaluatorNotApproved) {
		t.Fatalf("pending evaluator: got %v, want ErrEvaluatorNotApproved", err)
	}

	err = svc.Put(ctx, Score{EvaluatorID: 100, CriterionID: 10, ParticipantID: 201, Value: 80})
	if !errors.Is(err, ErrParticipantNotAccepted) {
		t.Fatalf("preinscribed participant: got %v, want ErrParticipantNotAccepted", err)
	}
}

func TestPutCrossEventMismatch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Criterion 20 lives in event 2 where neither subject is inscribed.
	err := svc.Put(ctx, Score{EvaluatorID: 100, CriterionID: 20, ParticipantID: 200, Value: 80})
	if !errors.Is(err, ErrCrossEventMismatch) {
		t.Fatalf("got %v, want ErrCrossEventMismatch", err)
	}

	err = svc.Put(ctx, Score{EvaluatorID: 100, CriterionID: 99, ParticipantID: 200, Value: 80})
	if !errors.Is(err, ErrCrossEventMismatch) {
		t.Fatalf("unknown criterion: got %v, want ErrCrossEventMismatch", err)
	}
}

func TestUpsertIdempotence(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	put := func(v int) {
		t.Helper()
		if err := svc.Put(ctx, Score{EvaluatorID: 100, CriterionID: 10, ParticipantID: 200, Value: v}); err != nil {
			t.Fatal(err)
		}
	}
	put(80)
	put(85)
	put(85)

	if len(store.rows) != 1 {
		t.Fatalf("rows = %d, want exactly 1", len(store.rows))
	}
	got := store.rows[triple{100, 10, 200}]
	if got.Value != 85 {
		t.Fatalf("value = %d, want 85 (last write wins)", got.Value)
	}
}

func TestDeleteMissingScore(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.Delete(context.Background(), 100, 10, 200); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
