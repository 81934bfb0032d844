package certs

import (
	"context"
	"testing"

	"github.com/event-soft/eventsoft-backend/internal/event"
	"github.com/event-soft/eventsoft-backend/internal/inscription"
)

type fakeEvents struct{ events map[int64]event.Event }

func (f fakeEvents) Get(_ context.Context, id int64) (event.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	return ev, nil
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

func (f fakeInscriptions) ParticipantsForEvent(_ context.Context, eventID int64) ([]inscription.ParticipantEvent, error) {
	var out []inscription.ParticipantEvent
	for k, p := range f.participants {
		if k[0] == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeInscriptions) EvaluatorsForEvent(_ context.Context, eventID int64) ([]inscription.EvaluatorEvent, error) {
	var out []inscription.EvaluatorEvent
	for k, v := range f.evaluators {
		if k[0] == eventID {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeWork struct{ scored map[int64]int }

func (f fakeWork) DistinctParticipantsScored(_ context.Context, _, vid int64) (int, error) {
	return f.scored[vid], nil
}

func fixtureInscriptions() fakeInscriptions {
	return fakeInscriptions{
		participants: map[[2]int64]inscription.ParticipantEvent{
			{1, 10}: {EventID: 1, ParticipantID: 10, Status: inscription.ParticipantAccepted},
			{1, 11}: {EventID: 1, ParticipantID: 11, Status: inscription.ParticipantRejected},
			{1, 12}: {EventID: 1, ParticipantID: 12, Status: inscription.ParticipantAccepted},
		},
		evaluators: map[[2]int64]inscription.EvaluatorEvent{
			{1, 1}: {EventID: 1, EvaluatorID: 1, Status: inscription.EvaluatorApproved},
			{1, 2}: {EventID: 1, EvaluatorID: 2, Status: inscription.EvaluatorApproved},
			{1, 3}: {EventID: 1, EvaluatorID: 3, Status: inscription.EvaluatorApproved},
			{1, 4}: {EventID: 1, EvaluatorID: 4, Status: inscription.EvaluatorPending},
		},
	}
}

// Event 1 with NMin=5; evaluator 1 scored 10 participants, evaluator 2
// scored 2, evaluator 3 exactly 5.
func eligibilityFixture(state event.State) *Eligibility {
	events := fakeEvents{events: map[int64]event.Event{
		1: {ID: 1, State: state, Policy: event.Policy{NMin: 5, DiscrepancyThreshold: 3.0}},
	}}
	work := fakeWork{scored: map[int64]int{1: 10, 2: 2, 3: 5}}
	return NewEligibility(events, fixtureInscriptions(), work)
}

func TestEvaluatorEligibilityByWorkload(t *testing.T) {
	elig := eligibilityFixture(event.StateFinalized)
	ctx := context.Background()

	cases := []struct {
		evaluator int64
		eligible  bool
		reason    string
	}{
		{1, true, ""},
		{2, false, ReasonWorkIncomplete},
		{3, true, ""}, // exactly NMin counts
	}
	for _, c := range cases {
		res, err := elig.Evaluator(ctx, 1, c.evaluator)
		if err != nil {
			t.Fatal(err)
		}
		if res.Eligible != c.eligible || res.ReasonCode != c.reason {
			t.Fatalf("evaluator %d: got %+v, want eligible=%v reason=%q", c.evaluator, res, c.eligible, c.reason)
		}
	}

	res, _ := elig.Evaluator(ctx, 1, 2)
	if res.Evidence["scored"] != 2 || res.Evidence["required"] != 5 {
		t.Fatalf("evidence = %v, want scored:2 required:5", res.Evidence)
	}
}

func TestEvaluatorEligibilityStatusGuards(t *testing.T) {
	elig := eligibilityFixture(event.StateFinalized)
	ctx := context.Background()

	res, err := elig.Evaluator(ctx, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if res.Eligible || res.ReasonCode != ReasonNotApproved {
		t.Fatalf("pending evaluator: %+v", res)
	}

	res, err = elig.Evaluator(ctx, 1, 99)
	if err != nil {
		t.Fatal(err)
	}
	if res.Eligible || res.ReasonCode != ReasonNotEnrolled {
		t.Fatalf("unknown evaluator: %+v", res)
	}
}

func TestEligibilityRequiresFinalizedEvent(t *testing.T) {
	elig := eligibilityFixture(event.StateActive)
	ctx := context.Background()

	res, err := elig.Participant(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.Eligible || res.ReasonCode != ReasonEventNotFinalized {
		t.Fatalf("active event: %+v", res)
	}
	res, _ = elig.Evaluator(ctx, 1, 1)
	if res.Eligible || res.ReasonCode != ReasonEventNotFinalized {
		t.Fatalf("active event: %+v", res)
	}
}

func TestParticipantEligibility(t *testing.T) {
	elig := eligibilityFixture(event.StateFinalized)
	ctx := context.Background()

	res, err := elig.Participant(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Eligible {
		t.Fatalf("accepted participant: %+v", res)
	}

	res, _ = elig.Participant(ctx, 1, 11)
	if res.Eligible || res.ReasonCode != ReasonNotAccepted {
		t.Fatalf("rejected participant: %+v", res)
	}

	res, _ = elig.Participant(ctx, 1, 99)
	if res.Eligible || res.ReasonCode != ReasonNotEnrolled {
		t.Fatalf("unknown participant: %+v", res)
	}
}
