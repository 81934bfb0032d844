package evalengine

import (
	"math/big"
	"testing"

	"github.com/event-soft/eventsoft-backend/internal/rubric"
	"github.com/event-soft/eventsoft-backend/internal/scoring"
)

func ratFrom(num, den int64) *big.Rat { return big.NewRat(num, den) }

func TestPerEvaluatorFullRubric(t *testing.T) {
	criteria := []rubric.Criterion{
		{ID: 1, EventID: 1, Description: "Creatividad", Weight: 50},
		{ID: 2, EventID: 1, Description: "Ejecucion", Weight: 50},
	}
	scores := []scoring.Score{
		{EvaluatorID: 1, CriterionID: 1, ParticipantID: 10, Value: 90},
		{EvaluatorID: 1, CriterionID: 2, ParticipantID: 10, Value: 70},
	}
	per := PerEvaluator(criteria, scores)
	cons, ok := per[10][1]
	if !ok {
		t.Fatal("no consolidated value for participant 10 / evaluator 1")
	}
	if got := Round2(cons); got != 80 {
		t.Fatalf("cons = %v, want 80", got)
	}
}

func TestPerEvaluatorNormalizesOverScoredSubset(t *testing.T) {
	criteria := []rubric.Criterion{
		{ID: 1, EventID: 1, Weight: 30},
		{ID: 2, EventID: 1, Weight: 40},
		{ID: 3, EventID: 1, Weight: 30},
	}
	// Criterion 3 unscored: weights renormalize over {30, 40}.
	scores := []scoring.Score{
		{EvaluatorID: 1, CriterionID: 1, ParticipantID: 10, Value: 80},
		{EvaluatorID: 1, CriterionID: 2, ParticipantID: 10, Value: 60},
	}
	per := PerEvaluator(criteria, scores)
	// (80*30 + 60*40) / 70 = 4800/70
	if got := Round2(per[10][1]); got != 68.57 {
		t.Fatalf("cons over subset = %v, want 68.57", got)
	}
}

func TestPerEvaluatorUnscoredPairAbsent(t *testing.T) {
	criteria := []rubric.Criterion{{ID: 1, EventID: 1, Weight: 50}}
	per := PerEvaluator(criteria, nil)
	if len(per) != 0 {
		t.Fatalf("expected no entries, got %v", per)
	}
}

func TestCrossIsUnweightedMean(t *testing.T) {
	criteria := []rubric.Criterion{
		{ID: 1, EventID: 1, Weight: 60},
		{ID: 2, EventID: 1, Weight: 40},
	}
	// Evaluator 1 scores both criteria, evaluator 2 only one. Both count
	// equally in the cross mean.
	scores := []scoring.Score{
		{EvaluatorID: 1, CriterionID: 1, ParticipantID: 10, Value: 90},
		{EvaluatorID: 1, CriterionID: 2, ParticipantID: 10, Value: 90},
		{EvaluatorID: 2, CriterionID: 1, ParticipantID: 10, Value: 60},
	}
	cross := Cross(PerEvaluator(criteria, scores))
	// cons(1)=90, cons(2)=60, mean=75
	if got := Round2(cross[10]); got != 75 {
		t.Fatalf("CONS = %v, want 75", got)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		num, den int64
		want     float64
	}{
		{83, 3, 27.67},  // 27.666...
		{175, 3, 58.33}, // 58.333...
		{1, 8, 0.13},    // 0.125 rounds away from zero
		{90, 1, 90},
	}
	for _, c := range cases {
		r := ratFrom(c.num, c.den)
		if got := Round2(r); got != c.want {
			t.Fatalf("Round2(%d/%d) = %v, want %v", c.num, c.den, got, c.want)
		}
	}
}
