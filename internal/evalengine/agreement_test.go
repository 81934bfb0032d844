package evalengine

import (
	"testing"

	"github.com/event-soft/eventsoft-backend/internal/scoring"
)

// Three evaluators (Alfa=1, Beta=2, Gamma=3) score one participant on
// Originalidad(1), Viabilidad(2), Impacto(3).
func agreementFixture() []scoring.Score {
	rows := []struct {
		eval   int64
		values [3]int
	}{
		{1, [3]int{25, 65, 28}},
		{2, [3]int{30, 50, 32}},
		{3, [3]int{28, 60, 30}},
	}
	var scores []scoring.Score
	for _, r := range rows {
		for i, v := range r.values {
			scores = append(scores, scoring.Score{
				EvaluatorID: r.eval, CriterionID: int64(i + 1), ParticipantID: 10, Value: v,
			})
		}
	}
	return scores
}

func TestAgreementMeans(t *testing.T) {
	cells := Agreement(agreementFixture(), 3.0)[10]

	if got := cells[1].Mean; got != 27.67 {
		t.Fatalf("mean(Originalidad) = %v, want 27.67", got)
	}
	if got := cells[2].Mean; got != 58.33 {
		t.Fatalf("mean(Viabilidad) = %v, want 58.33", got)
	}
	if got := cells[3].Mean; got != 30 {
		t.Fatalf("mean(Impacto) = %v, want 30", got)
	}
}

func TestAgreementDiscrepancyFlag(t *testing.T) {
	cells := Agreement(agreementFixture(), 3.0)[10]

	viab := cells[2]
	if viab.Stdev != 7.64 {
		t.Fatalf("stdev(Viabilidad) = %v, want 7.64", viab.Stdev)
	}
	if !viab.HighDiscrepancy {
		t.Fatal("Viabilidad should be flagged at theta=3.0")
	}
	// Originalidad (25,30,28) has stdev 2.52 and stays under the default
	// threshold.
	if cells[1].HighDiscrepancy {
		t.Fatalf("Originalidad flagged with stdev %v", cells[1].Stdev)
	}
}

func TestAgreementExtremes(t *testing.T) {
	cells := Agreement(agreementFixture(), 3.0)[10]

	orig := cells[1]
	if orig.Min != 25 || orig.ArgMin != 1 {
		t.Fatalf("argmin(Originalidad) = eval %d (min %d), want eval 1 (25)", orig.ArgMin, orig.Min)
	}
	if orig.Max != 30 || orig.ArgMax != 2 {
		t.Fatalf("argmax(Originalidad) = eval %d (max %d), want eval 2 (30)", orig.ArgMax, orig.Max)
	}
}

func TestAgreementExtremeTieGoesToLowestEvaluator(t *testing.T) {
	scores := []scoring.Score{
		{EvaluatorID: 3, CriterionID: 1, ParticipantID: 10, Value: 40},
		{EvaluatorID: 2, CriterionID: 1, ParticipantID: 10, Value: 40},
		{EvaluatorID: 5, CriterionID: 1, ParticipantID: 10, Value: 40},
	}
	cell := Agreement(scores, 3.0)[10][1]
	if cell.ArgMin != 2 || cell.ArgMax != 2 {
		t.Fatalf("tied extremes: argmin=%d argmax=%d, want 2", cell.ArgMin, cell.ArgMax)
	}
}

func TestAgreementSingleEvaluator(t *testing.T) {
	scores := []scoring.Score{{EvaluatorID: 1, CriterionID: 1, ParticipantID: 10, Value: 77}}
	cell := Agreement(scores, 3.0)[10][1]
	if cell.Stdev != 0 {
		t.Fatalf("stdev with one sample = %v, want 0", cell.Stdev)
	}
	if cell.HighDiscrepancy {
		t.Fatal("single sample must not be flagged")
	}
	if cell.Mean != 77 || cell.Min != 77 || cell.Max != 77 {
		t.Fatalf("degenerate cell = %+v", cell)
	}
}
