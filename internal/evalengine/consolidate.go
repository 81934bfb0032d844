// Package evalengine turns raw per-criterion scores into consolidated
// values, podium orderings and agreement statistics. All arithmetic is
// exact rational; rounding happens only when a value leaves the engine
// through a view.
package evalengine

import (
	"math/big"
	"strconv"

	"github.com/event-soft/eventsoft-backend/internal/rubric"
	"github.com/event-soft/eventsoft-backend/internal/scoring"
)

// PerEvaluator computes cons(v,p) for every (participant, evaluator)
// pair with at least one score: the weighted average of the evaluator's
// scores normalized over the weights of the criteria that evaluator
// actually scored. Partial scorings are tolerated; a pair with no
// scores simply has no entry.
func PerEvaluator(criteria []rubric.Criterion, scores []scoring.Score) map[int64]map[int64]*big.Rat {
	weights := make(map[int64]*big.Rat, len(criteria))
	for _, c := range criteria {
		weights[c.ID] = new(big.Rat).SetFloat64(c.Weight)
	}

	type acc struct{ num, den *big.Rat }
	accs := make(map[int64]map[int64]*acc)
	for _, s := range scores {
		w, ok := weights[s.CriterionID]
		if !ok {
			continue
		}
		byEval, ok := accs[s.ParticipantID]
		if !ok {
			byEval = make(map[int64]*acc)
			accs[s.ParticipantID] = byEval
		}
		a, ok := byEval[s.EvaluatorID]
		if !ok {
			a = &acc{num: new(big.Rat), den: new(big.Rat)}
			byEval[s.EvaluatorID] = a
		}
		term := new(big.Rat).Mul(new(big.Rat).SetInt64(int64(s.Value)), w)
		a.num.Add(a.num, term)
		a.den.Add(a.den, w)
	}

	out := make(map[int64]map[int64]*big.Rat, len(accs))
	for pid, byEval := range accs {
		m := make(map[int64]*big.Rat, len(byEval))
		for vid, a := range byEval {
			if a.den.Sign() == 0 {
				continue
			}
			m[vid] = new(big.Rat).Quo(a.num, a.den)
		}
		out[pid] = m
	}
	return out
}

// Cross computes CONS(p): the unweighted mean of cons(v,p) across the
// evaluators who scored p at all.
func Cross(perEval map[int64]map[int64]*big.Rat) map[int64]*big.Rat {
	out := make(map[int64]*big.Rat, len(perEval))
	for pid, byEval := range perEval {
		if len(byEval) == 0 {
			continue
		}
		sum := new(big.Rat)
		for _, v := range byEval {
			sum.Add(sum, v)
		}
		out[pid] = sum.Quo(sum, new(big.Rat).SetInt64(int64(len(byEval))))
	}
	return out
}

// Round2 renders a rational to two decimal places, ties away from zero.
func Round2(r *big.Rat) float64 {
	f, _ := strconv.ParseFloat(r.FloatString(2), 64)
	return f
}
