package evalengine

import (
	"math"
	"math/big"

	"github.com/event-soft/eventsoft-backend/internal/scoring"
)

// CellStats summarizes evaluator agreement on one (participant,
// criterion) cell.
type CellStats struct {
	CriterionID     int64   `json:"criterion_id"`
	Samples         int     `json:"samples"`
	Mean            float64 `json:"mean"`
	Stdev           float64 `json:"stdev"`
	Min             int     `json:"min"`
	ArgMin          int64   `json:"min_eval"`
	Max             int     `json:"max"`
	ArgMax          int64   `json:"max_eval"`
	HighDiscrepancy bool    `json:"high_discrepancy"`
}

// Agreement computes per-cell statistics for every scored (participant,
// criterion) cell. Stdev is the sample standard deviation, reported as
// 0 when a single evaluator scored the cell. A cell is flagged when its
// stdev exceeds theta. Extremes tie-break to the lowest evaluator id so
// repeated runs report the same attribution.
func Agreement(scores []scoring.Score, theta float64) map[int64]map[int64]CellStats {
	type cell struct {
		values []int
		evals  []int64
	}
	cells := make(map[int64]map[int64]*cell)
	for _, s := range scores {
		byCrit, ok := cells[s.ParticipantID]
		if !ok {
			byCrit = make(map[int64]*cell)
			cells[s.ParticipantID] = byCrit
		}
		c, ok := byCrit[s.CriterionID]
		if !ok {
			c = &cell{}
			byCrit[s.CriterionID] = c
		}
		c.values = append(c.values, s.Value)
		c.evals = append(c.evals, s.EvaluatorID)
	}

	out := make(map[int64]map[int64]CellStats, len(cells))
	for pid, byCrit := range cells {
		stats := make(map[int64]CellStats, len(byCrit))
		for cid, c := range byCrit {
			st := CellStats{CriterionID: cid, Samples: len(c.values)}

			sum := new(big.Rat)
			st.Min, st.Max = c.values[0], c.values[0]
			st.ArgMin, st.ArgMax = c.evals[0], c.evals[0]
			for i, v := range c.values {
				sum.Add(sum, new(big.Rat).SetInt64(int64(v)))
				if v < st.Min || (v == st.Min && c.evals[i] < st.ArgMin) {
					st.Min, st.ArgMin = v, c.evals[i]
				}
				if v > st.Max || (v == st.Max && c.evals[i] < st.ArgMax) {
					st.Max, st.ArgMax = v, c.evals[i]
				}
			}
			n := new(big.Rat).SetInt64(int64(len(c.values)))
			mean := new(big.Rat).Quo(sum, n)
			st.Mean = Round2(mean)

			if len(c.values) >= 2 {
				variance := new(big.Rat)
				for _, v := range c.values {
					d := new(big.Rat).Sub(new(big.Rat).SetInt64(int64(v)), mean)
					variance.Add(variance, d.Mul(d, d))
				}
				variance.Quo(variance, new(big.Rat).SetInt64(int64(len(c.values)-1)))
				vf, _ := variance.Float64()
				stdev := math.Sqrt(vf)
				st.Stdev = math.Round(stdev*100) / 100
				st.HighDiscrepancy = stdev > theta
			}
			stats[cid] = st
		}
		out[pid] = stats
	}
	return out
}
