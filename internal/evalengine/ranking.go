package evalengine

import (
	"math/big"
	"sort"
	"time"

	"github.com/event-soft/eventsoft-backend/internal/inscription"
)

// PodiumRow is one ranked entry. ConsScore is nil for participants no
// evaluator has scored yet; those rows sit at the tail ordered only by
// the tie-break fields.
type PodiumRow struct {
	Position          int       `json:"position"`
	TieGroupID        int       `json:"tie_group_id"`
	ParticipantID     int64     `json:"participant_id"`
	DisplayName       string    `json:"display_name"`
	ConsScore         *float64  `json:"cons_score"`
	TiebreakTimestamp time.Time `json:"tiebreak_timestamp"`
	EvaluatorCount    int       `json:"evaluator_count"`
}

// Rank orders the Accepted participants of an event. Group members are
// skipped; scoring is recorded against the leader inscription, so only
// leaders and individuals are scoreable units. Order is CONS descending,
// then submission time ascending, then participant id ascending.
// Positions are dense consecutive integers from 1; tie_group_id groups
// rows that share the exact consolidated value.
func Rank(participants []inscription.ParticipantEvent, cross map[int64]*big.Rat, perEval map[int64]map[int64]*big.Rat, names map[int64]string) []PodiumRow {
	type entry struct {
		p    inscription.ParticipantEvent
		cons *big.Rat
	}
	var scored, unscored []entry
	for _, p := range participants {
		if p.Status != inscription.ParticipantAccepted {
			continue
		}
		if p.LeaderID != nil {
			continue
		}
		if c, ok := cross[p.ParticipantID]; ok {
			scored = append(scored, entry{p: p, cons: c})
		} else {
			unscored = append(unscored, entry{p: p})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if c := scored[i].cons.Cmp(scored[j].cons); c != 0 {
			return c > 0
		}
		if !scored[i].p.SubmittedAt.Equal(scored[j].p.SubmittedAt) {
			return scored[i].p.SubmittedAt.Before(scored[j].p.SubmittedAt)
		}
		return scored[i].p.ParticipantID < scored[j].p.ParticipantID
	})
	sort.Slice(unscored, func(i, j int) bool {
		if !unscored[i].p.SubmittedAt.Equal(unscored[j].p.SubmittedAt) {
			return unscored[i].p.SubmittedAt.Before(unscored[j].p.SubmittedAt)
		}
		return unscored[i].p.ParticipantID < unscored[j].p.ParticipantID
	})

	rows := make([]PodiumRow, 0, len(scored)+len(unscored))
	tieGroup := 0
	var prev *big.Rat
	for i, e := range scored {
		if prev == nil || e.cons.Cmp(prev) != 0 {
			tieGroup++
			prev = e.cons
		}
		v := Round2(e.cons)
		rows = append(rows, PodiumRow{
			Position:          i + 1,
			TieGroupID:        tieGroup,
			ParticipantID:     e.p.ParticipantID,
			DisplayName:       names[e.p.ParticipantID],
			ConsScore:         &v,
			TiebreakTimestamp: e.p.SubmittedAt,
			EvaluatorCount:    len(perEval[e.p.ParticipantID]),
		})
	}
	if len(unscored) > 0 {
		tieGroup++
	}
	for i, e := range unscored {
		rows = append(rows, PodiumRow{
			Position:          len(scored) + i + 1,
			TieGroupID:        tieGroup,
			ParticipantID:     e.p.ParticipantID,
			DisplayName:       names[e.p.ParticipantID],
			TiebreakTimestamp: e.p.SubmittedAt,
		})
	}
	return rows
}
