package scoring

import (
	"context"
	"database/sql"
	"time"
)

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Upsert relies on the UNIQUE(evaluator_id,criterion_id,participant_id)
// constraint: a second write to the same triple overwrites the value.
func (s *SQLStore) Upsert(ctx context.Context, sc Score) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (evaluator_id,criterion_id,participant_id,value,updated_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (evaluator_id,criterion_id,participant_id)
		 DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`,
		sc.EvaluatorID, sc.CriterionID, sc.ParticipantID, sc.Value, time.Now().Unix())
	return err
}

func (s *SQLStore) Delete(ctx context.Context, evaluatorID, criterionID, participantID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM scores WHERE evaluator_id=$1 AND criterion_id=$2 AND participant_id=$3`,
		evaluatorID, criterionID, participantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const scoreCols = `s.evaluator_id, s.criterion_id, s.participant_id, s.value, s.updated_at`

func (s *SQLStore) ForParticipant(ctx context.Context, eventID, participantID int64) ([]Score, error) {
	return s.query(ctx,
		`SELECT `+scoreCols+` FROM scores s
		 JOIN criteria c ON c.id = s.criterion_id
		 WHERE c.event_id=$1 AND s.participant_id=$2
		 ORDER BY s.criterion_id, s.evaluator_id`, eventID, participantID)
}

func (s *SQLStore) ByEvaluator(ctx context.Context, eventID, evaluatorID int64) ([]Score, error) {
	return s.query(ctx,
		`SELECT `+scoreCols+` FROM scores s
		 JOIN criteria c ON c.id = s.criterion_id
		 WHERE c.event_id=$1 AND s.evaluator_id=$2
		 ORDER BY s.participant_id, s.criterion_id`, eventID, evaluatorID)
}

func (s *SQLStore) ForEvent(ctx context.Context, eventID int64) ([]Score, error) {
	return s.query(ctx,
		`SELECT `+scoreCols+` FROM scores s
		 JOIN criteria c ON c.id = s.criterion_id
		 WHERE c.event_id=$1
		 ORDER BY s.participant_id, s.criterion_id, s.evaluator_id`, eventID)
}

func (s *SQLStore) CountByCriterion(ctx context.Context, criterionID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scores WHERE criterion_id=$1`, criterionID).Scan(&n)
	return n, err
}

// DistinctParticipantsScored feeds evaluator-certificate eligibility.
func (s *SQLStore) DistinctParticipantsScored(ctx context.Context, eventID, evaluatorID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT s.participant_id) FROM scores s
		 JOIN criteria c ON c.id = s.criterion_id
		 WHERE c.event_id=$1 AND s.evaluator_id=$2`, eventID, evaluatorID).Scan(&n)
	return n, err
}

func (s *SQLStore) query(ctx context.Context, q string, args ...any) ([]Score, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Score
	for rows.Next() {
		var sc Score
		var upd int64
		if err := rows.Scan(&sc.EvaluatorID, &sc.CriterionID, &sc.ParticipantID, &sc.Value, &upd); err != nil {
			return nil, err
		}
		sc.UpdatedAt = time.Unix(upd, 0).UTC()
		out = append(out, sc)
	}
	return out, rows.Err()
}
