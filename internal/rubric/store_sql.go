package rubric

import (
	"context"
	"database/sql"
	"errors"
)

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Insert(ctx context.Context, c Criterion) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO criteria (event_id,description,weight) VALUES ($1,$2,$3) RETURNING id`,
		c.EventID, c.Description, c.Weight).Scan(&id)
	return id, err
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Criterion, error) {
	var c Criterion
	err := s.db.QueryRowContext(ctx,
		`SELECT id,event_id,description,weight FROM criteria WHERE id=$1`, id).
		Scan(&c.ID, &c.EventID, &c.Description, &c.Weight)
	if errors.Is(err, sql.ErrNoRows) {
		return Criterion{}, ErrNotFound
	}
	return c, err
}

func (s *SQLStore) Update(ctx context.Context, c Criterion) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE criteria SET description=$1, weight=$2 WHERE id=$3`,
		c.Description, c.Weight, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM criteria WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListByEvent(ctx context.Context, eventID int64) ([]Criterion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,event_id,description,weight FROM criteria WHERE event_id=$1 ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Criterion
	for rows.Next() {
		var c Criterion
		if err := rows.Scan(&c.ID, &c.EventID, &c.Description, &c.Weight); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) WeightSum(ctx context.Context, eventID int64) (float64, error) {
	var sum sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(weight) FROM criteria WHERE event_id=$1`, eventID).Scan(&sum)
	if err != nil {
		return 0, err
	}
	return sum.Float64, nil
}
