package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Store interface {
	Create(ctx context.Context, e Event) (int64, error)
	Get(ctx context.Context, id int64) (Event, error)
	List(ctx context.Context) ([]Event, error)
	SetState(ctx context.Context, id int64, to State) error
	SetPolicy(ctx context.Context, id int64, p Policy) error
	Update(ctx context.Context, e Event) error
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

const eventCols = `id,name,description,city,venue,start_date,end_date,state,owner_id,capacity,n_min,discrepancy_threshold,include_score_on_cert`

func (s *SQLStore) Create(ctx context.Context, e Event) (int64, error) {
	if e.StartDate.After(e.EndDate) {
		return 0, ErrInvalidDates
	}
	if e.State == "" {
		e.State = StateDraft
	}
	if !ValidState(e.State) {
		return 0, fmt.Errorf("invalid state %q", e.State)
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO events (name,description,city,venue,start_date,end_date,state,owner_id,capacity,n_min,discrepancy_threshold,include_score_on_cert)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 RETURNING id`,
		e.Name, e.Description, e.City, e.Venue,
		e.StartDate.Unix(), e.EndDate.Unix(), string(e.State), e.OwnerID, e.Capacity,
		e.Policy.NMin, e.Policy.DiscrepancyThreshold, e.Policy.IncludeScoreOnCert).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventCols+` FROM events WHERE id=$1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return e, err
}

func (s *SQLStore) List(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+eventCols+` FROM events ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetState applies a monotone lifecycle transition. The row is locked by
// the UPDATE's state predicate, so two racing transitions cannot both win.
func (s *SQLStore) SetState(ctx context.Context, id int64, to State) error {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(e.State, to) {
		return ErrInvalidTransition
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET state=$1 WHERE id=$2 AND state=$3`,
		string(to), id, string(e.State))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (s *SQLStore) SetPolicy(ctx context.Context, id int64, p Policy) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET n_min=$1, discrepancy_threshold=$2, include_score_on_cert=$3 WHERE id=$4`,
		p.NMin, p.DiscrepancyThreshold, p.IncludeScoreOnCert, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Update(ctx context.Context, e Event) error {
	if e.StartDate.After(e.EndDate) {
		return ErrInvalidDates
	}
	cur, err := s.Get(ctx, e.ID)
	if err != nil {
		return err
	}
	if !cur.State.Mutable() {
		return ErrEventNotMutable
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE events SET name=$1, description=$2, city=$3, venue=$4, start_date=$5, end_date=$6, capacity=$7 WHERE id=$8`,
		e.Name, e.Description, e.City, e.Venue, e.StartDate.Unix(), e.EndDate.Unix(), e.Capacity, e.ID)
	return err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanEvent(r rowScanner) (Event, error) {
	var e Event
	var start, end int64
	var state string
	if err := r.Scan(&e.ID, &e.Name, &e.Description, &e.City, &e.Venue,
		&start, &end, &state, &e.OwnerID, &e.Capacity,
		&e.Policy.NMin, &e.Policy.DiscrepancyThreshold, &e.Policy.IncludeScoreOnCert); err != nil {
		return Event{}, err
	}
	e.StartDate = time.Unix(start, 0).UTC()
	e.EndDate = time.Unix(end, 0).UTC()
	e.State = State(state)
	return e, nil
}
