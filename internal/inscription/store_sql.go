package inscription

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	RegisterParticipant(ctx context.Context, p ParticipantEvent) (int64, error)
	RegisterEvaluator(ctx context.Context, v EvaluatorEvent) (int64, error)
	RegisterAttendee(ctx context.Context, a AttendeeEvent) (int64, error)

	Participant(ctx context.Context, eventID, participantID int64) (ParticipantEvent, error)
	Evaluator(ctx context.Context, eventID, evaluatorID int64) (EvaluatorEvent, error)
	ParticipantsForEvent(ctx context.Context, eventID int64) ([]ParticipantEvent, error)
	EvaluatorsForEvent(ctx context.Context, eventID int64) ([]EvaluatorEvent, error)

	SetParticipantStatus(ctx context.Context, eventID, participantID int64, st ParticipantStatus) error
	SetEvaluatorStatus(ctx context.Context, eventID, evaluatorID int64, st EvaluatorStatus) error
}

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// roleTaken is the cross-role exclusion check. It looks at the other two
// role tables; the UNIQUE(event_id, user) constraint on the own table
// covers duplicates within the same role.
func (s *SQLStore) roleTaken(ctx context.Context, eventID, userID int64, own string) (bool, error) {
	tables := map[string]string{
		"participant_events": "participant_id",
		"evaluator_events":   "evaluator_id",
		"attendee_events":    "attendee_id",
	}
	for table, col := range tables {
		if table == own {
			continue
		}
		var one int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM `+table+` WHERE event_id=$1 AND `+col+`=$2`, eventID, userID).Scan(&one)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return false, err
		}
	}
	return false, nil
}

func (s *SQLStore) RegisterParticipant(ctx context.Context, p ParticipantEvent) (int64, error) {
	taken, err := s.roleTaken(ctx, p.EventID, p.ParticipantID, "participant_events")
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, ErrRoleConflict
	}
	if p.Status == "" {
		p.Status = ParticipantPreinscribed
	}
	if p.SubmittedAt.IsZero() {
		p.SubmittedAt = time.Now()
	}
	if p.AccessKey == "" {
		p.AccessKey = uuid.NewString()
	}
	// Leaders and individuals get a project code; members inherit the leader's.
	if p.LeaderID == nil && p.ProjectCode == "" {
		p.ProjectCode = strings.ToUpper(uuid.NewString()[:8])
	}
	var leader sql.NullInt64
	if p.LeaderID != nil {
		leader = sql.NullInt64{Int64: *p.LeaderID, Valid: true}
	}
	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO participant_events (event_id,participant_id,status,submitted_at,leader_id,is_group,project_code,access_key)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		p.EventID, p.ParticipantID, string(p.Status), p.SubmittedAt.Unix(),
		leader, p.IsGroup, p.ProjectCode, p.AccessKey).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrAlreadyInscribed
		}
		return 0, err
	}
	return id, nil
}

func (s *SQLStore) RegisterEvaluator(ctx context.Context, v EvaluatorEvent) (int64, error) {
	taken, err := s.roleTaken(ctx, v.EventID, v.EvaluatorID, "evaluator_events")
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, ErrRoleConflict
	}
	if v.Status == "" {
		v.Status = EvaluatorPending
	}
	if v.RegisteredAt.IsZero() {
		v.RegisteredAt = time.Now()
	}
	if v.AccessKey == "" {
		v.AccessKey = uuid.NewString()
	}
	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO evaluator_events (event_id,evaluator_id,status,registered_at,access_key)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		v.EventID, v.EvaluatorID, string(v.Status), v.RegisteredAt.Unix(), v.AccessKey).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrAlreadyInscribed
		}
		return 0, err
	}
	return id, nil
}

func (s *SQLStore) RegisterAttendee(ctx context.Context, a AttendeeEvent) (int64, error) {
	taken, err := s.roleTaken(ctx, a.EventID, a.AttendeeID, "attendee_events")
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, ErrRoleConflict
	}
	if a.Status == "" {
		a.Status = AttendeePending
	}
	if a.RegisteredAt.IsZero() {
		a.RegisteredAt = time.Now()
	}
	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO attendee_events (event_id,attendee_id,status,registered_at)
		 VALUES ($1,$2,$3,$4) RETURNING id`,
		a.EventID, a.AttendeeID, string(a.Status), a.RegisteredAt.Unix()).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrAlreadyInscribed
		}
		return 0, err
	}
	return id, nil
}

func (s *SQLStore) Participant(ctx context.Context, eventID, participantID int64) (ParticipantEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,event_id,participant_id,status,submitted_at,leader_id,is_group,project_code,access_key
		 FROM participant_events WHERE event_id=$1 AND participant_id=$2`, eventID, participantID)
	return scanParticipant(row)
}

func (s *SQLStore) ParticipantsForEvent(ctx context.Context, eventID int64) ([]ParticipantEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,event_id,participant_id,status,submitted_at,leader_id,is_group,project_code,access_key
		 FROM participant_events WHERE event_id=$1 ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ParticipantEvent
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) Evaluator(ctx context.Context, eventID, evaluatorID int64) (EvaluatorEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,event_id,evaluator_id,status,registered_at,access_key
		 FROM evaluator_events WHERE event_id=$1 AND evaluator_id=$2`, eventID, evaluatorID)
	return scanEvaluator(row)
}

func (s *SQLStore) EvaluatorsForEvent(ctx context.Context, eventID int64) ([]EvaluatorEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,event_id,evaluator_id,status,registered_at,access_key
		 FROM evaluator_events WHERE event_id=$1 ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EvaluatorEvent
	for rows.Next() {
		v, err := scanEvaluator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetParticipantStatus(ctx context.Context, eventID, participantID int64, st ParticipantStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE participant_events SET status=$1 WHERE event_id=$2 AND participant_id=$3`,
		string(st), eventID, participantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) SetEvaluatorStatus(ctx context.Context, eventID, evaluatorID int64, st EvaluatorStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE evaluator_events SET status=$1 WHERE event_id=$2 AND evaluator_id=$3`,
		string(st), eventID, evaluatorID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanParticipant(r rowScanner) (ParticipantEvent, error) {
	var p ParticipantEvent
	var sub int64
	var status string
	var leader sql.NullInt64
	if err := r.Scan(&p.ID, &p.EventID, &p.ParticipantID, &status, &sub,
		&leader, &p.IsGroup, &p.ProjectCode, &p.AccessKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ParticipantEvent{}, ErrNotFound
		}
		return ParticipantEvent{}, err
	}
	p.Status = CanonicalParticipantStatus(status)
	p.SubmittedAt = time.Unix(sub, 0).UTC()
	if leader.Valid {
		p.LeaderID = &leader.Int64
	}
	return p, nil
}

func scanEvaluator(r rowScanner) (EvaluatorEvent, error) {
	var v EvaluatorEvent
	var reg int64
	var status string
	if err := r.Scan(&v.ID, &v.EventID, &v.EvaluatorID, &status, &reg, &v.AccessKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EvaluatorEvent{}, ErrNotFound
		}
		return EvaluatorEvent{}, err
	}
	v.Status = CanonicalEvaluatorStatus(status)
	v.RegisteredAt = time.Unix(reg, 0).UTC()
	return v, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
