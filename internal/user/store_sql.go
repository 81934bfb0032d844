package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, u User, passwordHash string) (int64, error) {
	if !ValidRole(u.Role) {
		return 0, ErrInvalidRole
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username,full_name,email,password_hash,role,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		u.Username, u.FullName, u.Email, passwordHash, u.Role, time.Now().Unix()).Scan(&id)
	if err != nil && isUniqueViolation(err) {
		return 0, ErrDuplicate
	}
	return id, err
}

// Upsert inserts or refreshes a user by username and reports the row id.
// Password hash is only replaced when a new one is supplied.
func (s *SQLStore) Upsert(ctx context.Context, u User, passwordHash string) (int64, error) {
	if !ValidRole(u.Role) {
		return 0, ErrInvalidRole
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username,full_name,email,password_hash,role,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (username) DO UPDATE SET
		   full_name=EXCLUDED.full_name,
		   email=EXCLUDED.email,
		   role=EXCLUDED.role,
		   password_hash=CASE WHEN EXCLUDED.password_hash <> '' THEN EXCLUDED.password_hash ELSE users.password_hash END
		 RETURNING id`,
		u.Username, u.FullName, u.Email, passwordHash, u.Role, time.Now().Unix()).Scan(&id)
	return id, err
}

const userCols = `id, username, full_name, email, role, created_at`

func (s *SQLStore) ByUsername(ctx context.Context, username string) (User, error) {
	return s.one(ctx, `SELECT `+userCols+` FROM users WHERE username=$1`, username)
}

func (s *SQLStore) ByID(ctx context.Context, id int64) (User, error) {
	return s.one(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id)
}

func (s *SQLStore) one(ctx context.Context, q string, arg any) (User, error) {
	var u User
	var created int64
	err := s.db.QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.Role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return u, err
}

func (s *SQLStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		var created int64
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.Role, &created); err != nil {
			return nil, err
		}
		u.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, u)
	}
	return out, rows.Err()
}

// Directory resolves the ids to display profiles in one round trip.
// Missing ids are simply absent from the result.
func (s *SQLStore) Directory(ctx context.Context, ids []int64) (map[int64]Profile, error) {
	out := make(map[int64]Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, full_name, email FROM users WHERE id IN (`+strings.Join(ph, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var p Profile
		if err := rows.Scan(&id, &p.FullName, &p.Email); err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
