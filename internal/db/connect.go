package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:eventsoft.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/eventsoft?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  venue TEXT NOT NULL DEFAULT '',
  start_date INTEGER NOT NULL,
  end_date INTEGER NOT NULL,
  state TEXT NOT NULL,
  owner_id INTEGER NOT NULL REFERENCES users(id),
  capacity INTEGER NOT NULL DEFAULT 0,
  n_min INTEGER NOT NULL DEFAULT 5,
  discrepancy_threshold REAL NOT NULL DEFAULT 3.0,
  include_score_on_cert INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS criteria (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
  description TEXT NOT NULL,
  weight REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS participant_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
  participant_id INTEGER NOT NULL REFERENCES users(id),
  status TEXT NOT NULL,
  submitted_at INTEGER NOT NULL,
  leader_id INTEGER REFERENCES participant_events(id),
  is_group INTEGER NOT NULL DEFAULT 0,
  project_code TEXT NOT NULL DEFAULT '',
  access_key TEXT NOT NULL DEFAULT '',
  UNIQUE(event_id, participant_id)
);

CREATE TABLE IF NOT EXISTS evaluator_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
  evaluator_id INTEGER NOT NULL REFERENCES users(id),
  status TEXT NOT NULL,
  registered_at INTEGER NOT NULL,
  access_key TEXT NOT NULL DEFAULT '',
  UNIQUE(event_id, evaluator_id)
);

CREATE TABLE IF NOT EXISTS attendee_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
  attendee_id INTEGER NOT NULL REFERENCES users(id),
  status TEXT NOT NULL,
  registered_at INTEGER NOT NULL,
  UNIQUE(event_id, attendee_id)
);

CREATE TABLE IF NOT EXISTS scores (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  evaluator_id INTEGER NOT NULL REFERENCES users(id),
  criterion_id INTEGER NOT NULL REFERENCES criteria(id) ON DELETE RESTRICT,
  participant_id INTEGER NOT NULL REFERENCES users(id),
  value INTEGER NOT NULL CHECK (value BETWEEN 0 AND 100),
  updated_at INTEGER NOT NULL,
  UNIQUE(evaluator_id, criterion_id, participant_id)
);

CREATE TABLE IF NOT EXISTS audit_log (
  offset INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  typ TEXT NOT NULL,                        -- e.g., ScoreUpserted
  key TEXT NOT NULL,                        -- natural key of the affected row
  data TEXT NOT NULL,                       -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  venue TEXT NOT NULL DEFAULT '',
  start_date BIGINT NOT NULL,
  end_date BIGINT NOT NULL,
  state TEXT NOT NULL,
  owner_id BIGINT NOT NULL REFERENCES users(id),
  capacity INTEGER NOT NULL DEFAULT 0,
  n_min INTEGER NOT NULL DEFAULT 5,
  discrepancy_threshold DOUBLE PRECISION NOT NULL DEFAULT 3.0,
  include_score_on_cert BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS criteria (
  id BIGSERIAL PRIMARY KEY,
  event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
  description TEXT NOT NULL,
  weight DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS participant_events (
  id BIGSERIAL PRIMARY KEY,
  event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
  participant_id BIGINT NOT NULL REFERENCES users(id),
  status TEXT NOT NULL,
  submitted_at BIGINT NOT NULL,
  leader_id BIGINT REFERENCES participant_events(id),
  is_group BOOLEAN NOT NULL DEFAULT FALSE,
  project_code TEXT NOT NULL DEFAULT '',
  access_key TEXT NOT NULL DEFAULT '',
  UNIQUE(event_id, participant_id)
);

CREATE TABLE IF NOT EXISTS evaluator_events (
  id BIGSERIAL PRIMARY KEY,
  event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
  evaluator_id BIGINT NOT NULL REFERENCES users(id),
  status TEXT NOT NULL,
  registered_at BIGINT NOT NULL,
  access_key TEXT NOT NULL DEFAULT '',
  UNIQUE(event_id, evaluator_id)
);

CREATE TABLE IF NOT EXISTS attendee_events (
  id BIGSERIAL PRIMARY KEY,
  event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
  attendee_id BIGINT NOT NULL REFERENCES users(id),
  status TEXT NOT NULL,
  registered_at BIGINT NOT NULL,
  UNIQUE(event_id, attendee_id)
);

CREATE TABLE IF NOT EXISTS scores (
  id BIGSERIAL PRIMARY KEY,
  evaluator_id BIGINT NOT NULL REFERENCES users(id),
  criterion_id BIGINT NOT NULL REFERENCES criteria(id) ON DELETE RESTRICT,
  participant_id BIGINT NOT NULL REFERENCES users(id),
  value INTEGER NOT NULL CHECK (value BETWEEN 0 AND 100),
  updated_at BIGINT NOT NULL,
  UNIQUE(evaluator_id, criterion_id, participant_id)
);

CREATE TABLE IF NOT EXISTS audit_log (
  "offset" BIGSERIAL PRIMARY KEY,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
