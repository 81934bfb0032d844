// Package audit appends domain changes to an append-only table keyed by
// a monotonically increasing offset, so administrators can reconstruct
// who changed what and replay recent activity.
package audit

import (
	"context"
	"database/sql"
	"time"
)

// Entry is one audited change. Key identifies the affected aggregate
// (for example "event:42" or "7:3:12" for a score triple) and DataJSON
// carries the payload as the caller serialized it.
type Entry struct {
	Offset    int64     `json:"offset"`
	Type      string    `json:"type"`
	Key       string    `json:"key"`
	DataJSON  string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

func (l *Log) Append(ctx context.Context, e Entry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// Since returns entries with offset strictly greater than after, oldest
// first, capped at limit.
func (l *Log) Since(ctx context.Context, after int64, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT "offset", typ, key, data, created_at FROM audit_log
		 WHERE "offset" > $1 ORDER BY "offset" LIMIT $2`, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.DataJSON, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
