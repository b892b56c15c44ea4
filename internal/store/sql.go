package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// SQLStore persists sessions, the question corpus and the catalog in a
// sqlite or postgres database.
type SQLStore struct {
	db     *sql.DB
	driver Driver
}

func NewSQL(db *sql.DB, driver Driver) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// OpenSQL opens the database and wraps it in a store.
func OpenSQL(ctx context.Context, driver Driver, dsn string) (*SQLStore, error) {
	db, err := Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	return NewSQL(db, driver), nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) q(query string) string {
	return rebind(s.driver, query)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMillis(n.Int64)
	return &t
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func mustJSON(v any) string {
	buf, err := json.Marshal(v)
	if err != nil {
		// only slices of strings and options are encoded here
		panic(err)
	}
	return string(buf)
}
