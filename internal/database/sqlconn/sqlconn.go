// Package sqlconn adapts one database/sql connection into a database.Session.
// The mysql and sqlite drivers build their sessions on it.
package sqlconn

import (
	"context"
	"database/sql"
	"errors"

	"github.com/koustreak/tally/internal/database"
	"github.com/koustreak/tally/internal/errs"
)

// MapFunc translates a driver error into *errs.Error.
type MapFunc func(err error, msg string) *errs.Error

// Session holds exactly one physical connection. db is capped at a single
// connection so it never opens a second one behind the Pool's back.
type Session struct {
	db     *sql.DB
	conn   *sql.Conn
	mapErr MapFunc
}

// Open reserves the single connection of db. On failure db is closed and the
// error is reported as ErrKindUnavailable.
func Open(ctx context.Context, db *sql.DB, mapErr MapFunc) (*Session, error) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, errs.Wrap(errs.ErrKindUnavailable, "failed to open session", mapErr(err, "connect failed"))
	}
	return &Session{db: db, conn: conn, mapErr: mapErr}, nil
}

// Query runs sql on the reserved connection.
func (s *Session) Query(ctx context.Context, query string, args ...any) (*database.Result, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.mapErr(err, "query failed")
	}
	res, err := database.CollectRows(&sqlRows{rows: rows})
	if err != nil {
		return nil, s.mapErr(err, "query failed")
	}
	return res, nil
}

// Close returns the connection and closes the underlying *sql.DB.
func (s *Session) Close(_ context.Context) error {
	return errors.Join(s.conn.Close(), s.db.Close())
}

// sqlRows wraps *sql.Rows to satisfy database.Rows.
type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool                 { return r.rows.Next() }
func (r *sqlRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *sqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *sqlRows) Close()                     { _ = r.rows.Close() }
func (r *sqlRows) Err() error                 { return r.rows.Err() }
