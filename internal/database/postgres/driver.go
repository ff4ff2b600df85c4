// Package postgres opens sessions to PostgreSQL with pgx. Each session is a
// single *pgx.Conn; pooling is left to database.Pool.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/koustreak/tally/internal/database"
	"github.com/koustreak/tally/internal/errs"
)

// Dialer is a PostgreSQL implementation of database.Dialer.
type Dialer struct {
	connCfg *pgx.ConnConfig
}

// NewDialer parses cfg.DSN once; every Dial reuses the parsed config.
func NewDialer(cfg *database.Config) (*Dialer, error) {
	connCfg, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid DSN", err)
	}
	if cfg.ConnectTimeout > 0 {
		connCfg.ConnectTimeout = cfg.ConnectTimeout
	}
	return &Dialer{connCfg: connCfg}, nil
}

// Dial opens one new connection.
func (d *Dialer) Dial(ctx context.Context) (database.Session, error) {
	conn, err := pgx.ConnectConfig(ctx, d.connCfg.Copy())
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnavailable, "failed to connect to postgres", err)
	}
	return &session{conn: conn}, nil
}

// session wraps one pgx connection to satisfy database.Session.
type session struct {
	conn *pgx.Conn
}

func (s *session) Query(ctx context.Context, sql string, args ...any) (*database.Result, error) {
	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	res, err := database.CollectRows(&pgxRows{rows: rows})
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return res, nil
}

func (s *session) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}

// IsClosed reports whether pgx has already torn the connection down.
func (s *session) IsClosed() bool {
	return s.conn.IsClosed()
}

// pgxRows wraps pgx.Rows to satisfy database.Rows.
type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *pgxRows) Close()                 { r.rows.Close() }
func (r *pgxRows) Err() error             { return r.rows.Err() }

func (r *pgxRows) Columns() ([]string, error) {
	descs := r.rows.FieldDescriptions()
	cols := make([]string, len(descs))
	for i, d := range descs {
		cols[i] = d.Name
	}
	return cols, nil
}
