// Package sqlite opens sessions to a SQLite database file through
// mattn/go-sqlite3. It exists for local development and tests; each session
// opens the file independently, so ":memory:" gives every session its own
// empty database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/koustreak/tally/internal/database"
	"github.com/koustreak/tally/internal/database/sqlconn"
	"github.com/koustreak/tally/internal/errs"
)

// Dialer is a SQLite implementation of database.Dialer.
type Dialer struct {
	dsn string
}

// NewDialer returns a Dialer for the file named by cfg.DSN.
func NewDialer(cfg *database.Config) (*Dialer, error) {
	if cfg.DSN == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "sqlite dsn is empty")
	}
	return &Dialer{dsn: cfg.DSN}, nil
}

// Dial opens the database file.
func (d *Dialer) Dial(ctx context.Context) (database.Session, error) {
	db, err := sql.Open("sqlite3", d.dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnavailable, "failed to open sqlite", err)
	}
	s, err := sqlconn.Open(ctx, db, mapError)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// mapError translates go-sqlite3 errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrNotADB, sqlite3.ErrCorrupt:
			return errs.Wrap(errs.ErrKindUnavailable, msg, err)
		case sqlite3.ErrPerm, sqlite3.ErrAuth, sqlite3.ErrReadonly:
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return errs.Wrap(errs.ErrKindTimeout, msg, err)
		}
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}

	var e *errs.Error
	if errors.As(err, &e) {
		return errs.Wrap(e.Kind, msg, err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
