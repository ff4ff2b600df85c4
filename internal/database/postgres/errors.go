package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/koustreak/tally/internal/errs"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
// Errors that are already *errs.Error keep their kind.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	// Postgres server-side error (SQLSTATE codes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := errs.ErrKindQueryFailed
		switch {
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08": // connection exception
			kind = errs.ErrKindUnavailable
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "28": // invalid authorization
			kind = errs.ErrKindPermissionDenied
		case pgErr.Code == "42501": // insufficient_privilege
			kind = errs.ErrKindPermissionDenied
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	var e *errs.Error
	if errors.As(err, &e) {
		return errs.Wrap(e.Kind, msg, err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
