package database

import (
	"context"

	"github.com/koustreak/tally/internal/errs"
	"github.com/koustreak/tally/internal/logger"
)

var (
	// ErrUnavailable is returned by Execute when no session could be obtained.
	ErrUnavailable = errs.New(errs.ErrKindUnavailable, "no database session available")

	// ErrFailed is returned by Execute when the store rejected the query.
	ErrFailed = errs.New(errs.ErrKindQueryFailed, "query failed")
)

// Executor runs queries on handles borrowed from a Pool.
type Executor struct {
	pool *Pool
	log  *logger.Logger
}

// NewExecutor returns an Executor backed by pool.
func NewExecutor(pool *Pool, log *logger.Logger) *Executor {
	if log == nil {
		log = logger.Nop()
	}
	return &Executor{
		pool: pool,
		log:  log.With().Str("component", "executor").Logger(),
	}
}

// Execute runs template with args bound positionally and returns every row.
//
// It returns ErrUnavailable without running anything if no session can be
// obtained, and ErrFailed if the store rejects the query. Failure detail is
// logged here and never returned. The handle goes back to the pool before
// Execute returns, whatever the outcome. Nothing is retried.
//
// Cancellation of ctx is not propagated to the store: drivers such as pgx
// tear down a connection whose query is interrupted, and a torn-down session
// must not go back to the pool. Values carried by ctx are kept.
func (e *Executor) Execute(ctx context.Context, template string, args ...any) (*Result, error) {
	ctx = context.WithoutCancel(ctx)

	h, err := e.pool.Acquire(ctx)
	if err != nil {
		e.log.ErrorWith("failed to execute query", err, map[string]any{"sql": template})
		return nil, ErrUnavailable
	}
	defer e.pool.Release(h)

	res, err := h.Query(ctx, template, args...)
	if err != nil {
		e.log.ErrorWith("query failed", err, map[string]any{
			"sql":    template,
			"handle": h.ID(),
		})
		return nil, ErrFailed
	}
	return res, nil
}
