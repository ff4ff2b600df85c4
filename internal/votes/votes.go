// Package votes reads vote tallies through the database executor.
package votes

import (
	"context"
	"fmt"
	"math"

	"github.com/koustreak/tally/internal/database"
	"github.com/koustreak/tally/internal/errs"
)

// Vote is the number of ballots cast for one choice.
type Vote struct {
	Vote  string `json:"vote"`
	Count int64  `json:"count"`
}

// Querier is the part of database.Executor the repository needs.
type Querier interface {
	Execute(ctx context.Context, template string, args ...any) (*database.Result, error)
}

// Repository builds its statements once for the configured dialect.
type Repository struct {
	q        Querier
	tallySQL string
	countSQL string
}

// NewRepository returns a Repository issuing SQL in dialect d.
func NewRepository(q Querier, d database.Dialect) (*Repository, error) {
	tallySQL, _, err := database.Select("votes", d).
		Columns("vote").
		Count("id", "count").
		GroupBy("vote").
		Build()
	if err != nil {
		return nil, err
	}
	countSQL, _, err := database.Select("votes", d).
		Count("id", "count").
		Where("vote", "=", "").
		Build()
	if err != nil {
		return nil, err
	}
	return &Repository{q: q, tallySQL: tallySQL, countSQL: countSQL}, nil
}

// Tally returns the count per choice. Order between choices is unspecified.
// Errors are those of database.Executor.Execute.
func (r *Repository) Tally(ctx context.Context) ([]Vote, error) {
	res, err := r.q.Execute(ctx, r.tallySQL)
	if err != nil {
		return nil, err
	}

	out := make([]Vote, 0, res.Len())
	for _, row := range res.Rows {
		v, err := toVote(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Count returns the number of ballots cast for choice.
func (r *Repository) Count(ctx context.Context, choice string) (Vote, error) {
	res, err := r.q.Execute(ctx, r.countSQL, choice)
	if err != nil {
		return Vote{}, err
	}
	if res.Len() != 1 || len(res.Rows[0]) != 1 {
		return Vote{}, errs.New(errs.ErrKindQueryFailed, "count returned an unexpected shape")
	}
	n, err := asInt64(res.Rows[0][0])
	if err != nil {
		return Vote{}, err
	}
	return Vote{Vote: choice, Count: n}, nil
}

func toVote(row database.Row) (Vote, error) {
	if len(row) != 2 {
		return Vote{}, errs.New(errs.ErrKindQueryFailed, fmt.Sprintf("tally row has %d columns, want 2", len(row)))
	}
	choice, ok := row[0].(string)
	if !ok {
		return Vote{}, errs.New(errs.ErrKindQueryFailed, fmt.Sprintf("vote column is %T, want string", row[0]))
	}
	n, err := asInt64(row[1])
	if err != nil {
		return Vote{}, err
	}
	return Vote{Vote: choice, Count: n}, nil
}

// asInt64 accepts the integer widths the supported drivers return for COUNT.
// Unsigned values above math.MaxInt64 are rejected rather than wrapped.
func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint:
		return fromUnsigned(uint64(n))
	case uint64:
		return fromUnsigned(n)
	default:
		return 0, errs.New(errs.ErrKindQueryFailed, fmt.Sprintf("count column is %T, want integer", v))
	}
}

func fromUnsigned(n uint64) (int64, error) {
	if n > math.MaxInt64 {
		return 0, errs.New(errs.ErrKindQueryFailed, fmt.Sprintf("count %d overflows int64", n))
	}
	return int64(n), nil
}
