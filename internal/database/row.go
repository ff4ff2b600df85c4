package database

import "github.com/koustreak/tally/internal/errs"

// Row is one result row, with values in column order.
type Row []any

// Result is the full row sequence of one successful query.
type Result struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// CollectRows reads all rows from the result set into a Result.
//
// []byte values are converted to string so text columns look the same
// across drivers. The returned Rows slice is always non-nil.
// CollectRows always closes rows.
func CollectRows(rows Rows) (*Result, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	res := &Result{Columns: columns, Rows: make([]Row, 0)}

	for rows.Next() {
		dest := make(Row, len(columns))
		destPtrs := make([]any, len(columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
		}

		for i, v := range dest {
			if b, ok := v.([]byte); ok {
				dest[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, dest)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}

	return res, nil
}
