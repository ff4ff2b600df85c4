package database

import "context"

// Session is one live connection to the store. A Session is used by at most
// one goroutine at a time; the Pool guarantees that while it is checked out.
type Session interface {
	// Query runs sql with args bound positionally and returns every row.
	Query(ctx context.Context, sql string, args ...any) (*Result, error)

	// Close ends the session.
	Close(ctx context.Context) error
}

// closedReporter is implemented by sessions that can tell when the store or
// the driver has already dropped them. The Pool never keeps such a session.
type closedReporter interface {
	IsClosed() bool
}

func isClosed(s Session) bool {
	cr, ok := s.(closedReporter)
	return ok && cr.IsClosed()
}

// Dialer opens new sessions to the store. Each driver package provides one.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// Rows is an abstraction over a driver result set, consumed by CollectRows.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() ([]string, error)

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}
