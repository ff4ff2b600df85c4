package database

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// fakeDialer opens fakeSessions, or fails when err is set.
type fakeDialer struct {
	mu       sync.Mutex
	err      error
	sessions []*fakeSession

	// query is installed on every new session.
	query func(ctx context.Context, s *fakeSession, sql string, args []any) (*Result, error)
}

func (d *fakeDialer) Dial(_ context.Context) (Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	s := &fakeSession{query: d.query}
	d.sessions = append(d.sessions, s)
	return s, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

func (d *fakeDialer) totalQueries() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n int64
	for _, s := range d.sessions {
		n += s.queries.Load()
	}
	return n
}

type fakeSession struct {
	inUse   atomic.Bool
	queries atomic.Int64
	closed  atomic.Bool
	dead    atomic.Bool
	query   func(ctx context.Context, s *fakeSession, sql string, args []any) (*Result, error)
}

func (s *fakeSession) Query(ctx context.Context, sql string, args ...any) (*Result, error) {
	s.queries.Add(1)
	if s.query != nil {
		return s.query(ctx, s, sql, args)
	}
	return &Result{Columns: []string{"n"}, Rows: []Row{{int64(1)}}}, nil
}

// IsClosed reports a session the driver has dropped on its own.
func (s *fakeSession) IsClosed() bool {
	return s.dead.Load()
}

func (s *fakeSession) Close(_ context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return errors.New("session closed twice")
	}
	return nil
}

// countdown blocks each caller of wait until n callers have arrived.
type countdown struct {
	wg sync.WaitGroup
}

func newCountdown(n int) *countdown {
	c := &countdown{}
	c.wg.Add(n)
	return c
}

func (c *countdown) wait() {
	c.wg.Done()
	c.wg.Wait()
}
