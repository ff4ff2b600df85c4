package database

import (
	"context"
	"errors"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/koustreak/tally/internal/errs"
	"github.com/koustreak/tally/internal/logger"
)

// Handle is one session owned by a Pool. While checked out it belongs to a
// single caller; membership is tracked by the Pool, not the Handle.
type Handle struct {
	id      uint64
	session Session
}

// ID is the pool-assigned identifier of the underlying session.
func (h *Handle) ID() uint64 { return h.id }

// Query runs sql on the handle's session.
func (h *Handle) Query(ctx context.Context, sql string, args ...any) (*Result, error) {
	return h.session.Query(ctx, sql, args...)
}

// Stats is a point-in-time view of a Pool.
type Stats struct {
	Idle         int   // handles waiting in the idle collection
	InUse        int   // handles checked out
	Opened       int64 // sessions established over the pool's lifetime
	DialFailures int64 // failed session establishments
}

// Total is the number of handles the pool knows about.
func (s Stats) Total() int { return s.Idle + s.InUse }

// Pool hands out idle sessions and opens a new one whenever none is idle.
// It has no capacity limit and never evicts; idle sessions live until Close.
// It is safe for concurrent use by multiple goroutines.
type Pool struct {
	dialer Dialer
	log    *logger.Logger

	mu     sync.Mutex
	idle   []*Handle
	busy   map[*Handle]struct{}
	nextID uint64
	closed bool

	opened       *xsync.Counter
	dialFailures *xsync.Counter
}

// NewPool returns an empty pool that opens sessions with dialer.
func NewPool(dialer Dialer, log *logger.Logger) *Pool {
	if log == nil {
		log = logger.Nop()
	}
	return &Pool{
		dialer:       dialer,
		log:          log.With().Str("component", "pool").Logger(),
		busy:         make(map[*Handle]struct{}),
		opened:       xsync.NewCounter(),
		dialFailures: xsync.NewCounter(),
	}
}

// Acquire checks out an idle handle, or opens a new session if none is idle.
// A failed open returns an ErrKindUnavailable error and is not retried.
func (p *Pool) Acquire(ctx context.Context) (*Handle, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errs.New(errs.ErrKindClosed, "pool is closed")
	}
	idle := len(p.idle)
	var h *Handle
	if idle > 0 {
		h = p.idle[idle-1]
		p.idle[idle-1] = nil
		p.idle = p.idle[:idle-1]
		p.busy[h] = struct{}{}
	}
	p.mu.Unlock()

	p.log.DebugWith("acquire", map[string]any{"idle": idle})

	if h != nil {
		return h, nil
	}
	return p.open(ctx)
}

// open dials outside the lock so a slow store only stalls the caller.
func (p *Pool) open(ctx context.Context) (*Handle, error) {
	session, err := p.dialer.Dial(ctx)
	if err != nil {
		p.dialFailures.Inc()
		p.log.ErrorWith("failed to open session", err, nil)
		return nil, errs.Wrap(errs.ErrKindUnavailable, "failed to open session", err)
	}
	p.opened.Inc()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = session.Close(ctx)
		return nil, errs.New(errs.ErrKindClosed, "pool is closed")
	}
	p.nextID++
	h := &Handle{id: p.nextID, session: session}
	p.busy[h] = struct{}{}
	p.mu.Unlock()

	p.log.DebugWith("opened session", map[string]any{"handle": h.id})
	return h, nil
}

// Release returns a checked-out handle to the idle collection. Releasing a
// handle that is not checked out is ignored. A session that reports itself
// closed is dropped, and after Close released sessions are closed instead
// of kept.
func (p *Pool) Release(h *Handle) {
	if h == nil {
		return
	}

	p.mu.Lock()
	if _, ok := p.busy[h]; !ok {
		p.mu.Unlock()
		p.log.WarnWith("release of handle that is not checked out", map[string]any{"handle": h.id})
		return
	}
	delete(p.busy, h)
	dead := isClosed(h.session)
	if !p.closed && !dead {
		p.idle = append(p.idle, h)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	if dead {
		p.log.WarnWith("dropping closed session", map[string]any{"handle": h.id})
	}

	if err := h.session.Close(context.Background()); err != nil {
		p.log.ErrorWith("failed to close session", err, map[string]any{"handle": h.id})
	}
}

// With checks out a handle for the duration of fn. The handle is released
// on every exit path, including a panic in fn.
func (p *Pool) With(ctx context.Context, fn func(*Handle) error) error {
	h, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(h)
	return fn(h)
}

// Stats returns the pool's current counts.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Idle:         len(p.idle),
		InUse:        len(p.busy),
		Opened:       p.opened.Value(),
		DialFailures: p.dialFailures.Value(),
	}
}

// Close closes every idle session. Handles still checked out are closed
// when released. Acquire fails with ErrKindClosed afterwards.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	var errList []error
	for _, h := range idle {
		if err := h.session.Close(ctx); err != nil {
			errList = append(errList, err)
		}
	}
	p.log.InfoWith("pool closed", map[string]any{"closed_sessions": len(idle)})
	return errors.Join(errList...)
}
