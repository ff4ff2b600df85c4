package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tally/internal/database"
	"github.com/koustreak/tally/internal/errs"
	"github.com/koustreak/tally/internal/logger"
	"github.com/koustreak/tally/internal/votes"
)

type fakeTallier struct {
	tally []votes.Vote
	err   error
	asked string
}

func (f *fakeTallier) Tally(context.Context) ([]votes.Vote, error) { return f.tally, f.err }

func (f *fakeTallier) Count(_ context.Context, choice string) (votes.Vote, error) {
	f.asked = choice
	if f.err != nil {
		return votes.Vote{}, f.err
	}
	return votes.Vote{Vote: choice, Count: 4}, nil
}

type fakeSnapshotter struct {
	saved []votes.Vote
	err   error
}

func (f *fakeSnapshotter) Save(_ context.Context, tally []votes.Vote) (*votes.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = tally
	return &votes.Snapshot{Key: "snapshots/x.json", URL: "https://store.local/x", TakenAt: time.Unix(0, 0).UTC()}, nil
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "api,Keep-Alive,User-Agent,Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestIndex(t *testing.T) {
	rec := do(t, New(":0", &fakeTallier{}, nil, nil), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "The valid endpoints are /echo /votes", rec.Body.String())
}

func TestEcho(t *testing.T) {
	rec := do(t, New(":0", &fakeTallier{}, nil, nil), http.MethodPost, "/echo", "ping pong")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ping pong", rec.Body.String())
}

func TestVotes_Preflight(t *testing.T) {
	rec := do(t, New(":0", &fakeTallier{}, nil, nil), http.MethodOptions, "/votes", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assertCORS(t, rec)
}

func TestVotes_Tally(t *testing.T) {
	tallier := &fakeTallier{tally: []votes.Vote{{Vote: "yes", Count: 2}, {Vote: "no", Count: 1}}}
	rec := do(t, New(":0", tallier, nil, nil), http.MethodGet, "/votes", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"vote":"yes","count":2},{"vote":"no","count":1}]`, rec.Body.String())
}

func TestVotes_TallyEmpty(t *testing.T) {
	rec := do(t, New(":0", &fakeTallier{tally: []votes.Vote{}}, nil, nil), http.MethodGet, "/votes", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestVotes_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unavailable", database.ErrUnavailable, http.StatusServiceUnavailable},
		{"failed", database.ErrFailed, http.StatusInternalServerError},
		{"timeout", errs.New(errs.ErrKindTimeout, "slow"), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, New(":0", &fakeTallier{err: tt.err}, nil, nil), http.MethodGet, "/votes", "")
			assert.Equal(t, tt.status, rec.Code)
			assertCORS(t, rec)
			assert.NotContains(t, rec.Body.String(), "query")
		})
	}
}

func TestVotes_Count(t *testing.T) {
	tallier := &fakeTallier{}
	rec := do(t, New(":0", tallier, nil, nil), http.MethodGet, "/votes/yes", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "yes", tallier.asked)
	assert.JSONEq(t, `{"vote":"yes","count":4}`, rec.Body.String())
}

func TestVotes_Snapshot(t *testing.T) {
	tallier := &fakeTallier{tally: []votes.Vote{{Vote: "yes", Count: 1}}}
	snaps := &fakeSnapshotter{}
	rec := do(t, New(":0", tallier, snaps, nil), http.MethodPost, "/votes/snapshot", "")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, tallier.tally, snaps.saved)

	var got votes.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "snapshots/x.json", got.Key)
	assert.Equal(t, "https://store.local/x", got.URL)
}

func TestVotes_SnapshotError(t *testing.T) {
	snaps := &fakeSnapshotter{err: errs.New(errs.ErrKindUnavailable, "store down")}
	rec := do(t, New(":0", &fakeTallier{}, snaps, nil), http.MethodPost, "/votes/snapshot", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestVotes_SnapshotDisabled(t *testing.T) {
	rec := do(t, New(":0", &fakeTallier{}, nil, nil), http.MethodPost, "/votes/snapshot", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFound(t *testing.T) {
	s := New(":0", &fakeTallier{}, nil, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nope"},
		{http.MethodDelete, "/votes"},
		{http.MethodGet, "/echo"},
	} {
		rec := do(t, s, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRequestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(&logger.Config{Level: "info", Format: "json", Output: buf})

	do(t, New(":0", &fakeTallier{tally: []votes.Vote{}}, nil, log), http.MethodGet, "/votes", "")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["message"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/votes", entry["path"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.NotEmpty(t, entry["request_id"])
	assert.Equal(t, "http", entry["component"])
}
