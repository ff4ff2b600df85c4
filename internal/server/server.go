// Package server exposes vote tallies over HTTP with chi.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/tally/internal/errs"
	"github.com/koustreak/tally/internal/logger"
	"github.com/koustreak/tally/internal/votes"
)

const indexText = "The valid endpoints are /echo /votes"

// Tallier reads vote counts.
type Tallier interface {
	Tally(ctx context.Context) ([]votes.Vote, error)
	Count(ctx context.Context, choice string) (votes.Vote, error)
}

// Snapshotter stores a tally and returns where it went.
type Snapshotter interface {
	Save(ctx context.Context, tally []votes.Vote) (*votes.Snapshot, error)
}

// Server is the HTTP front end.
type Server struct {
	tallies   Tallier
	snapshots Snapshotter
	log       *logger.Logger
	router    chi.Router
	http      *http.Server
}

// New builds the router. snapshots may be nil, which leaves
// POST /votes/snapshot unregistered.
func New(addr string, tallies Tallier, snapshots Snapshotter, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		tallies:   tallies,
		snapshots: snapshots,
		log:       log.With().Str("component", "http").Logger(),
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/", s.handleIndex)
	r.Post("/echo", s.handleEcho)

	r.Route("/votes", func(r chi.Router) {
		r.Use(cors)
		r.Options("/", s.handlePreflight)
		r.Get("/", s.handleTally)
		r.Get("/{vote}", s.handleCount)
		if s.snapshots != nil {
			r.Options("/snapshot", s.handlePreflight)
			r.Post("/snapshot", s.handleSnapshot)
		}
	})

	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe() error {
	s.log.InfoWith("listening", map[string]any{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	_, _ = io.WriteString(w, indexText)
}

func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if _, err := io.Copy(w, r.Body); err != nil {
		logger.FromContext(r.Context()).ErrorWith("echo failed", err, nil)
	}
}

func (s *Server) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	tally, err := s.tallies.Tally(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	v, err := s.tallies.Count(r.Context(), chi.URLParam(r, "vote"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	tally, err := s.tallies.Tally(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := s.snapshots.Save(r.Context(), tally)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}

// cors sets the headers the results front end relies on.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "api,Keep-Alive,User-Agent,Content-Type")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error kind to a status. Detail stays in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsUnavailable(err):
		status = http.StatusServiceUnavailable
	case errs.IsTimeout(err):
		status = http.StatusGatewayTimeout
	}
	logger.FromContext(r.Context()).ErrorWith("request failed", err, map[string]any{"status": status})
	writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
}
