// Package api exposes the worker's small read surface: health, metrics,
// and on-demand recommendations. Writes only flow through the job queue.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/jobs"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/worker"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/metrics"
)

// LoopStatus is the slice of the worker loop the health endpoint reads.
type LoopStatus interface {
	State() worker.State
	JobsDone() int
	StartedAt() time.Time
}

// Advisor builds recommendations on demand.
type Advisor interface {
	Advise(ctx context.Context, leagueID, userID string) (model.Advice, error)
}

type server struct {
	status  LoopStatus
	advisor Advisor
	logger  logger.Logger
	now     func() time.Time
}

// Option applies a configuration option to the router.
type Option func(*server)

// WithLogger sets a custom logger for request handling.
func WithLogger(l logger.Logger) Option {
	return func(s *server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRouter builds the HTTP handler for the worker's listen address.
func NewRouter(status LoopStatus, advisor Advisor, opts ...Option) http.Handler {
	s := &server{
		status:  status,
		advisor: advisor,
		logger:  logger.Get().Named("api"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", instrument("/healthz", s.handleHealth))
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	r.Get("/v1/recommendations", instrument("/v1/recommendations", s.handleRecommendations))
	return r
}

type healthPayload struct {
	Status   string `json:"status"`
	State    string `json:"state"`
	JobsDone int    `json:"jobs_done"`
	UptimeS  int64  `json:"uptime_sec"`
	TS       string `json:"ts"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	uptime := int64(0)
	if started := s.status.StartedAt(); !started.IsZero() {
		uptime = int64(now.Sub(started).Seconds())
	}
	writeJSON(w, http.StatusOK, healthPayload{
		Status:   "ok",
		State:    string(s.status.State()),
		JobsDone: s.status.JobsDone(),
		UptimeS:  uptime,
		TS:       now.UTC().Format(time.RFC3339),
	})
}

type recommendationsPayload struct {
	LeagueID string       `json:"league_id"`
	UserID   string       `json:"user_id"`
	Advice   model.Advice `json:"advice"`
}

func (s *server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	leagueID := r.URL.Query().Get("league")
	userID := r.URL.Query().Get("user")
	if leagueID == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "league and user query parameters are required")
		return
	}

	advice, err := s.advisor.Advise(r.Context(), leagueID, userID)
	if err != nil {
		if errors.Is(err, jobs.ErrLeagueNotFound) {
			writeError(w, http.StatusNotFound, "league not found")
			return
		}
		s.logger.Error(r.Context(), "advise failed",
			logger.String("league", leagueID),
			logger.String("user", userID),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "recommendation build failed")
		return
	}
	writeJSON(w, http.StatusOK, recommendationsPayload{LeagueID: leagueID, UserID: userID, Advice: advice})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
