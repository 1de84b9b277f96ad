// Package api exposes the matching service over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/http/swagger"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/mq/admission"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/challenge"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/evaluation"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/recommend"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
)

// Admission queue names.
const (
	QueueRecommendations = "recommendations"
	QueueEvaluations     = "evaluations"
	QueueProjects        = "projects"
)

// Queues lists every admission queue the router uses.
var Queues = []string{QueueRecommendations, QueueEvaluations, QueueProjects}

// Recommender produces recommendations and single-pair matches.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) ([]model.Recommendation, error)
	Match(ctx context.Context, userID, projectID string) (*recommend.MatchResult, error)
	InvalidatePool(ctx context.Context) error
}

// Evaluator grades code submissions.
type Evaluator interface {
	Evaluate(ctx context.Context, sub model.CodeSubmission) (model.EvaluationResult, error)
}

// AttemptSubmitter grades and records challenge attempts.
type AttemptSubmitter interface {
	Submit(ctx context.Context, sub challenge.Submission) (*challenge.Outcome, error)
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies bundles what the handlers call into.
type Dependencies struct {
	Recommender Recommender
	Evaluator   Evaluator
	Attempts    AttemptSubmitter
	Health      Pinger
	Stats       StatsProvider
}

// Option configures a Server.
type Option func(*Server)

// WithAdmission puts API routes behind admission queues, registering any
// queue m does not have yet.
func WithAdmission(m *admission.Manager) Option {
	return func(s *Server) {
		s.admission = m
	}
}

// WithRateLimit limits API requests per client IP per minute. Zero disables it.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute >= 0 {
			s.ratePerMinute = perMinute
		}
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// Server wires HTTP routes for the matching API.
type Server struct {
	deps          Dependencies
	admission     *admission.Manager
	ratePerMinute int
	corsOrigins   []string
	log           logger.Logger
	router        chi.Router
}

// NewServer creates the API server and its router.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:        deps,
		corsOrigins: []string{"*"},
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.admission != nil {
		for _, q := range Queues {
			s.admission.Register(q)
		}
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}))

	health := NewHealthHandler(s.deps.Health)
	r.Get("/health", MetricsMiddleware(health.HandleHealth, "health"))
	r.Get("/healthz", health.HandleMetrics)
	r.Get("/metrics", health.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(NewStatsHandler(s.deps.Stats).HandleStats, "stats"))
	swagger.Register(r)

	r.Route("/api/v1", func(r chi.Router) {
		if s.ratePerMinute > 0 {
			r.Use(httprate.LimitByIP(s.ratePerMinute, time.Minute))
		}

		r.With(s.admit(QueueRecommendations, admission.Normal)).
			Get("/users/{userID}/recommendations", MetricsMiddleware(s.handleRecommendations, "recommendations"))
		r.With(s.admit(QueueEvaluations, admission.High)).
			Post("/evaluations", MetricsMiddleware(s.handleEvaluate, "evaluations"))
		r.With(s.admit(QueueEvaluations, admission.High)).
			Post("/challenges/{challengeID}/attempts", MetricsMiddleware(s.handleAttempt, "attempts"))
		r.With(s.admit(QueueProjects, admission.Low)).
			Get("/projects/{projectID}/match", MetricsMiddleware(s.handleMatch, "match"))
		r.With(s.admit(QueueProjects, admission.Critical)).
			Post("/cache/invalidate", MetricsMiddleware(s.handleInvalidate, "cache_invalidate"))
	})
	return r
}

// admit returns the admission middleware of queue, or a pass-through when
// admission is off.
func (s *Server) admit(queue string, p admission.Priority) func(http.Handler) http.Handler {
	if s.admission == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.admission.Middleware(queue, p)
}

// RejectBusy answers a request the admission queue refused.
func RejectBusy(w http.ResponseWriter, _ *http.Request, err error) {
	w.Header().Set("Retry-After", "1")
	writeError(w, http.StatusServiceUnavailable, "service_busy", errors.Join(ErrBusy, err))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil && status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail maps err to a status and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isBadRequest(err):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBusy), errors.Is(err, admission.ErrRejected):
		RejectBusy(w, r, err)
	default:
		s.log.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("requestId", middleware.GetReqID(r.Context())),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func isBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, evaluation.ErrEmptySubmission) ||
		errors.Is(err, challenge.ErrInvalidAttempt)
}

func isNotFound(err error) bool {
	return errors.Is(err, recommend.ErrUserNotFound) ||
		errors.Is(err, recommend.ErrProjectNotFound) ||
		errors.Is(err, model.ErrNotFound)
}

func pathParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}
