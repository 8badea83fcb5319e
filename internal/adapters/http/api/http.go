// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/crossing/internal/adapters/http/swagger"
	"github.com/okian/crossing/internal/domain/difficulty"
	"github.com/okian/crossing/internal/domain/relay"
	"github.com/okian/crossing/pkg/logger"
	"github.com/okian/crossing/pkg/metrics"
)

// maxBodyBytes bounds request bodies for the JSON endpoints.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers.
type Dependencies interface {
	relay.Relay
	difficulty.Scorer
}

// RejectionRecorder is implemented by dependencies that count predict requests
// rejected before they reach the scorer.
type RejectionRecorder interface {
	RecordRejectedPrediction(ctx context.Context, err error)
}

// Server wires HTTP routes for the controller relay and the scorer.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	controllerHandler *ControllerHandler
	streamHandler     *StreamHandler
	predictHandler    *PredictHandler

	log            logger.Logger
	metrics        *metrics.Manager
	allowedOrigins []string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used by handlers and middleware.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records HTTP, stream and rejection metrics on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithAllowedOrigins sets the CORS origins. "*" allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		log:            logger.NewNop(),
		metrics:        metrics.Default(),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler(s.metrics)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.controllerHandler = NewControllerHandler(deps, s.log)
	s.streamHandler = NewStreamHandler(deps, s.log, s.metrics)
	s.predictHandler = NewPredictHandler(deps, s.log, s.metrics)
	return s
}

// Routes builds the router with middleware, API routes and documentation.
func (s *Server) Routes(ctx context.Context) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RecoveryMiddleware)
	r.Use(s.CORSMiddleware)

	r.Post("/controller", s.MetricsMiddleware(s.controllerHandler.HandleSet, "controller"))
	r.Get("/controller", s.MetricsMiddleware(s.controllerHandler.HandlePoll, "controller"))
	r.Get("/controller-stream", s.MetricsMiddleware(s.streamHandler.HandleStream, "controller_stream"))
	r.Post("/predict", s.MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))

	r.Get("/healthz", s.MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", s.MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)

	swagger.Register(ctx, r)
	return r
}

type directionResponse struct {
	Success   bool   `json:"success"`
	Direction string `json:"direction"`
}

type difficultyResponse struct {
	Success    bool    `json:"success"`
	Difficulty float64 `json:"difficulty"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFailure reports every failure the same way: 500 with the error text.
func writeFailure(w http.ResponseWriter, err error) {
	msg := http.StatusText(http.StatusInternalServerError)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, failureResponse{Success: false, Error: msg})
}

// decodeBody reads one JSON value from the request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body must be a JSON object", ErrBadRequest)
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
