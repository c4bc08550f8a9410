// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/okian/lingua/internal/app"
	"github.com/okian/lingua/internal/domain/model"
	"github.com/okian/lingua/internal/domain/placement"
	"github.com/okian/lingua/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	CreateSession(ctx context.Context, cfg model.SessionConfig) (string, string, error)
	AppendTurn(ctx context.Context, sessionID string, in service.TurnInput) error
	EndSession(ctx context.Context, sessionID string) (model.ScoreResult, error)
	GetSession(ctx context.Context, sessionID string) (model.Session, error)
	Place(ctx context.Context, scores []placement.Score) (model.PlacementResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	sessionHandler   *SessionHandler
	placementHandler *PlacementHandler

	maxBodyBytes int64
	logger       logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxBodyBytes: defaultMaxBodyBytes, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.sessionHandler = &SessionHandler{deps: deps, srv: s}
	s.placementHandler = &PlacementHandler{deps: deps, srv: s}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("POST /session/start", MetricsMiddleware(s.sessionHandler.HandleStart, "session_start"))
	mux.HandleFunc("POST /session/{id}/turn", MetricsMiddleware(s.sessionHandler.HandleTurn, "session_turn"))
	mux.HandleFunc("POST /session/{id}/end", MetricsMiddleware(s.sessionHandler.HandleEnd, "session_end"))
	mux.HandleFunc("GET /session/{id}", MetricsMiddleware(s.sessionHandler.HandleGet, "session_get"))
	mux.HandleFunc("POST /placement", MetricsMiddleware(s.placementHandler.HandlePlace, "placement"))
	mux.HandleFunc("GET /health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
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
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service error kinds to status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrSessionEnded):
		writeError(w, http.StatusConflict, "session_ended", err)
	case errors.Is(err, ErrPayloadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err)
	default:
		s.logger.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// readBody reads at most maxBodyBytes of the request body.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, WrapKind(op, ErrPayloadTooLarge, err)
		}
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	return body, nil
}
