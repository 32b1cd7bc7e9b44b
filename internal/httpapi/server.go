// Package httpapi exposes the dispatcher and its read models over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// HeaderUserID names the user a request acts for.
	HeaderUserID = "X-User-ID"
	// HeaderSessionID names the session whose context a request uses.
	HeaderSessionID = "X-Session-ID"

	defaultListLimit = 20
	maxListLimit     = 200
	maxBodyBytes     = 64 << 10
)

// Dispatcher is the part of service.Dispatcher the API serves.
type Dispatcher interface {
	Handle(ctx context.Context, req service.Request) (service.Response, error)
	Stats(ctx context.Context, userID string) service.Stats
	Context(ctx context.Context, sessionID string) domain.SessionContext
	ProfileSnapshot(ctx context.Context, userID string) service.ProfileSnapshot
	History(ctx context.Context, userID string, limit int) []domain.TaskHistoryEntry
	Chats(ctx context.Context, userID string, limit int) []domain.ChatLogEntry
	Reset(ctx context.Context, userID, sessionID string) error
}

// Server holds the HTTP handlers.
type Server struct {
	dispatcher  Dispatcher
	gatherer    prometheus.Gatherer
	logger      *zap.Logger
	defaultUser string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer serves g at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewServer creates a Server. Requests without X-User-ID act for
// defaultUser.
func NewServer(d Dispatcher, defaultUser string, opts ...Option) *Server {
	s := &Server{dispatcher: d, logger: zap.NewNop(), defaultUser: defaultUser}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	s.RegisterRoutes(r)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// RegisterRoutes registers the /api routes.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/command", s.Command)
		r.Get("/stats", s.GetStats)
		r.Get("/context", s.GetContext)
		r.Get("/profile", s.GetProfile)
		r.Get("/history", s.GetHistory)
		r.Get("/chats", s.GetChats)
		r.Post("/reset", s.Reset)
	})
}

// NewHTTPServer wraps handler with the server timeouts used by serve.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
}

type commandRequest struct {
	Input string `json:"input"`
}

// Command dispatches one command.
func (s *Server) Command(w http.ResponseWriter, r *http.Request) {
	var body commandRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, sessionID := s.identity(r)
	resp, err := s.dispatcher.Handle(r.Context(), service.Request{
		UserID:    userID,
		SessionID: sessionID,
		Input:     body.Input,
	})
	if errors.Is(err, service.ErrEmptyInput) {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("dispatch failed", zap.String("user_id", userID), zap.Error(err))
		Error(w, http.StatusInternalServerError, "dispatch failed")
		return
	}
	JSON(w, http.StatusOK, resp)
}

// GetStats returns the user's progress.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := s.identity(r)
	JSON(w, http.StatusOK, s.dispatcher.Stats(r.Context(), userID))
}

// GetContext returns the session's energy and flow state.
func (s *Server) GetContext(w http.ResponseWriter, r *http.Request) {
	_, sessionID := s.identity(r)
	JSON(w, http.StatusOK, s.dispatcher.Context(r.Context(), sessionID))
}

// GetProfile returns the trait profile with its badge, tips, and usage, all
// scored from one read of the aggregates.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := s.identity(r)
	JSON(w, http.StatusOK, s.dispatcher.ProfileSnapshot(r.Context(), userID))
}

// GetHistory returns the newest task history entries.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	userID, _ := s.identity(r)
	JSON(w, http.StatusOK, s.dispatcher.History(r.Context(), userID, limit))
}

// GetChats returns the newest logged exchanges.
func (s *Server) GetChats(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	userID, _ := s.identity(r)
	JSON(w, http.StatusOK, s.dispatcher.Chats(r.Context(), userID, limit))
}

// Reset wipes the user's records and session context.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	userID, sessionID := s.identity(r)
	if err := s.dispatcher.Reset(r.Context(), userID, sessionID); err != nil {
		s.logger.Error("reset failed", zap.String("user_id", userID), zap.Error(err))
		Error(w, http.StatusInternalServerError, "reset failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// identity resolves the user and session for r. The session defaults to
// the user.
func (s *Server) identity(r *http.Request) (userID, sessionID string) {
	userID = strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		userID = s.defaultUser
	}
	sessionID = strings.TrimSpace(r.Header.Get(HeaderSessionID))
	if sessionID == "" {
		sessionID = userID
	}
	return userID, sessionID
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		Error(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return min(n, maxListLimit), true
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
