// Package server provides the HTTP surface: the generation reverse proxy,
// the job-run callable and the auxiliary endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cardforge/cardforge-go/internal/metrics"
	"github.com/cardforge/cardforge-go/internal/service"
)

// JobRunner runs one extraction job to completion.
type JobRunner interface {
	Run(ctx context.Context, jobID, callerID string) (int, error)
}

// SocialAPI covers the auxiliary callable operations.
type SocialAPI interface {
	RecordShareEvent(ctx context.Context, shareID, counter, callerID string) (bool, error)
	Checkin(ctx context.Context, userID string) (*service.CheckinResult, error)
	SecurityQuestion(ctx context.Context, userID string) (string, error)
	ResetPassword(ctx context.Context, userID, answer, newPassword string) error
}

// Server wires the HTTP routes to their services.
type Server struct {
	router  *chi.Mux
	logger  *slog.Logger
	addr    string
	runner  JobRunner
	social  SocialAPI
	metrics *metrics.Collector
}

// New creates the HTTP server. The metrics collector may be nil.
func New(addr string, runner JobRunner, social SocialAPI, proxy *Proxy, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		logger:  logger,
		addr:    addr,
		runner:  runner,
		social:  social,
		metrics: collector,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(CORS)
	r.Use(CallerIdentity)

	// The proxy handles its own CORS and preflight so it stays a faithful
	// standalone passthrough.
	r.Handle("/proxy/*", proxy)
	r.Handle("/proxy", proxy)

	r.Post("/jobs/run", s.handleRunJob)

	r.Post("/shares/{shareID}/{counter}", s.handleShareEvent)
	r.Post("/checkin", s.handleCheckin)
	r.Get("/users/{userID}/security-question", s.handleSecurityQuestion)
	r.Post("/users/{userID}/reset-password", s.handleResetPassword)

	r.Get("/stats", s.handleStats)

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server and blocks until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		respondJSON(w, http.StatusOK, map[string]any{})
		return
	}
	respondJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON error envelope for callable endpoints.
type errorBody struct {
	Code    service.Code `json:"code"`
	Message string       `json:"message"`
}

// respondError maps a service error to its HTTP status and envelope.
func respondError(w http.ResponseWriter, err error) {
	code := service.ErrCode(err)
	msg := err.Error()

	var coded *service.CodedError
	if errors.As(err, &coded) {
		msg = coded.Message
	}

	respondJSON(w, codeStatus(code), map[string]errorBody{
		"error": {Code: code, Message: msg},
	})
}

func codeStatus(code service.Code) int {
	switch code {
	case service.CodeUnauthenticated:
		return http.StatusUnauthorized
	case service.CodeInvalidArgument:
		return http.StatusBadRequest
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
