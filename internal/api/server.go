// Package api exposes the HTTP interface for the accessibility service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
	"github.com/a11ycheck/a11ycheck/internal/checker"
	"github.com/a11ycheck/a11ycheck/internal/config"
	"github.com/a11ycheck/a11ycheck/internal/export"
	"github.com/a11ycheck/a11ycheck/internal/metrics"
)

// Checker runs one accessibility check end to end.
type Checker interface {
	Run(ctx context.Context, rawURL string, opts accessibility.CheckOptions) (accessibility.CheckResult, error)
}

// Server wires HTTP handlers to the check orchestrator.
type Server struct {
	router   chi.Router
	checker  Checker
	registry *checker.Registry
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(chk Checker, registry *checker.Registry, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	s := &Server{
		checker:  chk,
		registry: registry,
		logger:   logger.Named("api"),
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(cfg.RequestTimeout()))
	r.Use(metrics.Middleware)
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/categories", s.listCategories)
	r.Post("/check", s.runCheck)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The browser pool lazily launches sessions, so readiness only requires
	// that wiring completed.
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ready"})
}

type categoryInfo struct {
	Category string   `json:"category"`
	Weight   float64  `json:"weight"`
	Rules    []string `json:"rules"`
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	cats := s.registry.Categories()
	out := make([]categoryInfo, 0, len(cats))
	for _, cat := range cats {
		m, ok := s.registry.Lookup(cat)
		if !ok {
			continue
		}
		out = append(out, categoryInfo{
			Category: string(cat),
			Weight:   m.Weight(),
			Rules:    checker.RuleIDs(m),
		})
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]any{"categories": out})
}

type checkRequest struct {
	URL     string                     `json:"url"`
	Options accessibility.CheckOptions `json:"options"`
}

func (s *Server) runCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	result, err := s.checker.Run(r.Context(), req.URL, req.Options)
	if err != nil {
		code := accessibility.ErrorCode(err)
		s.logger.Warn("check failed",
			zap.String("url", req.URL),
			zap.String("code", code),
			zap.Error(err),
		)
		s.writeError(w, statusForCode(code), code, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "html" {
		page, renderErr := export.HTML(result)
		if renderErr != nil {
			s.writeError(w, http.StatusInternalServerError, "internal_error", "failed to render report")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, writeErr := w.Write(page); writeErr != nil {
			s.logger.Error("write HTML report failed", zap.Error(writeErr))
		}
		return
	}

	body, err := export.JSON(result)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal_error", "failed to encode result")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Error("write result failed", zap.Error(err))
	}
}

// statusForCode maps stable error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case "invalid_url":
		return http.StatusBadRequest
	case "render_timeout":
		return http.StatusGatewayTimeout
	case "navigation_error":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(s.logger, w, status, errorResponse{Code: code, Message: msg})
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID extracts the request ID set by the middleware, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", RequestID(r.Context())),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				s.writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeJSON(zap.NewNop(), w, http.StatusForbidden, errorResponse{
					Code: "unauthorized", Message: "missing or invalid API key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}
