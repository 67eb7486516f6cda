// internal/server/server.go
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"package-provider/internal/common/config"
	"package-provider/internal/common/errors"
	"package-provider/internal/common/logger"
	"package-provider/internal/delivery"
	"package-provider/internal/models"
)

const (
	trigger         = "http"
	maxEventBytes   = 1 << 20
	defaultAddress  = ":8080"
	defaultShutdown = 10 * time.Second
)

// EventRunner runs one search event against a sink.
type EventRunner interface {
	HandleEvent(ctx context.Context, trigger string, raw []byte, sink delivery.Sink) (*models.RunSummary, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	runner        EventRunner
	sink          delivery.Sink
	checks        map[string]ReadinessCheck
	invokeTimeout time.Duration
	logger        logger.Logger
	httpServer    *http.Server
}

func New(cfg config.ServerConfig, runner EventRunner, sink delivery.Sink, checks map[string]ReadinessCheck, log logger.Logger) *Server {
	addr := cfg.Address
	if addr == "" {
		addr = defaultAddress
	}
	s := &Server{
		runner:        runner,
		sink:          sink,
		checks:        checks,
		invokeTimeout: config.GetDuration(cfg.InvokeTimeout),
		logger:        log,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes builds the router. Exposed for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Post("/v1/events", s.handleEvent)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// ListenAndServe blocks until the server stops. http.ErrServerClosed is
// returned as nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", map[string]interface{}{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultShutdown)
		defer cancel()
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		WriteError(w, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidSearchEvent), "event body too large or unreadable", nil)
		return
	}

	ctx := r.Context()
	if s.invokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.invokeTimeout)
		defer cancel()
	}

	summary, err := s.runner.HandleEvent(ctx, trigger, raw, s.sink)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.IsInputError(err):
			status = http.StatusBadRequest
		case errors.IsDeliveryError(err):
			status = http.StatusBadGateway
		}
		WriteError(w, status, string(errors.CodeOf(err)), err.Error(), summaryMeta(summary))
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

func summaryMeta(summary *models.RunSummary) map[string]string {
	if summary == nil {
		return nil
	}
	return map[string]string{
		"runId":     summary.RunID,
		"delivered": fmt.Sprint(summary.Delivered),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		WriteError(w, http.StatusServiceUnavailable, "NOT_READY", "dependencies unavailable", failed)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}
