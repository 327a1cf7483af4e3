// Package server exposes the staffing assistant over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/spigell/hr-assistant/internal/pipeline"
	"github.com/spigell/hr-assistant/internal/roster"
)

const (
	DefaultAddr          = ":8000"
	DefaultMaxConcurrent = 8

	shutdownTimeout = 30 * time.Second
)

// Processor answers queries over a fixed roster.
type Processor interface {
	Process(ctx context.Context, query string) (*pipeline.QueryResult, error)
	Roster() *roster.Store
}

// Config holds server configuration.
type Config struct {
	Addr          string `mapstructure:"addr"`
	MaxConcurrent int    `mapstructure:"max-concurrent"`
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	processor  Processor
	queries    *semaphore.Weighted
	logger     *zap.Logger
}

// New creates a new server instance.
func New(cfg Config, processor Processor, logger *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		processor: processor,
		queries:   semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /employees", s.handleEmployees)
	mux.HandleFunc("GET /employees/search", s.handleSearch)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withRequestID(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
