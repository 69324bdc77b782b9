package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kozaktomas/cubescout/internal/config"
	"github.com/kozaktomas/cubescout/internal/constants"
	"github.com/kozaktomas/cubescout/internal/web/handlers"
	"github.com/kozaktomas/cubescout/internal/web/middleware"
)

// Sources are the read-only views the status page exposes.
type Sources struct {
	Ledger handlers.Ledger
	Names  handlers.Names
	Stats  handlers.StatsSource
	Frames handlers.FrameSource
}

// Server represents the status page server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	status     *handlers.StatusHandler
	logger     *zap.Logger
}

// NewServer creates a new status page server
func NewServer(cfg config.WebConfig, src Sources, logger *zap.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		status: handlers.NewStatusHandler(src.Ledger, src.Names, src.Stats, src.Frames),
		logger: logger,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.SecurityHeaders())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting status page", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down status page")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
