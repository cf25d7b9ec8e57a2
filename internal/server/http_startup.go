package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resumetailor/internal/observability"

	"golang.org/x/sync/errgroup"
)

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully and flushes observability.
func (s *Server) Start(ctx context.Context) error {
	defer s.shutdownObservability()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.displayServerInfo(os.Stdout)
	return s.run(ctx, s.setupHTTPServer())
}

// Handler returns the fully wrapped request handler
func (s *Server) Handler() http.Handler {
	mux := s.setupRoutes()
	return s.Observability.HTTPMiddleware()(observability.ObservabilityMiddleware(s.Observability)(mux))
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Observability.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// run serves and watches for shutdown in one errgroup; whichever side
// fails first cancels the other.
func (s *Server) run(ctx context.Context, server *http.Server) error {
	if s.KeyWatcher != nil {
		if err := s.KeyWatcher.Start(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Logger.Info("Starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.Logger.Info("Shutdown requested, starting graceful shutdown")
		return s.performGracefulShutdown(server)
	})

	return g.Wait()
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.KeyWatcher != nil {
		if err := s.KeyWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop key watcher")
		}
	}

	s.cleanupRateLimiter()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanupRateLimiter cleans up the rate limiter resources
func (s *Server) cleanupRateLimiter() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
