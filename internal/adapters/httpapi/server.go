package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/metrics"
	"github.com/andrescamacho/warera-economy-go/internal/application/common"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/config"
)

// Server exposes the economy queries over HTTP
type Server struct {
	mediator  mediator.Mediator
	logger    common.Logger
	validator *config.Validator
	cfg       config.ServerConfig

	metricsPath string
	router      chi.Router
}

// NewServer builds the router. An empty metricsPath disables the metrics route.
func NewServer(m mediator.Mediator, cfg config.ServerConfig, metricsPath string, logger common.Logger) *Server {
	s := &Server{
		mediator:    m,
		logger:      logger,
		validator:   config.NewValidator(),
		cfg:         cfg,
		metricsPath: metricsPath,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/market-data", s.handleMarketData)
		r.Post("/cost", s.handleCost)
		r.Post("/profitability", s.handleProfitability)
		r.Post("/network", s.handleNetwork)
		r.Get("/playground", s.handlePlayground)
		r.Get("/playground/search-user", s.handleSearchUser)
	})

	if s.metricsPath != "" && metrics.IsEnabled() {
		r.Handle(s.metricsPath, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	}

	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log("INFO", "HTTP server listening", map[string]interface{}{"address": s.cfg.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownTimeout := s.cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log("INFO", "HTTP server shutting down", nil)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}

// loggingMiddleware attaches the logger to the request context and logs each request
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := r.Context()
		if s.logger != nil {
			ctx = common.WithLogger(ctx, s.logger)
		}
		next.ServeHTTP(ww, r.WithContext(ctx))

		s.log("DEBUG", "HTTP request", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		})
	})
}

func (s *Server) log(level, message string, metadata map[string]interface{}) {
	if s.logger != nil {
		s.logger.Log(level, message, metadata)
	}
}
