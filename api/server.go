// Package api - Thin JSON API over a calculator session.
// Handlers translate HTTP to session edits; they never compute figures.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"import-cost/core/output"
	"import-cost/core/session"
	"import-cost/core/types"
	"import-cost/internal/metrics"
)

// Options configures a Server
type Options struct {
	// Version is reported by /health and /version
	Version string

	// Session receives the interactive edits
	Session *session.Session

	// Defaults seed stateless POST /estimate calculations
	Defaults types.Configuration

	// Presenter formats traces and exports
	Presenter output.Presenter

	Logger   *zap.Logger
	Registry *prometheus.Registry

	// AllowedOrigins lists origins allowed to call the API from a browser
	AllowedOrigins []string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the API server
type Server struct {
	router   chi.Router
	opts     Options
	logger   *zap.Logger
	validate *validator.Validate
	metrics  *metrics.HTTPMetrics
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Presenter == (output.Presenter{}) {
		opts.Presenter = output.DefaultPresenter()
	}

	s := &Server{
		router:   chi.NewRouter(),
		opts:     opts,
		logger:   opts.Logger,
		validate: validator.New(),
		metrics:  metrics.NewHTTPMetrics(opts.Registry),
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	r := s.router
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(instrument(s.metrics))
	r.Use(requestLogger(s.logger))
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Handle("/metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))

	r.Post("/estimate", s.handleEstimate)

	if s.opts.Session != nil {
		r.Route("/products", func(pr chi.Router) {
			pr.Get("/", s.handleListProducts)
			pr.Post("/", s.handleAddProduct)
			pr.Patch("/{id}", s.handleUpdateProduct)
			pr.Delete("/{id}", s.handleRemoveProduct)
		})
		r.Post("/sample", s.handleSample)
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleSetConfig)
		r.Get("/result", s.handleResult)
		r.Get("/trace", s.handleTrace)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
