// Package server wires the connect services, the REST compatibility routes
// and /metrics into one HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/castlemilk/savetrack/internal/config"
	"github.com/castlemilk/savetrack/internal/metrics"
	"github.com/castlemilk/savetrack/internal/rpc"
	"github.com/castlemilk/savetrack/internal/service"
)

const shutdownTimeout = 15 * time.Second

// Server is the savetrack HTTP server.
type Server struct {
	svc     *service.FinanceService
	cfg     config.ServerConfig
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func New(svc *service.FinanceService, cfg config.ServerConfig, log logrus.FieldLogger, m *metrics.Metrics) *Server {
	return &Server{
		svc:     svc,
		cfg:     cfg,
		log:     log.WithField("component", "server"),
		metrics: m,
	}
}

// Handler returns the full handler stack: CORS and h2c around the router.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			"User-Agent",
			"X-User-Agent",
			"X-Request-Id",
		},
		ExposedHeaders: []string{
			"Grpc-Status",
			"Grpc-Message",
		},
	})
	return h2c.NewHandler(c.Handler(s.Router()), &http2.Server{})
}

// Router returns the chi router with every route mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log, s.metrics))
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout.Duration > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout.Duration))
	}

	interceptors := connect.WithInterceptors(ObservabilityInterceptor(s.log, s.metrics))
	goalPath, goalHandler := rpc.NewGoalServiceHandler(s.svc, interceptors)
	insightsPath, insightsHandler := rpc.NewInsightsServiceHandler(s.svc, interceptors)
	r.Handle(goalPath+"*", goalHandler)
	r.Handle(insightsPath+"*", insightsHandler)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/transactions", s.handleListTransactions)
		r.Post("/savings", s.handleRecordSavings)

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleListGoals)
			r.Post("/", s.handleCreateGoal)
			r.Get("/{id}", s.handleGetGoal)
			r.Get("/{id}/predictions", s.handlePredictGoal)
		})

		r.Route("/insights", s.insightRoutes)
		// Legacy dashboard paths.
		r.Route("/lstm", s.insightRoutes)
	})

	return r
}

func (s *Server) insightRoutes(r chi.Router) {
	r.Get("/next-week-savings", s.handleOutlook("weekly"))
	r.Get("/next-month-savings", s.handleOutlook("monthly"))
	r.Get("/savings-projection", s.handleSavingsProjection)
	r.Get("/series", s.handleSeries)
	r.Get("/expenses", s.handleSeriesOf(rpc.SeriesKindExpenses, "expenses"))
	r.Get("/savings", s.handleSeriesOf(rpc.SeriesKindSavings, "savings"))
	r.Get("/category-budget", s.handleCategoryBudget)
}

// HTTPServer builds the http.Server for addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout.Duration,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := s.HTTPServer(":" + s.cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}
