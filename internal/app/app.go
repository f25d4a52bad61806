// Package app wires configuration, logging, the analysis service, and
// the HTTP server together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"surveycli/internal/chart"
	"surveycli/internal/config"
	"surveycli/internal/infrastructure"
	"surveycli/internal/middleware"
	"surveycli/internal/survey"
	transporthttp "surveycli/internal/transport/http"
)

// App is the assembled HTTP application
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
}

// New bootstraps the application from the given config file path.
func New(configFile string) (*App, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, paths.LogsDir)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	slog.SetDefault(logger)

	svc := &analysisService{
		logger:   logger,
		renderer: chart.NewExcelRenderer(paths.Resolve(cfg.Analysis.ChartFile), logger),
	}

	router := NewRouter(cfg, logger, svc, paths.Resolve(cfg.Analysis.DataFile))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{cfg: cfg, logger: logger, server: server}, nil
}

// NewRouter assembles the chi router with the full middleware chain.
func NewRouter(cfg *config.Config, logger *slog.Logger, svc transporthttp.AnalysisService, defaultDataFile string) http.Handler {
	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(metrics.Handler)
	if cfg.Server.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst))
	}

	analysisHandler := transporthttp.NewAnalysisHandler(svc, defaultDataFile, cfg.Analysis.MaxMissingGrades, logger)
	r.Mount("/api", analysisHandler.Routes())
	r.Mount("/", transporthttp.NewHealthHandler().Routes())
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}

// Run starts the HTTP server and blocks until shutdown completes.
// SIGINT and SIGTERM trigger a graceful shutdown bounded by the
// configured timeout.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting server", slog.String("addr", a.server.Addr))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// analysisService adapts survey.Run to the transport service interface.
type analysisService struct {
	logger   *slog.Logger
	renderer survey.Renderer
}

func (s *analysisService) Analyze(ctx context.Context, dataFile string, maxMissing int) (*survey.Report, error) {
	return survey.Run(ctx, dataFile, maxMissing,
		survey.WithLogger(s.logger),
		survey.WithRenderer(s.renderer))
}
