package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/franfh599/dashboard-autos/internal/config"
	apierrors "github.com/franfh599/dashboard-autos/internal/errors"
	"github.com/franfh599/dashboard-autos/internal/infrastructure"
	customMiddleware "github.com/franfh599/dashboard-autos/internal/middleware"
	"github.com/franfh599/dashboard-autos/internal/services"
	handlers "github.com/franfh599/dashboard-autos/internal/transport/http"
	"github.com/franfh599/dashboard-autos/internal/websocket"
)

const (
	AppName = "Market Suite - Vehicle Import Intelligence"
)

var (
	// VERSION is set at link time with -ldflags "-X .../internal/app.VERSION=..."
	VERSION = "dev"
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(VERSION))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Services      *ServiceContainer
	Hub           *websocket.Hub

	workers    sync.WaitGroup
	stopEvents context.CancelFunc
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Market *services.MarketService
	Health *services.HealthService
}

// NewApplication wires the application from cfg. A nil cfg is loaded with
// config.Load.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, apierrors.NewConfigError("failed to load configuration", err)
		}
		cfg = loaded
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.String("build_id", BuildID))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewPipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// NewMarketService builds the market service for cfg. It is shared by the
// HTTP server and the command line tools.
func NewMarketService(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *services.MarketService {
	return services.NewMarketService(logger, services.MarketConfigFrom(cfg), metrics)
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	market := NewMarketService(a.Config, a.Logger, a.Metrics)
	health := services.NewHealthService(VERSION, BuildTime, market, a.Logger)

	a.Hub = websocket.NewHub(a.Logger, a.Metrics)
	market.SetPublisher(a.Hub)

	a.Services = &ServiceContainer{
		Market: market,
		Health: health,
	}
}

// setupRouter configures the HTTP router with all routes. Middleware order:
// RequestID, RealIP, OTel, Logger, Recoverer, then the security layers and
// the request timeout.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
			a.ErrorHandler,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	// Prometheus scrape endpoint
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))
		r.Get("/events", handlers.NewEventsHandler(a.Hub, a.Config.Security.AllowedOrigins, a.Logger).ServeHTTP)

		marketHandler := handlers.NewMarketHandler(
			a.Services.Market,
			a.Logger,
			a.ErrorHandler,
			a.Config.Server.MaxUploadBytes,
		)
		r.Mount("/market", marketHandler.Routes())
	})
}

// getCORSConfig builds the CORS policy from the security section
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Request-ID",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	a.Logger.Info("CORS configured",
		slog.Any("allowed_origins", cfg.AllowedOrigins))

	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the event hub, loads the dataset, starts the source watcher
// and the HTTP server. A listener failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	hubCtx, stopEvents := context.WithCancel(ctx)
	a.stopEvents = stopEvents
	a.workers.Add(1)
	go func() {
		defer a.workers.Done()
		a.Hub.Run(hubCtx)
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	if a.Config.Data.Watch {
		a.workers.Add(1)
		go func() {
			defer a.workers.Done()
			err := a.Services.Market.Watch(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.Logger.WarnContext(ctx, "Dataset watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://%s", a.Server.Addr)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := a.Services.Market.Close(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing market service", slog.String("error", err.Error()))
	}
	if a.stopEvents != nil {
		a.stopEvents()
	}
	a.workers.Wait()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}
	cancel()

	return a.Stop(context.Background())
}

// performStartupHealthCheck loads the dataset once so the first request does
// not pay for it, and reports a source that cannot be served.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	result := a.Services.Market.Load(ctx)

	switch result.Status {
	case services.StatusOK:
		a.Logger.InfoContext(ctx, "Startup health check passed",
			slog.Int("rows", result.Dataset.Table.Len()),
			slog.String("origin", string(result.Dataset.Origin)))
		return nil
	case services.StatusMissingColumns:
		return fmt.Errorf("dataset loaded without columns %v", result.Missing)
	default:
		return fmt.Errorf("dataset unavailable (%s): %w", result.Status, result.Err)
	}
}
