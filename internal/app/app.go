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
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"vgpulse/internal/config"
	"vgpulse/internal/dataprocessing"
	apierrors "vgpulse/internal/errors"
	"vgpulse/internal/infrastructure"
	customMiddleware "vgpulse/internal/middleware"
	"vgpulse/internal/services"
	handlers "vgpulse/internal/transport/http"
	"vgpulse/internal/validation"
	"vgpulse/pkg/contracts"
)

// BuildID is a unique identifier for this build
var BuildID = generateBuildID()

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(config.AppVersion))
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
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Cache         *dataprocessing.DatasetCache
	Validator     *validation.FileValidator
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// NewApplication loads the configuration, initializes the global logger and
// builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds the application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("build_id", BuildID),
		slog.String("build_time", contracts.BuildTime),
		slog.String("git_commit", contracts.GitCommit))

	validator := validation.NewFileValidator(logger)
	if err := ensureDirectories(cfg, validator); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Observability), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Observability.Environment == "development"),
		Validator:     validator,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// ensureDirectories creates the data directory and checks that the export
// directory is writable
func ensureDirectories(cfg *config.Config, validator *validation.FileValidator) error {
	if cfg.Paths.DataDir != "" {
		if err := os.MkdirAll(cfg.Paths.DataDir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", cfg.Paths.DataDir, err)
		}
	}
	return validator.ValidateOutputDirectory(cfg.Paths.ExportDir)
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	loader := dataprocessing.NewLoader(a.Config.Pipeline.CutoffYear, a.Logger, a.Metrics)
	a.Cache = dataprocessing.NewDatasetCache(loader, a.Config.Cache.TTL, a.Logger, a.Metrics)

	dashboard, err := services.NewDashboardService(a.Config, a.Cache, a.Logger, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize dashboard service: %w", err)
	}

	health := services.NewHealthService(config.AppVersion, a.Cache, a.Config.DatasetPath(), a.Logger)

	a.Services = &ServiceContainer{
		Dashboard: dashboard,
		Health:    health,
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(a.ErrorHandler.Middleware)
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))

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

	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(a.Services.Dashboard, a.Logger, a.ErrorHandler)
		dashboardHandler.RegisterRoutes(r)
	})
}

// getCORSConfig returns CORS configuration based on environment
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	cfg.AllowedOrigins = []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	if a.Config.Security.EnableCORS {
		for _, origin := range a.Config.Security.AllowedOrigins {
			if !contains(cfg.AllowedOrigins, origin) {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	a.Logger.Info("CORS configured",
		slog.String("environment", a.Config.Observability.Environment),
		slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server in the background. A listen failure cancels
// the context through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level),
		slog.String("dataset", a.Config.DatasetPath()),
		slog.String("export_dir", a.Config.Paths.ExportDir))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
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

	a.Cache.Flush()

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

	return a.Stop(context.Background())
}

// performStartupHealthCheck warms the dataset cache and checks that exports
// can be written. Problems are reported as warnings; the server keeps running
// and readiness reflects the dataset state.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	path := a.Config.DatasetPath()
	if err := a.Validator.ValidateDataset(path); err != nil {
		warnings = append(warnings, err.Error())
		if found, ferr := a.Validator.FindDatasets(filepath.Dir(path)); ferr == nil && len(found) > 0 {
			names := make([]string, len(found))
			for i, f := range found {
				names[i] = f.Name
			}
			a.Logger.WarnContext(ctx, "Configured dataset not usable, other datasets found",
				slog.String("dataset", path),
				slog.Any("candidates", names))
		}
	} else if status, err := a.Services.Dashboard.Summary(ctx); err != nil {
		warnings = append(warnings, fmt.Sprintf("dataset not loaded: %v", err))
	} else {
		a.Logger.InfoContext(ctx, "Dataset warmed",
			slog.Int("records", status.Summary.Records),
			slog.Int("skipped", status.Summary.Skipped),
			slog.Int("first_year", status.Summary.FirstYear),
			slog.Int("last_year", status.Summary.LastYear))
	}

	if err := a.Validator.ValidateOutputDirectory(a.Config.Paths.ExportDir); err != nil {
		warnings = append(warnings, err.Error())
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
