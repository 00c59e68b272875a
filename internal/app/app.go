// Package app wires configuration, logging, the dataset store and the
// HTTP transport into a runnable dashboard application.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"naepdash/internal/config"
	"naepdash/internal/dataset"
	"naepdash/internal/errors"
	"naepdash/internal/infrastructure"
	customMiddleware "naepdash/internal/middleware"
	"naepdash/internal/services"
	"naepdash/internal/session"
	handlers "naepdash/internal/transport/http"
)

const (
	// Version identifies the running build.
	Version = "v1.2.0"
	// AppName is the human-facing application name.
	AppName = "NAEP Score-Change Dashboard"
)

// BuildTime is set at compile time via -ldflags.
var BuildTime = "unknown"

// Application represents the main application container
type Application struct {
	Config       *config.Config
	Router       *chi.Mux
	Server       *http.Server
	Store        *dataset.Store
	ChartService *services.ChartService
	Metrics      *infrastructure.Metrics
	Logger       *slog.Logger
	FrontendFS   fs.FS
}

// NewApplication creates a new application instance with dependency
// injection. A dataset that cannot be loaded is a fatal startup error.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("dataset", cfg.Dataset.File))

	app := &Application{
		Config:     cfg,
		Logger:     logger,
		Metrics:    infrastructure.NewMetrics(),
		FrontendFS: frontendFS,
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices loads the dataset and builds the service layer.
func (a *Application) initializeServices() error {
	records, err := dataset.Load(a.Config.Dataset.File, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	a.Store = dataset.NewStore(records, a.Logger)
	if a.Store.SkippedStates() > 0 {
		for i := 0; i < a.Store.SkippedStates(); i++ {
			a.Metrics.SkippedStates.Inc()
		}
	}

	if len(a.Store.SubjectList()) == 0 {
		return fmt.Errorf("dataset has no complete state series")
	}

	sel := session.New(dataset.SubjectMathematics, dataset.Grade8)
	a.ChartService = services.NewChartService(a.Store, sel, a.Metrics, a.Logger)

	a.Logger.Info("services initialized",
		slog.Int("states", len(a.Store.StateList())),
		slog.Int("skipped_series", a.Store.SkippedStates()))

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// Prometheus scrape endpoint stays outside the middleware group
	r.Handle("/metrics", promhttp.HandlerFor(a.Metrics.Registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Metrics(a.Metrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins:   a.allowedOrigins(),
				AllowedMethods:   []string{"GET", "PUT", "OPTIONS"},
				ExposedHeaders:   []string{"X-Request-ID"},
				AllowCredentials: true,
				Logger:           a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupFrontendRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(Version, BuildTime, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.Version)

		errorHandler := errors.NewErrorHandler(a.Logger, false)
		chartHandler := handlers.NewChartHandler(a.ChartService, a.Logger, errorHandler)
		r.Mount("/", chartHandler.Routes())
	})
}

// setupFrontendRoutes serves the embedded single-page frontend.
func (a *Application) setupFrontendRoutes(r chi.Router) {
	if a.FrontendFS == nil {
		a.Logger.Warn("frontend filesystem not available")
		return
	}

	r.With(customMiddleware.Compress(5)).Get("/*", handlers.ServeFrontend(a.FrontendFS, a.Logger))
}

// allowedOrigins returns the CORS origin allowlist.
func (a *Application) allowedOrigins() []string {
	origins := []string{a.Config.BaseURL()}
	origins = append(origins, a.Config.Security.AllowedOrigins...)
	return origins
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the HTTP server and, once it answers health checks,
// opens the local browser.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting server",
		slog.String("address", a.Config.BaseURL()),
		slog.String("version", Version))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if a.Config.Server.OpenBrowser {
		go a.openBrowserWhenReady(ctx)
	}

	return nil
}

// openBrowserWhenReady polls the health endpoint, then opens the browser.
func (a *Application) openBrowserWhenReady(ctx context.Context) {
	url := a.Config.BaseURL()
	healthURL := url + "/api/health"

	for i := 0; i < 10; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		resp, err := http.Get(healthURL)
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			if err := openBrowser(url); err != nil {
				a.Logger.Warn("failed to open browser", slog.String("error", err.Error()))
				fmt.Printf("\nDashboard is running. Open your browser at:\n  %s\n\n", url)
			}
			return
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(250 * time.Millisecond)
	}

	a.Logger.Warn("server did not become ready for browser opening", slog.String("url", url))
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
