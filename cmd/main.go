package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/gradpulse/internal/adapters/dataset"
	"github.com/okian/gradpulse/internal/adapters/http/api"
	"github.com/okian/gradpulse/internal/adapters/http/site"
	"github.com/okian/gradpulse/internal/adapters/http/swagger"
	"github.com/okian/gradpulse/internal/adapters/render"
	app "github.com/okian/gradpulse/internal/app"
	"github.com/okian/gradpulse/internal/config"
	"github.com/okian/gradpulse/internal/pages"
	"github.com/okian/gradpulse/pkg/logger"
	"github.com/okian/gradpulse/pkg/metrics"
)

// HTTP server timeout constants.
const (
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(metrics.WithNamespace(cfg.MetricsNamespace), metrics.WithConstLabels(cfg.MetricsLabels))

	svc := newService(cfg, log)
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatal(ctx, "failed to listen", logger.String("addr", cfg.Addr), logger.Error(err))
	}

	go startSystemMetricsUpdater(ctx)

	if err := run(ctx, cfg, svc, ln, log); err != nil {
		if errors.Is(err, dataset.ErrDataFileNotFound) {
			log.Fatal(ctx, "data file not found", logger.String("path", cfg.DataPath), logger.Error(err))
		}
		log.Fatal(ctx, "server failed", logger.Error(err))
	}
}

// run serves HTTP on ln while the dataset loads, so /healthz answers 503
// until the prewarm completes. It returns after ctx is done and the server has
// shut down, or as soon as the prewarm fails.
func run(ctx context.Context, cfg *config.Config, svc *app.Service, ln net.Listener, log logger.Logger) error {
	srv := &http.Server{
		Handler:           newMux(ctx, svc, log),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		defer close(serveErr)
		log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if err := svc.Start(ctx); err != nil {
		_ = srv.Close()
		return err
	}
	defer svc.Stop()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Info(ctx, "shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newService wires the loader, page registry and renderer from cfg.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	loader := dataset.NewLoader(cfg.DataPath,
		dataset.WithSheets(cfg.EmploymentSheet, cfg.TitlesSheet),
		dataset.WithLogger(log.Named("dataset")))
	threshold := int(math.Round(cfg.CriticalThreshold))
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithLoader(loader),
		app.WithSettings(pages.Settings{
			HomeInstitution:      cfg.HomeInstitution,
			TopN:                 cfg.TopN,
			TopTitles:            cfg.TopTitles,
			RotationWindowMonths: cfg.RotationWindowMonths,
			CriticalThreshold:    &threshold,
		}),
		app.WithRenderer(render.New(render.WithSize(cfg.ChartWidth, cfg.ChartHeight))),
	)
}

// newMux registers the API, the docs and the dashboard site.
func newMux(ctx context.Context, svc *app.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(svc, log.Named("api")).Register(ctx, mux)
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater updates runtime gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
