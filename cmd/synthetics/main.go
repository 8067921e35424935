// Package main is the entry point for the synthetic orderbook service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fd1az/synthetic-orderbook/business/synthetics"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/app"
	synDI "github.com/fd1az/synthetic-orderbook/business/synthetics/di"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/infra/httpapi"
	"github.com/fd1az/synthetic-orderbook/internal/apm"
	"github.com/fd1az/synthetic-orderbook/internal/config"
	"github.com/fd1az/synthetic-orderbook/internal/health"
	"github.com/fd1az/synthetic-orderbook/internal/logger"
	"github.com/fd1az/synthetic-orderbook/internal/metrics"
	"github.com/fd1az/synthetic-orderbook/internal/monolith"
	"github.com/fd1az/synthetic-orderbook/pkg/ui"
)

const shutdownFlush = 5 * time.Second

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	watchMode := flag.Bool("watch", false, "Run the live synthetic book view instead of the HTTP API")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("synthetic-orderbook %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *watchMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, watchMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The live view owns the terminal: logs go to the log file or nowhere.
	var out io.Writer = os.Stderr
	if cfg.App.LogFile != "" {
		w := logger.NewFileWriter(cfg.App.LogFile)
		defer w.Close()
		out = w
	} else if watchMode {
		out = io.Discard
	}

	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	log.Info(ctx, "starting synthetic orderbook",
		"version", version,
		"environment", cfg.App.Environment,
		"watch", watchMode,
	)

	traceProvider, metricsHandler, err := setupTelemetry(cfg, log, watchMode)
	if err != nil {
		return err
	}
	defer traceProvider.Stop()

	mono := monolith.New(cfg, log)
	defer mono.Close()

	checker := health.New(version)
	mono.Container().Register("health", checker)

	modules := []monolith.Module{
		&synthetics.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	if watchMode {
		return runWatch(ctx, cfg, synDI.GetSyntheticsService(mono.Services()))
	}

	router := httpapi.NewRouter(httpapi.RouterOptions{
		Handler:     synDI.GetHTTPHandler(mono.Services()),
		Health:      checker,
		Metrics:     metricsHandler,
		Log:         log,
		ServiceName: cfg.Telemetry.ServiceName,
	})

	return serve(ctx, cfg.Server, router, log)
}

// setupTelemetry installs tracing and metrics when enabled. The returned
// handler is nil unless prometheus is enabled.
func setupTelemetry(cfg *config.Config, log logger.LoggerInterface, watchMode bool) (apm.TraceProvider, http.Handler, error) {
	if !cfg.Telemetry.Enabled {
		return apm.NewEmptyTraceProvider(), nil, nil
	}

	traceCfg := apm.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Provider:    apm.Provider(cfg.Telemetry.TraceProvider),
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Headers:     cfg.Telemetry.OTLPHeaders,
	}
	if watchMode && traceCfg.Provider == apm.ConsoleProvider {
		traceCfg.Writer = io.Discard
	}

	tp, err := apm.NewTraceProvider(traceCfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init tracing: %w", err)
	}

	readers := metrics.Readers{
		Prometheus:   cfg.Telemetry.PrometheusEnabled,
		OTLP:         cfg.Telemetry.OTLPMetrics,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
	}
	if readers.OTLP {
		headers, err := apm.ParseHeaders(cfg.Telemetry.OTLPHeaders)
		if err != nil {
			tp.Stop()
			return nil, nil, fmt.Errorf("invalid otlp headers: %w", err)
		}
		readers.OTLPHeaders = headers
	}

	mp, err := metrics.NewMetricProvider(
		metrics.WithServiceName(cfg.Telemetry.ServiceName),
		metrics.WithReaders(readers),
	)
	if err != nil {
		tp.Stop()
		return nil, nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	var handler http.Handler
	if cfg.Telemetry.PrometheusEnabled {
		handler = mp.Handler()
	}

	return stopAll{tp, mp}, handler, nil
}

// stopAll stops tracing and flushes metrics.
type stopAll struct {
	tp apm.TraceProvider
	mp *metrics.Provider
}

func (s stopAll) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownFlush)
	defer cancel()
	return errors.Join(s.tp.Stop(), s.mp.Shutdown(ctx))
}

func serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler, log logger.LoggerInterface) error {
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func runWatch(ctx context.Context, cfg *config.Config, svc *app.Service) error {
	legs := make([]app.LegRequest, 0, len(cfg.Watch.Legs))
	for _, l := range cfg.Watch.Legs {
		legs = append(legs, app.LegRequest{Exchange: l.Exchange, Symbol: l.Symbol, Side: l.Side})
	}
	req := app.Request{Legs: legs, Depth: cfg.Watch.Depth}

	build := func(ctx context.Context) (*domain.Result, error) {
		res, err := svc.Create(ctx, req)
		if res != nil && !res.Success {
			// Validation failures are rendered from the result.
			return res, nil
		}
		return res, err
	}

	return ui.Run(ctx, build, cfg.Watch.Interval, cfg.Watch.Depth)
}
