// Package main implements the entry point for the MP3 analysis
// service: an HTTP gateway that accepts audio uploads, persists them
// to a JetStream object store, and reports the number of MPEG audio
// frames they contain.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/mrjpierce/mp3-file-analysis/analyzer"
	"github.com/mrjpierce/mp3-file-analysis/config"
	gatewayhttp "github.com/mrjpierce/mp3-file-analysis/gateway/http"
	"github.com/mrjpierce/mp3-file-analysis/health"
	"github.com/mrjpierce/mp3-file-analysis/metric"
	"github.com/mrjpierce/mp3-file-analysis/natsclient"
	"github.com/mrjpierce/mp3-file-analysis/parser"
	"github.com/mrjpierce/mp3-file-analysis/pkg/retry"
	"github.com/mrjpierce/mp3-file-analysis/storage/objectstore"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "mp3analysis"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	slog.SetDefault(bootstrapLogger(cliCfg))

	slog.Info("Starting MP3 analysis service",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	logger := configuredLogger(cliCfg, cfg)
	slog.SetDefault(logger)

	ctx := context.Background()

	metricsRegistry := metric.NewMetricsRegistry()
	metrics := metricsRegistry.CoreMetrics()

	natsClient, err := buildNATSClient(cfg, metrics, logger)
	if err != nil {
		return fmt.Errorf("create NATS client: %w", err)
	}
	defer func() {
		if err := natsClient.Close(ctx); err != nil {
			slog.Warn("NATS close", "error", err)
		}
	}()

	if err := connectToNATS(ctx, natsClient); err != nil {
		return err
	}

	store, err := objectstore.New(ctx, natsClient, objectstore.Config{
		Bucket:      cfg.Storage.Bucket,
		Description: cfg.Storage.Description,
		MaxBytes:    cfg.Storage.MaxBytes,
		TTL:         cfg.Storage.TTL,
		Replicas:    cfg.Storage.Replicas,
	}, metricsRegistry)
	if err != nil {
		return fmt.Errorf("open object store: %w", err)
	}

	service, err := buildAnalyzer(cfg, store, metrics, logger)
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}

	monitor := health.NewMonitor()
	monitor.SetMetrics(metrics)
	gateway, err := gatewayhttp.NewServer(gatewayConfig(cfg), service,
		gatewayhttp.WithLogger(logger),
		gatewayhttp.WithMetrics(metrics),
		gatewayhttp.WithMetricsRegistry(metricsRegistry),
		gatewayhttp.WithHealth(monitor,
			health.NewNATSChecker(natsClient),
			health.NewStoreChecker(store)))
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	return serve(ctx, cfg, gateway, metricsRegistry, cliCfg.ShutdownTimeout)
}

// loadConfig resolves configuration from defaults, the optional file
// layer, and environment overrides.
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		loader.AddLayer(path)
	}
	return loader.Load()
}

func buildNATSClient(cfg *config.Config, metrics *metric.Metrics, logger *slog.Logger) (*natsclient.Client, error) {
	opts := []natsclient.ClientOption{
		natsclient.WithClientName(cfg.Service.Name),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(cfg.NATS.ReconnectWait),
		natsclient.WithMetrics(metrics),
		natsclient.WithLogger(slogAdapter{logger}),
	}
	if cfg.NATS.Username != "" {
		opts = append(opts, natsclient.WithUserInfo(cfg.NATS.Username, cfg.NATS.Password))
	}
	if cfg.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.NATS.Token))
	}
	return natsclient.NewClient(cfg.NATS.URLs[0], opts...)
}

// connectToNATS establishes the connection and waits for it to be
// ready. Initial connection attempts retry with backoff so the
// service survives starting before its NATS server does.
func connectToNATS(ctx context.Context, client *natsclient.Client) error {
	slog.Info("Connecting to NATS")
	if err := retry.Do(ctx, retry.Quick(), func() error {
		return client.Connect(ctx)
	}); err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return fmt.Errorf("NATS connection timeout: %w", err)
	}
	return nil
}

func buildAnalyzer(cfg *config.Config, store *objectstore.Store,
	metrics *metric.Metrics, logger *slog.Logger) (*analyzer.Service, error) {
	registry := parser.NewRegistry()
	if err := registry.Register(parser.NewMPEG1Layer3WithConfig(parser.ValidateConfig{
		MaxFrames:          cfg.Analyzer.MaxValidateFrames,
		ConsistencyFrames:  cfg.Analyzer.ConsistencyFrames,
		AlignmentTolerance: cfg.Analyzer.AlignmentTolerance,
	})); err != nil {
		return nil, err
	}

	return analyzer.NewService(store, registry,
		analyzer.WithMetrics(metrics),
		analyzer.WithLogger(logger),
		analyzer.WithKeyPrefix(cfg.Storage.KeyPrefix))
}

func gatewayConfig(cfg *config.Config) gatewayhttp.Config {
	return gatewayhttp.Config{
		Port:            cfg.HTTP.Port,
		MaxUploadBytes:  cfg.HTTP.MaxUploadBytes,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		EnableCORS:      cfg.HTTP.EnableCORS,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		TLS:             cfg.HTTP.TLS,
	}
}

// serve runs the gateway and the metrics endpoint until a signal
// arrives, then shuts both down gracefully.
func serve(ctx context.Context, cfg *config.Config, gateway *gatewayhttp.Server,
	registry *metric.MetricsRegistry, shutdownTimeout time.Duration) error {
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	go func() {
		if err := gateway.Start(signalCtx); err != nil {
			errCh <- fmt.Errorf("gateway: %w", err)
		}
	}()

	var metricsServer *metric.Server
	if cfg.Metrics.Enabled {
		metricsServer = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry, cfg.Metrics.TLS)
		go func() {
			if err := metricsServer.Start(); err != nil {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
		slog.Info("Metrics endpoint enabled", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
	}

	select {
	case <-signalCtx.Done():
		slog.Info("Shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := gateway.Stop(shutdownCtx); err != nil {
		slog.Warn("Gateway shutdown", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			slog.Warn("Metrics server shutdown", "error", err)
		}
	}
	slog.Info("Shutdown complete")
	return nil
}

// slogAdapter bridges slog to the natsclient Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Printf(format string, args ...any) {
	a.logger.Info(fmt.Sprintf(format, args...))
}

func (a slogAdapter) Errorf(format string, args ...any) {
	a.logger.Error(fmt.Sprintf(format, args...))
}

func (a slogAdapter) Debugf(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...))
}
