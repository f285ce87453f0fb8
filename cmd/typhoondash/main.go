package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"typhoondash/internal/backend"
	"typhoondash/internal/cli"
	"typhoondash/internal/config"
	"typhoondash/internal/core"
	apphttp "typhoondash/internal/http"
	applog "typhoondash/internal/log"
	"typhoondash/internal/observability"
	"typhoondash/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(applog.New(applog.DefaultConfig()))
	logger := cli.SetupLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	factory := backend.NewFactory(logger.With(applog.FieldComponent, applog.ComponentBackend).Logger)
	data, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}
	defer func() {
		if err := data.Close(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	svc := services.NewDashboardService(data.Loader, services.DashboardOptions{
		TTL:          cfg.DataTTL,
		DefaultRange: core.YearRange{From: cfg.DefaultYearFrom, To: cfg.DefaultYearTo},
		Metrics:      metrics,
		Logger:       logger,
	})

	// The first load happens before the listener opens so a broken data
	// source fails the process instead of every request.
	if err := svc.Ready(ctx); err != nil {
		return fmt.Errorf("initial dataset load: %w", err)
	}
	logger.Info("Initial dataset loaded", applog.FieldOperation, applog.OpStartup, applog.FieldBackend, svc.Backend())

	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return err
	}
	srv, err := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:         logger,
		Metrics:        metrics,
		TrustedProxies: proxies,
	})
	if err != nil {
		return err
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	logger.Info("Starting typhoondash server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		applog.FieldBackend, svc.Backend(),
		"data_ttl", cfg.DataTTL.String())
	return cli.Serve(ctx, logger, srv, cfg.ShutdownTimeout)
}
