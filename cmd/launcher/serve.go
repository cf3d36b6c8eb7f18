package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tokenLauncher/internal/api"
	"tokenLauncher/internal/chain"
	"tokenLauncher/internal/config"
	"tokenLauncher/internal/launch"
	"tokenLauncher/internal/metrics"
	"tokenLauncher/internal/storage"
	"tokenLauncher/internal/storage/memory"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	var (
		launcher launch.Launcher
		store    storage.TokenStore
	)
	if cfg.Production() {
		d, err := buildDeps(ctx, cfg, true, logger)
		if err != nil {
			return err
		}
		defer d.close()

		applied, err := d.store.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		store = d.store
		launcher = d.orchestrator(cfg, store, m, logger)

		logger.Info("production mode",
			zap.String("rpc", cfg.RPCURL),
			zap.String("factory", d.factory.Address().Hex()),
			zap.String("owner", d.factory.Owner().Hex()),
			zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
			zap.Strings("migrations", applied),
			zap.String("pool_supply", cfg.PoolSupply.String()),
			zap.String("value_wei", cfg.ValueWei.String()),
		)
	} else {
		short := &launch.ShortCircuit{Metrics: m}
		if cfg.ShortCircuitAddress != "" {
			short.Address, err = chain.ParseAddress(cfg.ShortCircuitAddress)
			if err != nil {
				return fmt.Errorf("short-circuit address: %w", err)
			}
		}
		launcher = short
		store = memory.NewTokenStore()
		logger.Info("development mode, launches are answered without external calls",
			zap.String("token_address", short.Address.Hex()),
		)
	}

	server := api.NewServer(api.Config{
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
	}, launcher, store, m, logger.Named("http"))

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", zap.String("addr", cfg.Listen), zap.String("mode", cfg.Mode))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
