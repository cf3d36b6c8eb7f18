package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"tokenLauncher/internal/chain"
	"tokenLauncher/internal/config"
	"tokenLauncher/internal/launch"
	"tokenLauncher/internal/metrics"
	"tokenLauncher/internal/pinning"
	"tokenLauncher/internal/storage"
	"tokenLauncher/internal/storage/postgres"
)

// deps are the production collaborators. close releases them in reverse order.
type deps struct {
	pinner  *pinning.Client
	chain   *chain.Client
	factory *chain.Factory
	store   *postgres.Store
}

func (d *deps) close() {
	if d.store != nil {
		d.store.Close()
	}
	if d.chain != nil {
		d.chain.Close()
	}
}

// buildDeps connects to the pinning service, the chain and, when needStore is
// set, Postgres.
func buildDeps(ctx context.Context, cfg config.Config, needStore bool, logger *zap.Logger) (*deps, error) {
	d := &deps{}

	pinner, err := pinning.NewClient(pinning.Config{
		JWT:               cfg.PinataJWT,
		APIBase:           cfg.PinataAPI,
		GatewayBase:       cfg.IPFSGateway,
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.PinataRPS,
	}, &http.Client{Timeout: cfg.HTTPTimeout}, logger.Named("pinning"))
	if err != nil {
		return nil, fmt.Errorf("pinning client: %w", err)
	}
	d.pinner = pinner

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	key, err := chain.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	factoryCfg := chain.FactoryConfig{
		SimulateRetries: cfg.SimulateRetries,
		RetryBackoff:    cfg.RetryBackoff,
		ConfirmTimeout:  cfg.ConfirmTimeout,
	}
	if cfg.Factory != "" {
		factoryCfg.Address, err = chain.ParseAddress(cfg.Factory)
		if err != nil {
			return nil, fmt.Errorf("factory address: %w", err)
		}
	}

	d.chain, err = chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	d.factory, err = chain.NewFactory(factoryCfg, d.chain, key, logger.Named("chain"))
	if err != nil {
		d.close()
		return nil, err
	}

	if needStore {
		d.store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	}
	return d, nil
}

func (d *deps) orchestrator(cfg config.Config, store storage.TokenStore, m *metrics.Metrics, logger *zap.Logger) *launch.Orchestrator {
	var reconciler storage.Reconciler
	if cfg.ReconcileOut != "" {
		reconciler = storage.NewJsonlReconciler(cfg.ReconcileOut)
	}
	return launch.NewOrchestrator(launch.Config{
		PoolSupply:    cfg.PoolSupply,
		Value:         cfg.ValueWei,
		LaunchTimeout: cfg.LaunchTimeout,
	}, d.pinner, d.factory, store, reconciler, m, logger.Named("launch"))
}
