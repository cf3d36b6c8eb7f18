package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tokenLauncher/internal/chain"
	"tokenLauncher/internal/config"
	"tokenLauncher/internal/launch"
	"tokenLauncher/internal/model"
	"tokenLauncher/internal/storage"
	"tokenLauncher/internal/storage/memory"
)

func runLaunch(cmd *cobra.Command, _ []string) error {
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

	flags := cmd.Flags()
	req := model.LaunchRequest{}
	req.Name, _ = flags.GetString("name")
	req.Symbol, _ = flags.GetString("symbol")
	req.Description, _ = flags.GetString("description")
	req.Twitter, _ = flags.GetString("twitter")
	req.Telegram, _ = flags.GetString("telegram")
	req.Website, _ = flags.GetString("website")
	req.ImageURL, _ = flags.GetString("image-url")
	imageFile, _ := flags.GetString("image-file")
	simulateOnly, _ := flags.GetBool("simulate-only")

	opts, err := launchOptions(cmd)
	if err != nil {
		return err
	}
	if req, err = launch.Validate(req); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cfg, cfg.PGDSN != "" && !simulateOnly, logger)
	if err != nil {
		return err
	}
	defer d.close()

	if simulateOnly {
		return simulate(ctx, d, cfg, req, opts)
	}

	if imageFile != "" {
		opts.ImageRef, err = d.pinner.UploadFile(ctx, imageFile)
		if err != nil {
			return fmt.Errorf("pin image file: %w", err)
		}
	}

	var store storage.TokenStore = memory.NewTokenStore()
	if d.store != nil {
		store = d.store
	} else {
		logger.Warn("no pg-dsn configured, the record is not stored")
	}

	result, err := d.orchestrator(cfg, store, nil, logger).LaunchWith(ctx, req, opts)
	if err != nil {
		return err
	}
	logger.Info("launch complete", zap.String("token_address", result.TokenAddress), zap.String("variant", string(opts.Variant)))
	return printJSON(result)
}

func launchOptions(cmd *cobra.Command) (launch.Options, error) {
	flags := cmd.Flags()
	variantName, _ := flags.GetString("variant")
	variant, err := chain.ParseVariant(variantName)
	if err != nil {
		return launch.Options{}, err
	}
	opts := launch.Options{Variant: variant}
	opts.Vesting, _ = flags.GetBool("vesting")

	for flag, dst := range map[string]**big.Int{
		"creator-supply": &opts.CreatorSupply,
		"swap-fee":       &opts.SwapFee,
		"unlock":         &opts.Unlock,
	} {
		raw, _ := flags.GetString(flag)
		n, err := config.ParseBigInt(raw)
		if err != nil {
			return launch.Options{}, fmt.Errorf("%s: %w", flag, err)
		}
		*dst = n
	}
	return opts, nil
}

func simulate(ctx context.Context, d *deps, cfg config.Config, req model.LaunchRequest, opts launch.Options) error {
	outcome, err := d.factory.Simulate(ctx, chain.CreateParams{
		Variant:       opts.Variant,
		Name:          req.Name,
		Symbol:        req.Symbol,
		TokenURI:      model.PlaceholderImage.String(),
		PoolSupply:    cfg.PoolSupply,
		CreatorSupply: opts.CreatorSupply,
		SwapFee:       opts.SwapFee,
		Creator:       d.factory.Owner(),
		Unlock:        opts.Unlock,
		Vesting:       opts.Vesting,
		Value:         cfg.ValueWei,
	})
	if err != nil {
		return err
	}
	addr, err := chain.DeriveTokenAddress(outcome.CoinID)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"token_address": addr.Hex(),
		"coin_id":       outcome.CoinID.String(),
		"amount0":       outcome.Amount0.String(),
		"amount1":       outcome.Amount1.String(),
		"liquidity":     outcome.Liquidity.String(),
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
