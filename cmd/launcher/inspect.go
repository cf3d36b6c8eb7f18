package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"tokenLauncher/internal/chain"
	"tokenLauncher/internal/config"
)

func runInspect(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadInspect(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	token, err := parseTokenArg(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	info, err := chain.ReadToken(ctx, client, token, logger.Named("chain"))
	if err != nil {
		return fmt.Errorf("inspect %s: %w", token.Hex(), err)
	}
	return printJSON(info)
}

// parseTokenArg accepts a hex address or the decimal coin id it was derived from.
func parseTokenArg(arg string) (common.Address, error) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "0x") || strings.HasPrefix(arg, "0X") {
		return chain.ParseAddress(arg)
	}
	coinID, err := config.ParseBigInt(arg)
	if err != nil {
		return common.Address{}, fmt.Errorf("coin id: %w", err)
	}
	return chain.DeriveTokenAddress(coinID)
}
