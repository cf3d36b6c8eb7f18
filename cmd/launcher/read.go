package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tokenLauncher/internal/config"
	"tokenLauncher/internal/pinning"
)

func runRead(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRead(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ref, err := pinning.ParseRef(args[0])
	if err != nil {
		return err
	}

	client, err := pinning.NewClient(pinning.Config{
		GatewayBase: cfg.IPFSGateway,
		Timeout:     cfg.HTTPTimeout,
	}, nil, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	content, err := client.ReadBack(ctx, ref)
	if err != nil {
		return err
	}
	logger.Info("read back",
		zap.String("ref", ref.String()),
		zap.String("url", client.GatewayURL(ref)),
		zap.String("content_type", content.ContentType),
		zap.Int("bytes", len(content.Data)),
	)

	if content.JSON != nil {
		return printJSON(content.JSON)
	}
	_, err = fmt.Fprintf(os.Stdout, "%s (%d bytes)\n", content.ContentType, len(content.Data))
	return err
}
