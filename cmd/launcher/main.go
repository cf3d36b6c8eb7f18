package main

import (
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tokenLauncher/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "launcher",
		Short:        "Token launcher: pin metadata and create tokens on chain",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the launch HTTP API",
		RunE:  runServe,
	}

	addLaunchFlags(serveCmd.Flags())
	serveCmd.Flags().String("listen", config.DefaultListen, "HTTP listen address")
	serveCmd.Flags().String("mode", config.DefaultMode, "production or development (canned responses, no external calls)")
	serveCmd.Flags().String("reconcile-out", config.DefaultReconcileOut, "JSONL file for launches that could not be stored")
	serveCmd.Flags().StringSlice("cors-origins", nil, "allowed CORS origins (comma-separated), empty allows all")
	serveCmd.Flags().Float64("rate-limit", config.DefaultRateLimit, "launch requests per second per client IP, 0 disables")
	serveCmd.Flags().Int("rate-burst", config.DefaultRateBurst, "launch request burst per client IP")
	serveCmd.Flags().String("short-circuit-address", "", "token address returned in development mode")

	root.AddCommand(serveCmd)

	launchCmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch one token and print the result",
		RunE:  runLaunch,
	}

	addLaunchFlags(launchCmd.Flags())
	launchCmd.Flags().String("name", "", "token name")
	launchCmd.Flags().String("symbol", "", "token symbol")
	launchCmd.Flags().String("description", "", "token description")
	launchCmd.Flags().String("twitter", "", "twitter link")
	launchCmd.Flags().String("telegram", "", "telegram link")
	launchCmd.Flags().String("website", "", "website link")
	launchCmd.Flags().String("image-url", "", "image URL to fetch and pin")
	launchCmd.Flags().String("image-file", "", "local image file to pin")
	launchCmd.Flags().String("variant", "open", "factory variant (open, locked, hold)")
	launchCmd.Flags().String("creator-supply", "0", "creator supply in token base units")
	launchCmd.Flags().String("swap-fee", "0", "pool swap fee (uint96)")
	launchCmd.Flags().String("unlock", "0", "unlock timestamp for the locked variant")
	launchCmd.Flags().Bool("vesting", false, "linear vesting for the locked variant")
	launchCmd.Flags().Bool("simulate-only", false, "stop after the simulation and print the derived address")

	root.AddCommand(launchCmd)

	readCmd := &cobra.Command{
		Use:   "read <ipfs://cid>",
		Short: "Read pinned content back through the gateway",
		Args:  cobra.ExactArgs(1),
		RunE:  runRead,
	}

	readCmd.Flags().String("ipfs-gateway", "", "gateway base URL")
	readCmd.Flags().Duration("http-timeout", config.DefaultHTTPTimeout, "HTTP timeout")
	readCmd.Flags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(readCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema",
		RunE:  runMigrate,
	}

	migrateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	migrateCmd.Flags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(migrateCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect <address|coin-id>",
		Short: "Read a launched token's ERC20 fields from chain",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}

	inspectCmd.Flags().String("rpc", "", "chain RPC URL")
	inspectCmd.Flags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(inspectCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// addLaunchFlags registers the flags shared by serve and launch.
func addLaunchFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "chain RPC URL")
	flags.String("private-key", "", "hex signing key")
	flags.String("factory", "", "factory contract address")
	flags.String("pinata-jwt", "", "Pinata JWT")
	flags.String("pinata-api", "", "Pinata API base URL")
	flags.Float64("pinata-rps", 0, "Pinata requests per second, 0 is unlimited")
	flags.String("ipfs-gateway", "", "gateway base URL")
	flags.String("pg-dsn", "", "Postgres DSN")
	flags.String("pool-supply", config.DefaultPoolSupply, "pool supply in token base units")
	flags.String("value-wei", config.DefaultValueWei, "value sent with the creation call in wei")
	flags.Int("simulate-retries", config.DefaultSimulateRetries, "simulation retries on transport errors")
	flags.Duration("retry-backoff", config.DefaultRetryBackoff, "initial retry backoff")
	flags.Duration("confirm-timeout", config.DefaultConfirmTimeout, "receipt wait timeout")
	flags.Duration("http-timeout", config.DefaultHTTPTimeout, "pinning HTTP timeout")
	flags.Duration("launch-timeout", config.DefaultLaunchTimeout, "overall timeout of one launch")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// redactDSN hides credentials but keeps the host for troubleshooting.
func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}

const shutdownTimeout = 15 * time.Second
