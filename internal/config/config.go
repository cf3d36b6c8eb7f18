package config

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "LAUNCHER"

// Defaults shared by the commands and their flags.
const (
	DefaultMode            = "development"
	DefaultListen          = ":3000"
	DefaultPoolSupply      = "1000000000000000000000000000"
	DefaultValueWei        = "1000000000000"
	DefaultSimulateRetries = 3
	DefaultRetryBackoff    = 500 * time.Millisecond
	DefaultConfirmTimeout  = 2 * time.Minute
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultLaunchTimeout   = 5 * time.Minute
	DefaultReconcileOut    = "./data/unpersisted.jsonl"
	DefaultRateLimit       = 0.2
	DefaultRateBurst       = 3
	DefaultLogLevel        = "info"
)

// Config holds configuration for the serve and launch commands.
type Config struct {
	RPCURL              string
	PrivateKey          string
	Factory             string
	PinataJWT           string
	PinataAPI           string
	IPFSGateway         string
	PinataRPS           float64
	PGDSN               string
	Mode                string
	Listen              string
	PoolSupply          *big.Int
	ValueWei            *big.Int
	SimulateRetries     int
	RetryBackoff        time.Duration
	ConfirmTimeout      time.Duration
	HTTPTimeout         time.Duration
	LaunchTimeout       time.Duration
	ReconcileOut        string
	CORSOrigins         []string
	RateLimit           float64
	RateBurst           int
	ShortCircuitAddress string
	LogLevel            string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("mode", DefaultMode)
		v.SetDefault("listen", DefaultListen)
		v.SetDefault("pool-supply", DefaultPoolSupply)
		v.SetDefault("value-wei", DefaultValueWei)
		v.SetDefault("simulate-retries", DefaultSimulateRetries)
		v.SetDefault("retry-backoff", DefaultRetryBackoff)
		v.SetDefault("confirm-timeout", DefaultConfirmTimeout)
		v.SetDefault("http-timeout", DefaultHTTPTimeout)
		v.SetDefault("launch-timeout", DefaultLaunchTimeout)
		v.SetDefault("reconcile-out", DefaultReconcileOut)
		v.SetDefault("rate-limit", DefaultRateLimit)
		v.SetDefault("rate-burst", DefaultRateBurst)
		v.SetDefault("log-level", DefaultLogLevel)
	})
	if err != nil {
		return Config{}, err
	}

	poolSupply, err := ParseBigInt(v.GetString("pool-supply"))
	if err != nil {
		return Config{}, fmt.Errorf("pool-supply: %w", err)
	}
	valueWei, err := ParseBigInt(v.GetString("value-wei"))
	if err != nil {
		return Config{}, fmt.Errorf("value-wei: %w", err)
	}

	cfg := Config{
		RPCURL:              v.GetString("rpc"),
		PrivateKey:          v.GetString("private-key"),
		Factory:             v.GetString("factory"),
		PinataJWT:           v.GetString("pinata-jwt"),
		PinataAPI:           v.GetString("pinata-api"),
		IPFSGateway:         v.GetString("ipfs-gateway"),
		PinataRPS:           v.GetFloat64("pinata-rps"),
		PGDSN:               v.GetString("pg-dsn"),
		Mode:                strings.ToLower(strings.TrimSpace(v.GetString("mode"))),
		Listen:              v.GetString("listen"),
		PoolSupply:          poolSupply,
		ValueWei:            valueWei,
		SimulateRetries:     v.GetInt("simulate-retries"),
		RetryBackoff:        v.GetDuration("retry-backoff"),
		ConfirmTimeout:      v.GetDuration("confirm-timeout"),
		HTTPTimeout:         v.GetDuration("http-timeout"),
		LaunchTimeout:       v.GetDuration("launch-timeout"),
		ReconcileOut:        v.GetString("reconcile-out"),
		CORSOrigins:         getStringSlice(v, "cors-origins"),
		RateLimit:           v.GetFloat64("rate-limit"),
		RateBurst:           v.GetInt("rate-burst"),
		ShortCircuitAddress: v.GetString("short-circuit-address"),
		LogLevel:            v.GetString("log-level"),
	}

	return cfg, nil
}

// Production reports whether real upstreams are used.
func (c Config) Production() bool {
	return c.Mode == "production"
}

// Validate checks that production mode has everything it needs.
func (c Config) Validate() error {
	if c.Mode != "production" && c.Mode != "development" {
		return fmt.Errorf("mode must be production or development, got %q", c.Mode)
	}
	if !c.Production() {
		return nil
	}
	var missing []string
	for key, val := range map[string]string{
		"rpc":         c.RPCURL,
		"private-key": c.PrivateKey,
		"pinata-jwt":  c.PinataJWT,
		"pg-dsn":      c.PGDSN,
	} {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("production mode requires: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ReadConfig holds configuration for the read command.
type ReadConfig struct {
	IPFSGateway string
	HTTPTimeout time.Duration
	LogLevel    string
}

// LoadRead merges config file, environment variables, and flags into ReadConfig.
func LoadRead(cfgFile string, flags *pflag.FlagSet) (ReadConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("http-timeout", DefaultHTTPTimeout)
		v.SetDefault("log-level", DefaultLogLevel)
	})
	if err != nil {
		return ReadConfig{}, err
	}
	return ReadConfig{
		IPFSGateway: v.GetString("ipfs-gateway"),
		HTTPTimeout: v.GetDuration("http-timeout"),
		LogLevel:    v.GetString("log-level"),
	}, nil
}

// MigrateConfig holds configuration for the migrate command.
type MigrateConfig struct {
	PGDSN    string
	LogLevel string
}

// LoadMigrate merges config file, environment variables, and flags into MigrateConfig.
func LoadMigrate(cfgFile string, flags *pflag.FlagSet) (MigrateConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("log-level", DefaultLogLevel)
	})
	if err != nil {
		return MigrateConfig{}, err
	}
	return MigrateConfig{
		PGDSN:    v.GetString("pg-dsn"),
		LogLevel: v.GetString("log-level"),
	}, nil
}

// InspectConfig holds configuration for the inspect command.
type InspectConfig struct {
	RPCURL   string
	LogLevel string
}

// LoadInspect merges config file, environment variables, and flags into InspectConfig.
func LoadInspect(cfgFile string, flags *pflag.FlagSet) (InspectConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("log-level", DefaultLogLevel)
	})
	if err != nil {
		return InspectConfig{}, err
	}
	cfg := InspectConfig{
		RPCURL:   v.GetString("rpc"),
		LogLevel: v.GetString("log-level"),
	}
	if cfg.RPCURL == "" {
		return cfg, fmt.Errorf("rpc is required")
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults func(*viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if defaults != nil {
		defaults(v)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

// ParseBigInt parses a non-negative decimal integer, allowing _ separators.
func ParseBigInt(input string) (*big.Int, error) {
	input = strings.ReplaceAll(strings.TrimSpace(input), "_", "")
	if input == "" {
		return nil, fmt.Errorf("empty integer")
	}
	n, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", input)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("negative integer %q", input)
	}
	return n, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
