package config

import (
	"fmt"
	"strings"

	"github.com/raykavin/stratbench"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment overrides, e.g. STRATBENCH_STORAGE_DRIVER
const EnvPrefix = "STRATBENCH"

// Config holds all configuration for the command line tool
type Config struct {
	Logging   LoggingConfig
	Storage   StorageConfig
	Backtest  BacktestConfig
	Optimizer OptimizerConfig
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Backend    string
	Level      string
	Format     string // console or json
	TimeFormat string
	Color      bool
}

// StorageConfig holds the backtest history store configuration
type StorageConfig struct {
	Driver string // memory, buntdb or postgres
	Path   string // file for buntdb, DSN for postgres
	Limit  int
}

// BacktestConfig holds run defaults
type BacktestConfig struct {
	Cash       float64
	Leverage   float64
	DataRoot   string
	Timeframe  string
	Indicators bool
}

// OptimizerConfig holds parameter sweep defaults
type OptimizerConfig struct {
	Method        string // grid or random
	Target        string
	Minimize      bool
	MaxIterations int
	Parallelism   int
	TopN          int
	Seed          int64
}

// LoadConfig loads the configuration from an optional file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values no command can run with
func (c *Config) Validate() error {
	switch {
	case c.Backtest.Cash <= 0:
		return fmt.Errorf("backtest.cash must be positive")
	case c.Storage.Limit <= 0:
		return fmt.Errorf("storage.limit must be positive")
	case c.Optimizer.Parallelism <= 0:
		return fmt.Errorf("optimizer.parallelism must be positive")
	case c.Optimizer.Method != "grid" && c.Optimizer.Method != "random":
		return fmt.Errorf("optimizer.method must be grid or random, got %q", c.Optimizer.Method)
	}
	return nil
}

// LogSettings converts the logging section for stratbench.NewLogger
func (c *Config) LogSettings() stratbench.LogSettings {
	return stratbench.LogSettings{
		Backend:    c.Logging.Backend,
		Level:      c.Logging.Level,
		TimeFormat: c.Logging.TimeFormat,
		Colored:    c.Logging.Color,
		JSON:       strings.EqualFold(c.Logging.Format, "json"),
	}
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("logging.backend", "zerolog")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.timeFormat", "2006-01-02 15:04:05")
	v.SetDefault("logging.color", true)

	// Storage defaults
	v.SetDefault("storage.driver", "buntdb")
	v.SetDefault("storage.path", "stratbench.db")
	v.SetDefault("storage.limit", 10)

	// Backtest defaults
	v.SetDefault("backtest.cash", 10000.0)
	v.SetDefault("backtest.leverage", 1.0)
	v.SetDefault("backtest.dataRoot", "data")
	v.SetDefault("backtest.timeframe", "1d")
	v.SetDefault("backtest.indicators", true)

	// Optimizer defaults
	v.SetDefault("optimizer.method", "grid")
	v.SetDefault("optimizer.target", "return_pct")
	v.SetDefault("optimizer.minimize", false)
	v.SetDefault("optimizer.maxIterations", 100)
	v.SetDefault("optimizer.parallelism", 4)
	v.SetDefault("optimizer.topN", 5)
	v.SetDefault("optimizer.seed", 0)
}
