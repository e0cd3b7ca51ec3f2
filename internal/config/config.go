package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Pair    PairConfig    `mapstructure:"pair"`
	Logging LoggingConfig `mapstructure:"logging"`
	Host    HostConfig    `mapstructure:"host"`
}

type PairConfig struct {
	Base  string `mapstructure:"base"`
	Quote string `mapstructure:"quote"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type HostConfig struct {
	StatsInterval time.Duration `mapstructure:"stats_interval"`
	SnapshotDepth int           `mapstructure:"snapshot_depth"`
}

// Load builds the host configuration from defaults overridable through the
// environment (HATI_PAIR_BASE, HATI_LOGGING_LEVEL, ...).
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("pair.base", "BTC")
	v.SetDefault("pair.quote", "USD")
	v.SetDefault("logging.level", "info")
	v.SetDefault("host.stats_interval", "5s")
	v.SetDefault("host.snapshot_depth", 10)

	v.SetEnvPrefix("HATI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to parse config: %w", err)
	}
	return cfg, nil
}
