package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Storage  StorageConfig
	Schedule ScheduleConfig
	Ledger   LedgerConfig
	Log      LogConfig
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "sqlite", "file", or "memory".
	Backend string `mapstructure:"backend"`
	// Path is the sqlite database file, or the data directory for the
	// file backend.
	Path string `mapstructure:"path"`
	// MigrationsPath holds the sqlite schema migrations.
	MigrationsPath string `mapstructure:"migrations_path"`
}

// ScheduleConfig tunes the generation scheduler.
type ScheduleConfig struct {
	LookaheadMonths int `mapstructure:"lookahead_months"`
}

// LedgerConfig tunes balance semantics.
type LedgerConfig struct {
	// CountFutureInBalance applies future-dated deltas immediately
	// instead of holding them pending until their date passes.
	CountFutureInBalance bool `mapstructure:"count_future_in_balance"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from file and env. Env var overrides use
// prefix POCKETLEDGER_.
func Load() (Config, error) {
	v := viper.New()

	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "pocketledger")
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", filepath.Join(dataDir, "pocketledger.db"))
	v.SetDefault("storage.migrations_path", "internal/storage/migrations")
	v.SetDefault("schedule.lookahead_months", 3)
	v.SetDefault("ledger.count_future_in_balance", false)
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("POCKETLEDGER_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "pocketledger"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("POCKETLEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config
// directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("POCKETLEDGER_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "pocketledger", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("storage.backend", cfg.Storage.Backend)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("storage.migrations_path", cfg.Storage.MigrationsPath)
	v.Set("schedule.lookahead_months", cfg.Schedule.LookaheadMonths)
	v.Set("ledger.count_future_in_balance", cfg.Ledger.CountFutureInBalance)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
