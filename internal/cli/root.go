// Package cli is the command-line surface. It is glue only: every
// operation routes through the pocketledger.App facade.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger"
	"github.com/pocketledger/pocketledger/internal/config"
	"github.com/pocketledger/pocketledger/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "pocketledger",
	Short: "Local-first personal finance ledger",
	Long: `pocketledger tracks accounts, transactions, budgets, goals and
recurring series in local storage. Recurring templates are caught up
and pre-generated on every run; nothing ever leaves your machine.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}

// openApp loads config, opens the configured storage backend, and runs
// the startup generation pass. Callers own closing via the returned
// func.
func openApp() (*pocketledger.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	log := newLogger(cfg.Log.Level)

	var (
		provider storage.Provider
		closeFn  = func() {}
	)
	switch cfg.Storage.Backend {
	case "file":
		p, err := storage.OpenFile(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		provider = p
	case "memory":
		provider = storage.NewMemory()
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("mkdir db dir: %w", err)
		}
		p, err := storage.OpenSQLite(cfg.Storage.Path, cfg.Storage.MigrationsPath)
		if err != nil {
			return nil, nil, err
		}
		provider = p
		closeFn = func() { _ = p.Close() }
	}

	app, err := pocketledger.New(provider, pocketledger.Options{
		LookaheadMonths:      cfg.Schedule.LookaheadMonths,
		CountFutureInBalance: cfg.Ledger.CountFutureInBalance,
		Logger:               log,
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	// Catch up recurring series on every start.
	res := app.Refresh()
	for _, f := range res.Failures {
		log.Warn().Str("template", f.TemplateID).Err(f.Err).Msg("generation failure")
	}
	return app, closeFn, nil
}
