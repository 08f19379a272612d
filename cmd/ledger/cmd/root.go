// Package cmd provides the ledger CLI commands.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/log"
)

var (
	dateFlag string
	debug    bool
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Aggregate transactions and project the balance forward",
	Long: `ledger categorizes transactions, rebuilds the daily balance history,
projects it forward from the average daily spend and explains how one
category compares with its recent average.

The backend is chosen with DATA_BACKEND (memory, sqlite or sheets); every
other setting is read from the environment or a .env file.

Example:
  ledger report
  ledger report --date 2025-03-31 --format text
  ledger add --description "Pizza Hut order" --amount -450
  ledger categorize "UBER TRIP 1234"`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cli.LoadEnvFile()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dateFlag, "date", "", "reference date as YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(importDemoCmd)
	rootCmd.AddCommand(categorizeCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(syncCmd)
}

// referenceDate returns --date, or today.
func referenceDate() (core.Date, error) {
	if dateFlag == "" {
		return cli.Today(), nil
	}
	return core.ParseDate(dateFlag)
}

// environment is what most commands need: validated config, a logger and
// an open backend.
type environment struct {
	cfg     *config.Config
	logger  *log.Logger
	today   core.Date
	backend *backend.BackendResult
}

func (e *environment) Close() {
	if err := e.backend.Close(); err != nil {
		e.logger.Warn("Failed to close backend", "error", err)
	}
}

func openEnvironment(ctx context.Context) (*environment, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	today, err := referenceDate()
	if err != nil {
		return nil, err
	}

	backendCfg, err := backend.FromAppConfig(cfg, today)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", backendCfg.Type, err)
	}

	return &environment{cfg: cfg, logger: logger, today: today, backend: result}, nil
}

func loadConfig() (*config.Config, *log.Logger, error) {
	cfg, logger, err := cli.LoadAndValidateConfig(log.ComponentCLI)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		cfg.LogLevel = "debug"
		logger = cli.SetupLogger(cfg, log.ComponentCLI)
	}
	return cfg, logger, nil
}
