package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/config"
	"ledger/internal/services"
)

var (
	syncRetryFailed bool
	syncRunOnce     bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Inspect or drain the spreadsheet sync queue",
	Long: `Show the state of the SQLite sync queue that mirrors transactions to
Google Sheets. Only meaningful with DATA_BACKEND=sqlite.

--retry-failed moves failed items back to pending. --run-once processes one
batch of pending items now instead of waiting for ledger-worker.

Example:
  ledger sync
  ledger sync --retry-failed --run-once`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncRetryFailed, "retry-failed", false, "requeue failed items")
	syncCmd.Flags().BoolVar(&syncRunOnce, "run-once", false, "process one batch of pending items")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	if env.backend.Repo == nil {
		return fmt.Errorf("sync queue requires DATA_BACKEND=%s, got %s", config.BackendSQLite, env.cfg.DataBackend)
	}

	procCfg := services.DefaultSyncProcessorConfig()
	procCfg.BatchSize = env.cfg.SyncBatchSize
	procCfg.MaxRetries = env.cfg.SyncMaxRetries

	var processor *services.SyncProcessor
	if env.backend.Mirror != nil {
		processor = services.NewSyncProcessor(env.backend.Repo, env.backend.Mirror, env.backend.Mirror, procCfg)
	}

	if syncRetryFailed {
		if err := env.backend.Repo.RetryFailedSyncs(ctx); err != nil {
			return fmt.Errorf("retry failed syncs: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if syncRunOnce {
		if processor == nil {
			return fmt.Errorf("no spreadsheet mirror configured: set GOOGLE_SPREADSHEET_ID")
		}
		n, err := processor.ProcessPending(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Processed %d items\n", n)
	}

	stats, err := env.backend.Repo.GetSyncQueueStats(ctx)
	if err != nil {
		return fmt.Errorf("sync queue stats: %w", err)
	}
	fmt.Fprintf(out, "pending=%d processing=%d completed=%d failed=%d\n",
		stats.Pending, stats.Processing, stats.Completed, stats.Failed)
	return nil
}
