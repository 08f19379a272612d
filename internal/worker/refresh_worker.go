package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/forecast"
	"ledger/internal/services"
	"ledger/internal/sheets"
)

// ReasonScheduled marks refreshes triggered by the worker's own ticker.
const ReasonScheduled = "scheduled"

// RefreshWorker recomputes the ledger snapshot when the ledger changes or
// the interval elapses, and exports the balance series.
type RefreshWorker struct {
	snapshots *services.SnapshotService
	exporter  sheets.SeriesWriter
	clock     func() time.Time
}

// NewRefreshWorker returns a worker building snapshots with svc. exporter
// may be nil; clock defaults to time.Now.
func NewRefreshWorker(svc *services.SnapshotService, exporter sheets.SeriesWriter, clock func() time.Time) *RefreshWorker {
	if clock == nil {
		clock = time.Now
	}
	return &RefreshWorker{
		snapshots: svc,
		exporter:  exporter,
		clock:     clock,
	}
}

func (w *RefreshWorker) today() core.Date {
	return core.DateOf(w.clock())
}

// HandleRefresh processes a single refresh message from AMQP.
func (w *RefreshWorker) HandleRefresh(ctx context.Context, msg *amqp.RefreshMessage) error {
	slog.InfoContext(ctx, "Processing refresh message",
		"id", msg.ID,
		"reason", msg.Reason,
		"transaction_id", msg.TransactionID)

	if _, err := w.Refresh(ctx, w.today(), msg.Reason); err != nil {
		return fmt.Errorf("refresh snapshot: %w", err)
	}
	return nil
}

// Refresh discards cached snapshots, rebuilds the one for today and exports
// its series.
func (w *RefreshWorker) Refresh(ctx context.Context, today core.Date, reason string) (forecast.Snapshot, error) {
	w.snapshots.Invalidate()

	snap, err := w.snapshots.Snapshot(ctx, today)
	if err != nil {
		return forecast.Snapshot{}, err
	}

	series := snap.Series()
	if w.exporter != nil {
		if err := w.exporter.WriteSeries(ctx, series); err != nil {
			return snap, fmt.Errorf("export series: %w", err)
		}
	}

	f := w.snapshots.Params().Formatter
	slog.InfoContext(ctx, "Snapshot refreshed",
		"reason", reason,
		"date", today.String(),
		"current_balance", f.Format(snap.CurrentBalance()),
		"projected_balance", f.Format(snap.ProjectedBalance()),
		"average_daily_spend", f.Format(snap.AverageDailySpend),
		"points", len(series),
		"exported", w.exporter != nil,
		"insight", snap.Insight.Text)

	return snap, nil
}

// Run refreshes once immediately and then every interval until ctx is
// done. Failed refreshes are logged and retried on the next tick.
func (w *RefreshWorker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %v", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Refresh loop stopped")
			return nil
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *RefreshWorker) runOnce(ctx context.Context) {
	if _, err := w.Refresh(ctx, w.today(), ReasonScheduled); err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "Periodic refresh failed", "error", err)
	}
}
