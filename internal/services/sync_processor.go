package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/sheets"
	"ledger/internal/storage"
)

// SyncStore is the outbox side of the SQLite repository.
type SyncStore interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	DequeueSyncBatch(ctx context.Context, limit int64) ([]storage.SyncQueue, error)
	MarkSyncProcessing(ctx context.Context, id int64) error
	MarkSyncComplete(ctx context.Context, item storage.SyncQueue) error
	IncrementSyncAttempt(ctx context.Context, id int64, errMsg string, retryAt time.Time) error
	MarkSyncFailed(ctx context.Context, item storage.SyncQueue, errMsg string) error
	ResetStaleProcessing(ctx context.Context) error
	RetryFailedSyncs(ctx context.Context) error
	CleanupCompletedSyncs(ctx context.Context, cutoff time.Time) error
	GetSyncQueueStats(ctx context.Context) (storage.GetSyncQueueStatsRow, error)
}

// rowDeleter is implemented by mirrors that locate rows by content rather
// than by id, such as the Google Sheets client.
type rowDeleter interface {
	DeleteTransactionRow(ctx context.Context, tx core.Transaction) error
}

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending items (default: 10s)
	PollInterval time.Duration

	// BatchSize is the max number of items to process per poll cycle (default: 10)
	BatchSize int

	// MaxRetries is the maximum attempts before marking as failed (default: 3)
	MaxRetries int

	// RetryDelay is the wait after the first failed attempt; it doubles on
	// each further failure up to MaxRetryDelay (defaults: 30s, 10m).
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration

	// CleanupInterval is how often to clean up completed items (default: 1h)
	CleanupInterval time.Duration

	// CleanupAge is how old completed items must be before cleanup (default: 24h)
	CleanupAge time.Duration
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval:    10 * time.Second,
		BatchSize:       10,
		MaxRetries:      3,
		RetryDelay:      30 * time.Second,
		MaxRetryDelay:   10 * time.Minute,
		CleanupInterval: 1 * time.Hour,
		CleanupAge:      24 * time.Hour,
	}
}

// SyncProcessor drains the SQLite sync queue into a transaction mirror.
type SyncProcessor struct {
	storage SyncStore
	mirror  sheets.TransactionWriter
	deleter sheets.TransactionDeleter
	config  SyncProcessorConfig
	now     func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncProcessor creates a new sync processor. deleter may be nil, in
// which case delete items complete without touching the mirror.
func NewSyncProcessor(
	store SyncStore,
	mirror sheets.TransactionWriter,
	deleter sheets.TransactionDeleter,
	config SyncProcessorConfig,
) *SyncProcessor {
	return &SyncProcessor{
		storage: store,
		mirror:  mirror,
		deleter: deleter,
		config:  config,
		now:     time.Now,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	// Items left in processing belong to a previous run that died.
	if err := p.storage.ResetStaleProcessing(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to reset stale processing items", "error", err)
	}

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	pollTicker := time.NewTicker(p.config.PollInterval)
	defer pollTicker.Stop()

	cleanupTicker := time.NewTicker(p.config.CleanupInterval)
	defer cleanupTicker.Stop()

	p.processBatch(ctx, p.stopCh)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.processBatch(ctx, p.stopCh)
		case <-cleanupTicker.C:
			p.cleanupCompleted(ctx)
		}
	}
}

// ProcessPending handles one batch of due queue items and returns how many
// were attempted.
func (p *SyncProcessor) ProcessPending(ctx context.Context) (int, error) {
	return p.processBatch(ctx, nil)
}

func (p *SyncProcessor) processBatch(ctx context.Context, stop <-chan struct{}) (int, error) {
	items, err := p.storage.DequeueSyncBatch(ctx, int64(p.config.BatchSize))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to dequeue sync batch", "error", err)
		return 0, err
	}

	if len(items) == 0 {
		return 0, nil
	}

	slog.DebugContext(ctx, "Processing sync batch", "count", len(items))

	processed := 0
	for _, item := range items {
		select {
		case <-stop:
			return processed, nil
		case <-ctx.Done():
			return processed, ctx.Err()
		default:
		}

		if err := p.storage.MarkSyncProcessing(ctx, item.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark item as processing",
				"id", item.ID, "error", err)
			continue
		}

		var processErr error
		switch item.Operation {
		case storage.OpSync:
			processErr = p.processSyncItem(ctx, item)
		case storage.OpDelete:
			processErr = p.processDeleteItem(ctx, item)
		default:
			processErr = fmt.Errorf("unknown operation: %s", item.Operation)
		}

		if processErr != nil {
			p.handleFailure(ctx, item, processErr)
		} else {
			p.handleSuccess(ctx, item)
		}
		processed++
	}

	return processed, nil
}

// processSyncItem appends a stored transaction to the mirror.
func (p *SyncProcessor) processSyncItem(ctx context.Context, item storage.SyncQueue) error {
	tx, err := p.storage.GetTransaction(ctx, item.TransactionID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before it was mirrored; the delete item follows.
		slog.InfoContext(ctx, "Skipping sync of deleted transaction",
			"transaction_id", item.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", item.TransactionID, err)
	}

	ref, err := p.mirror.Append(ctx, tx)
	if err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored transaction",
		"transaction_id", item.TransactionID,
		"ref", ref)

	return nil
}

// processDeleteItem removes a transaction from the mirror using the row
// data captured when it was deleted locally.
func (p *SyncProcessor) processDeleteItem(ctx context.Context, item storage.SyncQueue) error {
	if p.deleter == nil {
		slog.WarnContext(ctx, "No deleter configured, skipping delete",
			"transaction_id", item.TransactionID)
		return nil
	}

	if rd, ok := p.deleter.(rowDeleter); ok {
		tx, err := storage.QueuedTransaction(item)
		if err != nil {
			return fmt.Errorf("decode queued transaction: %w", err)
		}
		if err := rd.DeleteTransactionRow(ctx, tx); err != nil {
			return fmt.Errorf("delete mirrored row: %w", err)
		}
	} else if err := p.deleter.DeleteTransaction(ctx, item.TransactionID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Deleted mirrored transaction",
		"transaction_id", item.TransactionID)

	return nil
}

func (p *SyncProcessor) handleSuccess(ctx context.Context, item storage.SyncQueue) {
	if err := p.storage.MarkSyncComplete(ctx, item); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync complete",
			"id", item.ID, "error", err)
	}
}

// handleFailure schedules a retry with exponential backoff, or gives up
// after MaxRetries attempts.
func (p *SyncProcessor) handleFailure(ctx context.Context, item storage.SyncQueue, processErr error) {
	attempt := item.Attempts + 1
	slog.WarnContext(ctx, "Sync processing failed",
		"id", item.ID,
		"operation", item.Operation,
		"attempt", attempt,
		"error", processErr)

	if attempt >= int64(p.config.MaxRetries) {
		if err := p.storage.MarkSyncFailed(ctx, item, processErr.Error()); err != nil {
			slog.ErrorContext(ctx, "Failed to mark sync as failed",
				"id", item.ID, "error", err)
		}
		slog.ErrorContext(ctx, "Sync item failed permanently after max retries",
			"id", item.ID,
			"transaction_id", item.TransactionID,
			"attempts", attempt)
		return
	}

	retryAt := p.now().Add(p.retryDelay(item.Attempts))
	if err := p.storage.IncrementSyncAttempt(ctx, item.ID, processErr.Error(), retryAt); err != nil {
		slog.ErrorContext(ctx, "Failed to increment sync attempt",
			"id", item.ID, "error", err)
	}
}

// retryDelay returns RetryDelay doubled once per previous attempt, capped at
// MaxRetryDelay.
func (p *SyncProcessor) retryDelay(previousAttempts int64) time.Duration {
	delay := p.config.RetryDelay
	for i := int64(0); i < previousAttempts; i++ {
		delay *= 2
		if p.config.MaxRetryDelay > 0 && delay >= p.config.MaxRetryDelay {
			return p.config.MaxRetryDelay
		}
	}
	if p.config.MaxRetryDelay > 0 && delay > p.config.MaxRetryDelay {
		return p.config.MaxRetryDelay
	}
	return delay
}

func (p *SyncProcessor) cleanupCompleted(ctx context.Context) {
	cutoff := p.now().Add(-p.config.CleanupAge)
	if err := p.storage.CleanupCompletedSyncs(ctx, cutoff); err != nil {
		slog.ErrorContext(ctx, "Failed to cleanup completed syncs", "error", err)
	}
}

// Stats returns current queue statistics
func (p *SyncProcessor) Stats(ctx context.Context) (storage.GetSyncQueueStatsRow, error) {
	return p.storage.GetSyncQueueStats(ctx)
}

// RetryFailed resets all failed items for retry
func (p *SyncProcessor) RetryFailed(ctx context.Context) error {
	return p.storage.RetryFailedSyncs(ctx)
}
