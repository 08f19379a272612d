package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a transaction id does not exist.
var ErrNotFound = errors.New("not found")

// Sync queue operations and statuses.
const (
	OpSync   = "sync"
	OpDelete = "delete"

	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"

	txSynced = "synced"
	txError  = "error"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serialises writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append stores tx and queues it for mirroring. A missing ID is generated.
// Implements sheets.TransactionWriter.
func (r *SQLiteRepository) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	now := r.now().Unix()

	err := r.inTx(ctx, func(q *Queries) error {
		if err := q.CreateTransaction(ctx, CreateTransactionParams{
			ID:            tx.ID,
			AccountNumber: tx.Account,
			Date:          tx.Date.String(),
			Description:   tx.Description,
			Amount:        tx.Amount.String(),
			CreatedAt:     now,
		}); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		return q.EnqueueSync(ctx, EnqueueSyncParams{TransactionID: tx.ID, Operation: OpSync, Now: now})
	})
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"date", tx.Date.String(),
		"description", tx.Description,
		"amount", tx.Amount.String())

	return tx.ID, nil
}

// GetTransaction returns ErrNotFound for unknown ids.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return toCore(row)
}

// ListTransactions returns the transactions dated in [from, to], oldest
// first. Implements sheets.TransactionLister.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsBetween(ctx, ListTransactionsBetweenParams{
		From: from.String(),
		To:   to.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := toCore(row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// DeleteTransaction removes a transaction and queues the removal of its
// mirrored row.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	err := r.inTx(ctx, func(q *Queries) error {
		row, err := q.GetTransaction(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get transaction: %w", err)
		}
		if _, err := q.DeleteTransaction(ctx, id); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return q.EnqueueSync(ctx, EnqueueSyncParams{
			TransactionID: id,
			Operation:     OpDelete,
			TxDate:        row.Date,
			TxDescription: row.Description,
			TxAmount:      row.Amount,
			Now:           r.now().Unix(),
		})
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

// UpsertAccount stores an account keyed by its number, so re-importing the
// same account replaces it instead of duplicating it.
func (r *SQLiteRepository) UpsertAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	err := r.queries.UpsertAccount(ctx, UpsertAccountParams{
		Number:    a.Number,
		Name:      a.Name,
		Balance:   a.Balance.String(),
		UpdatedAt: r.now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

// ListAccounts implements sheets.AccountReader.
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.queries.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	accounts := make([]core.Account, 0, len(rows))
	for _, row := range rows {
		balance, err := core.ParseAmount(row.Balance)
		if err != nil {
			return nil, fmt.Errorf("account %s balance %q: %w", row.Number, row.Balance, err)
		}
		accounts = append(accounts, core.Account{Name: row.Name, Number: row.Number, Balance: balance})
	}
	return accounts, nil
}

// DequeueSyncBatch returns up to limit pending queue items that are due.
func (r *SQLiteRepository) DequeueSyncBatch(ctx context.Context, limit int64) ([]SyncQueue, error) {
	items, err := r.queries.DequeueSyncBatch(ctx, DequeueSyncBatchParams{Now: r.now().Unix(), Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("dequeue sync batch: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) MarkSyncProcessing(ctx context.Context, id int64) error {
	if err := r.queries.SetSyncStatus(ctx, StatusProcessing, r.now().Unix(), id); err != nil {
		return fmt.Errorf("mark sync processing: %w", err)
	}
	return nil
}

// MarkSyncComplete completes a queue item and, for sync operations, flags
// the transaction as mirrored.
func (r *SQLiteRepository) MarkSyncComplete(ctx context.Context, item SyncQueue) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.SetSyncStatus(ctx, StatusCompleted, r.now().Unix(), item.ID); err != nil {
			return fmt.Errorf("mark sync complete: %w", err)
		}
		if item.Operation == OpSync {
			if err := q.SetTransactionSyncStatus(ctx, txSynced, item.TransactionID); err != nil {
				return fmt.Errorf("mark transaction synced: %w", err)
			}
		}
		return nil
	})
}

// IncrementSyncAttempt records a failed attempt and schedules a retry.
func (r *SQLiteRepository) IncrementSyncAttempt(ctx context.Context, id int64, errMsg string, retryAt time.Time) error {
	err := r.queries.FailSyncAttempt(ctx, FailSyncAttemptParams{
		Status:        StatusPending,
		LastError:     errMsg,
		NextAttemptAt: retryAt.Unix(),
		Now:           r.now().Unix(),
		ID:            id,
	})
	if err != nil {
		return fmt.Errorf("increment sync attempt: %w", err)
	}
	return nil
}

// MarkSyncFailed gives up on a queue item.
func (r *SQLiteRepository) MarkSyncFailed(ctx context.Context, item SyncQueue, errMsg string) error {
	return r.inTx(ctx, func(q *Queries) error {
		now := r.now().Unix()
		if err := q.FailSyncAttempt(ctx, FailSyncAttemptParams{
			Status:        StatusFailed,
			LastError:     errMsg,
			NextAttemptAt: now,
			Now:           now,
			ID:            item.ID,
		}); err != nil {
			return fmt.Errorf("mark sync failed: %w", err)
		}
		if item.Operation == OpSync {
			if err := q.SetTransactionSyncStatus(ctx, txError, item.TransactionID); err != nil {
				return fmt.Errorf("mark transaction sync error: %w", err)
			}
		}
		slog.WarnContext(ctx, "Transaction marked with sync error", "id", item.TransactionID)
		return nil
	})
}

// ResetStaleProcessing requeues items left in processing by a crash.
func (r *SQLiteRepository) ResetStaleProcessing(ctx context.Context) error {
	if err := r.queries.ResetStaleProcessing(ctx, r.now().Unix()); err != nil {
		return fmt.Errorf("reset stale processing: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RetryFailedSyncs(ctx context.Context) error {
	if err := r.queries.RetryFailedSyncs(ctx, r.now().Unix()); err != nil {
		return fmt.Errorf("retry failed syncs: %w", err)
	}
	return nil
}

// CleanupCompletedSyncs deletes completed items last touched before cutoff.
func (r *SQLiteRepository) CleanupCompletedSyncs(ctx context.Context, cutoff time.Time) error {
	n, err := r.queries.CleanupCompletedSyncs(ctx, cutoff.Unix())
	if err != nil {
		return fmt.Errorf("cleanup completed syncs: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Cleaned up completed sync items", "count", n)
	}
	return nil
}

func (r *SQLiteRepository) GetSyncQueueStats(ctx context.Context) (GetSyncQueueStatsRow, error) {
	stats, err := r.queries.GetSyncQueueStats(ctx)
	if err != nil {
		return stats, fmt.Errorf("get sync queue stats: %w", err)
	}
	return stats, nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func toCore(row Transaction) (core.Transaction, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", row.ID, err)
	}
	amount, err := core.ParseAmount(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s amount %q: %w", row.ID, row.Amount, err)
	}
	return core.Transaction{
		ID:          row.ID,
		Date:        date,
		Description: row.Description,
		Amount:      amount,
		Account:     row.AccountNumber,
	}, nil
}

// QueuedTransaction rebuilds the transaction data carried by a delete item.
func QueuedTransaction(item SyncQueue) (core.Transaction, error) {
	return toCore(Transaction{
		ID:          item.TransactionID,
		Date:        item.TxDate,
		Description: item.TxDescription,
		Amount:      item.TxAmount,
	})
}
