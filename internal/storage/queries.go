package storage

import (
	"context"
)

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (id, account_number, date, description, amount, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateTransactionParams struct {
	ID            string
	AccountNumber string
	Date          string
	Description   string
	Amount        string
	CreatedAt     int64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID,
		arg.AccountNumber,
		arg.Date,
		arg.Description,
		arg.Amount,
		arg.CreatedAt,
	)
	return err
}

const getTransaction = `-- name: GetTransaction :one
SELECT id, account_number, date, description, amount, sync_status, created_at
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id string) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.AccountNumber,
		&i.Date,
		&i.Description,
		&i.Amount,
		&i.SyncStatus,
		&i.CreatedAt,
	)
	return i, err
}

const listTransactionsBetween = `-- name: ListTransactionsBetween :many
SELECT id, account_number, date, description, amount, sync_status, created_at
FROM transactions
WHERE date >= ? AND date <= ?
ORDER BY date ASC, created_at ASC, id ASC
`

type ListTransactionsBetweenParams struct {
	From string
	To   string
}

func (q *Queries) ListTransactionsBetween(ctx context.Context, arg ListTransactionsBetweenParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsBetween, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.AccountNumber,
			&i.Date,
			&i.Description,
			&i.Amount,
			&i.SyncStatus,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setTransactionSyncStatus = `-- name: SetTransactionSyncStatus :exec
UPDATE transactions SET sync_status = ? WHERE id = ?
`

func (q *Queries) SetTransactionSyncStatus(ctx context.Context, status, id string) error {
	_, err := q.db.ExecContext(ctx, setTransactionSyncStatus, status, id)
	return err
}

const upsertAccount = `-- name: UpsertAccount :exec
INSERT INTO accounts (number, name, balance, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(number) DO UPDATE SET
    name = excluded.name,
    balance = excluded.balance,
    updated_at = excluded.updated_at
`

type UpsertAccountParams struct {
	Number    string
	Name      string
	Balance   string
	UpdatedAt int64
}

func (q *Queries) UpsertAccount(ctx context.Context, arg UpsertAccountParams) error {
	_, err := q.db.ExecContext(ctx, upsertAccount, arg.Number, arg.Name, arg.Balance, arg.UpdatedAt)
	return err
}

const listAccounts = `-- name: ListAccounts :many
SELECT number, name, balance, updated_at FROM accounts ORDER BY name ASC, number ASC
`

func (q *Queries) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(&i.Number, &i.Name, &i.Balance, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const enqueueSync = `-- name: EnqueueSync :exec
INSERT INTO sync_queue (transaction_id, operation, tx_date, tx_description, tx_amount, next_attempt_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type EnqueueSyncParams struct {
	TransactionID string
	Operation     string
	TxDate        string
	TxDescription string
	TxAmount      string
	Now           int64
}

func (q *Queries) EnqueueSync(ctx context.Context, arg EnqueueSyncParams) error {
	_, err := q.db.ExecContext(ctx, enqueueSync,
		arg.TransactionID,
		arg.Operation,
		arg.TxDate,
		arg.TxDescription,
		arg.TxAmount,
		arg.Now,
		arg.Now,
		arg.Now,
	)
	return err
}

const dequeueSyncBatch = `-- name: DequeueSyncBatch :many
SELECT id, transaction_id, operation, status, attempts, last_error, tx_date, tx_description, tx_amount, next_attempt_at, created_at, updated_at
FROM sync_queue
WHERE status = 'pending' AND next_attempt_at <= ?
ORDER BY id ASC
LIMIT ?
`

type DequeueSyncBatchParams struct {
	Now   int64
	Limit int64
}

func (q *Queries) DequeueSyncBatch(ctx context.Context, arg DequeueSyncBatchParams) ([]SyncQueue, error) {
	rows, err := q.db.QueryContext(ctx, dequeueSyncBatch, arg.Now, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SyncQueue
	for rows.Next() {
		var i SyncQueue
		if err := rows.Scan(
			&i.ID,
			&i.TransactionID,
			&i.Operation,
			&i.Status,
			&i.Attempts,
			&i.LastError,
			&i.TxDate,
			&i.TxDescription,
			&i.TxAmount,
			&i.NextAttemptAt,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setSyncStatus = `-- name: SetSyncStatus :exec
UPDATE sync_queue SET status = ?, updated_at = ? WHERE id = ?
`

func (q *Queries) SetSyncStatus(ctx context.Context, status string, now, id int64) error {
	_, err := q.db.ExecContext(ctx, setSyncStatus, status, now, id)
	return err
}

const failSyncAttempt = `-- name: FailSyncAttempt :exec
UPDATE sync_queue
SET status = ?, attempts = attempts + 1, last_error = ?, next_attempt_at = ?, updated_at = ?
WHERE id = ?
`

type FailSyncAttemptParams struct {
	Status        string
	LastError     string
	NextAttemptAt int64
	Now           int64
	ID            int64
}

func (q *Queries) FailSyncAttempt(ctx context.Context, arg FailSyncAttemptParams) error {
	_, err := q.db.ExecContext(ctx, failSyncAttempt, arg.Status, arg.LastError, arg.NextAttemptAt, arg.Now, arg.ID)
	return err
}

const resetStaleProcessing = `-- name: ResetStaleProcessing :exec
UPDATE sync_queue SET status = 'pending', updated_at = ? WHERE status = 'processing'
`

func (q *Queries) ResetStaleProcessing(ctx context.Context, now int64) error {
	_, err := q.db.ExecContext(ctx, resetStaleProcessing, now)
	return err
}

const retryFailedSyncs = `-- name: RetryFailedSyncs :exec
UPDATE sync_queue SET status = 'pending', attempts = 0, next_attempt_at = ?, updated_at = ? WHERE status = 'failed'
`

func (q *Queries) RetryFailedSyncs(ctx context.Context, now int64) error {
	_, err := q.db.ExecContext(ctx, retryFailedSyncs, now, now)
	return err
}

const cleanupCompletedSyncs = `-- name: CleanupCompletedSyncs :execrows
DELETE FROM sync_queue WHERE status = 'completed' AND updated_at < ?
`

func (q *Queries) CleanupCompletedSyncs(ctx context.Context, before int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, cleanupCompletedSyncs, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getSyncQueueStats = `-- name: GetSyncQueueStats :one
SELECT
    COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
    COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0) AS processing,
    COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
    COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed
FROM sync_queue
`

type GetSyncQueueStatsRow struct {
	Pending    int64
	Processing int64
	Completed  int64
	Failed     int64
}

func (q *Queries) GetSyncQueueStats(ctx context.Context) (GetSyncQueueStatsRow, error) {
	row := q.db.QueryRowContext(ctx, getSyncQueueStats)
	var i GetSyncQueueStatsRow
	err := row.Scan(&i.Pending, &i.Processing, &i.Completed, &i.Failed)
	return i, err
}
