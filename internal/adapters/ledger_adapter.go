package adapters

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/sheets"
)

// Store is what a ledger backend offers for reads.
type Store interface {
	sheets.TransactionLister
	sheets.AccountReader
}

// LedgerAdapter sends writes through LedgerService, so they publish refresh
// messages, and serves reads straight from the store.
type LedgerAdapter struct {
	store   Store
	service *services.LedgerService
}

func NewLedgerAdapter(store Store, service *services.LedgerService) *LedgerAdapter {
	return &LedgerAdapter{
		store:   store,
		service: service,
	}
}

// Append implements sheets.TransactionWriter
func (a *LedgerAdapter) Append(ctx context.Context, tx core.Transaction) (string, error) {
	return a.service.RecordTransaction(ctx, tx)
}

// DeleteTransaction implements sheets.TransactionDeleter
func (a *LedgerAdapter) DeleteTransaction(ctx context.Context, id string) error {
	return a.service.DeleteTransaction(ctx, id)
}

// ListTransactions implements sheets.TransactionLister
func (a *LedgerAdapter) ListTransactions(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	return a.store.ListTransactions(ctx, from, to)
}

// ListAccounts implements sheets.AccountReader
func (a *LedgerAdapter) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return a.store.ListAccounts(ctx)
}

// Import saves txs through the service in one batch.
func (a *LedgerAdapter) Import(ctx context.Context, txs []core.Transaction) (int, error) {
	return a.service.ImportTransactions(ctx, txs)
}
