package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/sheets"
)

// Publisher announces that the ledger changed.
type Publisher interface {
	PublishRefresh(ctx context.Context, reason, transactionID string) error
}

// TransactionStore is the write side of a ledger backend.
type TransactionStore interface {
	sheets.TransactionWriter
	sheets.TransactionDeleter
}

// LedgerService orchestrates ledger writes across a store and AMQP.
type LedgerService struct {
	store     TransactionStore
	publisher Publisher
}

// NewLedgerService returns a service writing to store. publisher may be nil,
// in which case no refresh messages are sent.
func NewLedgerService(store TransactionStore, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// RecordTransaction saves a transaction and publishes a refresh message.
func (s *LedgerService) RecordTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("invalid transaction: %w", err)
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	ref, err := s.store.Append(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	// The transaction is stored; a lost refresh only delays the next snapshot.
	if err := s.publish(ctx, amqp.ReasonTransactionAdded, tx.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish refresh message",
			"ref", ref, "error", err)
	}

	return ref, nil
}

// ImportTransactions saves txs in order and publishes one refresh for the
// whole batch. It stops at the first failure and returns how many were
// saved.
func (s *LedgerService) ImportTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	saved := 0
	for i, tx := range txs {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		if err := tx.Validate(); err != nil {
			return saved, fmt.Errorf("transaction %d: %w", i, err)
		}
		if _, err := s.store.Append(ctx, tx); err != nil {
			return saved, fmt.Errorf("save transaction %d: %w", i, err)
		}
		saved++
	}

	if saved > 0 {
		if err := s.publish(ctx, amqp.ReasonImport, ""); err != nil {
			slog.ErrorContext(ctx, "Failed to publish refresh message",
				"imported", saved, "error", err)
		}
	}

	slog.InfoContext(ctx, "Imported transactions", "count", saved)
	return saved, nil
}

// DeleteTransaction removes a transaction and publishes a refresh message.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := s.publish(ctx, amqp.ReasonTransactionDeleted, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish refresh message",
			"id", id, "error", err)
	}

	return nil
}

func (s *LedgerService) publish(ctx context.Context, reason, id string) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping refresh message")
		return nil
	}
	return s.publisher.PublishRefresh(ctx, reason, id)
}

// Close closes the store and the publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}

	return nil
}
