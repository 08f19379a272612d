package sheets

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/forecast"
)

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// TransactionLister returns the transactions dated in [from, to], oldest
	// first.
	TransactionLister interface {
		ListTransactions(ctx context.Context, from, to core.Date) ([]core.Transaction, error)
	}

	TransactionDeleter interface {
		DeleteTransaction(ctx context.Context, id string) error
	}

	AccountReader interface {
		ListAccounts(ctx context.Context) ([]core.Account, error)
	}

	// SeriesWriter publishes the combined historical and projected balance
	// series, replacing any previous export.
	SeriesWriter interface {
		WriteSeries(ctx context.Context, points []forecast.SeriesPoint) error
	}
)
