package backend

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/sheets"
	"ledger/internal/storage"
)

// Backend represents a unified backend interface that provides all necessary operations
type Backend interface {
	sheets.TransactionWriter
	sheets.TransactionLister
	sheets.TransactionDeleter
	sheets.AccountReader
	Import(ctx context.Context, txs []core.Transaction) (int, error)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Ledger  *services.LedgerService

	// Exporter receives snapshot series; nil when the backend has nowhere
	// to write them.
	Exporter sheets.SeriesWriter

	// Repo and Mirror are set for the sqlite backend. Mirror is nil unless
	// a spreadsheet is configured.
	Repo   *storage.SQLiteRepository
	Mirror MirrorWriter

	Cleanup CleanupFunc
}

// MirrorWriter is the destination of the SQLite sync queue.
type MirrorWriter interface {
	sheets.TransactionWriter
	sheets.TransactionDeleter
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets; for sqlite only used as a mirror
	GoogleSpreadsheetID     string
	GoogleTransactionsSheet string
	GoogleProjectionSheet   string
	GoogleAccountsSheet     string

	// Memory backend specific
	DataDirectory string
	SeedDemo      bool
	DemoSeed      int64
	DemoToday     core.Date
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
