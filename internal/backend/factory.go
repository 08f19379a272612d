package backend

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/adapters"
	"ledger/internal/amqp"
	"ledger/internal/demo"
	"ledger/internal/services"
	gsheet "ledger/internal/sheets/google"
	"ledger/internal/sheets/memory"
	"ledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	var mirror *gsheet.Client
	if config.GoogleSpreadsheetID != "" {
		mirror, err = gsheet.New(ctx, sheetsOptions(config))
		if err != nil {
			sqliteRepo.Close()
			return nil, fmt.Errorf("failed to initialize Google Sheets mirror: %w", err)
		}
	}

	ledgerService := services.NewLedgerService(sqliteRepo, f.publisher(config))
	result := &BackendResult{
		Backend: adapters.NewLedgerAdapter(sqliteRepo, ledgerService),
		Ledger:  ledgerService,
		Repo:    sqliteRepo,
		Cleanup: ledgerService.Close,
	}
	if mirror != nil {
		result.Mirror = mirror
		result.Exporter = mirror
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"mirror_enabled", mirror != nil)

	return result, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, sheetsOptions(config))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	ledgerService := services.NewLedgerService(cli, f.publisher(config))

	f.logger.Info("Initialized Google Sheets backend",
		"transactions_sheet", config.GoogleTransactionsSheet,
		"projection_sheet", config.GoogleProjectionSheet)

	return &BackendResult{
		Backend:  adapters.NewLedgerAdapter(cli, ledgerService),
		Ledger:   ledgerService,
		Exporter: cli,
		Cleanup:  ledgerService.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store := memory.NewFromFiles(dataDir)
	seeded := 0
	if config.SeedDemo {
		for _, tx := range demo.New(config.DemoSeed).Sample(config.DemoToday) {
			if _, err := store.Append(context.Background(), tx); err != nil {
				return nil, fmt.Errorf("seed demo ledger: %w", err)
			}
			seeded++
		}
	}

	ledgerService := services.NewLedgerService(store, f.publisher(config))

	f.logger.Info("Initialized memory backend",
		"data_directory", dataDir,
		"demo_transactions", seeded)

	return &BackendResult{
		Backend:  adapters.NewLedgerAdapter(store, ledgerService),
		Ledger:   ledgerService,
		Exporter: store,
		Cleanup:  ledgerService.Close,
	}, nil
}

// publisher connects to AMQP when configured. A broker that cannot be
// reached disables refresh messages instead of failing the backend.
func (f *DefaultFactory) publisher(config Config) services.Publisher {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without refresh messages", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

func sheetsOptions(config Config) gsheet.Options {
	return gsheet.Options{
		SpreadsheetID:     config.GoogleSpreadsheetID,
		TransactionsSheet: config.GoogleTransactionsSheet,
		ProjectionSheet:   config.GoogleProjectionSheet,
		AccountsSheet:     config.GoogleAccountsSheet,
	}
}
