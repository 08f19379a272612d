package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/demo"
)

var testToday = core.NewDate(2025, 3, 31)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("postgres").IsValid() {
		t.Error("postgres should not be valid")
	}
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "sqlite,sheets,memory" {
		t.Errorf("GetBackendTypeStrings = %s", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"invalid type", Config{Type: "postgres"}, "invalid backend type"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path is required"},
		{"sheets without spreadsheet", Config{Type: SheetsBackend}, "Google Spreadsheet ID is required"},
		{"memory demo without date", Config{Type: MemoryBackend, SeedDemo: true}, "demo date is required"},
		{"memory", Config{Type: MemoryBackend}, ""},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "ledger.db"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil, testToday); err == nil {
		t.Fatal("expected error for nil config")
	}

	app := &config.Config{
		DataBackend:             "memory",
		DataDir:                 "/srv/ledger",
		GoogleSpreadsheetID:     "1AbC",
		GoogleTransactionsSheet: "Tx",
		DemoSeed:                9,
	}
	cfg, err := FromAppConfig(app, testToday)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != MemoryBackend || !cfg.SeedDemo || cfg.DemoSeed != 9 || !cfg.DemoToday.Equal(testToday.Time) {
		t.Errorf("memory config = %+v", cfg)
	}
	if cfg.DataDirectory != "/srv/ledger" || cfg.GoogleTransactionsSheet != "Tx" {
		t.Errorf("copied fields = %+v", cfg)
	}

	app.DataBackend = "sqlite"
	cfg, err = FromAppConfig(app, testToday)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.SeedDemo {
		t.Error("sqlite backend should not be seeded")
	}

	app.DataBackend = "excel"
	if _, err := FromAppConfig(app, testToday); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestFactory_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	result, err := NewFactory(nil).CreateBackend(ctx, Config{
		Type:          MemoryBackend,
		DataDirectory: t.TempDir(),
		SeedDemo:      true,
		DemoSeed:      3,
		DemoToday:     testToday,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer result.Close()

	if result.Exporter == nil || result.Ledger == nil {
		t.Fatal("memory backend should provide an exporter and a ledger service")
	}
	if result.Repo != nil || result.Mirror != nil {
		t.Error("memory backend has no repository or mirror")
	}

	want := demo.New(3).Sample(testToday)
	got, err := result.Backend.ListTransactions(ctx, testToday.AddDays(-demo.HistoryDays), testToday)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("seeded %d transactions, want %d", len(got), len(want))
	}

	accounts, err := result.Backend.ListAccounts(ctx)
	if err != nil || len(accounts) == 0 {
		t.Fatalf("ListAccounts = %v, %v; want the default accounts", accounts, err)
	}
}

func TestFactory_SQLiteBackend(t *testing.T) {
	ctx := context.Background()
	result, err := NewFactory(nil).CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "data", "ledger.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}

	if result.Repo == nil {
		t.Fatal("sqlite backend should expose its repository")
	}
	if result.Mirror != nil || result.Exporter != nil {
		t.Error("no spreadsheet configured, mirror and exporter should be nil")
	}

	id, err := result.Backend.Append(ctx, core.Transaction{
		Date: testToday, Description: "Swiggy", Amount: decimal.NewFromInt(-450),
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	stored, err := result.Repo.GetTransaction(ctx, id)
	if err != nil || stored.Description != "Swiggy" {
		t.Fatalf("GetTransaction = %+v, %v", stored, err)
	}
	stats, err := result.Repo.GetSyncQueueStats(ctx)
	if err != nil || stats.Pending != 1 {
		t.Errorf("queue stats = %+v, %v; want 1 pending", stats, err)
	}

	if err := result.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFactory_InvalidConfig(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SheetsBackend}); err == nil {
		t.Fatal("expected error for sheets backend without spreadsheet")
	}
}
