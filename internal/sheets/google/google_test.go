package google

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestServiceAccountCredentials(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
		t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
		_, err := serviceAccountCredentials()
		if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
			t.Fatalf("expected missing credentials error, got %v", err)
		}
	})

	t.Run("inline json wins", func(t *testing.T) {
		t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", `{"type":"service_account"}`)
		t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/does/not/exist")
		got, err := serviceAccountCredentials()
		if err != nil || string(got) != `{"type":"service_account"}` {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("application credentials file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sa.json")
		if err := os.WriteFile(path, []byte(`{"k":1}`), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
		t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
		got, err := serviceAccountCredentials()
		if err != nil || string(got) != `{"k":1}` {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("unreadable file", func(t *testing.T) {
		t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
		t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", filepath.Join(t.TempDir(), "missing.json"))
		if _, err := serviceAccountCredentials(); err == nil {
			t.Fatal("expected read error")
		}
	})
}

func TestDefaultSheetNames(t *testing.T) {
	c := newClient(nil, Options{SpreadsheetID: " id "})
	if c.spreadsheetID != "id" {
		t.Errorf("spreadsheet id not trimmed: %q", c.spreadsheetID)
	}
	if c.transactionsSheet != DefaultTransactionsSheet || c.projectionSheet != DefaultProjectionSheet || c.accountsSheet != DefaultAccountsSheet {
		t.Errorf("unexpected defaults: %+v", c)
	}

	c = newClient(nil, Options{SpreadsheetID: "id", TransactionsSheet: "Ledger", ProjectionSheet: "Forecast", AccountsSheet: "Banks"})
	if c.transactionsSheet != "Ledger" || c.projectionSheet != "Forecast" || c.accountsSheet != "Banks" {
		t.Errorf("custom names ignored: %+v", c)
	}
}

func TestClient_RequiresService(t *testing.T) {
	ctx := context.Background()
	c := newClient(nil, Options{SpreadsheetID: "test"})

	valid := core.Transaction{Date: core.NewDate(2025, 1, 1), Description: "Uber", Amount: decimal.NewFromInt(-100)}
	if _, err := c.Append(ctx, valid); !errors.Is(err, errNoService) {
		t.Errorf("Append: expected errNoService, got %v", err)
	}
	if _, err := c.ListTransactions(ctx, valid.Date, valid.Date); !errors.Is(err, errNoService) {
		t.Errorf("ListTransactions: expected errNoService, got %v", err)
	}
	if _, err := c.ListAccounts(ctx); !errors.Is(err, errNoService) {
		t.Errorf("ListAccounts: expected errNoService, got %v", err)
	}
	if err := c.WriteSeries(ctx, nil); !errors.Is(err, errNoService) {
		t.Errorf("WriteSeries: expected errNoService, got %v", err)
	}
	if err := c.DeleteTransaction(ctx, "x"); !errors.Is(err, errNoService) {
		t.Errorf("DeleteTransaction: expected errNoService, got %v", err)
	}
}

func TestClient_AppendValidatesFirst(t *testing.T) {
	c := newClient(nil, Options{SpreadsheetID: "test"})
	_, err := c.Append(context.Background(), core.Transaction{Date: core.NewDate(2025, 1, 1), Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
}
