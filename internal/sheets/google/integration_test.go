//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/forecast"
)

// Integration tests require a real spreadsheet and service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_GoogleSheetsFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := New(ctx, Options{
		SpreadsheetID:     spreadsheetID,
		TransactionsSheet: os.Getenv("GOOGLE_TRANSACTIONS_SHEET"),
		ProjectionSheet:   os.Getenv("GOOGLE_PROJECTION_SHEET"),
		AccountsSheet:     os.Getenv("GOOGLE_ACCOUNTS_SHEET"),
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	today := core.DateOf(time.Now())
	tx := core.Transaction{
		ID:          "integration-" + time.Now().Format("20060102150405"),
		Date:        today,
		Description: "Integration test",
		Amount:      decimal.RequireFromString("-1.23"),
	}

	t.Run("Append", func(t *testing.T) {
		ref, err := client.Append(ctx, tx)
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		t.Logf("appended at %s", ref)
	})

	t.Run("ListTransactions", func(t *testing.T) {
		txs, err := client.ListTransactions(ctx, today, today)
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		found := false
		for _, got := range txs {
			if got.ID == tx.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("appended transaction %s not listed", tx.ID)
		}
	})

	t.Run("WriteSeries", func(t *testing.T) {
		err := client.WriteSeries(ctx, []forecast.SeriesPoint{
			{Date: today, Balance: decimal.NewFromInt(100)},
			{Date: today.AddDays(1), Balance: decimal.NewFromInt(90), Projected: true},
		})
		if err != nil {
			t.Fatalf("WriteSeries: %v", err)
		}
	})

	t.Run("DeleteTransaction", func(t *testing.T) {
		if err := client.DeleteTransaction(ctx, tx.ID); err != nil {
			t.Fatalf("DeleteTransaction: %v", err)
		}
	})
}
