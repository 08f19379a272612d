package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/forecast"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)

	for i, tx := range []core.Transaction{
		{Date: core.NewDate(2025, 1, 3), Description: "Uber", Amount: decimal.NewFromInt(-250)},
		{Date: core.NewDate(2025, 1, 1), Description: "Salary", Amount: decimal.NewFromInt(40000)},
		{Date: core.NewDate(2025, 2, 1), Description: "Later", Amount: decimal.NewFromInt(-1)},
	} {
		ref, err := s.Append(ctx, tx)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if want := fmt.Sprintf("mem:%d", i+1); ref != want {
			t.Fatalf("unexpected ref %q, want %q", ref, want)
		}
	}
	if _, err := s.Append(ctx, core.Transaction{Date: core.NewDate(2025, 1, 1)}); err == nil {
		t.Fatalf("expected validation error")
	}

	got, err := s.ListTransactions(ctx, core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Description != "Salary" || got[1].Description != "Uber" {
		t.Fatalf("unexpected list: %+v", got)
	}
	if got[0].ID == "" {
		t.Fatalf("expected generated id")
	}

	if err := s.DeleteTransaction(ctx, got[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, got[0].ID); err == nil {
		t.Fatalf("expected error deleting twice")
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	content := "# name;number;balance\nChecking;...1234;100.50\nEmergency Fund;...5678;1\nEmergency Fund;...5678;2\nbroken line\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_accounts.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	accounts, _ := NewFromFiles(dir).ListAccounts(context.Background())
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %+v", accounts)
	}
	if !accounts[1].Balance.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("later duplicate should win, got %+v", accounts[1])
	}

	fallback, _ := NewFromFiles(filepath.Join(dir, "missing")).ListAccounts(context.Background())
	if len(fallback) != 2 || fallback[0].Number != "...5678" {
		t.Fatalf("unexpected fallback accounts: %+v", fallback)
	}
}

func TestNewDemoAndSeries(t *testing.T) {
	ctx := context.Background()
	today := core.NewDate(2025, 6, 1)
	s := NewDemo(1, today)

	txs, err := s.ListTransactions(ctx, today.AddDays(-60), today)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) == 0 {
		t.Fatalf("demo store should not be empty")
	}

	points := []forecast.SeriesPoint{{Date: today, Balance: decimal.NewFromInt(10)}}
	if err := s.WriteSeries(ctx, points); err != nil {
		t.Fatalf("write series: %v", err)
	}
	points[0].Balance = decimal.Zero
	if got := s.Series(); len(got) != 1 || !got[0].Balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("series should be copied, got %+v", got)
	}
}
