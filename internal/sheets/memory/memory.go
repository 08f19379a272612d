package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"ledger/internal/core"
	"ledger/internal/demo"
	"ledger/internal/forecast"
)

type Store struct {
	mu       sync.Mutex
	items    []core.Transaction
	accounts []core.Account
	series   []forecast.SeriesPoint
}

func New(accounts []core.Account, txs []core.Transaction) *Store {
	s := &Store{accounts: dedupeAccounts(accounts)}
	s.items = append(s.items, txs...)
	return s
}

// NewDemo returns a store seeded with the demo ledger for today.
func NewDemo(seed int64, today core.Date) *Store {
	return New(defaultAccounts(), demo.New(seed).Sample(today))
}

// NewFromFiles loads accounts from base/seed_accounts.txt, one
// "name;number;balance" per line. Unreadable or empty files fall back to the
// built-in accounts.
func NewFromFiles(base string) *Store {
	accounts := parseAccounts(readLines(filepath.Join(base, "seed_accounts.txt")))
	if len(accounts) == 0 {
		accounts = defaultAccounts()
	}
	return New(accounts, nil)
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

func (s *Store) ListTransactions(_ context.Context, from, to core.Date) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, tx := range s.items {
		if tx.Date.Before(from.Time) || tx.Date.After(to.Time) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.items {
		if tx.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s not found", id)
}

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.accounts...), nil
}

func (s *Store) WriteSeries(_ context.Context, points []forecast.SeriesPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = append([]forecast.SeriesPoint(nil), points...)
	return nil
}

// Series returns the last exported series.
func (s *Store) Series() []forecast.SeriesPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]forecast.SeriesPoint(nil), s.series...)
}

func defaultAccounts() []core.Account {
	return parseAccounts([]string{
		"Emergency Fund;...5678;8950.15",
		"Rewards Card;...4321;1250.75",
	})
}

func parseAccounts(lines []string) []core.Account {
	var out []core.Account
	for _, line := range lines {
		parts := strings.Split(line, ";")
		if len(parts) != 3 {
			continue
		}
		balance, err := core.ParseAmount(parts[2])
		if err != nil {
			continue
		}
		a := core.Account{Name: strings.TrimSpace(parts[0]), Number: strings.TrimSpace(parts[1]), Balance: balance}
		if a.Validate() != nil {
			continue
		}
		out = append(out, a)
	}
	return dedupeAccounts(out)
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// dedupeAccounts keeps one account per number; later entries replace earlier
// ones in place.
func dedupeAccounts(in []core.Account) []core.Account {
	index := map[string]int{}
	out := make([]core.Account, 0, len(in))
	for _, a := range in {
		if i, ok := index[a.Number]; ok {
			out[i] = a
			continue
		}
		index[a.Number] = len(out)
		out = append(out, a)
	}
	return out
}
