package google

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/forecast"
)

// Transactions tab layout: Date | Description | Amount | ID. The ID column is
// optional so hand-maintained sheets can be read too.
const (
	colDate = iota
	colDescription
	colAmount
	colID
)

// Sheets serial dates count days from this epoch.
var sheetsEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{core.DateLayout, "2006/01/02", "1/2/2006", "02.01.2006"}

func transactionRow(tx core.Transaction) []interface{} {
	return []interface{}{tx.Date.String(), tx.Description, tx.Amount.InexactFloat64(), tx.ID}
}

// parseTransactions converts a values matrix into transactions. A header row
// and blank rows are ignored; other unreadable rows are counted in skipped.
func parseTransactions(values [][]interface{}) (txs []core.Transaction, skipped int) {
	for i, row := range values {
		if isBlank(row) {
			continue
		}
		tx, err := parseTransactionRow(row)
		if err != nil {
			if i == 0 {
				continue // header
			}
			skipped++
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped
}

func parseTransactionRow(row []interface{}) (core.Transaction, error) {
	if len(row) <= colAmount {
		return core.Transaction{}, fmt.Errorf("expected at least %d columns, got %d", colAmount+1, len(row))
	}
	date, err := parseCellDate(row[colDate])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := parseCellAmount(row[colAmount])
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		ID:          cellString(row, colID),
		Date:        date,
		Description: cellString(row, colDescription),
		Amount:      amount,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func parseCellDate(v interface{}) (core.Date, error) {
	switch t := v.(type) {
	case float64:
		return core.DateOf(sheetsEpoch.AddDate(0, 0, int(t))), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return core.DateOf(parsed), nil
			}
		}
		return core.Date{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
	default:
		return core.Date{}, fmt.Errorf("%w: %v", core.ErrInvalidDate, v)
	}
}

func parseCellAmount(v interface{}) (decimal.Decimal, error) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), nil
	case string:
		return core.ParseAmount(t)
	default:
		return decimal.Zero, fmt.Errorf("%w: %v", core.ErrInvalidAmount, v)
	}
}

// parseAccounts reads Name | Number | Balance rows. Accounts are unique by
// number; a later row replaces an earlier one.
func parseAccounts(values [][]interface{}) []core.Account {
	index := map[string]int{}
	var out []core.Account
	for _, row := range values {
		if len(row) < 3 {
			continue
		}
		balance, err := parseCellAmount(row[2])
		if err != nil {
			continue // header or malformed
		}
		a := core.Account{Name: cellString(row, 0), Number: cellString(row, 1), Balance: balance}
		if a.Validate() != nil {
			continue
		}
		if i, ok := index[a.Number]; ok {
			out[i] = a
			continue
		}
		index[a.Number] = len(out)
		out = append(out, a)
	}
	return out
}

// seriesValues renders the export: a header then Date | Balance | Kind rows.
// Balances are rounded to cents.
func seriesValues(points []forecast.SeriesPoint) [][]interface{} {
	out := make([][]interface{}, 0, len(points)+1)
	out = append(out, []interface{}{"Date", "Balance", "Kind"})
	for _, p := range points {
		kind := "historical"
		if p.Projected {
			kind = "projected"
		}
		out = append(out, []interface{}{p.Date.String(), p.Balance.Round(2).InexactFloat64(), kind})
	}
	return out
}

// findTransactionRow returns the zero-based row index matching tx, or -1.
func findTransactionRow(values [][]interface{}, tx core.Transaction) int {
	for i, row := range values {
		if tx.ID != "" {
			if cellString(row, colID) == tx.ID {
				return i
			}
			continue
		}
		got, err := parseTransactionRow(row)
		if err != nil {
			continue
		}
		if got.Date.Equal(tx.Date.Time) && got.Description == tx.Description && got.Amount.Equal(tx.Amount) {
			return i
		}
	}
	return -1
}

func cellString(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

func isBlank(row []interface{}) bool {
	for i := range row {
		if cellString(row, i) != "" {
			return false
		}
	}
	return true
}
