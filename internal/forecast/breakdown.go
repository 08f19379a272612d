package forecast

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// SuggestionKind classifies a spending suggestion.
type SuggestionKind string

const (
	SuggestionWarning  SuggestionKind = "warning"
	SuggestionReduce   SuggestionKind = "reduce"
	SuggestionLow      SuggestionKind = "low"
	SuggestionBalanced SuggestionKind = "balanced"
)

// Thresholds on a category's average outflow per transaction relative to
// the average over all categories.
var (
	warningRatio = decimal.RequireFromString("1.5")
	reduceRatio  = decimal.RequireFromString("1.2")
	lowRatio     = decimal.RequireFromString("0.8")
)

type Suggestion struct {
	Category string         `json:"category,omitempty"`
	Kind     SuggestionKind `json:"kind"`
	Text     string         `json:"text"`
}

// ranker is implemented by categorizers with an explicit label order, such
// as categorize.Table.
type ranker interface {
	Rank(category string) int
}

// Breakdown totals the in-window transactions per category. Categories
// without transactions are omitted. Totals are ordered by outflow, largest
// first, then by the categorizer's own order when it exposes one.
func Breakdown(txs []core.Transaction, c Categorizer, windowDays int, today core.Date) ([]core.CategoryTotal, error) {
	if err := checkWindow("window", windowDays); err != nil {
		return nil, err
	}

	byCategory := make(map[string]*core.CategoryTotal)
	var order []string
	totalOutflow := decimal.Zero
	for _, tx := range txs {
		if !inWindow(tx.Date, today, windowDays) {
			continue
		}
		label := c.Categorize(tx.Description)
		ct, ok := byCategory[label]
		if !ok {
			ct = &core.CategoryTotal{Category: label, Outflow: decimal.Zero, Inflow: decimal.Zero, Share: decimal.Zero}
			byCategory[label] = ct
			order = append(order, label)
		}
		ct.Count++
		if tx.IsOutflow() {
			ct.Outflows++
			ct.Outflow = ct.Outflow.Add(tx.Amount.Abs())
			totalOutflow = totalOutflow.Add(tx.Amount.Abs())
		} else {
			ct.Inflow = ct.Inflow.Add(tx.Amount)
		}
	}

	totals := make([]core.CategoryTotal, 0, len(order))
	for _, label := range order {
		ct := *byCategory[label]
		if totalOutflow.IsPositive() {
			ct.Share = ct.Outflow.Div(totalOutflow).Mul(hundred)
		}
		totals = append(totals, ct)
	}

	r, hasRank := c.(ranker)
	sort.SliceStable(totals, func(i, j int) bool {
		if cmp := totals[i].Outflow.Cmp(totals[j].Outflow); cmp != 0 {
			return cmp > 0
		}
		if hasRank {
			return r.Rank(totals[i].Category) < r.Rank(totals[j].Category)
		}
		return totals[i].Category < totals[j].Category
	})
	return totals, nil
}

// Suggestions compares each category's average outflow per transaction with
// the overall average and flags the outliers. When nothing stands out a single
// balanced suggestion is returned.
func Suggestions(totals []core.CategoryTotal, f core.CurrencyFormatter) []Suggestion {
	overallSum := decimal.Zero
	overallCount := 0
	for _, t := range totals {
		overallSum = overallSum.Add(t.Outflow)
		overallCount += t.Outflows
	}
	if overallCount == 0 {
		return []Suggestion{{Kind: SuggestionBalanced, Text: "No spending recorded yet."}}
	}
	overall := overallSum.Div(decimal.NewFromInt(int64(overallCount)))

	var out []Suggestion
	for _, t := range spenders(totals) {
		avg := t.Outflow.Div(decimal.NewFromInt(int64(t.Outflows)))
		ratio := avg.Div(overall)
		switch {
		case ratio.GreaterThan(warningRatio):
			out = append(out, Suggestion{
				Category: t.Category,
				Kind:     SuggestionWarning,
				Text: fmt.Sprintf("%s purchases average %s, well above your typical %s. Consider a budget cap.",
					t.Category, f.Format(avg), f.Format(overall)),
			})
		case ratio.GreaterThan(reduceRatio):
			out = append(out, Suggestion{
				Category: t.Category,
				Kind:     SuggestionReduce,
				Text: fmt.Sprintf("%s purchases average %s, above your typical %s. Look for cheaper options.",
					t.Category, f.Format(avg), f.Format(overall)),
			})
		case ratio.LessThan(lowRatio):
			out = append(out, Suggestion{
				Category: t.Category,
				Kind:     SuggestionLow,
				Text: fmt.Sprintf("%s purchases average %s, below your typical %s. Nicely controlled.",
					t.Category, f.Format(avg), f.Format(overall)),
			})
		}
	}
	if len(out) == 0 {
		out = append(out, Suggestion{Kind: SuggestionBalanced, Text: "Spending is evenly spread across categories."})
	}
	return out
}

// Top returns the n categories with the largest outflow. totals must be in
// Breakdown order.
func Top(totals []core.CategoryTotal, n int) []core.CategoryTotal {
	if n <= 0 {
		return nil
	}
	s := spenders(totals)
	if n < len(s) {
		s = s[:n]
	}
	return append([]core.CategoryTotal(nil), s...)
}

// Bottom returns the n categories with the smallest non-zero outflow,
// smallest first. totals must be in Breakdown order.
func Bottom(totals []core.CategoryTotal, n int) []core.CategoryTotal {
	if n <= 0 {
		return nil
	}
	s := spenders(totals)
	out := make([]core.CategoryTotal, 0, n)
	for i := len(s) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s[i])
	}
	return out
}

func spenders(totals []core.CategoryTotal) []core.CategoryTotal {
	out := make([]core.CategoryTotal, 0, len(totals))
	for _, t := range totals {
		if t.Outflows > 0 {
			out = append(out, t)
		}
	}
	return out
}
