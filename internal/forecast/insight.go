package forecast

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// Categorizer maps a transaction description to a category label.
type Categorizer interface {
	Categorize(description string) string
}

// Direction compares recent spending with the baseline average.
type Direction string

const (
	DirectionMore Direction = "more"
	DirectionLess Direction = "less"
	DirectionSame Direction = "the same"
)

var hundred = decimal.NewFromInt(100)

// Insight is the structured result behind a category spending sentence.
type Insight struct {
	Category     string          `json:"category"`
	RecentDays   int             `json:"recent_days"`
	BaselineDays int             `json:"baseline_days"`
	Recent       decimal.Decimal `json:"recent"`
	Baseline     decimal.Decimal `json:"baseline"`
	// BaselineAverage is Baseline scaled to one recent-sized period.
	BaselineAverage decimal.Decimal `json:"baseline_average"`
	// HasPercent is false when the baseline is zero and no ratio exists.
	HasPercent bool      `json:"has_percent"`
	Percent    int64     `json:"percent"`
	Direction  Direction `json:"direction,omitempty"`
	Text       string    `json:"text"`
}

// AnalyzeCategory compares a category's outflow over the last recentDays
// days with its average over the baselineDays days before them.
//
// The recent window is [today-(recentDays-1), today]; the baseline window
// covers the baselineDays days immediately before it. The baseline total is
// divided by baselineDays/recentDays so both figures describe a period of the
// same length.
func AnalyzeCategory(txs []core.Transaction, c Categorizer, category string, recentDays, baselineDays int, today core.Date, f core.CurrencyFormatter) (Insight, error) {
	if err := checkWindow("recent window", recentDays); err != nil {
		return Insight{}, err
	}
	if err := checkWindow("baseline window", baselineDays); err != nil {
		return Insight{}, err
	}

	in := Insight{
		Category:        category,
		RecentDays:      recentDays,
		BaselineDays:    baselineDays,
		Recent:          decimal.Zero,
		Baseline:        decimal.Zero,
		BaselineAverage: decimal.Zero,
	}

	for _, tx := range txs {
		if !tx.IsOutflow() {
			continue
		}
		ago := daysAgo(tx.Date, today)
		if ago < 0 || ago >= recentDays+baselineDays {
			continue
		}
		if c.Categorize(tx.Description) != category {
			continue
		}
		if ago < recentDays {
			in.Recent = in.Recent.Add(tx.Amount.Abs())
		} else {
			in.Baseline = in.Baseline.Add(tx.Amount.Abs())
		}
	}

	periods := decimal.NewFromInt(int64(baselineDays)).Div(decimal.NewFromInt(int64(recentDays)))
	in.BaselineAverage = in.Baseline.Div(periods)

	period, average := periodWords(recentDays)
	switch {
	case in.Recent.IsZero() && in.Baseline.IsZero():
		in.Text = fmt.Sprintf("No %s transactions in the last %d days.", category, recentDays+baselineDays)
	case in.BaselineAverage.IsZero():
		in.Text = fmt.Sprintf("You spent %s on %s %s.", f.Format(in.Recent), category, period)
	default:
		in.HasPercent = true
		in.Percent = in.Recent.Sub(in.BaselineAverage).Div(in.BaselineAverage).Mul(hundred).Round(0).IntPart()
		switch {
		case in.Percent > 0:
			in.Direction = DirectionMore
		case in.Percent < 0:
			in.Direction = DirectionLess
		default:
			in.Direction = DirectionSame
		}
		comparison := string(in.Direction) + " than"
		if in.Direction == DirectionSame {
			comparison = "the same as"
		}
		in.Text = fmt.Sprintf("You spent %s on %s %s (%s), %s your recent %s of %s.",
			f.Format(in.Recent), category, period, signedPercent(in.Percent), comparison, average, f.Format(in.BaselineAverage))
	}
	return in, nil
}

// CategoryInsight returns only the sentence produced by AnalyzeCategory.
func CategoryInsight(txs []core.Transaction, c Categorizer, category string, recentDays, baselineDays int, today core.Date, f core.CurrencyFormatter) (string, error) {
	in, err := AnalyzeCategory(txs, c, category, recentDays, baselineDays, today, f)
	if err != nil {
		return "", err
	}
	return in.Text, nil
}

func periodWords(recentDays int) (period, average string) {
	switch recentDays {
	case 1:
		return "today", "daily average"
	case 7:
		return "this week", "weekly average"
	default:
		return fmt.Sprintf("in the last %d days", recentDays), fmt.Sprintf("%d-day average", recentDays)
	}
}

func signedPercent(p int64) string {
	if p == 0 {
		return "0%"
	}
	return fmt.Sprintf("%+d%%", p)
}
