package forecast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ledger/internal/categorize"
	"ledger/internal/core"
)

// ErrInvalidParams wraps every Params validation failure.
var ErrInvalidParams = errors.New("invalid forecast parameters")

// Params configures Build.
type Params struct {
	// StartingBalance is the balance before the first day of the window.
	StartingBalance decimal.Decimal
	WindowDays      int
	HorizonDays     int
	InsightCategory string
	RecentDays      int
	BaselineDays    int
	Categorizer     Categorizer
	Formatter       core.CurrencyFormatter
}

// DefaultParams returns a 30 day history, a 30 day projection and a weekly
// Food insight against the three weeks before it.
func DefaultParams() Params {
	return Params{
		StartingBalance: decimal.NewFromInt(20000),
		WindowDays:      30,
		HorizonDays:     30,
		InsightCategory: "Food",
		RecentDays:      7,
		BaselineDays:    21,
		Categorizer:     categorize.DefaultTable(),
		Formatter:       core.DefaultFormatter(),
	}
}

// Validate reports every invalid field at once.
func (p Params) Validate() error {
	var errs []string
	for _, w := range []struct {
		name string
		days int
	}{
		{"window", p.WindowDays},
		{"horizon", p.HorizonDays},
		{"recent window", p.RecentDays},
		{"baseline window", p.BaselineDays},
	} {
		if w.days <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got %d", w.name, w.days))
		}
	}
	if strings.TrimSpace(p.InsightCategory) == "" {
		errs = append(errs, "insight category is required")
	}
	if p.Categorizer == nil {
		errs = append(errs, "categorizer is required")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w:\n- %s", ErrInvalidParams, strings.Join(errs, "\n- "))
	}
	return nil
}

// Snapshot is everything derived from a ledger for one reference date.
// Amounts are unrounded; only Insight.Text and suggestion texts are
// formatted.
type Snapshot struct {
	ReferenceDate     core.Date                     `json:"reference_date"`
	StartingBalance   decimal.Decimal               `json:"starting_balance"`
	Transactions      []core.CategorizedTransaction `json:"-"`
	Daily             []core.DailySum               `json:"daily"`
	Historical        []core.BalancePoint           `json:"historical"`
	AverageDailySpend decimal.Decimal               `json:"average_daily_spend"`
	Projection        []core.ProjectionPoint        `json:"projection"`
	Breakdown         []core.CategoryTotal          `json:"breakdown"`
	Suggestions       []Suggestion                  `json:"suggestions"`
	Insight           Insight                       `json:"insight"`
}

// SeriesPoint is one point of the combined chart series.
type SeriesPoint struct {
	Date      core.Date       `json:"date"`
	Balance   decimal.Decimal `json:"balance"`
	Projected bool            `json:"projected"`
}

// Build runs the whole pipeline over txs as of today. txs is not modified
// and may be in any order.
func Build(txs []core.Transaction, p Params, today core.Date) (Snapshot, error) {
	if err := p.Validate(); err != nil {
		return Snapshot{}, err
	}
	if err := today.Validate(); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		ReferenceDate:   today,
		StartingBalance: p.StartingBalance,
		Transactions:    make([]core.CategorizedTransaction, len(txs)),
	}
	for i, tx := range txs {
		snap.Transactions[i] = core.CategorizedTransaction{Transaction: tx, Category: p.Categorizer.Categorize(tx.Description)}
	}

	var err error
	if snap.Daily, err = DailySums(txs, p.WindowDays, today); err != nil {
		return Snapshot{}, fmt.Errorf("daily sums: %w", err)
	}
	if snap.Historical, err = HistoricalBalances(p.StartingBalance, snap.Daily); err != nil {
		return Snapshot{}, fmt.Errorf("historical balances: %w", err)
	}
	if snap.AverageDailySpend, err = AverageDailySpend(txs, p.WindowDays, today); err != nil {
		return Snapshot{}, fmt.Errorf("average spend: %w", err)
	}
	if snap.Projection, err = ProjectBalances(snap.CurrentBalance(), snap.AverageDailySpend, p.HorizonDays, today); err != nil {
		return Snapshot{}, fmt.Errorf("projection: %w", err)
	}
	if snap.Breakdown, err = Breakdown(txs, p.Categorizer, p.WindowDays, today); err != nil {
		return Snapshot{}, fmt.Errorf("breakdown: %w", err)
	}
	snap.Suggestions = Suggestions(snap.Breakdown, p.Formatter)
	if snap.Insight, err = AnalyzeCategory(txs, p.Categorizer, p.InsightCategory, p.RecentDays, p.BaselineDays, today, p.Formatter); err != nil {
		return Snapshot{}, fmt.Errorf("insight: %w", err)
	}
	return snap, nil
}

// CurrentBalance is the last reconstructed balance, or the starting balance
// when there is no history.
func (s Snapshot) CurrentBalance() decimal.Decimal {
	if len(s.Historical) == 0 {
		return s.StartingBalance
	}
	return s.Historical[len(s.Historical)-1].Balance
}

// ProjectedBalance is the balance at the end of the projection horizon.
func (s Snapshot) ProjectedBalance() decimal.Decimal {
	if len(s.Projection) == 0 {
		return s.CurrentBalance()
	}
	return s.Projection[len(s.Projection)-1].Balance
}

// Series concatenates the historical and projected points in date order.
func (s Snapshot) Series() []SeriesPoint {
	out := make([]SeriesPoint, 0, len(s.Historical)+len(s.Projection))
	for _, h := range s.Historical {
		out = append(out, SeriesPoint{Date: h.Date, Balance: h.Balance})
	}
	for _, p := range s.Projection {
		out = append(out, SeriesPoint{Date: p.Date, Balance: p.Balance, Projected: true})
	}
	return out
}
