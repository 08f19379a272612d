package forecast

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// HistoricalBalances folds daily net sums into end-of-day balances starting
// from start, the balance before the first day. Equal consecutive dates are
// accepted; a date earlier than its predecessor fails with
// core.ErrUnorderedInput before any point is returned.
func HistoricalBalances(start decimal.Decimal, sums []core.DailySum) ([]core.BalancePoint, error) {
	for i := 1; i < len(sums); i++ {
		if sums[i].Date.Before(sums[i-1].Date.Time) {
			return nil, fmt.Errorf("%w: %s after %s", core.ErrUnorderedInput, sums[i].Date, sums[i-1].Date)
		}
	}

	points := make([]core.BalancePoint, 0, len(sums))
	running := start
	for _, s := range sums {
		running = running.Add(s.NetAmount)
		points = append(points, core.BalancePoint{Date: s.Date, Balance: running})
	}
	return points, nil
}
