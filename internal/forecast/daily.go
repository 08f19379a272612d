package forecast

import (
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// DailySums returns one entry per calendar day for the windowDays days ending
// at today, oldest first. Days without activity carry a zero net amount and
// transactions outside the window are ignored.
func DailySums(txs []core.Transaction, windowDays int, today core.Date) ([]core.DailySum, error) {
	if err := checkWindow("window", windowDays); err != nil {
		return nil, err
	}

	start := today.AddDays(-(windowDays - 1))
	sums := make([]core.DailySum, windowDays)
	for i := range sums {
		sums[i] = core.DailySum{Date: start.AddDays(i), NetAmount: decimal.Zero}
	}

	for _, tx := range txs {
		idx := start.DaysUntil(tx.Date)
		if idx < 0 || idx >= windowDays {
			continue
		}
		sums[idx].NetAmount = sums[idx].NetAmount.Add(tx.Amount)
	}
	return sums, nil
}
