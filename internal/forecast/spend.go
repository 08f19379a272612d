package forecast

import (
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// AverageDailySpend is the total outflow dated in the windowDays days ending
// at today divided by windowDays. Inflows do not offset spending and
// future-dated transactions are ignored. The result is never negative.
func AverageDailySpend(txs []core.Transaction, windowDays int, today core.Date) (decimal.Decimal, error) {
	if err := checkWindow("window", windowDays); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, tx := range txs {
		if !tx.IsOutflow() || !inWindow(tx.Date, today, windowDays) {
			continue
		}
		total = total.Add(tx.Amount.Abs())
	}
	return total.Div(decimal.NewFromInt(int64(windowDays))), nil
}
