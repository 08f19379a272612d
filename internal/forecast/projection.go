package forecast

import (
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// ProjectBalances extends a balance linearly: the point for lastDate+i is
// lastBalance - i*avgDailySpend. The series is not clamped at zero.
func ProjectBalances(lastBalance, avgDailySpend decimal.Decimal, horizonDays int, lastDate core.Date) ([]core.ProjectionPoint, error) {
	if err := checkWindow("horizon", horizonDays); err != nil {
		return nil, err
	}

	points := make([]core.ProjectionPoint, horizonDays)
	balance := lastBalance
	for i := range points {
		balance = balance.Sub(avgDailySpend)
		points[i] = core.ProjectionPoint{Date: lastDate.AddDays(i + 1), Balance: balance}
	}
	return points, nil
}
