// Package forecast turns a ledger of dated transactions into daily net sums,
// a reconstructed balance history, a naive linear projection, a category
// breakdown and a plain-language spending insight.
//
// Every function is pure: the reference date is always passed in and inputs
// are never mutated, so results are reproducible and safe to compute from
// many goroutines at once.
package forecast

import (
	"fmt"

	"ledger/internal/core"
)

func checkWindow(name string, days int) error {
	if days <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", core.ErrInvalidWindow, name, days)
	}
	return nil
}

// daysAgo reports how many calendar days before today d falls. Future dates
// are negative.
func daysAgo(d, today core.Date) int {
	return d.DaysUntil(today)
}

// inWindow reports whether d lies in [today-(days-1), today].
func inWindow(d, today core.Date, days int) bool {
	ago := daysAgo(d, today)
	return ago >= 0 && ago < days
}
