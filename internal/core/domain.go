package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO-8601 calendar date layout used for every date key.
const DateLayout = "2006-01-02"

// DefaultCategory is the catch-all label returned when no keyword matches.
const DefaultCategory = "Other"

type (
	// Date is a calendar date normalized to midnight UTC.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string
		Date        Date
		Description string
		Amount      decimal.Decimal // negative = outflow, positive = inflow
		Account     string          // Account number, optional
	}

	CategorizedTransaction struct {
		Transaction
		Category string
	}

	// DailySum is the net amount of all transactions dated on one calendar day.
	DailySum struct {
		Date      Date
		NetAmount decimal.Decimal
	}

	BalancePoint struct {
		Date    Date
		Balance decimal.Decimal
	}

	// ProjectionPoint is a forecast balance for a future date.
	ProjectionPoint struct {
		Date    Date
		Balance decimal.Decimal
	}

	Account struct {
		Name    string
		Number  string
		Balance decimal.Decimal
	}

	// CategoryTotal aggregates the transactions of one category over a window.
	CategoryTotal struct {
		Category string
		Outflow  decimal.Decimal // absolute value of the negative amounts
		Inflow   decimal.Decimal
		Count    int
		Outflows int             // number of negative transactions
		Share    decimal.Decimal // percent of the total outflow, 0-100
	}
)

var (
	ErrInvalidWindow    = errors.New("invalid window")
	ErrUnorderedInput   = errors.New("dates not in chronological order")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyAccount     = errors.New("empty account number")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// AddDays returns the date n calendar days later (earlier when n is negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysUntil returns the number of calendar days from d to other.
func (d Date) DaysUntil(other Date) int {
	from, to := DateOf(d.Time), DateOf(other.Time)
	return int(math.Round(to.Time.Sub(from.Time).Hours() / 24))
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// IsOutflow reports whether money leaves the account.
func (t Transaction) IsOutflow() bool {
	return t.Amount.IsNegative()
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Number) == "" {
		return ErrEmptyAccount
	}
	return nil
}
