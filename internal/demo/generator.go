// Package demo generates plausible, reproducible sample ledgers for local
// runs and tests.
package demo

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

const (
	// HistoryDays is how far back Sample reaches, today included.
	HistoryDays = 41
	// SalaryDaysAgo is the day a lump salary payment may land.
	SalaryDaysAgo = 30
	salaryChance  = 0.4
	activeChance  = 0.6
)

// merchant describes how much a purchase at one place tends to cost.
// Amounts are drawn uniformly from [min, min+spread).
type merchant struct {
	description string
	min, spread int64
}

var sampleMerchants = []merchant{
	{"Starbucks", 100, 700},
	{"Uber", 50, 600},
	{"Flipkart", 200, 1500},
	{"Netflix", 50, 700},
	{"Salary", 0, 0},
	{"Grocery Store", 200, 1500},
	{"Dominos", 100, 700},
	{"Restaurant", 100, 700},
	{"Electricity Bill", 300, 3000},
	{"Mobile Recharge", 300, 3000},
	{"Cinema", 50, 700},
	{"Amazon", 200, 1500},
	{"Metro", 50, 600},
}

var noiseMerchants = []merchant{
	{"Starbucks", 50, 600},
	{"Uber", 30, 500},
	{"Grocery Store", 200, 1200},
	{"Dominos", 100, 700},
	{"Electricity Bill", 200, 2500},
	{"Netflix", 50, 700},
}

var salaryAmounts = []int64{30000, 35000, 40000}

// Generator is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// New returns a generator whose output depends only on seed.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Sample returns a ledger covering the HistoryDays days ending at today,
// oldest first. Most days carry one or two purchases and a salary may be
// paid SalaryDaysAgo days before today.
func (g *Generator) Sample(today core.Date) []core.Transaction {
	var txs []core.Transaction
	for ago := HistoryDays - 1; ago >= 0; ago-- {
		date := today.AddDays(-ago)
		if ago == SalaryDaysAgo && g.rng.Float64() < salaryChance {
			txs = append(txs, g.transaction(date, "Salary", decimal.NewFromInt(40000)))
		}
		count := 0
		if g.rng.Float64() < activeChance {
			count = 1 + g.rng.Intn(2)
		}
		for i := 0; i < count; i++ {
			m := sampleMerchants[g.rng.Intn(len(sampleMerchants))]
			txs = append(txs, g.transaction(date, m.description, g.amount(m)))
		}
	}
	sortByDate(txs)
	return txs
}

// Noise returns n extra outflows dated within the last days days, oldest
// first.
func (g *Generator) Noise(today core.Date, n, days int) []core.Transaction {
	if n <= 0 || days <= 0 {
		return nil
	}
	txs := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		date := today.AddDays(-g.rng.Intn(days))
		m := noiseMerchants[g.rng.Intn(len(noiseMerchants))]
		txs = append(txs, g.transaction(date, m.description, g.amount(m)))
	}
	sortByDate(txs)
	return txs
}

func (g *Generator) amount(m merchant) decimal.Decimal {
	if m.spread == 0 {
		return decimal.NewFromInt(salaryAmounts[g.rng.Intn(len(salaryAmounts))])
	}
	return decimal.NewFromInt(-(m.min + g.rng.Int63n(m.spread)))
}

func (g *Generator) transaction(date core.Date, description string, amount decimal.Decimal) core.Transaction {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		id = uuid.New()
	}
	return core.Transaction{
		ID:          id.String(),
		Date:        date,
		Description: description,
		Amount:      amount,
	}
}

func sortByDate(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date.Time)
	})
}
