// Package categorize maps free-text transaction descriptions to category
// labels with an ordered keyword table. The first matching rule wins.
package categorize

import (
	"strings"

	"ledger/internal/core"
)

// Rule assigns Category to any description containing one of Keywords.
type Rule struct {
	Category string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Table is an ordered keyword table. Rule order is the tie-break when
// keyword lists overlap, so it must never be sorted.
type Table struct {
	rules []Rule
}

// New builds a table from rules, lower-casing keywords and dropping empty
// ones. Rules keep their order.
func New(rules []Rule) *Table {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		name := strings.TrimSpace(r.Category)
		if name == "" {
			continue
		}
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		out = append(out, Rule{Category: name, Keywords: kws})
	}
	return &Table{rules: out}
}

// DefaultTable returns the built-in keyword table. "restaurant" is listed
// twice under Food; first-match order makes the duplicate harmless.
func DefaultTable() *Table {
	return New([]Rule{
		{Category: "Food", Keywords: []string{"starbucks", "cafe", "restaurant", "mcdonald", "domino", "dine", "curry", "pizza", "burger", "dining", "restaurant"}},
		{Category: "Transport", Keywords: []string{"uber", "ola", "taxi", "bus", "metro", "train", "flight", "cab"}},
		{Category: "Shopping", Keywords: []string{"amazon", "flipkart", "store", "zara", "h&m", "shopping", "mall"}},
		{Category: "Entertainment", Keywords: []string{"netflix", "spotify", "prime", "movie", "cinema"}},
		{Category: "Bills", Keywords: []string{"electricity", "water", "bill", "internet", "mobile", "phone"}},
		{Category: "Salary", Keywords: []string{"salary", "payroll", "credit"}},
		{Category: core.DefaultCategory},
	})
}

// Categorize returns the category of the first rule with a keyword contained
// in description, or core.DefaultCategory.
func (t *Table) Categorize(description string) string {
	d := strings.ToLower(description)
	for _, r := range t.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(d, kw) {
				return r.Category
			}
		}
	}
	return core.DefaultCategory
}

// Categories lists the labels in table order, always ending with the
// default category.
func (t *Table) Categories() []string {
	out := make([]string, 0, len(t.rules)+1)
	hasDefault := false
	for _, r := range t.rules {
		out = append(out, r.Category)
		if r.Category == core.DefaultCategory {
			hasDefault = true
		}
	}
	if !hasDefault {
		out = append(out, core.DefaultCategory)
	}
	return out
}

// Rank returns the position of category in table order; unknown labels sort
// last.
func (t *Table) Rank(category string) int {
	for i, c := range t.Categories() {
		if c == category {
			return i
		}
	}
	return len(t.rules) + 1
}

// CategorizeAll labels every transaction. The input slice is not modified.
func (t *Table) CategorizeAll(txs []core.Transaction) []core.CategorizedTransaction {
	out := make([]core.CategorizedTransaction, len(txs))
	for i, tx := range txs {
		out[i] = core.CategorizedTransaction{Transaction: tx, Category: t.Categorize(tx.Description)}
	}
	return out
}
