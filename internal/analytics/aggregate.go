// Package analytics derives chart-ready totals from a transaction snapshot.
// Results live for a single render; nothing here is persisted.
package analytics

import (
	"sort"

	"pocketbook/internal/core"
)

// MonthWindow is the number of most recent months kept by MonthlyTotals.
const MonthWindow = 6

// CategoryAmount is the summed expense of one category.
type CategoryAmount struct {
	Name   string
	Amount float64
}

// CategoryTotals maps category to summed expense amount, in order of first
// occurrence. Categories without expenses are absent.
type CategoryTotals []CategoryAmount

// MonthTotal is the income/expense sum of one "YYYY-MM" bucket.
type MonthTotal struct {
	Month   string
	Income  float64
	Expense float64
}

// Total sums every category amount.
func (c CategoryTotals) Total() float64 {
	var total float64
	for _, ca := range c {
		total += ca.Amount
	}
	return total
}

// Sorted returns a copy ordered by amount descending, then name.
func (c CategoryTotals) Sorted() CategoryTotals {
	out := append(CategoryTotals(nil), c...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ComputeCategoryTotals groups expenses by category.
func ComputeCategoryTotals(txs []core.Transaction) CategoryTotals {
	index := make(map[string]int)
	var out CategoryTotals
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryAmount{Name: t.Category})
		}
		out[i].Amount += t.Amount
	}
	return out
}

// ComputeMonthlyTotals buckets both types per calendar month and keeps the
// MonthWindow most recent months present, oldest first.
func ComputeMonthlyTotals(txs []core.Transaction) []MonthTotal {
	buckets := make(map[string]*MonthTotal)
	for _, t := range txs {
		key := core.MonthKey(t.Date)
		b, ok := buckets[key]
		if !ok {
			b = &MonthTotal{Month: key}
			buckets[key] = b
		}
		if t.Type == core.Income {
			b.Income += t.Amount
		} else {
			b.Expense += t.Amount
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > MonthWindow {
		keys = keys[len(keys)-MonthWindow:]
	}

	out := make([]MonthTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, *buckets[k])
	}
	return out
}
