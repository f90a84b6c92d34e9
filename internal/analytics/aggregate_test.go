package analytics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketbook/internal/core"
)

func tx(amount float64, typ core.TransactionType, category string, y, m, d int) core.Transaction {
	return core.Transaction{Amount: amount, Type: typ, Category: category, Date: core.NewDate(y, m, d)}
}

func scenario() []core.Transaction {
	return []core.Transaction{
		tx(100, core.Income, "salary", 2024, 1, 15),
		tx(40, core.Expense, "food", 2024, 1, 20),
		tx(60, core.Expense, "food", 2024, 2, 1),
	}
}

func TestComputeCategoryTotals_Scenario(t *testing.T) {
	got := ComputeCategoryTotals(scenario())
	require.Len(t, got, 1)
	assert.Equal(t, CategoryAmount{Name: "food", Amount: 100}, got[0])
}

func TestComputeMonthlyTotals_Scenario(t *testing.T) {
	got := ComputeMonthlyTotals(scenario())
	assert.Equal(t, []MonthTotal{
		{Month: "2024-01", Income: 100, Expense: 40},
		{Month: "2024-02", Income: 0, Expense: 60},
	}, got)
}

func TestComputeCategoryTotals_FirstOccurrenceOrder(t *testing.T) {
	got := ComputeCategoryTotals([]core.Transaction{
		tx(5, core.Expense, "travel", 2024, 1, 1),
		tx(1, core.Income, "salary", 2024, 1, 1),
		tx(7, core.Expense, "food", 2024, 1, 2),
		tx(3, core.Expense, "travel", 2024, 1, 3),
	})
	require.Len(t, got, 2)
	assert.Equal(t, "travel", got[0].Name)
	assert.Equal(t, 8.0, got[0].Amount)
	assert.Equal(t, "food", got[1].Name, "income categories must be absent")
}

func TestComputeCategoryTotals_AcceptsNonPositiveAmounts(t *testing.T) {
	got := ComputeCategoryTotals([]core.Transaction{
		tx(10, core.Expense, "food", 2024, 1, 1),
		tx(-4, core.Expense, "food", 2024, 1, 2),
		tx(0, core.Expense, "bills", 2024, 1, 3),
	})
	assert.Equal(t, CategoryTotals{{"food", 6}, {"bills", 0}}, got)
}

func TestEmptyInputs(t *testing.T) {
	assert.Empty(t, ComputeCategoryTotals(nil))
	assert.Empty(t, ComputeMonthlyTotals(nil))
	assert.Empty(t, ComputeCategoryTotals([]core.Transaction{tx(5, core.Income, "salary", 2024, 1, 1)}))
}

func TestComputeMonthlyTotals_KeepsLastSix(t *testing.T) {
	var txs []core.Transaction
	// Nine months across a year boundary, inserted out of order.
	for _, m := range []int{11, 3, 12, 1, 9, 2, 10, 4, 5} {
		y := 2024
		if m >= 9 {
			y = 2023
		}
		txs = append(txs, tx(float64(m), core.Expense, "food", y, m, 10))
	}
	got := ComputeMonthlyTotals(txs)
	require.Len(t, got, MonthWindow)
	months := make([]string, len(got))
	for i, mt := range got {
		months[i] = mt.Month
	}
	assert.Equal(t, []string{"2023-12", "2024-01", "2024-02", "2024-03", "2024-04", "2024-05"}, months)
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	in := scenario()
	before := append([]core.Transaction(nil), in...)
	ComputeCategoryTotals(in)
	ComputeMonthlyTotals(in)
	assert.Equal(t, before, in)
}

func TestSortedAndTotal(t *testing.T) {
	c := CategoryTotals{{"b", 2}, {"a", 2}, {"c", 5}}
	sorted := c.Sorted()
	assert.Equal(t, CategoryTotals{{"c", 5}, {"a", 2}, {"b", 2}}, sorted)
	assert.Equal(t, "b", c[0].Name, "Sorted must copy")
	assert.Equal(t, 9.0, c.Total())
}

func randomTransactions(r *rand.Rand, n int) []core.Transaction {
	cats := []string{"food", "travel", "bills", "shopping"}
	out := make([]core.Transaction, n)
	for i := range out {
		typ := core.Expense
		if r.Intn(3) == 0 {
			typ = core.Income
		}
		out[i] = tx(float64(r.Intn(100000))/100, typ, cats[r.Intn(len(cats))], 2020+r.Intn(3), 1+r.Intn(12), 1+r.Intn(28))
	}
	return out
}

func TestProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		txs := randomTransactions(r, r.Intn(60))

		var expenseSum float64
		for _, x := range txs {
			if x.Type == core.Expense {
				expenseSum += x.Amount
			}
		}
		assert.InDelta(t, expenseSum, ComputeCategoryTotals(txs).Total(), 1e-6)

		months := ComputeMonthlyTotals(txs)
		assert.LessOrEqual(t, len(months), MonthWindow)
		for j := 1; j < len(months); j++ {
			assert.Less(t, months[j-1].Month, months[j].Month)
		}
	}
}
