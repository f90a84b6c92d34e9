package core

// Summary holds the headline totals over a whole collection.
type Summary struct {
	Income  float64
	Expense float64
	Balance float64
}

// Summarize totals income and expenses; Balance is their difference.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.Income += t.Amount
		case Expense:
			s.Expense += t.Amount
		}
	}
	s.Balance = s.Income - s.Expense
	return s
}
