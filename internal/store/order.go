package store

import (
	"sort"

	"ledger/internal/core"
)

// SortNewestFirst orders expenses by date descending, breaking ties by
// creation time descending.
func SortNewestFirst(list []core.Expense) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.After(b.Date.Time)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// SortBudgets orders budgets by month ascending, then canonical category order.
func SortBudgets(list []core.Budget) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Month != b.Month {
			return a.Month.Start().Before(b.Month.Start())
		}
		return a.Category.Rank() < b.Category.Rank()
	})
}
