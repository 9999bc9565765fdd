package core

import "sort"

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
	Color    string   `json:"color"`
	Percent  float64  `json:"percent"`
}

// DayTotal is the spend of a single calendar day.
type DayTotal struct {
	Date   Date  `json:"date"`
	Amount Money `json:"amount"`
}

// BudgetStatus compares a budget limit with what was spent in its category.
type BudgetStatus struct {
	Category Category `json:"category"`
	Spent    Money    `json:"spent"`
	Limit    Money    `json:"limit"`
	Percent  float64  `json:"percent"`
	Over     bool     `json:"over"`
}

// MonthSummary is the dashboard view of one user's month.
type MonthSummary struct {
	Month          Month            `json:"month"`
	Total          Money            `json:"total"`
	Count          int              `json:"count"`
	Largest        *Expense         `json:"largest,omitempty"`
	TopCategory    *CategoryAmount  `json:"topCategory,omitempty"`
	RecurringCount int              `json:"recurringCount"`
	ByCategory     []CategoryAmount `json:"byCategory"`
	Daily          []DayTotal       `json:"daily"`
	Budgets        []BudgetStatus   `json:"budgets"`
	OverBudget     []Category       `json:"overBudget"`
}

// TotalSpent sums every amount; zero for an empty list.
func TotalSpent(expenses []Expense) Money {
	var total Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// CategoryTotals sums amounts per category. Categories without expenses are
// absent from the map.
func CategoryTotals(expenses []Expense) map[Category]Money {
	totals := make(map[Category]Money)
	for _, e := range expenses {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}

// DailyTotals sums amounts per calendar day and returns them in ascending
// date order regardless of input order.
func DailyTotals(expenses []Expense) []DayTotal {
	byDay := make(map[Date]Money)
	for _, e := range expenses {
		d := DateOf(e.Date.Time)
		byDay[d] = byDay[d].Add(e.Amount)
	}
	out := make([]DayTotal, 0, len(byDay))
	for d, amt := range byDay {
		out = append(out, DayTotal{Date: d, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// TopCategory returns the category with the largest total. Ties go to the
// category that comes first in the canonical Categories order.
func TopCategory(expenses []Expense) (Category, Money, bool) {
	ranked := rankCategories(CategoryTotals(expenses))
	if len(ranked) == 0 {
		return "", Money{}, false
	}
	return ranked[0].Category, ranked[0].Amount, true
}

// LargestExpense returns the expense with the maximum amount. Ties go to the
// first one in input order.
func LargestExpense(expenses []Expense) (Expense, bool) {
	if len(expenses) == 0 {
		return Expense{}, false
	}
	best := 0
	for i := 1; i < len(expenses); i++ {
		if expenses[i].Amount.Cents > expenses[best].Amount.Cents {
			best = i
		}
	}
	return expenses[best], true
}

// RecurringCount counts expenses whose recurrence is not none.
func RecurringCount(expenses []Expense) int {
	n := 0
	for _, e := range expenses {
		if e.Recurrence.Recurring() {
			n++
		}
	}
	return n
}

// OverBudget returns, in budget order, the categories whose spend strictly
// exceeds the budget limit. Categories without a budget are never flagged.
func OverBudget(expenses []Expense, budgets []Budget) []Category {
	totals := CategoryTotals(expenses)
	over := make([]Category, 0)
	for _, b := range budgets {
		if isOver(totals[b.Category], b.Limit) {
			over = append(over, b.Category)
		}
	}
	return over
}

// Utilization returns spent/limit as a percentage clamped to [0, 100].
// A zero limit yields 100 when anything was spent and 0 otherwise.
func Utilization(spent, limit Money) float64 {
	if limit.Cents <= 0 {
		if spent.Cents > 0 {
			return 100
		}
		return 0
	}
	pct := float64(spent.Cents) * 100 / float64(limit.Cents)
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// BudgetStatuses reports spend against every budget, in budget order.
func BudgetStatuses(expenses []Expense, budgets []Budget) []BudgetStatus {
	totals := CategoryTotals(expenses)
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := totals[b.Category]
		out = append(out, BudgetStatus{
			Category: b.Category,
			Spent:    spent,
			Limit:    b.Limit,
			Percent:  Utilization(spent, b.Limit),
			Over:     isOver(spent, b.Limit),
		})
	}
	return out
}

// Summarize computes every dashboard aggregate for one month from scratch.
func Summarize(month Month, expenses []Expense, budgets []Budget) MonthSummary {
	total := TotalSpent(expenses)
	s := MonthSummary{
		Month:          month,
		Total:          total,
		Count:          len(expenses),
		RecurringCount: RecurringCount(expenses),
		ByCategory:     rankCategories(CategoryTotals(expenses)),
		Daily:          DailyTotals(expenses),
		Budgets:        BudgetStatuses(expenses, budgets),
		OverBudget:     OverBudget(expenses, budgets),
	}
	for i := range s.ByCategory {
		if total.Cents > 0 {
			s.ByCategory[i].Percent = float64(s.ByCategory[i].Amount.Cents) * 100 / float64(total.Cents)
		}
	}
	if len(s.ByCategory) > 0 {
		top := s.ByCategory[0]
		s.TopCategory = &top
	}
	if largest, ok := LargestExpense(expenses); ok {
		s.Largest = &largest
	}
	return s
}

func isOver(spent, limit Money) bool {
	return spent.Cents > limit.Cents
}

// rankCategories orders totals by amount descending, then canonical order.
func rankCategories(totals map[Category]Money) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(totals))
	for c, amt := range totals {
		out = append(out, CategoryAmount{Category: c, Amount: amt, Color: c.Color()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		ri, rj := out[i].Category.Rank(), out[j].Category.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].Category < out[j].Category
	})
	return out
}
