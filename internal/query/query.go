// Package query translates list request parameters into a predicate over a
// single user's expenses.
//
// The same Filter renders a SQL WHERE clause for the sqlite store and
// evaluates in memory for the memory store; both must select the same rows.
package query

import (
	"net/url"
	"strings"
	"time"

	"ledger/internal/core"
)

// Params are the raw list parameters as received from a request.
type Params struct {
	Month      string
	Search     string
	Category   string
	IncludeAll bool
}

// Filter is a validated predicate. UserID is always set; every other field
// left at its zero value means "no restriction".
type Filter struct {
	UserID   string
	Month    *core.Month
	Search   string
	Category core.Category
}

// FromValues reads month, search, category and all from URL query values.
func FromValues(v url.Values) Params {
	all := strings.TrimSpace(v.Get("all"))
	return Params{
		Month:      strings.TrimSpace(v.Get("month")),
		Search:     v.Get("search"),
		Category:   strings.TrimSpace(v.Get("category")),
		IncludeAll: all != "" && all != "false" && all != "0",
	}
}

// Build validates p and scopes it to userID.
func Build(userID string, p Params) (Filter, error) {
	if strings.TrimSpace(userID) == "" {
		return Filter{}, core.ErrUnauthorized
	}
	f := Filter{UserID: userID}

	if p.Month != "" && !p.IncludeAll {
		m, err := core.ParseMonth(p.Month)
		if err != nil {
			return Filter{}, err
		}
		f.Month = &m
	}

	f.Search = strings.TrimSpace(p.Search)

	if p.Category != "" && p.Category != core.AllCategories {
		c, err := core.ParseCategory(p.Category)
		if err != nil {
			return Filter{}, err
		}
		f.Category = c
	}
	return f, nil
}

// ForMonth is the filter used by summaries and reports: one user, one month.
func ForMonth(userID string, m core.Month) Filter {
	return Filter{UserID: userID, Month: &m}
}

// FoldFunc names the SQL scalar function the store registers to lowercase
// text the same way strings.ToLower does.
const FoldFunc = "ledger_fold"

// Where renders the filter as a SQL predicate over the expenses table.
func (f Filter) Where() (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{f.UserID}

	if f.Month != nil {
		clauses = append(clauses, "date >= ?", "date < ?")
		args = append(args, dayKey(f.Month.Start()), dayKey(f.Month.End()))
	}

	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		clauses = append(clauses, `(`+FoldFunc+`(title) LIKE ? ESCAPE '\'`+
			` OR `+FoldFunc+`(coalesce(notes, '')) LIKE ? ESCAPE '\'`+
			` OR EXISTS (SELECT 1 FROM json_each(expenses.tags) WHERE `+FoldFunc+`(json_each.value) LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern, pattern)
	}

	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, string(f.Category))
	}

	return strings.Join(clauses, " AND "), args
}

// Match evaluates the filter against a single expense.
func (f Filter) Match(e core.Expense) bool {
	if e.UserID != f.UserID {
		return false
	}
	if f.Month != nil && !f.Month.Contains(e.Date.Time) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Search != "" && !matchesSearch(e, strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func matchesSearch(e core.Expense, needle string) bool {
	if strings.Contains(strings.ToLower(e.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Notes), needle) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
