// Package services holds the application use cases. Handlers call into a
// service with the authenticated user's id; services validate input, apply
// ownership rules and talk to the record store.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/query"
	"ledger/internal/store"
)

// ExpenseInput is the JSON body of create and update requests. A nil field
// was absent from the request.
type ExpenseInput struct {
	Title      *string          `json:"title"`
	Amount     *core.Money      `json:"amount"`
	Category   *core.Category   `json:"category"`
	Tags       *[]string        `json:"tags"`
	Date       *core.Date       `json:"date"`
	Notes      *string          `json:"notes"`
	Recurrence *core.Recurrence `json:"recurrence"`
}

// ExpenseService handles expense CRUD, listing and the monthly summary.
type ExpenseService struct {
	expenses store.ExpenseStore
	budgets  store.BudgetStore
	now      func() time.Time
	newID    func() string
}

func NewExpenseService(expenses store.ExpenseStore, budgets store.BudgetStore) *ExpenseService {
	return &ExpenseService{
		expenses: expenses,
		budgets:  budgets,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create stores a new expense for userID. Title, amount, category and date
// are required; tags default to empty and recurrence to none.
func (s *ExpenseService) Create(ctx context.Context, userID string, in ExpenseInput) (core.Expense, error) {
	if userID == "" {
		return core.Expense{}, core.ErrUnauthorized
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" || in.Amount == nil ||
		in.Category == nil || *in.Category == "" || in.Date == nil {
		return core.Expense{}, core.ErrMissingFields
	}

	now := s.now().UTC()
	e := core.Expense{
		ID:         s.newID(),
		UserID:     userID,
		Title:      strings.TrimSpace(*in.Title),
		Amount:     *in.Amount,
		Category:   *in.Category,
		Tags:       []string{},
		Date:       *in.Date,
		Recurrence: core.RecurrenceNone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Tags != nil {
		e.Tags = cleanTags(*in.Tags)
	}
	if in.Notes != nil {
		e.Notes = *in.Notes
	}
	if in.Recurrence != nil && *in.Recurrence != "" {
		e.Recurrence = *in.Recurrence
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.expenses.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogExpenseCreated(ctx, userID, created.ID, created.Amount.Cents, string(created.Category))
	return created, nil
}

// Get returns one of the user's expenses.
func (s *ExpenseService) Get(ctx context.Context, userID, id string) (core.Expense, error) {
	if userID == "" {
		return core.Expense{}, core.ErrUnauthorized
	}
	return s.expenses.GetExpense(ctx, userID, id)
}

// Update applies the fields present in in to an existing expense. Ownership
// is checked before the input is validated.
func (s *ExpenseService) Update(ctx context.Context, userID, id string, in ExpenseInput) (core.Expense, error) {
	if userID == "" {
		return core.Expense{}, core.ErrUnauthorized
	}
	existing, err := s.expenses.GetExpense(ctx, userID, id)
	if err != nil {
		return core.Expense{}, err
	}

	patch := core.ExpensePatch{
		Title:    in.Title,
		Amount:   in.Amount,
		Category: in.Category,
		Date:     in.Date,
		Notes:    in.Notes,
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		patch.Title = &title
	}
	if in.Tags != nil {
		tags := cleanTags(*in.Tags)
		patch.Tags = &tags
	}
	if in.Recurrence != nil {
		r := *in.Recurrence
		if r == "" {
			r = core.RecurrenceNone
		}
		patch.Recurrence = &r
	}
	patch.Apply(&existing)
	existing.UpdatedAt = s.now().UTC()

	if err := existing.Validate(); err != nil {
		return core.Expense{}, err
	}
	updated, err := s.expenses.UpdateExpense(ctx, existing)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return updated, nil
}

// Delete removes one of the user's expenses.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return core.ErrUnauthorized
	}
	if err := s.expenses.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted", "user_id", userID, "expense_id", id)
	return nil
}

// List returns the user's expenses matching p, newest first.
func (s *ExpenseService) List(ctx context.Context, userID string, p query.Params) ([]core.Expense, error) {
	f, err := query.Build(userID, p)
	if err != nil {
		return nil, err
	}
	list, err := s.expenses.ListExpenses(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return list, nil
}

// Export lists expenses like List and also returns the period label used in
// report file names: the month, or "all".
func (s *ExpenseService) Export(ctx context.Context, userID string, p query.Params) (string, []core.Expense, error) {
	list, err := s.List(ctx, userID, p)
	if err != nil {
		return "", nil, err
	}
	label := "all"
	if p.Month != "" && !p.IncludeAll {
		label = p.Month
	}
	return label, list, nil
}

// Summary aggregates one month. An empty month means the current UTC month.
func (s *ExpenseService) Summary(ctx context.Context, userID, month string) (core.MonthSummary, error) {
	m, expenses, budgets, err := s.MonthData(ctx, userID, month)
	if err != nil {
		return core.MonthSummary{}, err
	}
	return core.Summarize(m, expenses, budgets), nil
}

// MonthData loads the expenses and budgets of one month concurrently.
func (s *ExpenseService) MonthData(ctx context.Context, userID, month string) (core.Month, []core.Expense, []core.Budget, error) {
	if userID == "" {
		return core.Month{}, nil, nil, core.ErrUnauthorized
	}
	m, err := s.resolveMonth(month)
	if err != nil {
		return core.Month{}, nil, nil, err
	}

	var (
		expenses []core.Expense
		budgets  []core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.ListExpenses(gctx, query.ForMonth(userID, m))
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgets.ListBudgets(gctx, userID, m)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Month{}, nil, nil, err
	}
	return m, expenses, budgets, nil
}

func (s *ExpenseService) resolveMonth(month string) (core.Month, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return core.MonthOf(s.now().UTC()), nil
	}
	return core.ParseMonth(month)
}

// cleanTags trims tags and drops empty ones, keeping order and duplicates.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
