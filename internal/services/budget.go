package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
	"ledger/internal/store"
)

// BudgetInput is the JSON body of budget upsert and delete requests.
type BudgetInput struct {
	Category core.Category `json:"category"`
	Limit    *core.Money   `json:"limit"`
	Month    string        `json:"month"`
}

type BudgetService struct {
	budgets store.BudgetStore
	now     func() time.Time
	newID   func() string
}

func NewBudgetService(budgets store.BudgetStore) *BudgetService {
	return &BudgetService{budgets: budgets, now: time.Now, newID: uuid.NewString}
}

// Upsert sets the limit for (user, category, month), creating the budget if
// it does not exist.
func (s *BudgetService) Upsert(ctx context.Context, userID string, in BudgetInput) (core.Budget, error) {
	if userID == "" {
		return core.Budget{}, core.ErrUnauthorized
	}
	if in.Category == "" || in.Limit == nil || strings.TrimSpace(in.Month) == "" {
		return core.Budget{}, core.ErrMissingFields
	}
	m, err := core.ParseMonth(in.Month)
	if err != nil {
		return core.Budget{}, err
	}

	b := core.Budget{
		ID:       s.newID(),
		UserID:   userID,
		Category: in.Category,
		Limit:    *in.Limit,
		Month:    m,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	saved, err := s.budgets.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget saved",
		"user_id", userID, "category", saved.Category, "month", saved.Month.String(),
		"amount_cents", saved.Limit.Cents)
	return saved, nil
}

// List returns the budgets of one month. An empty month means the current
// UTC month.
func (s *BudgetService) List(ctx context.Context, userID, month string) ([]core.Budget, error) {
	if userID == "" {
		return nil, core.ErrUnauthorized
	}
	m := core.MonthOf(s.now().UTC())
	if month = strings.TrimSpace(month); month != "" {
		var err error
		if m, err = core.ParseMonth(month); err != nil {
			return nil, err
		}
	}
	list, err := s.budgets.ListBudgets(ctx, userID, m)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return list, nil
}

// Delete removes the budget keyed by (user, category, month). Deleting a
// budget that does not exist succeeds.
func (s *BudgetService) Delete(ctx context.Context, userID string, in BudgetInput) error {
	if userID == "" {
		return core.ErrUnauthorized
	}
	if in.Category == "" || strings.TrimSpace(in.Month) == "" {
		return core.ErrMissingFields
	}
	if !in.Category.Valid() {
		return core.ErrInvalidCategory
	}
	m, err := core.ParseMonth(in.Month)
	if err != nil {
		return err
	}
	if err := s.budgets.DeleteBudget(ctx, userID, in.Category, m); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}
