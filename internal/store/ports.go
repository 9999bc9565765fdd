package store

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/query"
)

// Ports for the record store. Implementations must scope every read and
// mutation of expenses and budgets to the owning user, and report missing or
// foreign records with an error wrapping core.ErrNotFound.
type (
	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		GetExpense(ctx context.Context, userID, id string) (core.Expense, error)
		// UpdateExpense replaces every mutable field of the stored expense.
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, userID, id string) error
		// ListExpenses returns the matching expenses newest first (date, then
		// creation time, descending).
		ListExpenses(ctx context.Context, f query.Filter) ([]core.Expense, error)
	}

	BudgetStore interface {
		// UpsertBudget inserts or replaces the limit for (user, category, month)
		// atomically and returns the stored row.
		UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		// ListBudgets returns the user's budgets in canonical category order.
		// A zero month lists every month.
		ListBudgets(ctx context.Context, userID string, month core.Month) ([]core.Budget, error)
		// DeleteBudget is idempotent.
		DeleteBudget(ctx context.Context, userID string, category core.Category, month core.Month) error
	}

	UserStore interface {
		// CreateUser fails with core.ErrConflict when the email is taken.
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUserByID(ctx context.Context, id string) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		GetUserByVerifyToken(ctx context.Context, token string) (core.User, error)
		UpdateUser(ctx context.Context, u core.User) error
	}

	// Store is the full record store used by the services.
	Store interface {
		ExpenseStore
		BudgetStore
		UserStore
		Ping(ctx context.Context) error
		Close() error
	}
)
