package storage

import (
	"context"
	"fmt"

	"ledger/internal/core"
	"ledger/internal/store"
)

// UpsertBudget relies on the (user_id, category, month) unique key so that
// concurrent writers cannot create duplicates; the last write wins.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO budgets (id, user_id, category, limit_cents, month) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, category, month) DO UPDATE SET limit_cents = excluded.limit_cents
		 RETURNING id, user_id, category, limit_cents, month`,
		b.ID, b.UserID, string(b.Category), b.Limit.Cents, b.Month.String(),
	)
	out, err := scanBudget(row)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string, month core.Month) ([]core.Budget, error) {
	q := `SELECT id, user_id, category, limit_cents, month FROM budgets WHERE user_id = ?`
	args := []any{userID}
	if !month.IsZero() {
		q += ` AND month = ?`
		args = append(args, month.String())
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := make([]core.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	store.SortBudgets(out)
	return out, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID string, category core.Category, month core.Month) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE user_id = ? AND category = ? AND month = ?`,
		userID, string(category), month.String())
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func scanBudget(s rowScanner) (core.Budget, error) {
	var (
		b        core.Budget
		category string
		month    string
	)
	if err := s.Scan(&b.ID, &b.UserID, &category, &b.Limit.Cents, &month); err != nil {
		return core.Budget{}, err
	}
	m, err := core.ParseMonth(month)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse stored month %q: %w", month, err)
	}
	b.Category = core.Category(category)
	b.Month = m
	return b, nil
}
