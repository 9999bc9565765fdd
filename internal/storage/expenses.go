package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/core"
	"ledger/internal/query"
)

const expenseColumns = `id, user_id, title, amount_cents, category, tags, date, notes, recurrence, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return core.Expense{}, err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, e.Amount.Cents, string(e.Category), tags, e.Date.String(),
		nullString(e.Notes), string(e.Recurrence), unixNano(e.CreatedAt), unixNano(e.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Expense{}, core.Conflict("expense already exists")
		}
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String())

	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.NotFound("Not found")
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return core.Expense{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		    SET title = ?, amount_cents = ?, category = ?, tags = ?, date = ?, notes = ?, recurrence = ?, updated_at = ?
		  WHERE id = ? AND user_id = ?`,
		e.Title, e.Amount.Cents, string(e.Category), tags, e.Date.String(), nullString(e.Notes),
		string(e.Recurrence), unixNano(e.UpdatedAt), e.ID, e.UserID,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Expense{}, core.NotFound("Not found")
	}
	return r.GetExpense(ctx, e.UserID, e.ID)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return core.NotFound("Not found")
	}
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, f query.Filter) ([]core.Expense, error) {
	where, args := f.Where()
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE `+where+` ORDER BY date DESC, created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func scanExpense(s rowScanner) (core.Expense, error) {
	var (
		e                core.Expense
		category, rec    string
		tags, date       string
		notes            sql.NullString
		created, updated int64
	)
	if err := s.Scan(&e.ID, &e.UserID, &e.Title, &e.Amount.Cents, &category, &tags, &date, &notes, &rec, &created, &updated); err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return core.Expense{}, fmt.Errorf("decode tags: %w", err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	e.Category = core.Category(category)
	e.Recurrence = core.Recurrence(rec)
	e.Date = d
	e.Notes = notes.String
	e.CreatedAt = fromUnixNano(created)
	e.UpdatedAt = fromUnixNano(updated)
	return e, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
