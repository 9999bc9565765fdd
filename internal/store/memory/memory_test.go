package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledger/internal/core"
	"ledger/internal/query"
)

func expense(id, user string, day int, created time.Time) core.Expense {
	return core.Expense{
		ID:         id,
		UserID:     user,
		Title:      "item " + id,
		Amount:     core.Money{Cents: 100},
		Category:   core.Other,
		Date:       core.NewDate(2025, 3, day),
		Recurrence: core.RecurrenceNone,
		CreatedAt:  created,
	}
}

func TestExpenseOwnership(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.CreateExpense(ctx, expense("e1", "alice", 1, time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.GetExpense(ctx, "bob", "e1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign get should be not found, got %v", err)
	}
	foreign := expense("e1", "bob", 2, time.Now())
	if _, err := s.UpdateExpense(ctx, foreign); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign update should be not found, got %v", err)
	}
	if err := s.DeleteExpense(ctx, "bob", "e1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete should be not found, got %v", err)
	}
	if err := s.DeleteExpense(ctx, "alice", "e1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := s.GetExpense(ctx, "alice", "e1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleted expense still readable: %v", err)
	}
}

func TestListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, e := range []core.Expense{
		expense("a", "alice", 5, base),
		expense("b", "alice", 9, base),
		expense("c", "alice", 5, base.Add(time.Hour)),
		expense("d", "bob", 7, base),
	} {
		if _, err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("create %s: %v", e.ID, err)
		}
	}

	list, err := s.ListExpenses(ctx, query.Filter{UserID: "alice"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got string
	for _, e := range list {
		got += e.ID
	}
	if got != "bca" {
		t.Fatalf("order = %q, want %q", got, "bca")
	}
	for _, e := range list {
		if e.Tags == nil {
			t.Fatalf("tags must never be nil")
		}
	}
}

func TestBudgetUpsertKeepsID(t *testing.T) {
	ctx := context.Background()
	s := New()
	m := core.Month{Year: 2025, Month: 3}

	first, err := s.UpsertBudget(ctx, core.Budget{ID: "b1", UserID: "alice", Category: core.Travel, Limit: core.Money{Cents: 100}, Month: m})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, err := s.UpsertBudget(ctx, core.Budget{ID: "b2", UserID: "alice", Category: core.Travel, Limit: core.Money{Cents: 500}, Month: m})
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if second.ID != first.ID || second.Limit.Cents != 500 {
		t.Fatalf("upsert = %+v, want id %s limit 500", second, first.ID)
	}

	list, _ := s.ListBudgets(ctx, "alice", m)
	if len(list) != 1 {
		t.Fatalf("expected one budget, got %d", len(list))
	}

	if err := s.DeleteBudget(ctx, "alice", core.Travel, m); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteBudget(ctx, "alice", core.Travel, m); err != nil {
		t.Fatalf("delete must be idempotent: %v", err)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.CreateUser(ctx, core.User{ID: "u1", Email: "Ann@Example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateUser(ctx, core.User{ID: "u2", Email: "ann@example.com "}); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicate email should conflict, got %v", err)
	}
	u, err := s.GetUserByEmail(ctx, "ANN@example.com")
	if err != nil || u.ID != "u1" {
		t.Fatalf("lookup by email: %+v %v", u, err)
	}

	u.VerifyToken = "tok"
	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, err := s.GetUserByVerifyToken(ctx, "tok"); err != nil || got.ID != "u1" {
		t.Fatalf("lookup by token: %+v %v", got, err)
	}
	if _, err := s.GetUserByVerifyToken(ctx, ""); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("empty token must not match")
	}
}
