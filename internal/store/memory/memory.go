// Package memory is a process-local record store used for development and
// tests. Data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ledger/internal/core"
	"ledger/internal/query"
	"ledger/internal/store"
)

type budgetKey struct {
	userID   string
	category core.Category
	month    core.Month
}

type Store struct {
	mu       sync.RWMutex
	expenses map[string]core.Expense
	budgets  map[budgetKey]core.Budget
	users    map[string]core.User
	emails   map[string]string
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		expenses: make(map[string]core.Expense),
		budgets:  make(map[budgetKey]core.Budget),
		users:    make(map[string]core.User),
		emails:   make(map[string]string),
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// CreateExpense stores e under its ID.
func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if e.ID == "" {
		return core.Expense{}, fmt.Errorf("create expense: %w", core.Invalid("missing id"))
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[e.ID]; ok {
		return core.Expense{}, core.Conflict("expense already exists")
	}
	e = cloneExpense(e)
	s.expenses[e.ID] = e
	return cloneExpense(e), nil
}

func (s *Store) GetExpense(_ context.Context, userID, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return core.Expense{}, core.NotFound("Not found")
	}
	return cloneExpense(e), nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.expenses[e.ID]
	if !ok || cur.UserID != e.UserID {
		return core.Expense{}, core.NotFound("Not found")
	}
	e.CreatedAt = cur.CreatedAt
	s.expenses[e.ID] = cloneExpense(e)
	return cloneExpense(e), nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return core.NotFound("Not found")
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, f query.Filter) ([]core.Expense, error) {
	s.mu.RLock()
	out := make([]core.Expense, 0)
	for _, e := range s.expenses {
		if f.Match(e) {
			out = append(out, cloneExpense(e))
		}
	}
	s.mu.RUnlock()
	store.SortNewestFirst(out)
	return out, nil
}

// UpsertBudget keeps the ID of an existing budget for the same key.
func (s *Store) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	key := budgetKey{userID: b.UserID, category: b.Category, month: b.Month}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.budgets[key]; ok {
		b.ID = cur.ID
	}
	s.budgets[key] = b
	return b, nil
}

func (s *Store) ListBudgets(_ context.Context, userID string, month core.Month) ([]core.Budget, error) {
	s.mu.RLock()
	out := make([]core.Budget, 0)
	for k, b := range s.budgets {
		if k.userID != userID {
			continue
		}
		if !month.IsZero() && k.month != month {
			continue
		}
		out = append(out, b)
	}
	s.mu.RUnlock()
	store.SortBudgets(out)
	return out, nil
}

func (s *Store) DeleteBudget(_ context.Context, userID string, category core.Category, month core.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.budgets, budgetKey{userID: userID, category: category, month: month})
	return nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	u.Email = core.NormalizeEmail(u.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[u.Email]; ok {
		return core.User{}, core.Conflict("Email already in use")
	}
	s.users[u.ID] = u
	s.emails[u.Email] = u.ID
	return u, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.NotFound("user not found")
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[core.NormalizeEmail(email)]
	if !ok {
		return core.User{}, core.NotFound("user not found")
	}
	return s.users[id], nil
}

func (s *Store) GetUserByVerifyToken(_ context.Context, token string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if token == "" {
		return core.User{}, core.NotFound("user not found")
	}
	for _, u := range s.users {
		if u.VerifyToken == token {
			return u, nil
		}
	}
	return core.User{}, core.NotFound("user not found")
}

func (s *Store) UpdateUser(_ context.Context, u core.User) error {
	u.Email = core.NormalizeEmail(u.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return core.NotFound("user not found")
	}
	if cur.Email != u.Email {
		if _, taken := s.emails[u.Email]; taken {
			return core.Conflict("Email already in use")
		}
		delete(s.emails, cur.Email)
		s.emails[u.Email] = u.ID
	}
	s.users[u.ID] = u
	return nil
}

func cloneExpense(e core.Expense) core.Expense {
	if e.Tags == nil {
		e.Tags = []string{}
	} else {
		e.Tags = append([]string(nil), e.Tags...)
	}
	return e
}
