package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-01-31", "2025-01-31", true},
		{"2025-03-01T23:30:00Z", "2025-03-01", true},
		{"2025-03-01T01:30:00+02:00", "2025-03-01", true},
		{"31/01/2025", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
			if got.Hour() != 0 || got.Location() != time.UTC {
				t.Fatalf("%q expected midnight UTC, got %v", tc.in, got.Time)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	m, err := ParseMonth("2025-12")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.String() != "2025-12" {
		t.Fatalf("string = %s", m)
	}
	if !m.Contains(NewDate(2025, 12, 31).Time) {
		t.Fatalf("last day of month should be contained")
	}
	if m.Contains(NewDate(2026, 1, 1).Time) {
		t.Fatalf("first day of next month must be excluded")
	}
	if !m.End().Equal(NewDate(2026, 1, 1).Time) {
		t.Fatalf("end = %v", m.End())
	}
	for _, bad := range []string{"2025-13", "2025", "abc", ""} {
		if _, err := ParseMonth(bad); !errors.Is(err, ErrValidation) {
			t.Fatalf("%q expected validation error, got %v", bad, err)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Title:      "Lunch",
		Amount:     Money{Cents: 1200},
		Category:   FoodDining,
		Date:       NewDate(2025, 1, 1),
		Recurrence: RecurrenceNone,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}

	bads := []func(e *Expense){
		func(e *Expense) { e.Title = "  " },
		func(e *Expense) { e.Amount = Money{Cents: -1} },
		func(e *Expense) { e.Category = "Groceries" },
		func(e *Expense) { e.Date = Date{} },
		func(e *Expense) { e.Recurrence = "yearly" },
	}
	for i, mutate := range bads {
		e := good
		mutate(&e)
		err := e.Validate()
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestExpensePatchApply(t *testing.T) {
	e := Expense{Title: "Old", Amount: Money{Cents: 100}, Category: Transport, Tags: []string{"a"}, Notes: "n"}
	title := "New"
	amt := Money{Cents: 250}
	ExpensePatch{Title: &title, Amount: &amt}.Apply(&e)

	if e.Title != "New" || e.Amount.Cents != 250 {
		t.Fatalf("patched fields not applied: %+v", e)
	}
	if e.Category != Transport || e.Notes != "n" || len(e.Tags) != 1 {
		t.Fatalf("unset fields must be retained: %+v", e)
	}
}

func TestParseCategoryAndRecurrence(t *testing.T) {
	if c, err := ParseCategory(" Food & Dining "); err != nil || c != FoodDining {
		t.Fatalf("got %q err=%v", c, err)
	}
	if _, err := ParseCategory("food"); err == nil {
		t.Fatalf("category match must be exact")
	}
	if r, err := ParseRecurrence(""); err != nil || r != RecurrenceNone {
		t.Fatalf("empty recurrence should default to none, got %q err=%v", r, err)
	}
	if _, err := ParseRecurrence("hourly"); err == nil {
		t.Fatalf("expected error for unknown recurrence")
	}
}
