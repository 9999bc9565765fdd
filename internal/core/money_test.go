package core

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
		{"9999999999.99", MaxCents, true},
		{"10000000000", 0, false},
		{"92233720368547758", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`12.5`), &m); err != nil || m.Cents != 1250 {
		t.Fatalf("number: got %d err=%v", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`"7,25"`), &m); err != nil || m.Cents != 725 {
		t.Fatalf("string: got %d err=%v", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`-3`), &m); err == nil {
		t.Fatalf("expected error for negative amount")
	}
	out, err := json.Marshal(Money{Cents: 1250})
	if err != nil || string(out) != "12.50" {
		t.Fatalf("marshal: got %s err=%v", out, err)
	}
}

func TestMoneyAddSaturates(t *testing.T) {
	big := Money{Cents: math.MaxInt64 - 10}
	if got := big.Add(Money{Cents: 100}); got.Cents != math.MaxInt64 {
		t.Fatalf("overflowing add = %d, want MaxInt64", got.Cents)
	}
	if got := (Money{Cents: 150}).Add(Money{Cents: 250}); got.Cents != 400 {
		t.Fatalf("add = %d", got.Cents)
	}
}

func TestLargeAmountsKeepTotalsPositive(t *testing.T) {
	top := MustAmount("9999999999.99")
	expenses := []Expense{
		{Amount: top, Category: Shopping},
		{Amount: top, Category: Shopping},
		{Amount: Money{Cents: math.MaxInt64}, Category: Shopping},
	}
	total := TotalSpent(expenses)
	if total.Cents <= 0 {
		t.Fatalf("total wrapped: %d", total.Cents)
	}
	budgets := []Budget{{Category: Shopping, Limit: MustAmount("100")}}
	if over := OverBudget(expenses, budgets); len(over) != 1 || over[0] != Shopping {
		t.Fatalf("over = %v, want [Shopping]", over)
	}
	if u := Utilization(total, budgets[0].Limit); u != 100 {
		t.Fatalf("utilization = %v, want 100", u)
	}
	if err := (Money{Cents: MaxCents + 1}).Validate(); err == nil {
		t.Fatalf("amount above MaxCents must not validate")
	}
}
