// Package insights turns a month of spending into a short piece of advice
// written by a hosted language model.
package insights

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"ledger/internal/core"
)

// Request is what the caller sends: the expenses and budgets it is looking
// at, and the month label to mention in the prompt.
type Request struct {
	Expenses []core.Expense `json:"expenses"`
	Budgets  []core.Budget  `json:"budgets"`
	Month    string         `json:"month"`
}

const promptTemplate = `You are a personal finance advisor analyzing someone's expense data for %s.

Total spent: $%s
Spending by category: %s
Budget limits: %s
Number of transactions: %d

Give a concise, friendly, and actionable financial insight in 3-4 sentences. Mention:
1. Overall spending assessment
2. One category that stands out (either over budget or surprisingly high)
3. One concrete saving tip

Be warm and encouraging, not judgmental. Do not use markdown or bullet points, just plain paragraphs.`

// BuildPrompt renders the advisor prompt. Categories are listed in the order
// they first appear among the expenses.
func BuildPrompt(req Request) (string, error) {
	budgets, err := indentJSON(req.Budgets)
	if err != nil {
		return "", fmt.Errorf("encode budgets: %w", err)
	}
	return fmt.Sprintf(promptTemplate,
		req.Month,
		core.TotalSpent(req.Expenses).String(),
		categoryJSON(req.Expenses),
		budgets,
		len(req.Expenses),
	), nil
}

func categoryJSON(expenses []core.Expense) string {
	totals := core.CategoryTotals(expenses)
	if len(totals) == 0 {
		return "{}"
	}

	var order []core.Category
	seen := make(map[core.Category]bool, len(totals))
	for _, e := range expenses {
		if !seen[e.Category] {
			seen[e.Category] = true
			order = append(order, e.Category)
		}
	}

	var b strings.Builder
	b.WriteString("{\n")
	for i, c := range order {
		name, _ := json.Marshal(string(c))
		fmt.Fprintf(&b, "  %s: %s", unescapeHTML(name), totals[c].Decimal().String())
		if i < len(order)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return b.String()
}

func indentJSON(v []core.Budget) (string, error) {
	if v == nil {
		v = []core.Budget{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// json.Marshal escapes '&' which would turn "Food & Dining" into "Food \u0026 Dining".
func unescapeHTML(b []byte) string {
	return strings.NewReplacer(`\u0026`, "&", `\u003c`, "<", `\u003e`, ">").Replace(string(b))
}
