package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func expenses() []core.Expense {
	return []core.Expense{
		{
			ID: "1", Title: "Dinner, with \"friends\"", Category: core.FoodDining,
			Amount: core.MustAmount("42.5"), Tags: []string{"social", "weekend"},
			Date: core.NewDate(2025, 3, 14), Notes: "split bill", Recurrence: core.RecurrenceNone,
		},
		{
			ID: "2", Title: "Gym", Category: core.Health,
			Amount: core.MustAmount("30"), Tags: []string{},
			Date: core.NewDate(2025, 3, 1), Recurrence: core.RecurrenceMonthly,
		},
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "ledger-2025-03.csv", FileName("2025-03", "csv"))
	assert.Equal(t, "ledger-all.pdf", FileName("", "pdf"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, expenses()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{"2025-03-14", "Dinner, with \"friends\"", "Food & Dining", "42.50", "social;weekend", "split bill", "none"}, records[1])
	assert.Equal(t, []string{"2025-03-01", "Gym", "Health", "30.00", "", "", "monthly"}, records[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Date,Title,Category,Amount,Tags,Notes,Recurrence\n", buf.String())
}

func TestBuildPDF(t *testing.T) {
	data, err := BuildPDF("2025-03", expenses())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	empty, err := BuildPDF("", nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("%PDF-")))
}

func TestBuildPDFPaginates(t *testing.T) {
	var many []core.Expense
	for i := 0; i < 120; i++ {
		many = append(many, core.Expense{
			ID: fmt.Sprint(i), Title: "A rather long expense title that will not fit in its column",
			Category: core.Other, Amount: core.MustAmount("1"), Date: core.NewDate(2025, 3, 1),
			Recurrence: core.RecurrenceNone,
		})
	}
	data, err := BuildPDF("2025-03", many)
	require.NoError(t, err)
	pages := bytes.Count(data, []byte("/Type /Page")) - bytes.Count(data, []byte("/Type /Pages"))
	assert.Greater(t, pages, 1)
}
