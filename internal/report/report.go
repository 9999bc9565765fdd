// Package report exports expenses as CSV and PDF documents.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"ledger/internal/core"
)

// Columns are shared by both formats.
var Columns = []string{"Date", "Title", "Category", "Amount", "Tags", "Notes", "Recurrence"}

// FileName returns the download name for a report covering label, which is
// either a "YYYY-MM" month or "all".
func FileName(label, ext string) string {
	if label == "" {
		label = "all"
	}
	return fmt.Sprintf("ledger-%s.%s", label, ext)
}

func row(e core.Expense) []string {
	return []string{
		e.Date.String(),
		e.Title,
		e.Category.String(),
		e.Amount.String(),
		strings.Join(e.Tags, ";"),
		e.Notes,
		string(e.Recurrence),
	}
}

// WriteCSV writes a header line followed by one record per expense, in the
// order given.
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		if err := cw.Write(row(e)); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
