package report

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"ledger/internal/core"
)

var columnWidths = []float64{22, 45, 30, 20, 28, 30, 15}

// BuildPDF renders an A4 statement: a header with the period, the total and
// the transaction count, then one table row per expense.
func BuildPDF(label string, expenses []core.Expense) ([]byte, error) {
	if label == "" {
		label = "all"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Ledger Expense Report", false)
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Ledger")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", label))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Transactions: %d", len(expenses)))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Total Spent: $%s", core.TotalSpent(expenses).String()))
	pdf.Ln(12)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, col := range Columns {
			pdf.CellFormat(columnWidths[i], 7, col, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, e := range expenses {
		if pdf.GetY()+6 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		cells := row(e)
		for i, text := range cells {
			align := "L"
			if Columns[i] == "Amount" {
				align = "R"
			}
			pdf.CellFormat(columnWidths[i], 6, fit(pdf, tr(text), columnWidths[i]-2), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(expenses) == 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 8, "No expenses recorded for this period.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// fit truncates s with an ellipsis until it is no wider than width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
