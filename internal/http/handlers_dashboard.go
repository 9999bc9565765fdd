package http

import (
	"bytes"
	"net/http"
	"strings"

	"ledger/internal/insights"
	"ledger/internal/query"
	"ledger/internal/report"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.deps.Expenses.Summary(r.Context(), userID(r), strings.TrimSpace(r.URL.Query().Get("month")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleInsights generates spending advice. When the body carries no
// expenses the user's stored month is used instead.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req insights.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if len(req.Expenses) == 0 {
		month, expenses, budgets, err := s.deps.Expenses.MonthData(r.Context(), userID(r), strings.TrimSpace(req.Month))
		if err != nil {
			writeError(w, r, err)
			return
		}
		req = insights.Request{Expenses: expenses, Budgets: budgets, Month: month.String()}
	}

	text, err := s.deps.Insights.Insight(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"insight": text})
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	label, list, err := s.deps.Expenses.Export(r.Context(), userID(r), query.FromValues(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, list); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().
		Attachment("text/csv; charset=utf-8", report.FileName(label, "csv"), buf.Bytes()).
		Write(w)
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	label, list, err := s.deps.Expenses.Export(r.Context(), userID(r), query.FromValues(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := report.BuildPDF(label, list)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().
		Attachment("application/pdf", report.FileName(label, "pdf"), doc).
		Write(w)
}
