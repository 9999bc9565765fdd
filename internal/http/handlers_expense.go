package http

import (
	"net/http"
	"strings"

	"ledger/internal/core"
	"ledger/internal/query"
	"ledger/internal/services"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Expenses.List(r.Context(), userID(r), query.FromValues(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sanitizeExpenseInput(&in)

	e, err := s.deps.Expenses.Create(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.deps.Expenses.Get(r.Context(), userID(r), expenseID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sanitizeExpenseInput(&in)

	e, err := s.deps.Expenses.Update(r.Context(), userID(r), expenseID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Expenses.Delete(r.Context(), userID(r), expenseID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	MessageResponse(http.StatusOK, "Deleted").Write(w)
}

func expenseID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("id"))
}
