package http

import (
	"net/http"
	"strings"

	"ledger/internal/core"
	"ledger/internal/services"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Budgets.List(r.Context(), userID(r), strings.TrimSpace(r.URL.Query().Get("month")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var in services.BudgetInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.deps.Budgets.Upsert(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	var in services.BudgetInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Budgets.Delete(r.Context(), userID(r), in); err != nil {
		writeError(w, r, err)
		return
	}
	MessageResponse(http.StatusOK, "Deleted").Write(w)
}
