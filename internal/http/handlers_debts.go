package http

import (
	"net/http"

	"balancebooks/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	debts := snap.Debts
	if debts == nil {
		debts = []core.Debt{}
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var d core.Debt
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, r, err)
		return
	}
	d.ID = ""
	created, err := s.ledger.AddDebt(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	var d core.Debt
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, r, err)
		return
	}
	d.ID = chi.URLParam(r, "id")
	if err := s.ledger.UpdateDebt(r.Context(), d); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteDebt(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDebtPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.analytics.DebtPlan(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleGetBudgetGoals(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	goals := snap.BudgetGoals
	if goals == nil {
		goals = map[core.CategoryID]decimal.Decimal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleSetBudgetGoals(w http.ResponseWriter, r *http.Request) {
	var goals map[core.CategoryID]decimal.Decimal
	if err := decodeJSON(w, r, &goals); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.SetBudgetGoals(r.Context(), goals); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

type savingsGoalBody struct {
	Goal decimal.Decimal `json:"goal"`
}

func (s *Server) handleGetSavingsGoal(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, savingsGoalBody{Goal: snap.SavingsGoal})
}

func (s *Server) handleSetSavingsGoal(w http.ResponseWriter, r *http.Request) {
	var body savingsGoalBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.SetSavingsGoal(r.Context(), body.Goal); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}
