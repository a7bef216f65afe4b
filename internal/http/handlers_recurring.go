package http

import (
	"net/http"

	"balancebooks/internal/core"
	"balancebooks/internal/finance"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type recurringResponse struct {
	Bills        []core.RecurringBill `json:"bills"`
	TotalMonthly decimal.Decimal      `json:"totalMonthly"`
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	bills := snap.RecurringBills
	if bills == nil {
		bills = []core.RecurringBill{}
	}
	writeJSON(w, http.StatusOK, recurringResponse{
		Bills:        bills,
		TotalMonthly: finance.TotalMonthlyRecurring(bills),
	})
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var b core.RecurringBill
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	b.ID = ""
	created, err := s.ledger.AddRecurringBill(r.Context(), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var b core.RecurringBill
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	b.ID = chi.URLParam(r, "id")
	if err := s.ledger.UpdateRecurringBill(r.Context(), b); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteRecurringBill(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleRecurring(w http.ResponseWriter, r *http.Request) {
	active, err := s.ledger.ToggleBillActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": active})
}

func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.MaterializeBill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// handleUpcoming lists active bills due within ?days= (default 7, max 366).
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "days", finance.DefaultUpcomingWindow, 0, 366)
	if err != nil {
		writeError(w, r, err)
		return
	}
	bills, err := s.analytics.Upcoming(r.Context(), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if bills == nil {
		bills = []finance.UpcomingBill{}
	}
	writeJSON(w, http.StatusOK, bills)
}
