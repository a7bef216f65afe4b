package http

import (
	"net/http"
	"slices"

	"balancebooks/internal/core"

	"github.com/go-chi/chi/v5"
)

// handleListTransactions returns every transaction, newest first.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs := slices.Clone(snap.Transactions)
	slices.SortStableFunc(txs, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, r, err)
		return
	}
	t.ID = ""
	created, err := s.ledger.AddTransaction(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, r, err)
		return
	}
	t.ID = chi.URLParam(r, "id")
	if err := s.ledger.UpdateTransaction(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	if !boolQuery(r, "confirm") {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "clearing all transactions requires confirm=true"})
		return
	}
	if err := s.ledger.ClearTransactions(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setPaidRequest struct {
	IDs  []string `json:"ids"`
	Paid bool     `json:"paid"`
}

func (s *Server) handleSetPaid(w http.ResponseWriter, r *http.Request) {
	var req setPaidRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "ids must not be empty"})
		return
	}
	n, err := s.ledger.SetPaid(r.Context(), req.IDs, req.Paid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}
