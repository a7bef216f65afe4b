package http

import (
	"net/http"

	"balancebooks/internal/core"
	"balancebooks/internal/finance"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": snap.Version})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Categories)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := s.analytics.Stats(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	totals, err := s.analytics.Breakdown(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

type budgetResponse struct {
	Lines []finance.BudgetLine `json:"lines"`
	Stats finance.BudgetStats  `json:"stats"`
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines, stats, err := s.analytics.Budget(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetResponse{Lines: lines, Stats: stats})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	recs, err := s.analytics.Recommendations(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.analytics.Dashboard(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.analytics.Trend(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	points, err := s.analytics.Cycle(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handlePeriodTransactions(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.analytics.Engine(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs := e.Transactions(p)
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handlePreviewClose(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := s.ledger.PreviewMonthClose(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleCloseMonth(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.ledger.CloseMonth(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSetBalances(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var o core.BalanceOverride
	if err := decodeJSON(w, r, &o); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.SetBalanceOverride(r.Context(), p, o); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
