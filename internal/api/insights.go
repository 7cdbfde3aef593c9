package api

import (
	"net/http"

	"github.com/retailpilot/backend/internal/insights"
)

// GET /api/v1/ledger/events
func (s *Server) handleLedgerEvents(w http.ResponseWriter, r *http.Request) {
	events := s.ledger.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events":     events,
		"merkleRoot": s.ledger.Root(),
		"total":      len(events),
	})
}

// GET /api/v1/insights/revenue
func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, insights.RevenueForecast())
}

// GET /api/v1/insights/credit-score
func (s *Server) handleCreditScore(w http.ResponseWriter, r *http.Request) {
	score := insights.CurrentCreditScore()
	writeJSON(w, http.StatusOK, struct {
		insights.CreditScore
		FactorScore float64 `json:"factorScore"`
	}{score, score.WeightedFactorScore()})
}
