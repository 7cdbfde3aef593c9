package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/retailpilot/backend/internal/ledger"
	"github.com/retailpilot/backend/internal/scenario"
)

// runResponse is the runner state after a finished run plus the ledger entry
// that stored its hash.
type runResponse struct {
	scenario.State
	LedgerEvent *ledger.Event `json:"ledgerEvent,omitempty"`
}

// decodeInputs reads slider values from the body on top of the defaults, so
// clients may send only the sliders they moved. An empty body means defaults.
func decodeInputs(r *http.Request) (scenario.Inputs, error) {
	in := scenario.DefaultInputs()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return in, fmt.Errorf("%w: %v", scenario.ErrInvalidInput, err)
	}
	return in, in.Validate()
}

// POST /api/v1/simulation/compute
func (s *Server) handleSimulationCompute(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInputs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := scenario.Compute(in)
	writeJSON(w, http.StatusOK, scenario.Result{
		Inputs:    in,
		Outputs:   out,
		Scenarios: scenario.DeriveScenarios(out),
	})
}

// POST /api/v1/simulation/run
//
// Blocks for the configured run delay. A second run while one is in flight
// gets 409.
func (s *Server) handleSimulationRun(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInputs(r)
	if err != nil {
		s.metrics.SimulationRuns.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.runner.Run(in)
	if errors.Is(err, scenario.ErrAlreadyRunning) {
		s.metrics.SimulationRuns.WithLabelValues("busy").Inc()
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.SimulationRuns.WithLabelValues("ok").Inc()

	ev := s.recordLedger(ledger.TypeSimulationStored, map[string]interface{}{
		"region":     in.Region,
		"confidence": res.Outputs.ConfidencePercent,
		"inputs":     in,
	})

	writeJSON(w, http.StatusOK, runResponse{
		State:       scenario.State{Phase: scenario.PhaseReady, Inputs: res.Inputs, Results: res},
		LedgerEvent: ev,
	})
}

// POST /api/v1/simulation/reset
func (s *Server) handleSimulationReset(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Reset(); err != nil {
		writeError(w, http.StatusConflict, scenario.ErrAlreadyRunning.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.runner.State())
}

// GET /api/v1/simulation
func (s *Server) handleSimulationState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.runner.State())
}
