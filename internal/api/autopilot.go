package api

import (
	"errors"
	"net/http"

	"github.com/retailpilot/backend/internal/ledger"
	"github.com/retailpilot/backend/internal/scenario"
)

// autopilotResponse is the autopilot state alongside the action catalogue.
type autopilotResponse struct {
	scenario.AutopilotState
	Actions []scenario.Action `json:"actions"`
}

func (s *Server) autopilotResponse(st scenario.AutopilotState) autopilotResponse {
	return autopilotResponse{AutopilotState: st, Actions: scenario.AutopilotActions()}
}

// commitAutopilot stores the executed batch on the ledger; the event's hash
// becomes the autopilot's transaction hash.
func (s *Server) commitAutopilot(actions []scenario.Action) (string, error) {
	ids := make([]string, len(actions))
	for i, a := range actions {
		ids[i] = a.ID
	}
	ev := s.recordLedger(ledger.TypeAutopilot, map[string]interface{}{"actions": ids})
	if ev == nil {
		s.metrics.AutopilotRuns.WithLabelValues("error").Inc()
		return "", errors.New("failed to record autopilot execution")
	}
	s.metrics.AutopilotRuns.WithLabelValues("completed").Inc()
	return ev.FullHash, nil
}

// GET /api/v1/autopilot
func (s *Server) handleAutopilotState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.autopilotResponse(s.autopilot.State()))
}

// POST /api/v1/autopilot/enable
//
// Starts executing the actions in the background and answers 202 at once;
// clients poll GET /api/v1/autopilot for progress. 409 while enabled.
func (s *Server) handleAutopilotEnable(w http.ResponseWriter, r *http.Request) {
	st, err := s.autopilot.Enable()
	if errors.Is(err, scenario.ErrAutopilotEnabled) {
		s.metrics.AutopilotRuns.WithLabelValues("busy").Inc()
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.AutopilotRuns.WithLabelValues("started").Inc()
	writeJSON(w, http.StatusAccepted, s.autopilotResponse(st))
}

// POST /api/v1/autopilot/disable
func (s *Server) handleAutopilotDisable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.autopilotResponse(s.autopilot.Disable()))
}
