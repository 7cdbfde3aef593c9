package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpilot/backend/internal/config"
	"github.com/retailpilot/backend/internal/ledger"
	"github.com/retailpilot/backend/internal/scenario"
)

func TestSimulationCompute_Defaults(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv.Router(), http.MethodPost, "/api/v1/simulation/compute", strings.NewReader(`{}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res scenario.Result
	decode(t, rec, &res)
	assert.Equal(t, scenario.DefaultInputs(), res.Inputs)
	assert.InDelta(t, 108000, res.Outputs.ProjectedRevenue, 1e-9)
	assert.InDelta(t, 33800, res.Outputs.ProjectedProfit, 1e-9)
	assert.InDelta(t, 0, res.Outputs.RiskVariance, 1e-9)
	assert.InDelta(t, 96, res.Outputs.ConfidencePercent, 1e-9)
	assert.InDelta(t, 108000*1.15, res.Scenarios.Optimistic.Revenue, 1e-6)
	assert.InDelta(t, 33800*0.8, res.Scenarios.Conservative.Profit, 1e-6)

	// compute does not touch the runner
	assert.Equal(t, scenario.PhaseIdle, srv.runner.State().Phase)
}

func TestSimulationCompute_EmptyBodyUsesDefaults(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulation/compute", nil)
	rec := serve(srv.Router(), req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res scenario.Result
	decode(t, rec, &res)
	assert.Equal(t, scenario.DefaultInputs(), res.Inputs)
}

func TestSimulationCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"price out of range", `{"priceChangePercent":31}`},
		{"budget off step", `{"marketingBudgetThousands":52}`},
		{"inventory out of range", `{"inventoryShiftPercent":-55}`},
		{"unknown region", `{"region":"Kerala"}`},
		{"malformed json", `{"priceChangePercent":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nil)
			rec := do(t, srv.Router(), http.MethodPost, "/api/v1/simulation/compute", strings.NewReader(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid scenario input")
		})
	}
}

func TestSimulationRun_ReadyThenReset(t *testing.T) {
	srv := newTestServer(t, nil)
	h := srv.Router()

	body := `{"priceChangePercent":-10,"marketingBudgetThousands":100,"inventoryShiftPercent":20,"region":"Gujarat"}`
	rec := do(t, h, http.MethodPost, "/api/v1/simulation/run", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var run struct {
		State       scenario.Phase   `json:"state"`
		Inputs      scenario.Inputs  `json:"inputs"`
		Results     *scenario.Result `json:"results"`
		LedgerEvent *ledger.Event    `json:"ledgerEvent"`
	}
	decode(t, rec, &run)
	assert.Equal(t, scenario.PhaseReady, run.State)
	assert.Equal(t, "Gujarat", run.Inputs.Region)
	require.NotNil(t, run.Results)
	// 98000 - 5000 + 20000
	assert.InDelta(t, 113000, run.Results.Outputs.ProjectedRevenue, 1e-9)
	// max(60, 96 - 15 - 10)
	assert.InDelta(t, 71, run.Results.Outputs.ConfidencePercent, 1e-9)
	require.NotNil(t, run.LedgerEvent)
	assert.Equal(t, ledger.TypeSimulationStored, run.LedgerEvent.Type)
	assert.Len(t, run.LedgerEvent.FullHash, 66)

	rec = do(t, h, http.MethodGet, "/api/v1/simulation", nil)
	var state scenario.State
	decode(t, rec, &state)
	assert.Equal(t, scenario.PhaseReady, state.Phase)
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.SimulationRuns.WithLabelValues("ok")))

	rec = do(t, h, http.MethodPost, "/api/v1/simulation/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &state)
	assert.Equal(t, scenario.PhaseIdle, state.Phase)
	assert.Equal(t, scenario.DefaultInputs(), state.Inputs)
	assert.Nil(t, state.Results)
}

func TestSimulationRun_ConcurrentRunRejected(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.Simulation.RunDelay = 300 * time.Millisecond })
	h := srv.Router()

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/simulation/run", strings.NewReader(`{}`))
		first <- serve(h, req)
	}()

	require.Eventually(t, func() bool {
		return srv.runner.State().Phase == scenario.PhaseRunning
	}, time.Second, 5*time.Millisecond)

	rec := do(t, h, http.MethodPost, "/api/v1/simulation/run", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"simulation already running"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/simulation/reset", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	select {
	case rec := <-first:
		assert.Equal(t, http.StatusOK, rec.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("first run never finished")
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.SimulationRuns.WithLabelValues("busy")))
	assert.Equal(t, 7, srv.ledger.Len())
}

func TestSimulationRun_InvalidDoesNotStart(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv.Router(), http.MethodPost, "/api/v1/simulation/run", strings.NewReader(`{"region":"Atlantis"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, scenario.PhaseIdle, srv.runner.State().Phase)
	assert.Equal(t, 6, srv.ledger.Len())
}
