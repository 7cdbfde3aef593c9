// Package api exposes uploads, demand, simulation, autopilot, ledger and
// insights over REST/JSON for the dashboard frontend.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/retailpilot/backend/internal/circuitbreaker"
	"github.com/retailpilot/backend/internal/config"
	"github.com/retailpilot/backend/internal/demand"
	"github.com/retailpilot/backend/internal/ingest"
	"github.com/retailpilot/backend/internal/ledger"
	"github.com/retailpilot/backend/internal/metrics"
	"github.com/retailpilot/backend/internal/middleware"
	"github.com/retailpilot/backend/internal/scenario"
)

// Deps are the collaborators a Server is built from. Nil fields get
// in-process defaults.
type Deps struct {
	Store     ingest.Store
	StoreName string
	// StorePing reports store reachability on /health. Nil means always up.
	StorePing func(ctx context.Context) error

	Demand  *demand.Snapshotter
	Runner  *scenario.Runner
	Ledger  *ledger.Ledger
	Metrics *metrics.Metrics
}

// Server owns the HTTP handlers and the state they share.
type Server struct {
	cfg       *config.Config
	uploads   *ingest.Service
	store     ingest.Store
	storeName string
	storePing func(ctx context.Context) error
	demand    *demand.Snapshotter
	runner    *scenario.Runner
	autopilot *scenario.Autopilot
	ledger    *ledger.Ledger
	metrics   *metrics.Metrics
	limiter   *middleware.RateLimiter
	upgrader  websocket.Upgrader

	closing   chan struct{}
	closeOnce sync.Once
}

// NewServer wires the handlers. Call Close when done to stop background
// work and any open demand streams.
func NewServer(cfg *config.Config, deps Deps) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if deps.Store == nil {
		deps.Store = ingest.NewMemoryStore()
		deps.StoreName = config.StoreMemory
	}
	if deps.Demand == nil {
		deps.Demand = demand.NewSnapshotter(nil)
	}
	if deps.Runner == nil {
		deps.Runner = scenario.NewRunner(cfg.Simulation.RunDelay)
	}
	if deps.Ledger == nil {
		deps.Ledger = ledger.NewSeededLedger()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	trusted, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		slog.Warn("Ignoring invalid server.trusted_proxies", "error", err)
	}

	s := &Server{
		cfg:       cfg,
		uploads:   ingest.NewService(deps.Store),
		store:     deps.Store,
		storeName: deps.StoreName,
		storePing: deps.StorePing,
		demand:    deps.Demand,
		runner:    deps.Runner,
		ledger:    deps.Ledger,
		metrics:   deps.Metrics,
		limiter: middleware.NewRateLimiter(middleware.RateLimitConfig{
			MaxCallsPerMinute: cfg.RateLimit.MaxCallsPerMinute,
			BurstSize:         cfg.RateLimit.BurstSize,
			TrustedProxies:    trusted,
		}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(cfg.Server.AllowedOrigins),
		},
		closing: make(chan struct{}),
	}
	s.autopilot = scenario.NewAutopilot(cfg.Autopilot.StepDelay, s.commitAutopilot)
	return s
}

// Router builds the gorilla/mux router with all routes and middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.CORS(s.cfg.Server.AllowedOrigins))
	r.Use(middleware.Logging(s.metrics.RequestDuration))

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Uploads
	api.Handle("/upload", s.limiter.Middleware(http.HandlerFunc(s.handleUpload))).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/upload", s.handleListUploads).Methods(http.MethodGet)
	api.HandleFunc("/upload/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/upload/{category}", s.handleGetUpload).Methods(http.MethodGet)

	// Demand
	api.HandleFunc("/demand", s.handleDemand).Methods(http.MethodGet)
	api.HandleFunc("/demand/stream", s.handleDemandStream).Methods(http.MethodGet)

	// Simulation
	api.HandleFunc("/simulation", s.handleSimulationState).Methods(http.MethodGet)
	api.HandleFunc("/simulation/compute", s.handleSimulationCompute).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/simulation/run", s.handleSimulationRun).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/simulation/reset", s.handleSimulationReset).Methods(http.MethodPost, http.MethodOptions)

	// Autopilot
	api.HandleFunc("/autopilot", s.handleAutopilotState).Methods(http.MethodGet)
	api.HandleFunc("/autopilot/enable", s.handleAutopilotEnable).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/autopilot/disable", s.handleAutopilotDisable).Methods(http.MethodPost, http.MethodOptions)

	// Ledger & insights
	api.HandleFunc("/ledger/events", s.handleLedgerEvents).Methods(http.MethodGet)
	api.HandleFunc("/insights/revenue", s.handleRevenue).Methods(http.MethodGet)
	api.HandleFunc("/insights/credit-score", s.handleCreditScore).Methods(http.MethodGet)

	return r
}

// Close stops background work. Safe to call more than once.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.closing)
		s.limiter.Close()
		s.autopilot.Disable()
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	storeStatus := "connected"
	if s.storePing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.storePing(ctx); err != nil {
			slog.Warn("store health check failed", "store", s.storeName, "error", err)
			storeStatus = "error"
		}
	}

	body := map[string]interface{}{
		"status":      "healthy",
		"service":     "retailpilot-api",
		"store":       s.storeName,
		"storeStatus": storeStatus,
		"rateLimit":   s.limiter.Stats(),
	}
	if g, ok := s.store.(breakerReporter); ok {
		cb := g.Breaker()
		body["storeBreaker"] = map[string]interface{}{
			"name":                cb.Name(),
			"state":               cb.State().String(),
			"consecutiveFailures": cb.Counts().ConsecutiveFailures,
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// breakerReporter is implemented by stores behind a circuit breaker.
type breakerReporter interface {
	Breaker() *circuitbreaker.Breaker
}

// recordLedger appends an event and counts it. Failures are logged only;
// the ledger is decorative and never fails the request that triggered it.
func (s *Server) recordLedger(eventType string, metadata map[string]interface{}) *ledger.Event {
	ev, err := s.ledger.Record(eventType, metadata)
	if err != nil {
		slog.Error("ledger record failed", "type", eventType, "error", err)
		return nil
	}
	s.metrics.LedgerEvents.WithLabelValues(eventType).Inc()
	return &ev
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("JSON encode error", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
