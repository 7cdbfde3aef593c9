package api

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/retailpilot/backend/internal/demand"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = 30 * time.Second
	streamReadLimit  = 512
)

// GET /api/v1/demand?region=<id>
func (s *Server) handleDemand(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("region")
	if id == "" {
		s.metrics.DemandSnapshots.WithLabelValues("all").Inc()
		writeJSON(w, http.StatusOK, s.demand.All())
		return
	}

	region, err := s.demand.Get(id)
	if errors.Is(err, demand.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Region not found")
		return
	}
	s.metrics.DemandSnapshots.WithLabelValues("region").Inc()
	writeJSON(w, http.StatusOK, region)
}

// GET /api/v1/demand/stream
//
// Upgrades to a websocket and pushes a fresh snapshot of every region on
// each tick until the client goes away or the server closes. The handler
// goroutine owns all writes; a second goroutine only drains reads so pongs
// and close frames are processed.
func (s *Server) handleDemandStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("demand stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.metrics.StreamClients.Inc()
	defer s.metrics.StreamClients.Dec()
	slog.Info("demand stream connected", "client", r.RemoteAddr)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(streamReadLimit)
		conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Warn("demand stream read error", "error", err)
				}
				return
			}
		}
	}()

	push := func() error {
		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		s.metrics.DemandSnapshots.WithLabelValues("stream").Inc()
		return conn.WriteJSON(s.demand.All())
	}
	if err := push(); err != nil {
		return
	}

	ticker := time.NewTicker(s.cfg.Demand.StreamInterval)
	defer ticker.Stop()
	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ticker.C:
			if err := push(); err != nil {
				slog.Warn("demand stream write failed", "error", err)
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			slog.Info("demand stream disconnected", "client", r.RemoteAddr)
			return
		case <-s.closing:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(streamWriteWait))
			return
		}
	}
}

// checkOrigin allows websocket upgrades from the configured dashboard
// origins. "*" or an empty list allows every origin.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, origin) {
			return true
		}
		slog.Info("demand stream rejected origin", "origin", origin)
		return false
	}
}
