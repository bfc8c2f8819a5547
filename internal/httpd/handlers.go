package httpd

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/tapnode/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The control page is served from the same origin; the API is
	// LAN-local like the device firmware's, so cross-origin tooling
	// (and tests) may connect too.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleIndex serves the embedded control page with ETag revalidation.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ETag != "" {
		w.Header().Set("ETag", s.cfg.ETag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == s.cfg.ETag {
			w.WriteHeader(http.StatusNotModified)
			logging.LogRequest(r.RemoteAddr, r.Method, r.URL.Path, http.StatusNotModified)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")

	body := s.indexPlain
	if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		body = s.indexGzip
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	logging.LogRequest(r.RemoteAddr, r.Method, r.URL.Path, http.StatusOK)
}

// handleIndexRedirect redirects /index.html to /.
func (s *Server) handleIndexRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
	logging.LogRequest(r.RemoteAddr, r.Method, r.URL.Path, http.StatusTemporaryRedirect)
}

func (s *Server) handleLEDOn(w http.ResponseWriter, r *http.Request) {
	s.handleLEDSet(w, r, true)
}

func (s *Server) handleLEDOff(w http.ResponseWriter, r *http.Request) {
	s.handleLEDSet(w, r, false)
}

func (s *Server) handleLEDSet(w http.ResponseWriter, r *http.Request, on bool) {
	if err := s.setLED(on); err != nil {
		logging.Error("LED update failed",
			zap.Bool("on", on),
			zap.Error(err),
		)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logging.LogRequest(r.RemoteAddr, r.Method, r.URL.Path, http.StatusNoContent)
}

// Status is the /api/status response body.
type Status struct {
	Node    string  `json:"node"`
	Version string  `json:"version"`
	LED     bool    `json:"led"`
	Uptime  float64 `json:"uptime_seconds"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var uptime float64
	if !s.started.IsZero() {
		uptime = time.Since(s.started).Seconds()
	}

	status := Status{
		Node:    s.cfg.NodeName,
		Version: s.cfg.Version,
		LED:     s.cfg.LED.On(),
		Uptime:  uptime,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		logging.Error("Status encode failed", zap.Error(err))
	}
}

// event is one /api/events message.
type event struct {
	LED bool `json:"led"`
}

// handleEvents upgrades to WebSocket and streams LED state changes.
// The current state is sent immediately on connect.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	ch, unsubscribe := s.subscribe()
	defer unsubscribe()

	logging.Debug("Event subscriber connected",
		zap.String("remote_addr", r.RemoteAddr),
	)

	if err := conn.WriteJSON(event{LED: s.cfg.LED.On()}); err != nil {
		return
	}

	// Reader goroutine: we never expect client data, but reading is
	// what detects a dropped peer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case on, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event{LED: on}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
