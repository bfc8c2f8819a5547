package httpd

import (
	"bytes"
	"compress/gzip"
	"context"
	"embed"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/tapnode/internal/led"
	"github.com/muurk/tapnode/internal/logging"
)

//go:embed assets/index.html
var assets embed.FS

// Timeouts mirrored from the device firmware's HTTP server settings.
const (
	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
)

// Config holds the control server configuration.
type Config struct {
	Host string
	Port int

	// ETag identifies the embedded control page; computed from the
	// build fingerprint by the boot sequence.
	ETag string

	// LED is the status LED the API handlers drive.
	LED led.Driver

	// NodeName is reported by /api/status.
	NodeName string

	// Version is reported by /api/status.
	Version string
}

// Server is the tapnode control server.
type Server struct {
	cfg      Config
	listener net.Listener
	srv      *http.Server

	indexPlain []byte
	indexGzip  []byte

	mu   sync.Mutex
	subs map[chan bool]struct{}

	started time.Time
}

// New creates a Server. The listener is not bound until Start.
func New(cfg Config) (*Server, error) {
	if cfg.LED == nil {
		return nil, fmt.Errorf("httpd: no LED driver configured")
	}

	page, err := assets.ReadFile("assets/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded control page: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(page); err != nil {
		return nil, fmt.Errorf("failed to compress control page: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress control page: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		indexPlain: page,
		indexGzip:  buf.Bytes(),
		subs:       make(map[chan bool]struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /index.html", s.handleIndexRedirect)
	mux.HandleFunc("POST /api/led/on", s.handleLEDOn)
	mux.HandleFunc("POST /api/led/off", s.handleLEDOff)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	s.srv = &http.Server{
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s, nil
}

// Handler exposes the request mux; tests mount it on httptest servers.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start binds the listener and begins serving in the background. It
// returns once the listener is bound, so a port conflict surfaces here
// rather than asynchronously.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind control server: %w", err)
	}
	s.listener = listener
	s.started = time.Now()

	logging.Info("Control server listening",
		zap.String("addr", listener.Addr().String()),
	)

	go func() {
		if err := s.srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("Control server terminated", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, draining in-flight requests until ctx
// expires. Event subscribers are disconnected first so their handler
// goroutines unblock.
func (s *Server) Stop(ctx context.Context) error {
	logging.Info("Stopping control server")

	s.mu.Lock()
	for ch := range s.subs {
		close(ch)
	}
	s.subs = make(map[chan bool]struct{})
	s.mu.Unlock()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("control server shutdown: %w", err)
	}
	return nil
}

// setLED applies the state and fans the change out to event
// subscribers.
func (s *Server) setLED(on bool) error {
	if err := s.cfg.LED.Set(on); err != nil {
		return err
	}

	s.mu.Lock()
	for ch := range s.subs {
		select {
		case ch <- on:
		default: // slow subscriber, drop the update
		}
	}
	s.mu.Unlock()

	return nil
}

// subscribe registers an event channel and returns its remove func.
func (s *Server) subscribe() (chan bool, func()) {
	ch := make(chan bool, 8)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
}
