package httpd

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/tapnode/internal/led"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *led.Memory) {
	t.Helper()

	driver := led.NewMemory()
	s, err := New(Config{
		ETag:     `"abcd1234"`,
		LED:      driver,
		NodeName: "test-node",
		Version:  "v0.0.0-test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, driver
}

func TestIndexServesPageWithETag(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("ETag"); got != `"abcd1234"` {
		t.Errorf("ETag = %q, want %q", got, `"abcd1234"`)
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-cache, must-revalidate" {
		t.Errorf("Cache-Control = %q", got)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			t.Fatalf("gzip reader: %v", err)
		}
		defer zr.Close()
		body = zr
	}

	page, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(page), "<title>tapnode</title>") {
		t.Error("control page body missing expected title")
	}
}

func TestIndexNotModified(t *testing.T) {
	_, ts, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	req.Header.Set("If-None-Match", `"abcd1234"`)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("status = %d, want 304", resp.StatusCode)
	}
}

func TestIndexStaleETagGetsFullPage(t *testing.T) {
	_, ts, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	req.Header.Set("If-None-Match", `"deadbeef"`)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestIndexHTMLRedirects(t *testing.T) {
	_, ts, _ := newTestServer(t)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want 307", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != "/" {
		t.Errorf("Location = %q, want /", got)
	}
}

func TestLEDHandlers(t *testing.T) {
	_, ts, driver := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/led/on", "", nil)
	if err != nil {
		t.Fatalf("POST /api/led/on error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("led/on status = %d, want 204", resp.StatusCode)
	}
	if !driver.On() {
		t.Error("LED not on after POST /api/led/on")
	}

	resp, err = http.Post(ts.URL+"/api/led/off", "", nil)
	if err != nil {
		t.Fatalf("POST /api/led/off error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("led/off status = %d, want 204", resp.StatusCode)
	}
	if driver.On() {
		t.Error("LED still on after POST /api/led/off")
	}
}

func TestLEDHandlerMethodNotAllowed(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/led/on")
	if err != nil {
		t.Fatalf("GET /api/led/on error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestLEDHandlerDriverFailure(t *testing.T) {
	_, ts, driver := newTestServer(t)

	// A closed driver refuses Set; the handler maps that to a 500.
	if err := driver.Close(); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(ts.URL+"/api/led/on", "", nil)
	if err != nil {
		t.Fatalf("POST /api/led/on error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestStatusHandler(t *testing.T) {
	_, ts, driver := newTestServer(t)

	if err := driver.Set(true); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status error = %v", err)
	}
	defer resp.Body.Close()

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}

	if status.Node != "test-node" {
		t.Errorf("Node = %q, want test-node", status.Node)
	}
	if status.Version != "v0.0.0-test" {
		t.Errorf("Version = %q, want v0.0.0-test", status.Version)
	}
	if !status.LED {
		t.Error("LED = false, want true")
	}
}

func TestEventsStream(t *testing.T) {
	s, ts, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	defer conn.Close()

	// Initial state arrives immediately.
	var ev event
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read initial event: %v", err)
	}
	if ev.LED {
		t.Error("initial event LED = true, want false")
	}

	// A state change is fanned out to the subscriber.
	if err := s.setLED(true); err != nil {
		t.Fatalf("setLED error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read change event: %v", err)
	}
	if !ev.LED {
		t.Error("change event LED = false, want true")
	}
}

func TestStartStop(t *testing.T) {
	driver := led.NewMemory()
	s, err := New(Config{Host: "127.0.0.1", Port: 0, LED: driver})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.Addr() == "" {
		t.Error("Addr() empty after Start")
	}

	resp, err := http.Get("http://" + s.Addr() + "/api/status")
	if err != nil {
		t.Fatalf("GET status on live server: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	if _, err := http.Get("http://" + s.Addr() + "/api/status"); err == nil {
		t.Error("server still answering after Stop")
	}
}

func TestNewRequiresLED(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New() without LED driver should fail")
	}
}
