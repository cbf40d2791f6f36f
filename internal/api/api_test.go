package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ndnmap/linkrelay/internal/linkfile"
	"github.com/ndnmap/linkrelay/internal/telemetry"
)

type fakeHub struct {
	stats telemetry.Stats
}

func (f *fakeHub) Stats() telemetry.Stats { return f.stats }

type fixture struct {
	server   *Server
	dir      string
	topology string
	stat     string
	statsDir string
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func setupAPITest(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:      dir,
		topology: filepath.Join(dir, "links.txt"),
		stat:     filepath.Join(dir, "stat"),
		statsDir: filepath.Join(dir, "rt"),
	}
	writeFile(t, f.topology, "1 CSU 10.0.0.1 WU\n2 WU 10.0.0.2 UCLA\n")
	writeFile(t, f.stat, "LI:1-TM:100-TX:500-RX:300\n")
	if err := os.Mkdir(f.statsDir, 0o755); err != nil {
		t.Fatalf("Failed to create stats dir: %v", err)
	}
	writeFile(t, filepath.Join(f.statsDir, "CSU.txt"), "uptime=42\nnPitEntries=7\n")
	writeFile(t, filepath.Join(dir, "rt.html"), "<html>rt</html>")

	hub := &fakeHub{stats: telemetry.Stats{ActiveSessions: 2, Accepted: 3, PushInterval: "2s"}}
	f.server = NewServer(hub, linkfile.NewFileSource(f.topology, f.stat), f.statsDir, dir)
	return f
}

func (f *fixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	if resp.CorrelationID == "" {
		t.Error("Response is missing correlationId")
	}
	return resp
}

func TestServerStartStop(t *testing.T) {
	server := NewServer(&fakeHub{}, nil, "", "")

	if server.GetServer() != nil {
		t.Error("GetServer() should return nil before Start()")
	}
	if err := server.Stop(context.Background()); err != nil {
		t.Errorf("Stop() before Start() returned %v", err)
	}
}

func TestHealthOK(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodGet, "/api/v1/health")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeEnvelope(t, w)
	if resp.Result != "ok" {
		t.Errorf("Expected result ok, got %q", resp.Result)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object data, got %T", resp.Data)
	}
	if data["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", data["status"])
	}
	if data["version"] != Version {
		t.Errorf("Expected version %s, got %v", Version, data["version"])
	}
}

func TestHealthDegradedWhenStatMissing(t *testing.T) {
	f := setupAPITest(t)
	if err := os.Remove(f.stat); err != nil {
		t.Fatal(err)
	}

	w := f.do(t, http.MethodGet, "/api/v1/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", w.Code)
	}

	resp := decodeEnvelope(t, w)
	if resp.Code != "SERVICE_DEGRADED" {
		t.Errorf("Expected code SERVICE_DEGRADED, got %q", resp.Code)
	}
	details, ok := resp.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected health in details, got %T", resp.Details)
	}
	subsystems, _ := details["subsystems"].(map[string]interface{})
	if subsystems["stat"] != false {
		t.Errorf("Expected stat subsystem down, got %v", subsystems["stat"])
	}
	if subsystems["topology"] != true {
		t.Errorf("Expected topology subsystem up, got %v", subsystems["topology"])
	}
}

func TestSessions(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodGet, "/api/v1/sessions")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	data, _ := decodeEnvelope(t, w).Data.(map[string]interface{})
	if data["activeSessions"] != float64(2) {
		t.Errorf("Expected activeSessions 2, got %v", data["activeSessions"])
	}
	if data["pushInterval"] != "2s" {
		t.Errorf("Expected pushInterval 2s, got %v", data["pushInterval"])
	}
}

func TestLinks(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodGet, "/api/v1/links")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	data, _ := decodeEnvelope(t, w).Data.(map[string]interface{})
	if data["count"] != float64(2) {
		t.Errorf("Expected 2 links, got %v", data["count"])
	}
	links, _ := data["links"].([]interface{})
	if len(links) != 2 {
		t.Fatalf("Expected 2 link entries, got %d", len(links))
	}
	first, _ := links[0].(map[string]interface{})
	if first["id"] != "1" || first["source"] != "CSU" || first["dest"] != "WU" {
		t.Errorf("Unexpected first link: %v", first)
	}
}

func TestLinksTopologyMissing(t *testing.T) {
	f := setupAPITest(t)
	if err := os.Remove(f.topology); err != nil {
		t.Fatal(err)
	}

	w := f.do(t, http.MethodGet, "/api/v1/links")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Code != "TOPOLOGY_UNAVAILABLE" {
		t.Errorf("Expected code TOPOLOGY_UNAVAILABLE, got %q", resp.Code)
	}
}

func TestRouterStats(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodGet, "/stats.json")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var nodes []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &nodes); err != nil {
		t.Fatalf("Expected bare JSON array, got %q: %v", w.Body.String(), err)
	}
	if len(nodes) != 1 {
		t.Fatalf("Expected 1 node, got %d", len(nodes))
	}
	if nodes[0]["name"] != "CSU" {
		t.Errorf("Expected node CSU, got %v", nodes[0]["name"])
	}
	if nodes[0]["uptime"] != "42" {
		t.Errorf("Expected uptime \"42\", got %v", nodes[0]["uptime"])
	}
	if nodes[0]["nFibEntries"] != float64(0) {
		t.Errorf("Expected baseline nFibEntries 0, got %v", nodes[0]["nFibEntries"])
	}
}

func TestRouterStatsMissingDir(t *testing.T) {
	f := setupAPITest(t)
	f.server.statsDir = filepath.Join(f.dir, "absent")

	w := f.do(t, http.MethodGet, "/stats.json")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", w.Code)
	}
}

func TestViewer(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodGet, "/rt.html")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "rt") {
		t.Errorf("Unexpected body %q", w.Body.String())
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Expected Cache-Control no-cache, got %q", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := setupAPITest(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/sessions", "/api/v1/links", "/stats.json", "/rt.html"} {
		t.Run(path, func(t *testing.T) {
			w := f.do(t, http.MethodPost, path)
			if w.Code != http.StatusMethodNotAllowed {
				t.Fatalf("Expected status 405, got %d", w.Code)
			}
			if resp := decodeEnvelope(t, w); resp.Code != "METHOD_NOT_ALLOWED" {
				t.Errorf("Expected code METHOD_NOT_ALLOWED, got %q", resp.Code)
			}
		})
	}
}

func TestCorrelationIDGeneration(t *testing.T) {
	a := SuccessResponse(nil).CorrelationID
	b := ErrorResponse("X", "y", nil).CorrelationID
	if a == "" || b == "" || a == b {
		t.Errorf("Expected distinct non-empty correlation IDs, got %q and %q", a, b)
	}
}
