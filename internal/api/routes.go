package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/ndnmap/linkrelay/internal/linkfile"
	"github.com/ndnmap/linkrelay/internal/rtstats"
)

// RegisterRoutes registers every admin endpoint.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	apiV1 := "/api/v1"

	mux.HandleFunc(apiV1+"/health", s.handleHealth)
	mux.HandleFunc(apiV1+"/sessions", s.handleSessions)
	mux.HandleFunc(apiV1+"/links", s.handleLinks)

	mux.HandleFunc("/stats.json", s.handleRouterStats)
	mux.HandleFunc("/rt.html", s.handleViewer)
}

// handleHealth handles GET /api/v1/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	uptime := 0.0
	if !s.startTime.IsZero() {
		uptime = time.Since(s.startTime).Seconds()
	}

	subsystems := s.checkSubsystemHealth()

	overallStatus := "ok"
	for _, healthy := range subsystems {
		if !healthy {
			overallStatus = "degraded"
		}
	}

	health := map[string]interface{}{
		"status":     overallStatus,
		"uptimeSec":  uptime,
		"version":    Version,
		"subsystems": subsystems,
	}

	if overallStatus == "ok" {
		WriteSuccess(w, health)
		return
	}
	WriteError(w, http.StatusServiceUnavailable, "SERVICE_DEGRADED",
		"One or more link files are unavailable", health)
}

// checkSubsystemHealth reports whether each link file can be read and parsed.
func (s *Server) checkSubsystemHealth() map[string]bool {
	subsystems := map[string]bool{
		"telemetry": s.hub != nil,
		"topology":  false,
		"stat":      false,
	}
	if s.links != nil {
		_, err := s.links.Topology()
		subsystems["topology"] = err == nil
		_, err = s.links.Snapshot()
		subsystems["stat"] = err == nil
	}
	return subsystems
}

// handleSessions handles GET /api/v1/sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	if s.hub == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Telemetry hub not available", nil)
		return
	}
	WriteSuccess(w, s.hub.Stats())
}

// handleLinks handles GET /api/v1/links
func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	if s.links == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Link source not available", nil)
		return
	}

	links, err := s.links.Topology()
	if errors.Is(err, linkfile.ErrUnavailable) {
		WriteError(w, http.StatusServiceUnavailable, "TOPOLOGY_UNAVAILABLE",
			"Topology file could not be read", map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL",
			"Topology file could not be parsed", map[string]string{"error": err.Error()})
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"count": len(links),
		"links": links,
	})
}

// handleRouterStats handles GET /stats.json. The body is the bare array of
// node stats, not the envelope, because the viewer page reads it directly.
func (s *Server) handleRouterStats(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	nodes, err := rtstats.Load(s.statsDir)
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Router statistics are not available", map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// handleViewer handles GET /rt.html
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(s.staticDir, "rt.html"))
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
		"Only GET method is allowed", nil)
	return false
}
