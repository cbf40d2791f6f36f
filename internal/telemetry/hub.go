package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ndnmap/linkrelay/internal/audit"
	"github.com/ndnmap/linkrelay/internal/config"
)

// ErrHubStopped is returned for subscriptions arriving after Stop.
var ErrHubStopped = errors.New("telemetry hub stopped")

// Auditor records session lifecycle events.
type Auditor interface {
	LogSession(entry audit.Entry)
}

// Hub accepts subscribers and runs one Session per connection.
//
// h.mu protects sessions and stopped only. Sessions never take it while
// sending, so registration cannot stall a stream.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	stopped  bool

	source   Source
	interval time.Duration
	upgrader websocket.Upgrader
	auditor  Auditor
	metrics  hubMetrics

	wg sync.WaitGroup
}

type entry struct {
	session *Session
	cancel  context.CancelFunc
}

// NewHub creates a hub that streams from source at the configured push interval.
func NewHub(cfg *config.Config, source Source) *Hub {
	return &Hub{
		sessions: make(map[string]*entry),
		source:   source,
		interval: cfg.Relay.PushInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Any origin may subscribe; local dashboards are served from file:// and other ports.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// SetAuditLogger attaches a session audit log.
func (h *Hub) SetAuditLogger(a Auditor) {
	h.auditor = a
}

// ServeHTTP upgrades the request and streams until the subscriber leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Subscribe(r.Context(), w, r); err != nil {
		if errors.Is(err, ErrHubStopped) {
			return
		}
		log.Printf("Subscription from %s ended: %v", r.RemoteAddr, err)
	}
}

// Subscribe upgrades the connection and runs a session on it. It blocks until
// the session is closed.
func (h *Hub) Subscribe(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.isStopped() {
		http.Error(w, "telemetry hub is shutting down", http.StatusServiceUnavailable)
		return ErrHubStopped
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		h.metrics.rejected.Add(1)
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := NewSession(uuid.NewString(), h.source, &wsSender{conn: conn}, h.interval)
	session.Remote = r.RemoteAddr
	session.metrics = &h.metrics
	session.onStreaming = func() { h.audit(session, audit.EventStreaming, audit.CodeOK, "") }

	if !h.register(session, cancel) {
		writeClose(conn, websocket.CloseGoingAway, "server shutting down")
		return ErrHubStopped
	}
	defer h.unregister(session.ID)

	h.metrics.accepted.Add(1)
	log.Printf("Session %s opened from %s", session.ID, session.Remote)
	h.audit(session, audit.EventOpen, "", "")

	// Inbound frames are read only to notice the peer leaving.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	runErr := session.Run(sessCtx)

	// Run has released the timer; only now is the connection torn down.
	code := audit.CodeOK
	switch {
	case errors.Is(runErr, ErrTopologyUnavailable):
		code = audit.CodeTopologyUnavailable
		h.metrics.rejected.Add(1)
		writeClose(conn, websocket.CloseInternalServerErr, "topology unavailable")
	case errors.Is(runErr, ErrConnectionLost):
		code = audit.CodeConnectionLost
	case runErr != nil:
		code = audit.CodeError
	case h.isStopped():
		code = audit.CodeShutdown
		writeClose(conn, websocket.CloseGoingAway, "server shutting down")
	}
	_ = conn.Close()
	<-readerDone

	if code == audit.CodeTopologyUnavailable {
		log.Printf("Session %s rejected: %v", session.ID, runErr)
		h.audit(session, audit.EventRejected, code, errorMessage(runErr))
		return runErr
	}

	log.Printf("Session %s closed after %s (%s frames, %s, %d ticks skipped)",
		session.ID, time.Since(session.Started).Round(time.Millisecond),
		humanize.Comma(int64(session.FramesSent())), humanize.Bytes(session.BytesSent()),
		session.TicksSkipped())
	h.audit(session, audit.EventClosed, code, errorMessage(runErr))

	if code == audit.CodeConnectionLost {
		// The peer going away is the normal way a stream ends.
		return nil
	}
	return runErr
}

func (h *Hub) register(session *Session, cancel context.CancelFunc) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return false
	}
	h.sessions[session.ID] = &entry{session: session, cancel: cancel}
	h.wg.Add(1)
	return true
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	_, exists := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if exists {
		h.wg.Done()
	}
}

func (h *Hub) isStopped() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stopped
}

func (h *Hub) audit(session *Session, event, code, message string) {
	if h.auditor == nil {
		return
	}
	e := audit.Entry{
		SessionID:    session.ID,
		Remote:       session.Remote,
		Event:        event,
		Frames:       session.FramesSent(),
		Bytes:        session.BytesSent(),
		TicksSkipped: session.TicksSkipped(),
		Code:         code,
		Message:      message,
	}
	if event == audit.EventClosed || event == audit.EventRejected {
		e.DurationMs = time.Since(session.Started).Milliseconds()
	}
	h.auditor.LogSession(e)
}

// SessionInfo summarizes one live session.
type SessionInfo struct {
	ID           string    `json:"id"`
	Remote       string    `json:"remote"`
	State        string    `json:"state"`
	Since        time.Time `json:"since"`
	Frames       uint64    `json:"frames"`
	Bytes        uint64    `json:"bytes"`
	TicksSkipped uint64    `json:"ticksSkipped"`
}

// Stats is a point-in-time view of the hub.
type Stats struct {
	ActiveSessions int           `json:"activeSessions"`
	ArmedTimers    int64         `json:"armedTimers"`
	Accepted       uint64        `json:"accepted"`
	Rejected       uint64        `json:"rejected"`
	FramesSent     uint64        `json:"framesSent"`
	BytesSent      uint64        `json:"bytesSent"`
	TicksSkipped   uint64        `json:"ticksSkipped"`
	PushInterval   string        `json:"pushInterval"`
	Sessions       []SessionInfo `json:"sessions"`
}

// Stats returns current counters and live sessions ordered by start time.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	sessions := make([]SessionInfo, 0, len(h.sessions))
	for _, e := range h.sessions {
		s := e.session
		sessions = append(sessions, SessionInfo{
			ID:           s.ID,
			Remote:       s.Remote,
			State:        s.State().String(),
			Since:        s.Started,
			Frames:       s.FramesSent(),
			Bytes:        s.BytesSent(),
			TicksSkipped: s.TicksSkipped(),
		})
	}
	h.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Since.Before(sessions[j].Since)
	})

	return Stats{
		ActiveSessions: len(sessions),
		ArmedTimers:    h.metrics.armedTimers.Load(),
		Accepted:       h.metrics.accepted.Load(),
		Rejected:       h.metrics.rejected.Load(),
		FramesSent:     h.metrics.framesSent.Load(),
		BytesSent:      h.metrics.bytesSent.Load(),
		TicksSkipped:   h.metrics.ticksSkipped.Load(),
		PushInterval:   h.interval.String(),
		Sessions:       sessions,
	}
}

// Stop closes every session and refuses new ones. It waits up to five
// seconds for session goroutines to finish.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	cancels := make([]context.CancelFunc, 0, len(h.sessions))
	for _, e := range h.sessions {
		cancels = append(cancels, e.cancel)
	}
	h.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Printf("Telemetry hub stop timed out with %d sessions still open", h.Stats().ActiveSessions)
	}
}

// wsSender writes frames as websocket text messages. Only the session
// goroutine calls Send.
type wsSender struct {
	conn *websocket.Conn
}

func (s *wsSender) Send(frame string) error {
	return s.conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

func writeClose(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
