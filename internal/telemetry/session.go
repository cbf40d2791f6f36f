package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/ndnmap/linkrelay/internal/linkfile"
	"github.com/ndnmap/linkrelay/internal/wire"
)

var (
	// ErrTopologyUnavailable aborts session establishment.
	ErrTopologyUnavailable = errors.New("topology unavailable")
	// ErrConnectionLost reports that a frame could not be delivered.
	ErrConnectionLost = errors.New("connection lost")
)

// State is the lifecycle position of a Session.
type State int32

const (
	StateOpen State = iota
	StateStreaming
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Source supplies fresh records on every call.
type Source interface {
	Topology() ([]linkfile.Link, error)
	Snapshot() ([]linkfile.StatRecord, error)
}

// Sender delivers one frame to the subscriber.
type Sender interface {
	Send(frame string) error
}

// Session owns one subscriber connection from connect to close.
type Session struct {
	ID       string
	Remote   string
	Started  time.Time
	interval time.Duration
	source   Source
	sender   Sender
	metrics  *hubMetrics

	state        atomic.Int32
	frames       atomic.Uint64
	bytes        atomic.Uint64
	ticksSkipped atomic.Uint64

	// Only touched from the Run goroutine.
	statDown    bool
	onStreaming func()
}

// NewSession creates a session in StateOpen.
func NewSession(id string, source Source, sender Sender, interval time.Duration) *Session {
	return &Session{
		ID:       id,
		Started:  time.Now(),
		interval: interval,
		source:   source,
		sender:   sender,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// FramesSent returns how many frames reached the sender.
func (s *Session) FramesSent() uint64 { return s.frames.Load() }

// BytesSent returns the total payload size of all sent frames.
func (s *Session) BytesSent() uint64 { return s.bytes.Load() }

// TicksSkipped counts ticks that sent nothing, either because they came due
// while the previous tick was still running or because the stat file could
// not be read.
func (s *Session) TicksSkipped() uint64 { return s.ticksSkipped.Load() }

// Run sends the topology frame, then a snapshot frame per tick, until ctx is
// cancelled or a send fails. The timer is always released before Run returns.
func (s *Session) Run(ctx context.Context) error {
	defer s.state.Store(int32(StateClosed))

	if err := s.sendTopology(); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	s.metrics.timerArmed()
	defer func() {
		ticker.Stop()
		s.metrics.timerReleased()
	}()
	s.state.Store(int32(StateStreaming))
	if s.onStreaming != nil {
		s.onStreaming()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if ctx.Err() != nil {
			return nil
		}
		if err := s.tick(); err != nil {
			return err
		}

		// A tick already buffered here came due while this one was running.
		select {
		case <-ticker.C:
			s.skipTick()
		default:
		}
	}
}

func (s *Session) sendTopology() error {
	links, err := s.source.Topology()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTopologyUnavailable, err)
	}
	if err := s.send(wire.EncodeTopology(links)); err != nil {
		return err
	}
	return nil
}

// tick sends one snapshot. An unreadable stat file skips the tick and keeps
// the session alive; only a failed send ends it.
func (s *Session) tick() error {
	records, err := s.source.Snapshot()
	if err != nil {
		if !s.statDown {
			log.Printf("Session %s: skipping ticks, stat source unavailable: %v", s.ID, err)
			s.statDown = true
		}
		s.skipTick()
		return nil
	}
	if s.statDown {
		log.Printf("Session %s: stat source readable again", s.ID)
		s.statDown = false
	}
	return s.send(wire.EncodeSnapshot(records))
}

func (s *Session) send(frame string) error {
	if err := s.sender.Send(frame); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionLost, err)
	}
	s.frames.Add(1)
	s.bytes.Add(uint64(len(frame)))
	s.metrics.frameSent(len(frame))
	return nil
}

func (s *Session) skipTick() {
	s.ticksSkipped.Add(1)
	s.metrics.tickSkipped()
}
