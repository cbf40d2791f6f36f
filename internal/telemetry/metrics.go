package telemetry

import "sync/atomic"

// hubMetrics aggregates counters across sessions. A nil *hubMetrics is valid
// and records nothing, which lets a Session run outside a Hub.
type hubMetrics struct {
	accepted     atomic.Uint64
	rejected     atomic.Uint64
	armedTimers  atomic.Int64
	framesSent   atomic.Uint64
	bytesSent    atomic.Uint64
	ticksSkipped atomic.Uint64
}

func (m *hubMetrics) timerArmed() {
	if m != nil {
		m.armedTimers.Add(1)
	}
}

func (m *hubMetrics) timerReleased() {
	if m != nil {
		m.armedTimers.Add(-1)
	}
}

func (m *hubMetrics) frameSent(size int) {
	if m != nil {
		m.framesSent.Add(1)
		m.bytesSent.Add(uint64(size))
	}
}

func (m *hubMetrics) tickSkipped() {
	if m != nil {
		m.ticksSkipped.Add(1)
	}
}
