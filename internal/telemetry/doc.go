// Package telemetry implements the live link telemetry stream.
//
// A Hub accepts websocket subscribers. Each subscriber gets its own Session,
// which sends the topology frame once and then a snapshot frame on every tick
// of its own timer until the connection closes.
//
// Sessions share no mutable state, so one slow subscriber never delays
// another. Within a session ticks are strictly sequential; a tick that comes
// due while the previous one is still running is skipped.
package telemetry
