package api

import (
	"github.com/ndnmap/linkrelay/internal/linkfile"
	"github.com/ndnmap/linkrelay/internal/telemetry"
)

// StatsPort defines the minimal interface the API needs from the telemetry hub.
type StatsPort interface {
	Stats() telemetry.Stats
}

// LinkSourcePort defines the read access the API needs to the link files.
type LinkSourcePort interface {
	Topology() ([]linkfile.Link, error)
	Snapshot() ([]linkfile.StatRecord, error)
}

// Compile-time assertions for port conformance
var _ StatsPort = (*telemetry.Hub)(nil)
var _ LinkSourcePort = (*linkfile.FileSource)(nil)
