// Package api implements the read-only admin HTTP surface of the relay.
//
// It reports health, live session statistics and the current topology
// under /api/v1, and serves the router statistics dump (/stats.json) with
// its static viewer page (/rt.html).
package api
