// Package rtstats reads the per-router status files written by the router
// status collectors and turns them into JSON-ready maps.
//
// The directory holds one file per router, named <node>.txt, with one
// key=value counter per line.
package rtstats

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// baselineKeys are present for every node, zero until the file sets them.
var baselineKeys = []string{
	"uptime",
	"nNameTreeEntries",
	"nFibEntries",
	"nPitEntries",
	"nMeasurementsEntries",
	"nCsEntries",
	"nInInterests",
	"nOutInterests",
	"nInDatas",
	"nOutDatas",
}

// NodeStats holds one router's counters. Values read from the file are kept
// as text; baseline values that were never set stay numeric zero.
type NodeStats map[string]interface{}

// Name returns the node name.
func (n NodeStats) Name() string {
	name, _ := n["name"].(string)
	return name
}

// NewNodeStats returns the baseline stats for a node.
func NewNodeStats(name string) NodeStats {
	stats := NodeStats{"name": name}
	for _, key := range baselineKeys {
		stats[key] = 0
	}
	return stats
}

// ParseNode reads key=value lines into the node's stats. A line is split on
// '=' and the first two parts are used; lines without '=' are skipped.
func ParseNode(name string, r io.Reader) (NodeStats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	stats := NewNodeStats(name)
	for _, line := range strings.Split(string(data), "\n") {
		tokens := strings.Split(strings.TrimSpace(line), "=")
		if len(tokens) < 2 {
			continue
		}
		stats[tokens[0]] = tokens[1]
	}
	return stats, nil
}

// Load reads every regular file in dir. Nodes are ordered by node name.
func Load(dir string) ([]NodeStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats directory: %w", err)
	}

	nodes := make([]NodeStats, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		node, err := loadNode(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Name() < nodes[j].Name()
	})
	return nodes, nil
}

func loadNode(path string) (NodeStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open node stats: %w", err)
	}
	defer func() { _ = file.Close() }()

	name := strings.TrimSuffix(filepath.Base(path), ".txt")
	stats, err := ParseNode(name, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return stats, nil
}
