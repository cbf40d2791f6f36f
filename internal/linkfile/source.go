package linkfile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUnavailable reports that an input file could not be opened or read.
var ErrUnavailable = errors.New("link file unavailable")

// FileSource reads the topology and stat files from fixed paths. Every call
// re-reads the file; concurrent use is safe since nothing is shared.
type FileSource struct {
	TopologyPath string
	StatPath     string
}

// NewFileSource creates a source over the given paths.
func NewFileSource(topologyPath, statPath string) *FileSource {
	return &FileSource{TopologyPath: topologyPath, StatPath: statPath}
}

// Topology parses the topology file as it is now.
func (s *FileSource) Topology() ([]Link, error) {
	var links []Link
	err := readFile(s.TopologyPath, func(r io.Reader) (err error) {
		links, err = ParseTopology(r)
		return err
	})
	return links, err
}

// Snapshot parses the stat file as it is now.
func (s *FileSource) Snapshot() ([]StatRecord, error) {
	var records []StatRecord
	err := readFile(s.StatPath, func(r io.Reader) (err error) {
		records, err = ParseStats(r)
		return err
	})
	return records, err
}

func readFile(path string, parse func(r io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, path, err)
	}
	defer func() { _ = file.Close() }()

	if err := parse(file); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, path, err)
	}
	return nil
}
