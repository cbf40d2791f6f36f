// Package fetcher polls a router status page and mirrors it to a local file.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ndnmap/linkrelay/internal/config"
)

// Fetcher copies the status page to OutputFile once per Interval.
type Fetcher struct {
	url      string
	output   string
	interval time.Duration
	client   *http.Client
}

// New creates a fetcher from validated settings. PageURL may omit the scheme.
func New(cfg config.FetcherConfig) *Fetcher {
	url := cfg.PageURL
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}
	return &Fetcher{
		url:      url,
		output:   cfg.OutputFile,
		interval: cfg.Interval,
		client:   &http.Client{Timeout: cfg.Interval + 10*time.Second},
	}
}

// URL returns the page being polled.
func (f *Fetcher) URL() string {
	return f.url
}

// Run fetches immediately and then after every interval until ctx is done.
// Failed fetches are logged and retried on the next round.
func (f *Fetcher) Run(ctx context.Context) error {
	for {
		if n, err := f.FetchOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("Fetch of %s failed: %v", f.url, err)
		} else {
			log.Printf("Wrote %s to %s", humanize.Bytes(uint64(n)), f.output)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(f.interval):
		}
	}
}

// FetchOnce downloads the page and replaces the output file atomically. It
// returns the number of bytes written.
func (f *Fetcher) FetchOnce(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return writeAtomic(f.output, resp.Body)
}

func writeAtomic(path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("failed to read page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return n, nil
}
