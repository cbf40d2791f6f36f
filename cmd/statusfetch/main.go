// Package main implements the router status page fetcher.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndnmap/linkrelay/internal/config"
	"github.com/ndnmap/linkrelay/internal/fetcher"
)

func main() {
	fc, err := config.LoadFetcher("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	settings, err := parseFlags(os.Args[1:], *fc)
	if err != nil {
		log.Fatalf("Invalid fetcher settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := fetcher.New(settings)
	log.Printf("Fetching %s into %s every %v", f.URL(), settings.OutputFile, settings.Interval)
	if err := f.Run(ctx); err != nil {
		log.Fatalf("Fetcher stopped: %v", err)
	}
	log.Println("Status fetcher stopped")
}

// parseFlags applies command line flags over the configured settings. The
// interval is only replaced when -t/--time is given, so a configured
// sub-second interval survives.
func parseFlags(args []string, fc config.FetcherConfig) (config.FetcherConfig, error) {
	fs := flag.NewFlagSet("statusfetch", flag.ContinueOnError)

	seconds := fc.Interval.Seconds()
	fs.StringVar(&fc.PageURL, "u", fc.PageURL, "status page url (host:port or full url)")
	fs.StringVar(&fc.PageURL, "page-url", fc.PageURL, "status page url (host:port or full url)")
	fs.StringVar(&fc.OutputFile, "o", fc.OutputFile, "output file")
	fs.StringVar(&fc.OutputFile, "output-file", fc.OutputFile, "output file")
	fs.Float64Var(&seconds, "t", seconds, "seconds between fetches")
	fs.Float64Var(&seconds, "time", seconds, "seconds between fetches")

	if err := fs.Parse(args); err != nil {
		return fc, err
	}
	if fs.NArg() > 0 {
		return fc, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" || f.Name == "time" {
			fc.Interval = time.Duration(seconds * float64(time.Second))
		}
	})

	if err := config.ValidateFetcher(&fc); err != nil {
		return fc, err
	}
	return fc, nil
}
