// Package main implements the link telemetry relay entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ndnmap/linkrelay/internal/api"
	"github.com/ndnmap/linkrelay/internal/audit"
	"github.com/ndnmap/linkrelay/internal/config"
	"github.com/ndnmap/linkrelay/internal/linkfile"
	"github.com/ndnmap/linkrelay/internal/telemetry"
)

const Version = api.Version

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	log.Printf("Starting link relay v%s", Version)

	// Step 1: Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg.Logging)
	log.Println("Configuration loaded successfully")

	// Step 2: Initialize audit logger
	auditLogger, err := audit.NewLogger(cfg.Logging.AuditDir, audit.Rotation{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		log.Fatalf("Failed to initialize audit logger: %v", err)
	}
	log.Printf("Audit logger writing to %s", auditLogger.GetFilePath())

	// Step 3: Initialize link source and telemetry hub
	source := linkfile.NewFileSource(cfg.Files.Topology, cfg.Files.Stat)
	hub := telemetry.NewHub(cfg, source)
	hub.SetAuditLogger(auditLogger)
	log.Printf("Telemetry hub initialized (topology=%s stat=%s interval=%v)",
		cfg.Files.Topology, cfg.Files.Stat, cfg.Relay.PushInterval)

	// Step 4: Start relay server
	mux := http.NewServeMux()
	mux.Handle(cfg.Relay.Path, hub)
	relay := &http.Server{
		Addr:              cfg.Relay.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 2)
	go func() {
		log.Printf("Relay listening on ws://%s%s", relay.Addr, cfg.Relay.Path)
		if err := relay.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("relay server failed: %w", err)
		}
	}()

	// Step 5: Start admin API server
	var adminServer *api.Server
	if cfg.API.Addr != "" {
		adminServer = api.NewServer(hub, source, cfg.API.StatsDir, cfg.API.StaticDir)
		go func() {
			log.Printf("Admin API listening on http://%s/api/v1", cfg.API.Addr)
			if err := adminServer.Start(cfg.API.Addr); err != nil {
				serverErr <- err
			}
		}()
	} else {
		log.Println("Admin API disabled")
	}

	// Set up graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-shutdown:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		log.Printf("Server error: %v", err)
		exitCode = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Sessions first so subscribers get a going-away close frame.
	hub.Stop()
	log.Println("Telemetry hub stopped")

	if err := relay.Shutdown(ctx); err != nil {
		log.Printf("Error stopping relay server: %v", err)
	} else {
		log.Println("Relay server stopped gracefully")
	}

	if adminServer != nil {
		if err := adminServer.Stop(ctx); err != nil {
			log.Printf("Error stopping admin server: %v", err)
		} else {
			log.Println("Admin server stopped gracefully")
		}
	}

	if err := auditLogger.Close(); err != nil {
		log.Printf("Error closing audit logger: %v", err)
	}
	log.Println("Audit logger closed")

	log.Println("Link relay shutdown complete")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// setupLogging mirrors the process log into a rotated file when one is set.
func setupLogging(cfg config.LoggingConfig) {
	if cfg.File == "" {
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}))
}
