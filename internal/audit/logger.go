package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/natefinch/lumberjack.v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Session lifecycle events.
const (
	EventOpen      = "open"
	EventStreaming = "streaming"
	EventClosed    = "closed"
	EventRejected  = "rejected"
)

// Outcome codes.
const (
	CodeOK                  = "OK"
	CodeTopologyUnavailable = "TOPOLOGY_UNAVAILABLE"
	CodeConnectionLost      = "CONNECTION_LOST"
	CodeShutdown            = "SHUTDOWN"
	CodeError               = "ERROR"
)

// Entry is one audit line.
type Entry struct {
	Timestamp    time.Time `json:"ts"`
	SessionID    string    `json:"sessionId"`
	Remote       string    `json:"remote"`
	Event        string    `json:"event"`
	Frames       uint64    `json:"frames"`
	Bytes        uint64    `json:"bytes"`
	TicksSkipped uint64    `json:"ticksSkipped"`
	DurationMs   int64     `json:"durationMs,omitempty"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// Rotation holds size-based rotation limits for the audit file.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger writes audit entries as JSON lines.
type Logger struct {
	mu       sync.Mutex
	filePath string
	out      io.Writer
	rotator  *lumberjack.Logger
}

// NewLogger creates an audit logger writing to <logDir>/sessions.jsonl.
func NewLogger(logDir string, rotation Rotation) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filePath := filepath.Join(logDir, "sessions.jsonl")
	rotator := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   rotation.Compress,
	}

	return &Logger{
		filePath: filePath,
		out:      rotator,
		rotator:  rotator,
	}, nil
}

// NewWriterLogger creates an audit logger over an arbitrary writer.
func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{out: w}
}

// LogSession records one session lifecycle event. A zero Timestamp is
// filled with the current time.
func (l *Logger) LogSession(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	l.writeEntry(entry)
}

// writeEntry writes an audit entry to the log.
func (l *Logger) writeEntry(entry Entry) {
	jsonData, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal audit entry: %v\n", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.out == nil {
		return
	}
	if _, err := l.out.Write(append(jsonData, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write audit entry: %v\n", err)
	}
}

// Close closes the underlying file, if any. Later entries are dropped.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.out = nil
	if l.rotator != nil {
		err := l.rotator.Close()
		l.rotator = nil
		return err
	}
	return nil
}

// GetFilePath returns the path to the audit log file.
func (l *Logger) GetFilePath() string {
	return l.filePath
}

// Rotate moves the current file aside and starts a new one.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rotator == nil {
		return fmt.Errorf("audit logger has no rotating file")
	}
	if err := l.rotator.Rotate(); err != nil {
		return fmt.Errorf("failed to rotate audit log: %w", err)
	}
	return nil
}
