// Package logging writes per-invocation debug logs for mem.
// Each process gets one session id; every component opened during that
// process appends to the same <session-id>-mem.log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// EnvLogDir overrides the log directory. EnvLogLevel sets the minimum level
// ("debug", "info", "warn", "error").
const (
	EnvLogDir   = "MEM_LOG_DIR"
	EnvLogLevel = "MEM_LOG_LEVEL"
)

// Logger is a session log file with a slog front end.
type Logger struct {
	sessionID string
	component string
	path      string
	file      *os.File
	slog      *slog.Logger
	closeOnce sync.Once
}

var (
	sessionID     string
	sessionIDOnce sync.Once
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// Dir returns the log directory, creating it if needed.
// MEM_LOG_DIR wins over ~/.mem/logs.
func Dir() (string, error) {
	dir := os.Getenv(EnvLogDir)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".mem", "logs")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return dir, nil
}

// Level reads MEM_LOG_LEVEL, defaulting to debug.
func Level() slog.Level {
	var lvl slog.Level
	raw := strings.TrimSpace(os.Getenv(EnvLogLevel))
	if raw == "" {
		return slog.LevelDebug
	}
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelDebug
	}
	return lvl
}

// New opens the session log for component.
//
// When the file cannot be opened it returns a logger that only passes
// warnings and errors to stderr, together with the error, so the caller
// can carry on.
func New(component string) (*Logger, error) {
	dir, err := Dir()
	if err != nil {
		return newFallback(component), err
	}

	sessID := getSessionID()
	path := filepath.Join(dir, fmt.Sprintf("%s-mem.log", sessID))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return newFallback(component), fmt.Errorf("failed to open log file: %w", err)
	}

	h := slog.NewTextHandler(file, &slog.HandlerOptions{Level: Level()})
	return &Logger{
		sessionID: sessID,
		component: component,
		path:      path,
		file:      file,
		slog:      slog.New(h).With("component", component, "session", sessID),
	}, nil
}

func newFallback(component string) *Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		slog:      slog.New(h).With("component", component),
	}
}

// Slog returns the structured logger bound to this session and component.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Writer returns the underlying log file, or stderr in fallback mode.
func (l *Logger) Writer() io.Writer {
	if l.file != nil {
		return l.file
	}
	return os.Stderr
}

func (l *Logger) SessionID() string { return l.sessionID }

// Path is empty in fallback mode.
func (l *Logger) Path() string { return l.path }

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
