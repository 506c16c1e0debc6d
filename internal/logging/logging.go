// ABOUTME: Structured logger construction for chainjournal.
// ABOUTME: Fans slog records out to stderr text and an optional JSON log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel maps a config level name to a slog level. Empty means warn.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("unknown log level %q", level)
	}
}

// New builds a logger writing text records to console and, when file is set,
// JSON records to file. The returned closer releases the file handle.
func New(level string, console io.Writer, file string) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	text := slog.NewTextHandler(console, opts)

	if file == "" {
		return slog.New(text), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := slog.New(slogmulti.Fanout(
		text,
		slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}),
	))
	return logger, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
