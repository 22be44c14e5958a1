// Package logger sets up the JSON file log under .lessongen/logs.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jywlabs/lessongen/internal/template"
)

// FileName is the log file inside .lessongen/logs.
const FileName = "lessongen.log"

type Config struct {
	// Root is the directory holding .lessongen; empty means the working directory.
	Root  string
	Debug bool
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Setup opens the log file and returns a logger writing to it, plus a cleanup
// func that closes the file. Debug lowers the level and adds source locations.
func Setup(cfg Config) (*slog.Logger, func() error, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}

	dir := filepath.Join(filepath.Clean(root), template.Dir, template.LogsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Discard(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return Discard(), nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Debug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	})

	l := slog.New(h)
	l.Debug("logger initialized", "path", path)
	return l, f.Close, nil
}
