// Package logging builds the logrus logger used across fxrelay.
//
// The terminal belongs to the UI, so logs go to a rotating file instead of
// stdout. An empty path discards everything.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how much the logger writes.
type Options struct {
	// Path of the log file. Empty disables file logging.
	Path string
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
}

// New creates a logger configured from opts. The returned closer flushes and
// closes the underlying file and must be called on shutdown.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetLevel(ParseLevel(opts.Level))
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if opts.Path == "" {
		log.SetOutput(io.Discard)
		return log, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 5
	}
	backups := opts.MaxBackups
	if backups <= 0 {
		backups = 3
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    maxSize,
		MaxBackups: backups,
		Compress:   true,
	}
	log.SetOutput(rotator)
	return log, rotator, nil
}

// Discard returns a logger that drops every entry. Components fall back to
// it when no logger is configured.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// ParseLevel maps a level name to a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
