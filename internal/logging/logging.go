// Package logging owns the process-wide logger.
//
// Init must be called once before any stage is built, and Close once the pipeline is done. Stages never reach the
// shared logger by themselves: the runner hands it to them at construction.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config describes the shared logger.
type Config struct {
	// Level is one of debug, info, warn or error. It defaults to info.
	Level string `yaml:"level"`
	// Format is text or json. It defaults to text.
	Format string `yaml:"format"`
	// File receives the logs instead of stderr when set. It is appended to.
	File string `yaml:"file"`
	// Output overrides both File and stderr.
	Output io.Writer `yaml:"-"`
}

var (
	mu       sync.Mutex
	shared   *slog.Logger
	previous *slog.Logger
	closer   io.Closer
)

// ParseLevel converts a level name, case insensitive. An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.Wrapf(ErrUnknownLevel, "%q", name)
	}
}

// Validate checks the level and the format without creating anything.
func (c Config) Validate() error {
	_, err := ParseLevel(c.Level)
	if err != nil {
		return err
	}

	switch c.Format {
	case "", FormatText, FormatJSON:
		return nil
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", c.Format)
	}
}

// Init creates the shared logger and makes it the slog default. A logger created by a previous call is closed first.
func Init(cfg Config) (*slog.Logger, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	level, _ := ParseLevel(cfg.Level)

	mu.Lock()
	defer mu.Unlock()

	err = closeLocked()
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr

		if cfg.File != "" {
			file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, errors.Wrapf(err, "unable to open log file %s", cfg.File)
			}

			out = file
			closer = file
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	}

	previous = slog.Default()
	shared = slog.New(handler)
	slog.SetDefault(shared)

	return shared, nil
}

// Shared returns the logger created by Init, or slog.Default() before Init.
func Shared() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if shared == nil {
		return slog.Default()
	}

	return shared
}

// Close releases the log file, if any, and restores the slog default in place before Init.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	return closeLocked()
}

func closeLocked() error {
	if shared != nil {
		slog.SetDefault(previous)
		shared = nil
	}

	if closer == nil {
		return nil
	}

	err := closer.Close()
	closer = nil

	return errors.Wrap(err, "unable to close log file")
}
