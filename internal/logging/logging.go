// internal/logging/logging.go
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/tamzrod/bms-poller/internal/config"
)

// New builds the process logger. Output goes to cfg.File as JSON when set,
// otherwise to stderr (human-readable on a terminal).
// The returned closer releases the log file.
func New(cfg config.LoggingConfig) (zerolog.Logger, func() error, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logging: %w", err)
		}
		level = l
	}

	out := io.Writer(os.Stderr)
	closeFn := func() error { return nil }

	switch {
	case cfg.File != "":
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logging: %w", err)
		}
		out = f
		closeFn = f.Close
	case isatty.IsTerminal(os.Stderr.Fd()):
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return NewWithWriter(out, level), closeFn, nil
}

// NewWithWriter builds a logger on an arbitrary writer.
func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
