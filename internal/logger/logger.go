// Package logger holds the process logger. Packages log through the level
// helpers; main installs the console logger once config is known.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stderr).With().Timestamp().Logger()
	current.Store(&l)
}

// New returns a JSON logger writing to w, tagged with service.
func New(w io.Writer, service string, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// Console is New over a human-readable writer on stdout.
func Console(service string, debug bool) zerolog.Logger {
	return New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			return fmt.Sprintf("| %-6s|", i)
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("| %s", i)
		},
	}, service, debug)
}

// Init installs the console logger for the whole process.
func Init(service string, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.MessageFieldName = "message"

	Use(Console(service, debug))
	Debug().Msg("Logger initialized")
}

// Use replaces the process logger and returns a func restoring the previous one.
func Use(l zerolog.Logger) (restore func()) {
	prev := current.Swap(&l)
	return func() { current.Store(prev) }
}

// L returns the process logger.
func L() *zerolog.Logger {
	return current.Load()
}

func Debug() *zerolog.Event { return L().Debug() }

func Info() *zerolog.Event { return L().Info() }

func Warn() *zerolog.Event { return L().Warn() }

func Error() *zerolog.Event { return L().Error() }

// Gorm adapts the process logger to gorm's logger.Writer.
type Gorm struct{}

func (Gorm) Printf(format string, args ...interface{}) {
	L().Warn().Str("component", "gorm").Msgf(format, args...)
}
