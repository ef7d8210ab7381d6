// Package logging provides the default zerolog-backed schemas.Logger
// implementation used when callers don't supply their own.
package logging

import (
	"errors"
	"os"
	"time"

	"github.com/lytixlabs/optimodel/schemas"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// OutputType selects the wire format of log lines.
type OutputType string

const (
	OutputJSON   OutputType = "json"
	OutputPretty OutputType = "pretty"
)

// DefaultLogger implements schemas.Logger over two zerolog loggers: one for
// stdout (debug/info/warn) and one for stderr (error/fatal).
type DefaultLogger struct {
	stdout zerolog.Logger
	stderr zerolog.Logger
}

func toZerologLevel(l schemas.LogLevel) zerolog.Level {
	switch l {
	case schemas.LogLevelDebug:
		return zerolog.DebugLevel
	case schemas.LogLevelInfo:
		return zerolog.InfoLevel
	case schemas.LogLevelWarn:
		return zerolog.WarnLevel
	case schemas.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a DefaultLogger at the given level, writing JSON lines.
func New(level schemas.LogLevel) *DefaultLogger {
	zerolog.SetGlobalLevel(toZerologLevel(level))
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	return &DefaultLogger{
		stdout: zerolog.New(os.Stdout).With().Timestamp().Logger(),
		stderr: zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
}

func (l *DefaultLogger) Debug(msg string) { l.stdout.Debug().Msg(msg) }
func (l *DefaultLogger) Info(msg string)  { l.stdout.Info().Msg(msg) }
func (l *DefaultLogger) Warn(msg string)  { l.stdout.Warn().Msg(msg) }

func (l *DefaultLogger) Error(err error) {
	if err == nil {
		l.stderr.Error().Msg("nil error")
		return
	}
	l.stderr.Error().Msg(err.Error())
}

func (l *DefaultLogger) Fatal(msg string, err error) {
	if err == nil {
		err = errors.New("nil error")
	}
	l.stderr.Fatal().Err(err).Msg(msg)
}

// SetOutputType switches between JSON and human-readable console output.
func (l *DefaultLogger) SetOutputType(t OutputType) {
	switch t {
	case OutputPretty:
		l.stdout = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
		l.stderr = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	default:
		l.stdout = zerolog.New(os.Stdout).With().Timestamp().Logger()
		l.stderr = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
