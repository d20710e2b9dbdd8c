// Package telemetry wraps logrus in a small leveled Logger that planning
// components accept, with With for attaching structured fields. Library code
// defaults to a no-op logger when the caller supplies none, so importing
// this package never forces log output on a consumer that doesn't want
// it.
package telemetry

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logging handle passed down from the CLI (or
// a caller's orchestration code) into every planning component.
type Logger struct {
	entry *logrus.Entry
}

// New returns a Logger writing to w at the given level.
func New(w io.Writer, level logrus.Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return Logger{entry: logrus.NewEntry(l)}
}

// Noop returns a Logger that discards everything, the default for
// library code used without an explicit logger.
func Noop() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return Logger{entry: logrus.NewEntry(l)}
}

// With returns a Logger with an additional structured field attached to
// every subsequent call.
func (l Logger) With(key string, value any) Logger {
	if l.entry == nil {
		return Noop().With(key, value)
	}
	return Logger{entry: l.entry.WithField(key, value)}
}

func (l Logger) ready() *logrus.Entry {
	if l.entry == nil {
		return Noop().entry
	}
	return l.entry
}

// Debug logs a debug-level diagnostic, used for cache stats and
// skip-silently decisions.
func (l Logger) Debug(msg string) { l.ready().Debug(msg) }

// Info logs an info-level message, used for top-level progress.
func (l Logger) Info(msg string) { l.ready().Info(msg) }

// Warn logs a warn-level message.
func (l Logger) Warn(msg string) { l.ready().Warn(msg) }

// Error logs an error-level message.
func (l Logger) Error(msg string) { l.ready().Error(msg) }
