// Package obslog provides the structured logger every node and fabric
// component logs through, backed by logrus.
package obslog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry so call sites can attach node/fabric
// identity once and reuse it across every log line.
type Logger struct {
	entry *logrus.Entry
}

// Default returns a Logger writing structured (JSON) output to stderr
// at info level, the same baseline every chassis.InProcess wiring uses
// unless overridden.
func Default() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return &Logger{entry: logrus.NewEntry(l)}
}

// New wraps an already-configured *logrus.Logger, for callers who want
// their own output/level/formatter policy.
func New(base *logrus.Logger) *Logger {
	return &Logger{entry: logrus.NewEntry(base)}
}

// With returns a Logger that attaches field=value to every line it
// logs, without mutating the receiver.
func (l *Logger) With(field string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(field, value)}
}

func (l *Logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
