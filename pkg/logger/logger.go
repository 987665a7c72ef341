// Package logger provides the structured logger shared by all application
// components. It wraps logrus so call sites stay decoupled from the backend.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger carries a component name and structured fields through the
// application. The zero value is not usable; construct with New or NewDefault.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger writing to the given sink at the given level.
func New(component string, out io.Writer, level logrus.Level) *Logger {
	base := logrus.New()
	base.SetOutput(out)
	base.SetLevel(level)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{entry: base.WithField("component", component)}
}

// NewDefault creates a logger for the named component with stderr output at
// info level. Components accept a nil *Logger and fall back to this.
func NewDefault(component string) *Logger {
	return New(component, os.Stderr, logrus.InfoLevel)
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *Logger {
	return New("test", io.Discard, logrus.PanicLevel)
}

// WithField returns a logger with an additional structured field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithError returns a logger with the error attached as a field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

func (l *Logger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *Logger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...interface{}) { l.entry.Error(args...) }
