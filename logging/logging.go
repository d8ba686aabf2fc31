// Package logging provides the *logrus.Logger shared by the holdings packages.
package logging

import (
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// logger holds the package-level logger instance.
// Defaults to nil, which causes Logger() to return logrus' standard logger.
var logger atomic.Pointer[logrus.Logger]

// SetLogger configures the package-level logger.
// Pass nil to restore logrus' standard logger.
//
// SetLogger is safe for concurrent use.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	logger.Store(l)
}

// Logger returns the package-level logger.
//
// Logger is safe for concurrent use.
func Logger() *logrus.Logger {
	l := logger.Load()
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}

// New creates a logger writing to w at the given level ("debug", "info", "warn", "error").
// An unknown level falls back to info. json selects the JSON formatter instead of text.
func New(w io.Writer, level string, json bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return l
}

// Discard returns a logger that drops every entry, handy in tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
