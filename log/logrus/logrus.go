// Package logrus adapts a *logrus.Entry to redcached.Logger.
//
// redcached logs command-level events (an undecodable envelope, a write the
// backend refused, a strict-mode retry) with the key and op as fields; they
// become logrus fields on the entry, so a pre-scoped entry such as
// log.WithField("component", "cache") keeps its context on every line.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/redcached"
)

var _ redcached.Logger = LogrusLogger{}

// LogrusLogger writes through E, which must not be nil.
type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) Debug(msg string, f redcached.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f redcached.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f redcached.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f redcached.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
