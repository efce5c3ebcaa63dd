package logrus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/redcached"
)

func TestLogrusLogger(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := LogrusLogger{E: logrus.NewEntry(base).WithField("component", "redcached")}

	l.Debug("compare-and-set lost a race; retrying", redcached.Fields{"key": "k", "attempt": 1})
	l.Warn("undecodable envelope", nil)

	require.Len(t, hook.Entries, 2)
	first := hook.Entries[0]
	assert.Equal(t, logrus.DebugLevel, first.Level)
	assert.Equal(t, "k", first.Data["key"])
	assert.Equal(t, 1, first.Data["attempt"])
	assert.Equal(t, "redcached", first.Data["component"])
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
