package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/redcached"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	h := stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo})
	l := Logger{L: stdslog.New(h)}

	l.Debug("dropped", redcached.Fields{"key": "k"})
	l.Warn("hash emptied; deleting key", redcached.Fields{"key": "k", "op": "hdel"})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "hash emptied; deleting key", rec["msg"])
	assert.Equal(t, "hdel", rec["op"])
}

func TestSlogLoggerSortsFields(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewTextHandler(&buf, nil))}

	l.Info("cas conflict", redcached.Fields{"op": "hincrby", "attempt": 2, "key": "k"})
	line := buf.String()
	a, k, o := strings.Index(line, "attempt="), strings.Index(line, "key="), strings.Index(line, "op=")
	require.True(t, a >= 0 && k >= 0 && o >= 0, line)
	assert.True(t, a < k && k < o, line)
}
