package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unkn0wn-root/redcached"
)

func newBuffered(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(l, opts), &buf
}

func TestKeysAreRedacted(t *testing.T) {
	h, buf := newBuffered(Options{})
	h.CorruptEnvelope("app:secret-user-id", errors.New("bad header"))

	out := buf.String()
	assert.Contains(t, out, "redcached.corrupt_envelope")
	assert.Contains(t, out, "bad header")
	assert.NotContains(t, out, "secret-user-id")
}

func TestCustomRedactor(t *testing.T) {
	h, buf := newBuffered(Options{Redact: func(k string) string { return "<" + k + ">" }})
	h.WrongType("k", redcached.TypeHash, redcached.TypeString)

	assert.Contains(t, buf.String(), "key=<k>")
	assert.Contains(t, buf.String(), "want=hash")
	assert.Contains(t, buf.String(), "got=string")
}

func TestConflictSampling(t *testing.T) {
	h, buf := newBuffered(Options{ConflictEvery: 3})
	for i := 1; i <= 9; i++ {
		h.CASConflict("k", i)
	}
	assert.Equal(t, 3, strings.Count(buf.String(), "redcached.cas_conflict"))
}

func TestNilLoggerIsSilent(t *testing.T) {
	h := New(nil, Options{})
	assert.NotPanics(t, func() {
		h.ProviderSetRejected("k")
		h.CollectionEmptied("k", redcached.TypeSet)
	})
}
