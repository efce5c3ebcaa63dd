// Package sloghooks reports redcached hook events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/redcached"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	ConflictEvery  uint64
	WrongTypeEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	conflictCtr  atomic.Uint64
	wrongTypeCtr atomic.Uint64
}

var _ redcached.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) WrongType(key string, want, got redcached.Type) {
	if h.l == nil || !sample(h.opts.WrongTypeEvery, &h.wrongTypeCtr) {
		return
	}
	h.l.Debug("redcached.wrong_type",
		"key", h.redact(key),
		"want", want.String(),
		"got", got.String())
}

func (h *Hooks) CorruptEnvelope(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("redcached.corrupt_envelope",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("redcached.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) CollectionEmptied(key string, t redcached.Type) {
	if h.l == nil {
		return
	}
	h.l.Debug("redcached.collection_emptied",
		"key", h.redact(key),
		"type", t.String())
}

func (h *Hooks) CASConflict(key string, attempt int) {
	if h.l == nil || !sample(h.opts.ConflictEvery, &h.conflictCtr) {
		return
	}
	h.l.Info("redcached.cas_conflict",
		"key", h.redact(key),
		"attempt", attempt)
}
