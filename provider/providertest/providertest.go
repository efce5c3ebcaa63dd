// Package providertest is a conformance suite for provider implementations.
package providertest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pr "github.com/unkn0wn-root/redcached/provider"
)

// Factory returns a fresh, empty provider. The suite closes it.
type Factory func(t *testing.T) pr.Provider

// Run checks the byte-store contract every provider must meet.
func Run(t *testing.T, newProvider Factory) {
	ctx := context.Background()

	open := func(t *testing.T) pr.Provider {
		p := newProvider(t)
		t.Cleanup(func() { _ = p.Close(ctx) })
		return p
	}

	t.Run("MissIsNotAnError", func(t *testing.T) {
		p := open(t)
		v, ok, err := p.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("ByteTransparent", func(t *testing.T) {
		p := open(t)
		values := [][]byte{
			[]byte("plain"),
			{0x00, 'R', 'C', 'D', 1, 2, 0, 0, 0, 0},
			{0xff, 0x00, 0x7f, '\n', ' '},
			[]byte("12345"),
		}
		for i, want := range values {
			key := fmt.Sprintf("k%d", i)
			ok, err := p.Set(ctx, key, want, 1, 0)
			require.NoError(t, err)
			require.True(t, ok, "set %s rejected", key)

			got, ok, err := p.Get(ctx, key)
			require.NoError(t, err)
			require.True(t, ok, "get %s missed", key)
			assert.Equal(t, want, got)
		}
	})

	t.Run("OverwriteAndDelete", func(t *testing.T) {
		p := open(t)
		_, err := p.Set(ctx, "k", []byte("one"), 1, 0)
		require.NoError(t, err)
		_, err = p.Set(ctx, "k", []byte("two"), 1, 0)
		require.NoError(t, err)

		got, ok, err := p.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("two"), got)

		require.NoError(t, p.Del(ctx, "k"))
		_, ok, err = p.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.NoError(t, p.Del(ctx, "never-written"))
	})

	t.Run("LongTTLKeepsValue", func(t *testing.T) {
		p := open(t)
		ok, err := p.Set(ctx, "ttl", []byte("v"), 1, time.Hour)
		require.NoError(t, err)
		require.True(t, ok)
		_, ok, err = p.Get(ctx, "ttl")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

// RunCAS checks the conditional-write contract of a CASProvider.
func RunCAS(t *testing.T, newProvider func(t *testing.T) pr.CASProvider) {
	ctx := context.Background()

	open := func(t *testing.T) pr.CASProvider {
		p := newProvider(t)
		t.Cleanup(func() { _ = p.Close(ctx) })
		return p
	}

	t.Run("CreateOnlyWhenAbsent", func(t *testing.T) {
		p := open(t)
		v, ver, ok, err := p.GetVersioned(ctx, "k")
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, v)
		require.Nil(t, ver)

		swapped, err := p.CompareAndSet(ctx, "k", []byte("a"), nil, 1, 0)
		require.NoError(t, err)
		require.True(t, swapped)

		swapped, err = p.CompareAndSet(ctx, "k", []byte("b"), nil, 1, 0)
		require.NoError(t, err)
		assert.False(t, swapped, "create-only write must not replace an existing value")

		got, ok, err := p.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("a"), got)
	})

	t.Run("StaleVersionLoses", func(t *testing.T) {
		p := open(t)
		_, err := p.Set(ctx, "k", []byte("v1"), 1, 0)
		require.NoError(t, err)

		_, ver, ok, err := p.GetVersioned(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)

		// another writer sneaks in
		_, err = p.Set(ctx, "k", []byte("v2"), 1, 0)
		require.NoError(t, err)

		swapped, err := p.CompareAndSet(ctx, "k", []byte("mine"), ver, 1, 0)
		require.NoError(t, err)
		assert.False(t, swapped)

		_, ver, _, err = p.GetVersioned(ctx, "k")
		require.NoError(t, err)
		swapped, err = p.CompareAndSet(ctx, "k", []byte("mine"), ver, 1, 0)
		require.NoError(t, err)
		assert.True(t, swapped)

		got, _, err := p.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("mine"), got)
	})

	t.Run("CompareAndDelete", func(t *testing.T) {
		p := open(t)
		_, err := p.Set(ctx, "k", []byte("v1"), 1, 0)
		require.NoError(t, err)
		_, stale, _, err := p.GetVersioned(ctx, "k")
		require.NoError(t, err)

		_, err = p.Set(ctx, "k", []byte("v2"), 1, 0)
		require.NoError(t, err)
		deleted, err := p.CompareAndDelete(ctx, "k", stale)
		require.NoError(t, err)
		assert.False(t, deleted)

		_, cur, _, err := p.GetVersioned(ctx, "k")
		require.NoError(t, err)
		deleted, err = p.CompareAndDelete(ctx, "k", cur)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, ok, err := p.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
