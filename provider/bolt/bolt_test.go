package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pr "github.com/unkn0wn-root/redcached/provider"
	"github.com/unkn0wn-root/redcached/provider/providertest"
)

func openTemp(t *testing.T) *Bolt {
	t.Helper()
	p, err := Open(Config{Path: filepath.Join(t.TempDir(), "redcached.db")})
	require.NoError(t, err)
	return p
}

func TestConformance(t *testing.T) {
	providertest.Run(t, func(t *testing.T) pr.Provider { return openTemp(t) })
	providertest.RunCAS(t, func(t *testing.T) pr.CASProvider { return openTemp(t) })
}

func TestSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	p, err := Open(Config{Path: path, Bucket: "b"})
	require.NoError(t, err)
	_, err = p.Set(ctx, "k", []byte("v"), 1, 0)
	require.NoError(t, err)
	require.NoError(t, p.Close(ctx))

	p, err = Open(Config{Path: path, Bucket: "b"})
	require.NoError(t, err)
	defer p.Close(ctx)
	got, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestExpiredRecordIsAbsentAndCreatable(t *testing.T) {
	ctx := context.Background()
	p := openTemp(t)
	defer p.Close(ctx)

	now := time.Unix(10_000, 0)
	p.now = func() time.Time { return now }

	_, err := p.Set(ctx, "k", []byte("v"), 1, time.Second)
	require.NoError(t, err)
	now = now.Add(5 * time.Second)

	_, ver, ok, err := p.GetVersioned(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ver)

	swapped, err := p.CompareAndSet(ctx, "k", []byte("fresh"), nil, 1, 0)
	require.NoError(t, err)
	assert.True(t, swapped, "an expired record counts as absent")
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
