package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Backend.Kind)
	assert.Equal(t, []string{"127.0.0.1:11211"}, cfg.Backend.Addrs)
	assert.Equal(t, 500*time.Millisecond, cfg.Backend.Timeout)
	assert.Equal(t, "msgpack", cfg.Codec.Format)
	assert.Equal(t, 1<<20, cfg.Codec.MaxPayload)
	assert.Equal(t, 8, cfg.Client.MaxCASRetries)
	assert.False(t, cfg.Client.Strict)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
backend:
  kind: bolt
  path: /tmp/x.db
codec:
  format: cbor
client:
  namespace: app
  ttl: 90s
  strict: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("REDCACHED_CLIENT_NAMESPACE", "fromenv")
	t.Setenv("REDCACHED_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "bolt", cfg.Backend.Kind)
	assert.Equal(t, "/tmp/x.db", cfg.Backend.Path)
	assert.Equal(t, "cbor", cfg.Codec.Format)
	assert.Equal(t, 90*time.Second, cfg.Client.TTL)
	assert.True(t, cfg.Client.Strict)
	assert.Equal(t, "fromenv", cfg.Client.Namespace)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsUnknownKinds(t *testing.T) {
	t.Setenv("REDCACHED_BACKEND_KIND", "etcd")
	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "backend.kind")
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Backend: BackendConfig{Kind: "redis"},
		Codec:   CodecConfig{Format: "yaml"},
	}
	assert.ErrorContains(t, cfg.Validate(), "codec.format")

	cfg.Codec.Format = "protowire"
	cfg.Client.MaxCASRetries = -1
	assert.Error(t, cfg.Validate())

	cfg.Client.MaxCASRetries = 0
	assert.NoError(t, cfg.Validate())
}
