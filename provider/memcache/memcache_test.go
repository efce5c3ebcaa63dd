package memcache

import (
	"os"
	"strings"
	"testing"
	"time"

	mc "github.com/bradfitz/gomemcache/memcache"

	pr "github.com/unkn0wn-root/redcached/provider"
	"github.com/unkn0wn-root/redcached/provider/providertest"
)

// Runs against a live server only: REDCACHED_MEMCACHE_ADDR=127.0.0.1:11211
func newLive(t *testing.T) *Memcache {
	t.Helper()
	addr := os.Getenv("REDCACHED_MEMCACHE_ADDR")
	if addr == "" {
		t.Skip("REDCACHED_MEMCACHE_ADDR not set")
	}
	c := mc.New(addr)
	if err := c.FlushAll(); err != nil {
		t.Fatalf("flush_all: %v", err)
	}
	return NewWithClient(c)
}

func TestConformance(t *testing.T) {
	providertest.Run(t, func(t *testing.T) pr.Provider { return newLive(t) })
	providertest.RunCAS(t, func(t *testing.T) pr.CASProvider { return newLive(t) })
}

func TestNewNeedsServers(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without servers")
	}
}

func TestExpiration(t *testing.T) {
	cases := map[time.Duration]int32{
		0:                       0,
		-time.Second:            0,
		time.Millisecond:        1,
		time.Second:             1,
		1500 * time.Millisecond: 2,
		time.Hour:               3600,
	}
	for in, want := range cases {
		if got := expiration(in); got != want {
			t.Fatalf("expiration(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestKeyCompactsIllegalKeys(t *testing.T) {
	long := strings.Repeat("k", 300)
	if got := key(long); !strings.HasPrefix(got, hashedKeyPrefix) {
		t.Fatalf("long key not compacted: %q", got)
	}
	if got := key("user:1"); got != "user:1" {
		t.Fatalf("legal key rewritten: %q", got)
	}
}
