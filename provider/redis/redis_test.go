package redis

import (
	"context"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/redcached/provider"
	"github.com/unkn0wn-root/redcached/provider/providertest"
)

// Runs against a live server only: REDCACHED_REDIS_ADDR=127.0.0.1:6379
func newLive(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("REDCACHED_REDIS_ADDR")
	if addr == "" {
		t.Skip("REDCACHED_REDIS_ADDR not set")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, DB: 15})
	if err := rdb.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	p, err := New(Config{Client: rdb, CloseClient: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestConformance(t *testing.T) {
	providertest.Run(t, func(t *testing.T) pr.Provider { return newLive(t) })
	providertest.RunCAS(t, func(t *testing.T) pr.CASProvider { return newLive(t) })
}

func TestNewRejectsNilClient(t *testing.T) {
	if _, err := New(Config{}); err != ErrNilClient {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}

func TestMatches(t *testing.T) {
	if !matches(nil, nil, false) {
		t.Fatalf("nil version must match an absent key")
	}
	if matches(nil, []byte("x"), true) {
		t.Fatalf("nil version must not match a present key")
	}
	v := snapshot{b: []byte("x")}
	if !matches(v, []byte("x"), true) || matches(v, []byte("y"), true) || matches(v, nil, false) {
		t.Fatalf("snapshot comparison is wrong")
	}
}
