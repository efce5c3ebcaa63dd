// Package backend turns configuration into a provider and client options.
package backend

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/redcached"
	c "github.com/unkn0wn-root/redcached/codec"
	"github.com/unkn0wn-root/redcached/internal/config"
	pr "github.com/unkn0wn-root/redcached/provider"
	"github.com/unkn0wn-root/redcached/provider/bigcache"
	"github.com/unkn0wn-root/redcached/provider/bolt"
	"github.com/unkn0wn-root/redcached/provider/memcache"
	"github.com/unkn0wn-root/redcached/provider/memory"
	"github.com/unkn0wn-root/redcached/provider/redis"
	"github.com/unkn0wn-root/redcached/provider/ristretto"
)

// Open builds the provider named by cfg.Kind. The caller closes it.
func Open(ctx context.Context, cfg config.BackendConfig) (pr.Provider, error) {
	switch cfg.Kind {
	case "memory":
		return memory.New(), nil
	case "memcache":
		return opened(memcache.New(memcache.Config{Servers: cfg.Addrs, Timeout: cfg.Timeout}))
	case "redis":
		rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
			Addrs:        cfg.Addrs,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.Timeout,
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		})
		p, err := redis.New(redis.Config{Client: rdb, CloseClient: true})
		if err != nil {
			_ = rdb.Close()
			return nil, err
		}
		return p, nil
	case "bolt":
		return opened(bolt.Open(bolt.Config{Path: cfg.Path, Bucket: cfg.Bucket, OpenTimeout: cfg.Timeout}))
	case "bigcache":
		return opened(bigcache.New(ctx, bigcache.Config{Shards: cfg.Shards, HardMaxCacheSizeMB: cfg.MaxSizeMB}))
	case "ristretto":
		return opened(ristretto.New(ristretto.Config{NumCounters: cfg.NumCounters, MaxCost: cfg.MaxCost, BufferItems: 64}))
	default:
		return nil, fmt.Errorf("backend: unknown kind %q", cfg.Kind)
	}
}

// opened keeps a failed constructor's typed nil out of the interface.
func opened[P pr.Provider](p P, err error) (pr.Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Codecs returns the hash and set codecs for cfg.Format.
func Codecs(cfg config.CodecConfig) (c.Codec[redcached.Hash], c.Codec[redcached.Members], error) {
	switch cfg.Format {
	case "msgpack":
		return c.Msgpack[redcached.Hash]{}, c.Msgpack[redcached.Members]{}, nil
	case "json":
		return c.JSON[redcached.Hash]{}, c.JSON[redcached.Members]{}, nil
	case "protowire":
		return redcached.ProtoHash{}, redcached.ProtoMembers{}, nil
	case "cbor":
		h, err := c.NewCBOR[redcached.Hash](cfg.Deterministic)
		if err != nil {
			return nil, nil, err
		}
		m, err := c.NewCBOR[redcached.Members](cfg.Deterministic)
		if err != nil {
			return nil, nil, err
		}
		return h, m, nil
	default:
		return nil, nil, fmt.Errorf("backend: unknown codec %q", cfg.Format)
	}
}

// NewClient opens the configured provider and wraps it in a client. Closing
// the client closes the provider.
func NewClient(ctx context.Context, cfg *config.Config, log redcached.Logger, hooks redcached.Hooks) (redcached.Client, error) {
	hc, sc, err := Codecs(cfg.Codec)
	if err != nil {
		return nil, err
	}
	p, err := Open(ctx, cfg.Backend)
	if err != nil {
		return nil, err
	}
	opts := redcached.Options{
		Provider:      p,
		Namespace:     cfg.Client.Namespace,
		HashCodec:     hc,
		SetCodec:      sc,
		MaxPayload:    cfg.Codec.MaxPayload,
		Logger:        log,
		Hooks:         hooks,
		TTL:           cfg.Client.TTL,
		Strict:        cfg.Client.Strict,
		MaxCASRetries: cfg.Client.MaxCASRetries,
	}
	if cfg.Backend.Kind == "ristretto" {
		opts.ComputeSetCost = func(_ string, raw []byte) int64 { return int64(len(raw)) }
	}
	cl, err := redcached.New(opts)
	if err != nil {
		_ = p.Close(ctx)
		return nil, err
	}
	return cl, nil
}
