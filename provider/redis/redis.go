package redis

import (
	"bytes"
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/redcached/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// Redis stores raw envelopes as plain Redis strings. Only GET/SET/DEL are
// used, plus WATCH/MULTI for compare-and-set; native Redis types are never touched.
type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ pr.CASProvider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0 // non-positive TTLs mean "no expiry"
	}
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

// snapshot is the Version handed out by GetVersioned: the bytes that were read.
// Comparing values rather than a revision means an A->B->A change goes unnoticed,
// which is harmless here because the write is computed from A either way.
type snapshot struct{ b []byte }

func (p *Redis) GetVersioned(ctx context.Context, key string) ([]byte, pr.Version, bool, error) {
	b, ok, err := p.Get(ctx, key)
	if err != nil || !ok {
		return nil, nil, false, err
	}
	return b, snapshot{b: b}, true, nil
}

func (p *Redis) CompareAndSet(ctx context.Context, key string, value []byte, ver pr.Version, _ int64, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	return p.conditional(ctx, key, ver, func(pipe goredis.Pipeliner) {
		pipe.Set(ctx, key, value, ttl)
	})
}

func (p *Redis) CompareAndDelete(ctx context.Context, key string, ver pr.Version) (bool, error) {
	if ver == nil {
		return false, nil
	}
	return p.conditional(ctx, key, ver, func(pipe goredis.Pipeliner) {
		pipe.Del(ctx, key)
	})
}

// conditional runs write inside MULTI/EXEC while WATCHing key, after checking
// the current value still matches ver.
func (p *Redis) conditional(ctx context.Context, key string, ver pr.Version, write func(goredis.Pipeliner)) (bool, error) {
	swapped := false
	err := p.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		present := true
		if err == goredis.Nil {
			present = false
		} else if err != nil {
			return err
		}
		if !matches(ver, cur, present) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			write(pipe)
			return nil
		})
		if err == nil {
			swapped = true
		}
		return err
	}, key)
	if errors.Is(err, goredis.TxFailedErr) {
		return false, nil // key changed between WATCH and EXEC
	}
	if err != nil {
		return false, err
	}
	return swapped, nil
}

func matches(ver pr.Version, cur []byte, present bool) bool {
	if ver == nil {
		return !present
	}
	s, ok := ver.(snapshot)
	return ok && present && bytes.Equal(s.b, cur)
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
