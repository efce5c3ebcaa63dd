// Package memcache adapts a memcached cluster (via bradfitz/gomemcache) to
// the provider contract. Server selection across the configured addresses is
// the client library's job.
package memcache

import (
	"context"
	"errors"
	"time"

	mc "github.com/bradfitz/gomemcache/memcache"

	"github.com/unkn0wn-root/redcached/internal/util"
	pr "github.com/unkn0wn-root/redcached/provider"
)

const hashedKeyPrefix = "rcd:h:"

// Memcache uses memcached gets/cas for compare-and-set.
type Memcache struct {
	c *mc.Client
}

var _ pr.CASProvider = (*Memcache)(nil)

type Config struct {
	Servers      []string
	Timeout      time.Duration // 0 => gomemcache default (500ms)
	MaxIdleConns int           // 0 => gomemcache default (2)
}

func New(cfg Config) (*Memcache, error) {
	if len(cfg.Servers) == 0 {
		return nil, errors.New("memcache provider: no servers")
	}
	c := mc.New(cfg.Servers...)
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	if cfg.MaxIdleConns > 0 {
		c.MaxIdleConns = cfg.MaxIdleConns
	}
	return &Memcache{c: c}, nil
}

func NewWithClient(c *mc.Client) *Memcache { return &Memcache{c: c} }

func key(k string) string { return util.MemcacheKey(hashedKeyPrefix, k) }

// expiration converts ttl to memcached's relative seconds; sub-second TTLs round up.
func expiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	s := int32((ttl + time.Second - 1) / time.Second)
	return max(s, 1)
}

func (p *Memcache) Get(ctx context.Context, k string) ([]byte, bool, error) {
	v, _, ok, err := p.GetVersioned(ctx, k)
	return v, ok, err
}

// Set maps NOT_STORED to ok=false. Oversized values come back as a server
// error and are returned as err.
func (p *Memcache) Set(_ context.Context, k string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	err := p.c.Set(&mc.Item{Key: key(k), Value: value, Expiration: expiration(ttl)})
	if errors.Is(err, mc.ErrNotStored) {
		return false, nil
	}
	return err == nil, err
}

func (p *Memcache) Del(_ context.Context, k string) error {
	err := p.c.Delete(key(k))
	if errors.Is(err, mc.ErrCacheMiss) {
		return nil
	}
	return err
}

func (p *Memcache) Close(context.Context) error { return nil }

// GetVersioned hands out the fetched *mc.Item as the version; it carries the CAS id.
func (p *Memcache) GetVersioned(_ context.Context, k string) ([]byte, pr.Version, bool, error) {
	it, err := p.c.Get(key(k))
	if errors.Is(err, mc.ErrCacheMiss) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	return it.Value, it, true, nil
}

func (p *Memcache) CompareAndSet(_ context.Context, k string, value []byte, ver pr.Version, _ int64, ttl time.Duration) (bool, error) {
	if ver == nil {
		err := p.c.Add(&mc.Item{Key: key(k), Value: value, Expiration: expiration(ttl)})
		return casResult(err)
	}
	it, ok := ver.(*mc.Item)
	if !ok {
		return false, errors.New("memcache provider: foreign version token")
	}
	next := *it
	next.Value = value
	next.Expiration = expiration(ttl)
	return casResult(p.c.CompareAndSwap(&next))
}

// CompareAndDelete has no native counterpart in memcached. A CAS write with a
// negative expiration replaces the item with one that is already expired.
func (p *Memcache) CompareAndDelete(_ context.Context, k string, ver pr.Version) (bool, error) {
	it, ok := ver.(*mc.Item)
	if !ok || it == nil {
		return false, nil
	}
	next := *it
	next.Value = nil
	next.Expiration = -1
	return casResult(p.c.CompareAndSwap(&next))
}

func casResult(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mc.ErrCASConflict), errors.Is(err, mc.ErrNotStored), errors.Is(err, mc.ErrCacheMiss):
		return false, nil
	default:
		return false, err
	}
}
