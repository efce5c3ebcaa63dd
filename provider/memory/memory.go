// Package memory is an in-process Provider with compare-and-set support.
// It is the reference backend for tests and single-process use.
package memory

import (
	"context"
	"sync"
	"time"

	pr "github.com/unkn0wn-root/redcached/provider"
)

type entry struct {
	v   []byte
	ver uint64
	exp time.Time // zero => no TTL
}

type Memory struct {
	mu   sync.Mutex
	m    map[string]entry
	next uint64
	now  func() time.Time
}

var _ pr.CASProvider = (*Memory)(nil)

func New() *Memory {
	return &Memory{m: make(map[string]entry), now: time.Now}
}

// lookup returns the live entry for key, dropping it if expired. Caller holds mu.
func (p *Memory) lookup(key string) (entry, bool) {
	e, ok := p.m[key]
	if !ok {
		return entry{}, false
	}
	if !e.exp.IsZero() && p.now().After(e.exp) {
		delete(p.m, key)
		return entry{}, false
	}
	return e, true
}

// store writes a private copy of value. Caller holds mu.
func (p *Memory) store(key string, value []byte, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = p.now().Add(ttl)
	}
	p.next++
	p.m[key] = entry{v: append([]byte(nil), value...), ver: p.next, exp: exp}
}

func (p *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, _, ok, err := p.GetVersioned(ctx, key)
	return v, ok, err
}

func (p *Memory) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	p.store(key, value, ttl)
	p.mu.Unlock()
	return true, nil
}

func (p *Memory) Del(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.m, key)
	p.mu.Unlock()
	return nil
}

func (p *Memory) Close(context.Context) error { return nil }

func (p *Memory) GetVersioned(_ context.Context, key string) ([]byte, pr.Version, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.lookup(key)
	if !ok {
		return nil, nil, false, nil
	}
	return append([]byte(nil), e.v...), e.ver, true, nil
}

func (p *Memory) CompareAndSet(_ context.Context, key string, value []byte, ver pr.Version, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.matches(key, ver) {
		return false, nil
	}
	p.store(key, value, ttl)
	return true, nil
}

func (p *Memory) CompareAndDelete(_ context.Context, key string, ver pr.Version) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ver == nil || !p.matches(key, ver) {
		return false, nil
	}
	delete(p.m, key)
	return true, nil
}

func (p *Memory) matches(key string, ver pr.Version) bool {
	e, ok := p.lookup(key)
	if ver == nil {
		return !ok
	}
	want, isU := ver.(uint64)
	return ok && isU && e.ver == want
}

// Len reports the number of live keys.
func (p *Memory) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for k := range p.m {
		if _, ok := p.lookup(k); ok {
			n++
		}
	}
	return n
}
