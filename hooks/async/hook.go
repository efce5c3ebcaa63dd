// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    ConflictEvery: 10, // sample: ~every 10th compare-and-set conflict
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cl, _ := redcached.New(redcached.Options{
//	    Namespace: "app",
//	    Provider:  provider,
//	    Strict:    true,
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/redcached"
)

// Hooks forwards events to inner on background workers. Events are dropped
// when the queue is full.
type Hooks struct {
	inner  redcached.Hooks
	q      chan func()
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

var _ redcached.Hooks = (*Hooks)(nil)

func New(inner redcached.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Events sent after Close are
// dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) WrongType(k string, want, got redcached.Type) {
	h.try(func() { h.inner.WrongType(k, want, got) })
}
func (h *Hooks) CorruptEnvelope(k string, err error) {
	h.try(func() { h.inner.CorruptEnvelope(k, err) })
}
func (h *Hooks) ProviderSetRejected(k string) { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) CollectionEmptied(k string, t redcached.Type) {
	h.try(func() { h.inner.CollectionEmptied(k, t) })
}
func (h *Hooks) CASConflict(k string, attempt int) { h.try(func() { h.inner.CASConflict(k, attempt) }) }
