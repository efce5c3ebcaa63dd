package redcached

import (
	"context"
	"fmt"
	"time"

	c "github.com/unkn0wn-root/redcached/codec"
	"github.com/unkn0wn-root/redcached/internal/util"
	pr "github.com/unkn0wn-root/redcached/provider"
)

type client struct {
	ns             string
	provider       pr.Provider
	cas            pr.CASProvider // set only in strict mode
	hashCodec      c.Codec[Hash]
	setCodec       c.Codec[Members]
	log            Logger
	hooks          Hooks
	ttl            time.Duration
	computeSetCost SetCostFunc
	maxRetries     int
}

func newClient(opts Options) (*client, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("redcached: provider is required")
	}

	cl := &client{
		ns:       opts.Namespace,
		provider: opts.Provider,
		ttl:      opts.TTL,
	}

	cl.log = coalesce[Logger](opts.Logger, NopLogger{})
	cl.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cl.hashCodec, cl.setCodec = opts.HashCodec, opts.SetCodec
	if cl.hashCodec == nil {
		cl.hashCodec = c.Msgpack[Hash]{}
	}
	if cl.setCodec == nil {
		cl.setCodec = c.Msgpack[Members]{}
	}
	cl.maxRetries = coalesce(opts.MaxCASRetries, defaultMaxCASRetries)

	if opts.MaxPayload > 0 {
		cl.hashCodec = c.LimitCodec[Hash]{Inner: cl.hashCodec, Max: opts.MaxPayload}
		cl.setCodec = c.LimitCodec[Members]{Inner: cl.setCodec, Max: opts.MaxPayload}
	}

	if opts.ComputeSetCost != nil {
		cl.computeSetCost = opts.ComputeSetCost
	} else {
		cl.computeSetCost = func(string, []byte) int64 { return 1 }
	}

	if opts.Strict {
		casp, ok := opts.Provider.(pr.CASProvider)
		if !ok {
			return nil, fmt.Errorf("redcached: strict mode needs a provider with compare-and-set, %T has none", opts.Provider)
		}
		cl.cas = casp
	}
	return cl, nil
}

func (cl *client) Close(ctx context.Context) error {
	return cl.provider.Close(ctx)
}

func (cl *client) storageKey(key string) string {
	return util.Namespaced(cl.ns, key)
}

// fetch is the single read every command starts with.
func (cl *client) fetch(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrInvalidKey
	}
	return cl.provider.Get(ctx, cl.storageKey(key))
}

type writeKind uint8

const (
	writeNone writeKind = iota
	writeSet
	writeDel
)

// write is what a mutation wants done with the key after looking at it.
type write struct {
	kind writeKind
	raw  []byte
}

func keep() write          { return write{} }
func put(raw []byte) write { return write{kind: writeSet, raw: raw} }
func drop() write          { return write{kind: writeDel} }

// mutation inspects the current bytes (present=false for an absent key) and
// decides the write. It may run more than once in strict mode, so it must
// assign its results rather than accumulate them.
type mutation func(raw []byte, present bool) (write, error)

// update runs fetch -> fn -> store for one key. Outside strict mode this is
// the plain, racy read-modify-write: a writer slipping in between the fetch
// and the store is overwritten.
func (cl *client) update(ctx context.Context, op, key string, fn mutation) error {
	if key == "" {
		return ErrInvalidKey
	}
	sk := cl.storageKey(key)
	if cl.cas != nil {
		return cl.updateCAS(ctx, op, key, sk, fn)
	}

	raw, present, err := cl.provider.Get(ctx, sk)
	if err != nil {
		return err
	}
	w, err := fn(raw, present)
	if err != nil {
		return err
	}
	switch w.kind {
	case writeSet:
		ok, err := cl.provider.Set(ctx, sk, w.raw, cl.computeSetCost(sk, w.raw), cl.ttl)
		if err != nil {
			return &OperationError{Op: op, Key: key, Err: err}
		}
		if !ok {
			cl.hooks.ProviderSetRejected(sk)
			cl.log.Debug("write rejected by provider", Fields{"op": op, "key": key})
			return &OperationError{Op: op, Key: key}
		}
	case writeDel:
		if err := cl.provider.Del(ctx, sk); err != nil {
			return &OperationError{Op: op, Key: key, Err: err}
		}
	}
	return nil
}

func (cl *client) updateCAS(ctx context.Context, op, key, sk string, fn mutation) error {
	for attempt := 1; attempt <= cl.maxRetries; attempt++ {
		raw, ver, present, err := cl.cas.GetVersioned(ctx, sk)
		if err != nil {
			return err
		}
		w, err := fn(raw, present)
		if err != nil {
			return err
		}

		var swapped bool
		switch w.kind {
		case writeNone:
			return nil
		case writeSet:
			swapped, err = cl.cas.CompareAndSet(ctx, sk, w.raw, ver, cl.computeSetCost(sk, w.raw), cl.ttl)
		case writeDel:
			swapped, err = cl.cas.CompareAndDelete(ctx, sk, ver)
		}
		if err != nil {
			return &OperationError{Op: op, Key: key, Err: err}
		}
		if swapped {
			return nil
		}
		cl.hooks.CASConflict(key, attempt)
		cl.log.Debug("compare-and-set lost a race; retrying", Fields{"op": op, "key": key, "attempt": attempt})
	}
	cl.log.Warn("compare-and-set retries exhausted", Fields{"op": op, "key": key, "attempts": cl.maxRetries})
	return &OperationError{Op: op, Key: key, Err: ErrConflict}
}
