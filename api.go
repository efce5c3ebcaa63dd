package redcached

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/redcached/codec"
	pr "github.com/unkn0wn-root/redcached/provider"
)

// SetCostFunc computes the cost passed to Provider.Set (used by Ristretto).
type SetCostFunc func(storageKey string, raw []byte) int64

// Client is the command surface. Every command is one fetch from the provider,
// an in-memory computation and at most one write back. Two clients (or two
// processes) updating the same key concurrently can lose updates unless the
// client runs in strict mode.
type Client interface {
	Close(context.Context) error

	// Strings (whole-key scalars)
	Set(ctx context.Context, key string, value Value) error
	SetNX(ctx context.Context, key string, value Value) (written bool, err error)
	Get(ctx context.Context, key string) (v Value, ok bool, err error)
	GetSet(ctx context.Context, key string, value Value) (old Value, existed bool, err error)
	Incr(ctx context.Context, key string) (int64, error)
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	IncrByFloat(ctx context.Context, key string, delta float64) (float64, error)
	Decr(ctx context.Context, key string) (int64, error)
	DecrBy(ctx context.Context, key string, delta int64) (int64, error)
	StrLen(ctx context.Context, key string) (int, error)
	MSet(ctx context.Context, values map[string]Value) error
	MSetNX(ctx context.Context, values map[string]Value) (written bool, err error)
	MGet(ctx context.Context, keys ...string) ([]Value, error)

	// Any type
	Type(ctx context.Context, key string) (Type, error)
	Del(ctx context.Context, keys ...string) (removed int, err error)
	Exists(ctx context.Context, keys ...string) (n int, err error)

	// Hashes
	HSet(ctx context.Context, key, field string, value Value) error
	HSetNX(ctx context.Context, key, field string, value Value) (written bool, err error)
	HGet(ctx context.Context, key, field string) (v Value, ok bool, err error)
	HGetAll(ctx context.Context, key string) (Hash, error)
	HKeys(ctx context.Context, key string) ([]string, error)
	HVals(ctx context.Context, key string) ([]Value, error)
	HLen(ctx context.Context, key string) (int, error)
	HExists(ctx context.Context, key, field string) (bool, error)
	HDel(ctx context.Context, key string, fields ...string) (removed int, err error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error)
	HMGet(ctx context.Context, key string, fields ...string) ([]Value, error)
	HMSet(ctx context.Context, key string, values Hash) error

	// Sets
	SAdd(ctx context.Context, key string, members ...string) (added int, err error)
	SRem(ctx context.Context, key string, members ...string) (removed int, err error)
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
	SCard(ctx context.Context, key string) (int, error)
}

// Options configure a Client. Only Provider is required.
type Options struct {
	Provider  pr.Provider
	Namespace string // optional key prefix: "<ns>:<key>"

	HashCodec  c.Codec[Hash]    // nil => codec.Msgpack
	SetCodec   c.Codec[Members] // nil => codec.Msgpack
	MaxPayload int              // >0 caps encoded/decoded collection payloads (bytes)

	Logger         Logger        // if nil, NopLogger is used
	Hooks          Hooks         // if nil, NopHooks is used
	TTL            time.Duration // applied on every write; 0 => no expiry
	ComputeSetCost SetCostFunc   // default 1

	// Strict turns every read-modify-write into a compare-and-set loop.
	// Provider must implement provider.CASProvider.
	Strict        bool
	MaxCASRetries int // attempts per command in strict mode; 0 => 8
}

func New(opts Options) (Client, error) {
	return newClient(opts)
}
