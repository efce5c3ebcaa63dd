// Package provider defines the storage abstraction used by redcached.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). If a store performs internal transforms
// (e.g., compression or expiry headers), they MUST be fully reversed so that the
// bytes returned by Get are identical to the bytes provided to Set.
//
// redcached only ever needs whole-value reads and writes. A provider whose
// backend also offers compare-and-set may implement CASProvider, which the
// client uses in strict mode.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL (<= 0 means no expiry). May ignore
	// cost if unsupported. Returns ok=false when the store refused the write.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Version is an opaque token describing what GetVersioned observed.
// A nil Version means the key was absent.
type Version any

// CASProvider is a Provider whose backend can make a write conditional on the
// value not having changed since it was read.
type CASProvider interface {
	Provider

	// GetVersioned is Get plus a token for CompareAndSet/CompareAndDelete.
	GetVersioned(ctx context.Context, key string) (value []byte, ver Version, ok bool, err error)

	// CompareAndSet stores value only if key is still at ver (or still absent
	// when ver is nil). swapped=false, err=nil means another writer won.
	CompareAndSet(ctx context.Context, key string, value []byte, ver Version, cost int64, ttl time.Duration) (swapped bool, err error)

	// CompareAndDelete removes key only if it is still at ver.
	CompareAndDelete(ctx context.Context, key string, ver Version) (deleted bool, err error)
}
