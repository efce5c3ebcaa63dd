// Package redcached layers Redis-style typed values on top of a plain
// whole-value byte store (memcached, Ristretto, BigCache, bbolt, Redis used
// as a blob store). A key holds a string scalar, a hash or a set; commands
// that expect one type fail with ErrWrongType on the others.
//
// Storage layout:
//
//	scalar  canonical text, e.g. "42", "1.5", "hello"
//	other   0x00 'R' 'C' 'D' | version | type | len u32 | payload
//
// Text that happens to begin with the envelope magic is itself written as a
// string envelope, so any byte sequence round-trips. Integers and floats are
// told apart by their canonical spelling: floats always carry a fraction or
// an exponent ("3.0", "1e+21").
//
// Every mutating command is one read, an in-memory change and one write:
//
//	raw := provider.Get(key)
//	next := apply(decode(raw))
//	provider.Set(key, encode(next))
//
// Concurrent writers to the same key can lose updates. With Options.Strict
// the write becomes a compare-and-set against the version observed by the
// read and the command retries on conflict, which needs a provider
// implementing provider.CASProvider (memcache, redis, bolt, memory).
//
// Hashes and sets are deleted when their last element is removed, so an
// empty collection is never stored.
package redcached
