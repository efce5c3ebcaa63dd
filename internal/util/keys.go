package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxMemcacheKey is the longest key memcached accepts.
const MaxMemcacheKey = 250

// MemcacheKey returns key unchanged when memcached accepts it, otherwise a
// deterministic substitute: prefix + first 32 hex chars of sha256(key).
// Memcached rejects keys longer than 250 bytes or containing spaces/control bytes.
func MemcacheKey(prefix, key string) string {
	if legalMemcacheKey(key) {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return prefix + hex.EncodeToString(sum[:16])
}

func legalMemcacheKey(key string) bool {
	if len(key) == 0 || len(key) > MaxMemcacheKey {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] <= ' ' || key[i] == 0x7f {
			return false
		}
	}
	return true
}

// Namespaced prefixes key with ns, if ns is set.
func Namespaced(ns, key string) string {
	if ns == "" {
		return key
	}
	return ns + ":" + key
}
