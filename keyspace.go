package redcached

import (
	"context"
	"fmt"
)

// Type reports the type stored under key, TypeNone when absent.
func (cl *client) Type(ctx context.Context, key string) (Type, error) {
	raw, present, err := cl.fetch(ctx, key)
	if err != nil || !present {
		return TypeNone, err
	}
	t, _, err := inspect(raw)
	if err != nil {
		cl.hooks.CorruptEnvelope(cl.storageKey(key), err)
		return TypeNone, fmt.Errorf("redcached: key %q: %w", key, err)
	}
	return t, nil
}

// Del removes keys of any type and reports how many existed.
func (cl *client) Del(ctx context.Context, keys ...string) (int, error) {
	n := 0
	for _, k := range keys {
		existed := false
		err := cl.update(ctx, "del", k, func(_ []byte, present bool) (write, error) {
			existed = present
			if !present {
				return keep(), nil
			}
			return drop(), nil
		})
		if err != nil {
			return n, err
		}
		if existed {
			n++
		}
	}
	return n, nil
}

// Exists counts the keys that are present. A key named twice counts twice.
func (cl *client) Exists(ctx context.Context, keys ...string) (int, error) {
	n := 0
	for _, k := range keys {
		_, present, err := cl.fetch(ctx, k)
		if err != nil {
			return n, err
		}
		if present {
			n++
		}
	}
	return n, nil
}
