package redcached

import (
	"context"
	"maps"
	"slices"
)

func (cl *client) loadHash(ctx context.Context, key string) (Hash, bool, error) {
	raw, present, err := cl.fetch(ctx, key)
	if err != nil {
		return nil, false, err
	}
	payload, ok, err := cl.requireType(key, raw, present, TypeHash)
	if err != nil || !ok {
		return nil, false, err
	}
	h, err := cl.decodeHash(key, payload)
	if err != nil {
		return nil, false, err
	}
	return h, true, nil
}

// mutateHash hands fn the current hash (empty when the key is absent) and
// writes it back when fn reports a change. A hash left without fields is
// deleted instead of stored.
func (cl *client) mutateHash(ctx context.Context, op, key string, fn func(h Hash) (changed bool, err error)) error {
	return cl.update(ctx, op, key, func(raw []byte, present bool) (write, error) {
		payload, ok, err := cl.requireType(key, raw, present, TypeHash)
		if err != nil {
			return keep(), err
		}
		h := make(Hash)
		if ok {
			if h, err = cl.decodeHash(key, payload); err != nil {
				return keep(), err
			}
		}
		changed, err := fn(h)
		if err != nil || !changed {
			return keep(), err
		}
		if len(h) == 0 {
			if !ok {
				return keep(), nil
			}
			cl.hooks.CollectionEmptied(key, TypeHash)
			cl.log.Debug("hash emptied; deleting key", Fields{"op": op, "key": key})
			return drop(), nil
		}
		b, err := cl.encodeHash(h)
		if err != nil {
			return keep(), &OperationError{Op: op, Key: key, Err: err}
		}
		return put(b), nil
	})
}

func (cl *client) HSet(ctx context.Context, key, field string, value Value) error {
	value, err := storable(key, field, value)
	if err != nil {
		return err
	}
	return cl.mutateHash(ctx, "hset", key, func(h Hash) (bool, error) {
		h[field] = value
		return true, nil
	})
}

func (cl *client) HSetNX(ctx context.Context, key, field string, value Value) (bool, error) {
	value, err := storable(key, field, value)
	if err != nil {
		return false, err
	}
	written := false
	err = cl.mutateHash(ctx, "hsetnx", key, func(h Hash) (bool, error) {
		if _, ok := h[field]; ok {
			written = false
			return false, nil
		}
		h[field] = value
		written = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return written, nil
}

func (cl *client) HGet(ctx context.Context, key, field string) (Value, bool, error) {
	h, _, err := cl.loadHash(ctx, key)
	if err != nil {
		return Value{}, false, err
	}
	v, ok := h[field]
	return v, ok, nil
}

// HGetAll returns nil for an absent key.
func (cl *client) HGetAll(ctx context.Context, key string) (Hash, error) {
	h, _, err := cl.loadHash(ctx, key)
	return h, err
}

// HKeys returns field names in sorted order.
func (cl *client) HKeys(ctx context.Context, key string) ([]string, error) {
	h, ok, err := cl.loadHash(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	return fieldNames(h), nil
}

// HVals returns values ordered by their field name.
func (cl *client) HVals(ctx context.Context, key string) ([]Value, error) {
	h, ok, err := cl.loadHash(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	names := fieldNames(h)
	out := make([]Value, len(names))
	for i, f := range names {
		out[i] = h[f]
	}
	return out, nil
}

func (cl *client) HLen(ctx context.Context, key string) (int, error) {
	h, _, err := cl.loadHash(ctx, key)
	return len(h), err
}

func (cl *client) HExists(ctx context.Context, key, field string) (bool, error) {
	h, _, err := cl.loadHash(ctx, key)
	if err != nil {
		return false, err
	}
	_, ok := h[field]
	return ok, nil
}

func (cl *client) HDel(ctx context.Context, key string, fields ...string) (int, error) {
	removed := 0
	err := cl.mutateHash(ctx, "hdel", key, func(h Hash) (bool, error) {
		removed = 0
		for _, f := range fields {
			if _, ok := h[f]; ok {
				delete(h, f)
				removed++
			}
		}
		return removed > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// HIncrBy needs the field to hold an integer; a missing field counts as 0.
func (cl *client) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	var result int64
	err := cl.mutateHash(ctx, "hincrby", key, func(h Hash) (bool, error) {
		var n int64
		if cur, ok := h[field]; ok {
			i, isInt := cur.Int64()
			if !isInt {
				return false, notInteger(key, field)
			}
			n = i
		}
		sum, ok := addInt(n, delta)
		if !ok {
			return false, &NotANumberError{Key: key, Field: field, Reason: "increment or decrement would overflow"}
		}
		h[field] = Int(sum)
		result = sum
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// HIncrByFloat promotes an integer field to a float.
func (cl *client) HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	if !finite(delta) {
		return 0, notFloat(key, field)
	}
	var result float64
	err := cl.mutateHash(ctx, "hincrbyfloat", key, func(h Hash) (bool, error) {
		var n float64
		if cur, ok := h[field]; ok {
			f, isNum := cur.Float64()
			if !isNum {
				return false, notFloat(key, field)
			}
			n = f
		}
		sum := n + delta
		if !finite(sum) {
			return false, &NotANumberError{Key: key, Field: field, Reason: "increment would produce NaN or Infinity"}
		}
		h[field] = Float(sum)
		result = sum
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// HMGet returns the values of the requested fields that exist, in request
// order; nil for an absent key.
func (cl *client) HMGet(ctx context.Context, key string, fields ...string) ([]Value, error) {
	h, ok, err := cl.loadHash(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]Value, 0, len(fields))
	for _, f := range fields {
		if v, ok := h[f]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// HMSet merges values into the hash. An empty map writes nothing.
func (cl *client) HMSet(ctx context.Context, key string, values Hash) error {
	merged := make(Hash, len(values))
	for f, v := range values {
		v, err := storable(key, f, v)
		if err != nil {
			return err
		}
		merged[f] = v
	}
	return cl.mutateHash(ctx, "hmset", key, func(h Hash) (bool, error) {
		maps.Copy(h, merged)
		return len(merged) > 0, nil
	})
}

func fieldNames(h Hash) []string {
	names := make([]string, 0, len(h))
	for f := range h {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}
