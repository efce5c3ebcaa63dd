package redcached

import (
	"context"
	"math"
	"slices"
)

func (cl *client) loadString(ctx context.Context, key string) (Value, bool, error) {
	raw, present, err := cl.fetch(ctx, key)
	if err != nil {
		return Value{}, false, err
	}
	payload, ok, err := cl.requireType(key, raw, present, TypeString)
	if err != nil || !ok {
		return Value{}, false, err
	}
	return decodeScalar(payload), true, nil
}

// Set overwrites a string key. It refuses to replace a value of another type;
// Del the key first to change its type.
func (cl *client) Set(ctx context.Context, key string, value Value) error {
	value, err := storable(key, "", value)
	if err != nil {
		return err
	}
	raw := encodeScalar(value)
	return cl.update(ctx, "set", key, func(cur []byte, present bool) (write, error) {
		if _, _, err := cl.requireType(key, cur, present, TypeString); err != nil {
			return keep(), err
		}
		return put(raw), nil
	})
}

// SetNX writes value only if key is absent. An existing value of any type is
// left untouched and reported as written=false.
func (cl *client) SetNX(ctx context.Context, key string, value Value) (bool, error) {
	value, err := storable(key, "", value)
	if err != nil {
		return false, err
	}
	raw := encodeScalar(value)
	written := false
	err = cl.update(ctx, "setnx", key, func(_ []byte, present bool) (write, error) {
		written = !present
		if present {
			return keep(), nil
		}
		return put(raw), nil
	})
	if err != nil {
		return false, err
	}
	return written, nil
}

func (cl *client) Get(ctx context.Context, key string) (Value, bool, error) {
	return cl.loadString(ctx, key)
}

func (cl *client) GetSet(ctx context.Context, key string, value Value) (Value, bool, error) {
	value, err := storable(key, "", value)
	if err != nil {
		return Value{}, false, err
	}
	raw := encodeScalar(value)
	var (
		old     Value
		existed bool
	)
	err = cl.update(ctx, "getset", key, func(cur []byte, present bool) (write, error) {
		payload, ok, err := cl.requireType(key, cur, present, TypeString)
		if err != nil {
			return keep(), err
		}
		old, existed = Value{}, ok
		if ok {
			old = decodeScalar(payload)
		}
		return put(raw), nil
	})
	if err != nil {
		return Value{}, false, err
	}
	return old, existed, nil
}

func (cl *client) Incr(ctx context.Context, key string) (int64, error) {
	return cl.incrBy(ctx, "incr", key, 1)
}

func (cl *client) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	return cl.incrBy(ctx, "incrby", key, delta)
}

// Decr on a missing key yields -1.
func (cl *client) Decr(ctx context.Context, key string) (int64, error) {
	return cl.incrBy(ctx, "decr", key, -1)
}

func (cl *client) DecrBy(ctx context.Context, key string, delta int64) (int64, error) {
	if delta == math.MinInt64 {
		return 0, &NotANumberError{Key: key, Reason: "decrement would overflow"}
	}
	return cl.incrBy(ctx, "decrby", key, -delta)
}

func (cl *client) incrBy(ctx context.Context, op, key string, delta int64) (int64, error) {
	var result int64
	err := cl.update(ctx, op, key, func(cur []byte, present bool) (write, error) {
		payload, ok, err := cl.requireType(key, cur, present, TypeString)
		if err != nil {
			return keep(), err
		}
		var n int64
		if ok {
			i, isInt := decodeScalar(payload).Int64()
			if !isInt {
				return keep(), notInteger(key, "")
			}
			n = i
		}
		sum, ok := addInt(n, delta)
		if !ok {
			return keep(), &NotANumberError{Key: key, Reason: "increment or decrement would overflow"}
		}
		result = sum
		return put(encodeScalar(Int(sum))), nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// IncrByFloat accepts integer or float values and always stores a float.
func (cl *client) IncrByFloat(ctx context.Context, key string, delta float64) (float64, error) {
	if !finite(delta) {
		return 0, notFloat(key, "")
	}
	var result float64
	err := cl.update(ctx, "incrbyfloat", key, func(cur []byte, present bool) (write, error) {
		payload, ok, err := cl.requireType(key, cur, present, TypeString)
		if err != nil {
			return keep(), err
		}
		var n float64
		if ok {
			f, isNum := decodeScalar(payload).Float64()
			if !isNum {
				return keep(), notFloat(key, "")
			}
			n = f
		}
		sum := n + delta
		if !finite(sum) {
			return keep(), &NotANumberError{Key: key, Reason: "increment would produce NaN or Infinity"}
		}
		result = sum
		return put(encodeScalar(Float(sum))), nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// StrLen is the byte length of the stored text; 0 for an absent key.
func (cl *client) StrLen(ctx context.Context, key string) (int, error) {
	v, ok, err := cl.loadString(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	return len(v.Text()), nil
}

// MSet writes every pair in key order. A failure stops the batch; keys
// written before it stay written.
func (cl *client) MSet(ctx context.Context, values map[string]Value) error {
	keys, err := sortedKeys(values)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := storable(k, "", values[k]); err != nil {
			return err
		}
	}
	for _, k := range keys {
		if err := cl.Set(ctx, k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// MSetNX writes the batch only when none of its keys exists. The existence
// check happens before any write, but the batch as a whole is not atomic.
func (cl *client) MSetNX(ctx context.Context, values map[string]Value) (bool, error) {
	keys, err := sortedKeys(values)
	if err != nil {
		return false, err
	}
	raws := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := storable(k, "", values[k])
		if err != nil {
			return false, err
		}
		raws[k] = encodeScalar(v)
	}
	for _, k := range keys {
		_, present, err := cl.fetch(ctx, k)
		if err != nil {
			return false, err
		}
		if present {
			cl.log.Debug("msetnx skipped; key exists", Fields{"key": k, "batch": len(keys)})
			return false, nil
		}
	}
	for _, k := range keys {
		raw := raws[k]
		err := cl.update(ctx, "msetnx", k, func([]byte, bool) (write, error) {
			return put(raw), nil
		})
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

// MGet returns the values of the string keys that exist, in request order.
func (cl *client) MGet(ctx context.Context, keys ...string) ([]Value, error) {
	out := make([]Value, 0, len(keys))
	for _, k := range keys {
		v, ok, err := cl.loadString(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) ([]string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == "" {
			return nil, ErrInvalidKey
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func addInt(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

func finite(f float64) bool { return !math.IsInf(f, 0) && !math.IsNaN(f) }

// storable normalizes v for writing. NaN and ±Inf have no canonical text
// and would read back as strings, so they are refused.
func storable(key, field string, v Value) (Value, error) {
	v = v.normalize()
	if v.kind == KindFloat && !finite(v.f) {
		return Value{}, notFloat(key, field)
	}
	return v, nil
}
