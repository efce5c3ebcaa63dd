package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/unkn0wn-root/redcached"
)

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not an integer or out of range", s)
	}
	return n, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not a valid float", s)
	}
	return f, nil
}

// pairs turns "k1 v1 k2 v2" into a map; the last pair for a key wins.
func pairs(args []string) (map[string]redcached.Value, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, errSyntax
	}
	m := make(map[string]redcached.Value, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		m[args[i]] = redcached.ParseValue(args[i+1])
	}
	return m, nil
}

func (e *Engine) registerStringCommands() {
	e.register("SET", 2, 2, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		if err := cl.Set(ctx, a[0], redcached.ParseValue(a[1])); err != nil {
			return Reply{}, err
		}
		return status("OK"), nil
	})
	e.register("SETNX", 2, 2, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		ok, err := cl.SetNX(ctx, a[0], redcached.ParseValue(a[1]))
		return boolean(ok), err
	})
	e.register("GET", 1, 1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		v, ok, err := cl.Get(ctx, a[0])
		if err != nil || !ok {
			return null(), err
		}
		return value(v), nil
	})
	e.register("GETSET", 2, 2, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		old, existed, err := cl.GetSet(ctx, a[0], redcached.ParseValue(a[1]))
		if err != nil || !existed {
			return null(), err
		}
		return value(old), nil
	})
	e.register("INCR", 1, 1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		n, err := cl.Incr(ctx, a[0])
		return integer(n), err
	})
	e.register("DECR", 1, 1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		n, err := cl.Decr(ctx, a[0])
		return integer(n), err
	})
	e.register("INCRBY", 2, 2, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		d, err := parseInt(a[1])
		if err != nil {
			return Reply{}, err
		}
		n, err := cl.IncrBy(ctx, a[0], d)
		return integer(n), err
	})
	e.register("DECRBY", 2, 2, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		d, err := parseInt(a[1])
		if err != nil {
			return Reply{}, err
		}
		n, err := cl.DecrBy(ctx, a[0], d)
		return integer(n), err
	})
	e.register("INCRBYFLOAT", 2, 2, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		d, err := parseFloat(a[1])
		if err != nil {
			return Reply{}, err
		}
		f, err := cl.IncrByFloat(ctx, a[0], d)
		return value(redcached.Float(f)), err
	})
	e.register("STRLEN", 1, 1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		n, err := cl.StrLen(ctx, a[0])
		return integer(int64(n)), err
	})
	e.register("MSET", 2, -1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		m, err := pairs(a)
		if err != nil {
			return Reply{}, err
		}
		if err := cl.MSet(ctx, m); err != nil {
			return Reply{}, err
		}
		return status("OK"), nil
	})
	e.register("MSETNX", 2, -1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		m, err := pairs(a)
		if err != nil {
			return Reply{}, err
		}
		ok, err := cl.MSetNX(ctx, m)
		return boolean(ok), err
	})
	e.register("MGET", 1, -1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		vs, err := cl.MGet(ctx, a...)
		return values(vs), err
	})
}

func (e *Engine) registerKeyCommands() {
	e.register("TYPE", 1, 1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		t, err := cl.Type(ctx, a[0])
		return status(t.String()), err
	})
	e.register("DEL", 1, -1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		n, err := cl.Del(ctx, a...)
		return integer(int64(n)), err
	})
	e.register("EXISTS", 1, -1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		n, err := cl.Exists(ctx, a...)
		return integer(int64(n)), err
	})
}

func (e *Engine) registerHashCommands() {
	e.register("HSET", 3, 3, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		if err := cl.HSet(ctx, a[0], a[1], redcached.ParseValue(a[2])); err != nil {
			return Reply{}, err
		}
		return integer(1), nil
	})
	e.register("HSETNX", 3, 3, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		ok, err := cl.HSetNX(ctx, a[0], a[1], redcached.ParseValue(a[2]))
		return boolean(ok), err
	})
	e.register("HGET", 2, 2, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		v, ok, err := cl.HGet(ctx, a[0], a[1])
		if err != nil || !ok {
			return null(), err
		}
		return value(v), nil
	})
	e.register("HGETALL", 1, 1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		h, err := cl.HGetAll(ctx, a[0])
		if err != nil {
			return Reply{}, err
		}
		items := make([]Reply, 0, 2*len(h))
		for _, k := range slices.Sorted(maps.Keys(h)) {
			items = append(items, bulk(k), value(h[k]))
		}
		return array(items...), nil
	})
	e.register("HKEYS", 1, 1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		keys, err := cl.HKeys(ctx, a[0])
		return texts(keys), err
	})
	e.register("HVALS", 1, 1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		vs, err := cl.HVals(ctx, a[0])
		return values(vs), err
	})
	e.register("HLEN", 1, 1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		n, err := cl.HLen(ctx, a[0])
		return integer(int64(n)), err
	})
	e.register("HEXISTS", 2, 2, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		ok, err := cl.HExists(ctx, a[0], a[1])
		return boolean(ok), err
	})
	e.register("HDEL", 2, -1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		n, err := cl.HDel(ctx, a[0], a[1:]...)
		return integer(int64(n)), err
	})
	e.register("HINCRBY", 3, 3, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		d, err := parseInt(a[2])
		if err != nil {
			return Reply{}, err
		}
		n, err := cl.HIncrBy(ctx, a[0], a[1], d)
		return integer(n), err
	})
	e.register("HINCRBYFLOAT", 3, 3, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		d, err := parseFloat(a[2])
		if err != nil {
			return Reply{}, err
		}
		f, err := cl.HIncrByFloat(ctx, a[0], a[1], d)
		return value(redcached.Float(f)), err
	})
	e.register("HMGET", 2, -1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		vs, err := cl.HMGet(ctx, a[0], a[1:]...)
		return values(vs), err
	})
	e.register("HMSET", 3, -1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		m, err := pairs(a[1:])
		if err != nil {
			return Reply{}, err
		}
		if err := cl.HMSet(ctx, a[0], redcached.Hash(m)); err != nil {
			return Reply{}, err
		}
		return status("OK"), nil
	})
}

func (e *Engine) registerSetCommands() {
	e.register("SADD", 2, -1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		n, err := cl.SAdd(ctx, a[0], a[1:]...)
		return integer(int64(n)), err
	})
	e.register("SREM", 2, -1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		n, err := cl.SRem(ctx, a[0], a[1:]...)
		return integer(int64(n)), err
	})
	e.register("SMEMBERS", 1, 1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		ms, err := cl.SMembers(ctx, a[0])
		return texts(ms), err
	})
	e.register("SISMEMBER", 2, 2, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		ok, err := cl.SIsMember(ctx, a[0], a[1])
		return boolean(ok), err
	})
	e.register("SCARD", 1, 1, func(ctx context.Context, cl redcached.Client, a []string) (Reply, error) {
		n, err := cl.SCard(ctx, a[0])
		return integer(int64(n)), err
	})
}
