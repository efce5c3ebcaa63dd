package redcached

import (
	"context"
	"slices"
)

func (cl *client) loadSet(ctx context.Context, key string) (Members, bool, error) {
	raw, present, err := cl.fetch(ctx, key)
	if err != nil {
		return nil, false, err
	}
	payload, ok, err := cl.requireType(key, raw, present, TypeSet)
	if err != nil || !ok {
		return nil, false, err
	}
	m, err := cl.decodeSet(key, payload)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// mutateSet is mutateHash for sets: fn edits a membership map and the
// result is stored sorted, or the key is deleted once it has no members.
func (cl *client) mutateSet(ctx context.Context, op, key string, fn func(set map[string]struct{}) (changed bool)) error {
	return cl.update(ctx, op, key, func(raw []byte, present bool) (write, error) {
		payload, ok, err := cl.requireType(key, raw, present, TypeSet)
		if err != nil {
			return keep(), err
		}
		var cur Members
		if ok {
			if cur, err = cl.decodeSet(key, payload); err != nil {
				return keep(), err
			}
		}
		set := make(map[string]struct{}, len(cur))
		for _, m := range cur {
			set[m] = struct{}{}
		}
		if !fn(set) {
			return keep(), nil
		}
		if len(set) == 0 {
			if !ok {
				return keep(), nil
			}
			cl.hooks.CollectionEmptied(key, TypeSet)
			cl.log.Debug("set emptied; deleting key", Fields{"op": op, "key": key})
			return drop(), nil
		}
		next := make(Members, 0, len(set))
		for m := range set {
			next = append(next, m)
		}
		b, err := cl.encodeSet(next)
		if err != nil {
			return keep(), &OperationError{Op: op, Key: key, Err: err}
		}
		return put(b), nil
	})
}

// SAdd reports how many members were not already present.
func (cl *client) SAdd(ctx context.Context, key string, members ...string) (int, error) {
	added := 0
	err := cl.mutateSet(ctx, "sadd", key, func(set map[string]struct{}) bool {
		added = 0
		for _, m := range members {
			if _, ok := set[m]; !ok {
				set[m] = struct{}{}
				added++
			}
		}
		return added > 0
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (cl *client) SRem(ctx context.Context, key string, members ...string) (int, error) {
	removed := 0
	err := cl.mutateSet(ctx, "srem", key, func(set map[string]struct{}) bool {
		removed = 0
		for _, m := range members {
			if _, ok := set[m]; ok {
				delete(set, m)
				removed++
			}
		}
		return removed > 0
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// SMembers returns the members sorted; nil for an absent key.
func (cl *client) SMembers(ctx context.Context, key string) ([]string, error) {
	m, ok, err := cl.loadSet(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	out := slices.Clone([]string(m))
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (cl *client) SIsMember(ctx context.Context, key, member string) (bool, error) {
	m, _, err := cl.loadSet(ctx, key)
	if err != nil {
		return false, err
	}
	return slices.Contains(m, member), nil
}

func (cl *client) SCard(ctx context.Context, key string) (int, error) {
	m, err := cl.SMembers(ctx, key)
	return len(m), err
}
