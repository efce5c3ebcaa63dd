package redcached

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHash(t *testing.T, cl Client) {
	t.Helper()
	require.NoError(t, cl.HMSet(context.Background(), "a", Hash{"1": Int(1), "2": Int(2), "3": Int(3)}))
}

func TestHGetHSet(t *testing.T) {
	env := newTestClient(t, nil)
	ctx := context.Background()
	seedHash(t, env.cl)

	for field, want := range map[string]Value{"1": Int(1), "2": Int(2), "3": Int(3)} {
		v, ok, err := env.cl.HGet(ctx, "a", field)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, v)
	}

	require.NoError(t, env.cl.HSet(ctx, "a", "3", Int(4)))
	v, _, err := env.cl.HGet(ctx, "a", "3")
	require.NoError(t, err)
	assert.Equal(t, Int(4), v)

	_, ok, err := env.cl.HGet(ctx, "a", "9")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = env.cl.HGet(ctx, "nope", "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHGetAllIsLastWriteWins(t *testing.T) {
	env := newTestClient(t, nil)
	ctx := context.Background()

	writes := []struct {
		field string
		v     Value
	}{
		{"b", Int(1)}, {"a", Text("x")}, {"b", Float(2.5)}, {"c", Int(-3)}, {"a", Text("y")},
	}
	for _, w := range writes {
		require.NoError(t, env.cl.HSet(ctx, "h", w.field, w.v))
	}

	all, err := env.cl.HGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, Hash{"a": Text("y"), "b": Float(2.5), "c": Int(-3)}, all)

	all, err = env.cl.HGetAll(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, all)
}

func TestHDel(t *testing.T) {
	env := newTestClient(t, nil)
	ctx := context.Background()
	seedHash(t, env.cl)

	n, err := env.cl.HDel(ctx, "a", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	all, _ := env.cl.HGetAll(ctx, "a")
	assert.Equal(t, Hash{"2": Int(2), "3": Int(3)}, all)

	n, err = env.cl.HDel(ctx, "a", "4")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = env.cl.HDel(ctx, "a", "2", "3", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// removing the last field removes the key
	all, err = env.cl.HGetAll(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, all)
	typ, err := env.cl.Type(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, TypeNone, typ)
	_, ok := env.raw(t, "a")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, env.hooks.emptied)

	n, err = env.cl.HDel(ctx, "b", "3")
	require.NoError(t, err)
	assert.Zero(t, n)
	_, ok = env.raw(t, "b")
	assert.False(t, ok, "HDel on an absent key writes nothing")
}

func TestHExists(t *testing.T) {
	env := newTestClient(t, nil)
	ctx := context.Background()
	seedHash(t, env.cl)

	ok, err := env.cl.HExists(ctx, "a", "1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.cl.HExists(ctx, "a", "4")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = env.cl.HExists(ctx, "b", "4")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHIncrBy(t *testing.T) {
	env := newTestClient(t, nil)
	ctx := context.Background()
	seedHash(t, env.cl)

	n, err := env.cl.HIncrBy(ctx, "a", "1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = env.cl.HIncrBy(ctx, "a", "1", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	v, _, _ := env.cl.HGet(ctx, "a", "1")
	assert.Equal(t, Int(4), v)

	n, err = env.cl.HIncrBy(ctx, "b", "1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = env.cl.HIncrBy(ctx, "b", "2", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestHIncrByFloat(t *testing.T) {
	env := newTestClient(t, nil)
	ctx := context.Background()
	seedHash(t, env.cl)

	f, err := env.cl.HIncrByFloat(ctx, "a", "1", 1.2)
	require.NoError(t, err)
	assert.Equal(t, 2.2, f)
	v, _, _ := env.cl.HGet(ctx, "a", "1")
	assert.Equal(t, Float(2.2), v)

	f, err = env.cl.HIncrByFloat(ctx, "b", "1", 1.2)
	require.NoError(t, err)
	assert.Equal(t, 1.2, f)
	f, err = env.cl.HIncrByFloat(ctx, "b", "2", 3.3)
	require.NoError(t, err)
	assert.Equal(t, 3.3, f)
}

func TestHashNumericKindIsPreserved(t *testing.T) {
	env := newTestClient(t, nil)
	ctx := context.Background()

	f, err := env.cl.HIncrByFloat(ctx, "h", "f", 1.2)
	require.NoError(t, err)
	assert.Equal(t, 1.2, f)

	_, err = env.cl.HIncrBy(ctx, "h", "f", 1)
	var nan *NotANumberError
	require.ErrorAs(t, err, &nan)
	assert.Equal(t, "h", nan.Key)
	assert.Equal(t, "f", nan.Field)

	// a whole float stays a float
	_, err = env.cl.HIncrByFloat(ctx, "h", "g", 2)
	require.NoError(t, err)
	v, _, _ := env.cl.HGet(ctx, "h", "g")
	assert.Equal(t, KindFloat, v.Kind())

	require.NoError(t, env.cl.HSet(ctx, "h", "t", Text("12")))
	_, err = env.cl.HIncrBy(ctx, "h", "t", 1)
	assert.ErrorIs(t, err, ErrNotANumber, "text fields are never coerced")
}

func TestHKeysHVals(t *testing.T) {
	env := newTestClient(t, nil)
	ctx := context.Background()
	require.NoError(t, env.cl.HMSet(ctx, "a", Hash{"3": Int(3), "1": Int(1), "2": Int(2)}))

	keys, err := env.cl.HKeys(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, keys)

	vals, err := env.cl.HVals(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []Value{Int(1), Int(2), Int(3)}, vals)

	keys, err = env.cl.HKeys(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, keys)
	vals, err = env.cl.HVals(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, vals)
}

func TestHLen(t *testing.T) {
	env := newTestClient(t, nil)
	ctx := context.Background()
	seedHash(t, env.cl)

	n, err := env.cl.HLen(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = env.cl.HLen(ctx, "b")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHMGet(t *testing.T) {
	env := newTestClient(t, nil)
	ctx := context.Background()
	seedHash(t, env.cl)

	vals, err := env.cl.HMGet(ctx, "a", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, []Value{Int(1), Int(2)}, vals)

	vals, err = env.cl.HMGet(ctx, "a", "1", "2", "4")
	require.NoError(t, err)
	assert.Equal(t, []Value{Int(1), Int(2)}, vals)

	vals, err = env.cl.HMGet(ctx, "b", "1")
	require.NoError(t, err)
	assert.Nil(t, vals)
}

func TestHSetNX(t *testing.T) {
	env := newTestClient(t, nil)
	ctx := context.Background()
	seedHash(t, env.cl)

	ok, err := env.cl.HSetNX(ctx, "a", "4", Int(4))
	require.NoError(t, err)
	assert.True(t, ok)
	v, _, _ := env.cl.HGet(ctx, "a", "4")
	assert.Equal(t, Int(4), v)

	ok, err = env.cl.HSetNX(ctx, "a", "1", Int(2))
	require.NoError(t, err)
	assert.False(t, ok)
	v, _, _ = env.cl.HGet(ctx, "a", "1")
	assert.Equal(t, Int(1), v)
}

func TestHMSetEmptyWritesNothing(t *testing.T) {
	env := newTestClient(t, nil)
	ctx := context.Background()

	require.NoError(t, env.cl.HMSet(ctx, "h", Hash{}))
	_, ok := env.raw(t, "h")
	assert.False(t, ok)
}

func TestHashPayloadIsByteStable(t *testing.T) {
	a := newTestClient(t, nil)
	b := newTestClient(t, nil)
	ctx := context.Background()

	require.NoError(t, a.cl.HMSet(ctx, "h", Hash{"x": Int(1), "y": Text("2"), "z": Float(3)}))
	for _, f := range []string{"z", "x", "y"} {
		v := map[string]Value{"x": Int(1), "y": Text("2"), "z": Float(3)}[f]
		require.NoError(t, b.cl.HSet(ctx, "h", f, v))
	}
	ra, _ := a.raw(t, "h")
	rb, _ := b.raw(t, "h")
	assert.Equal(t, ra, rb)
}
