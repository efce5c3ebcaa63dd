package redcached

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	c "github.com/unkn0wn-root/redcached/codec"
)

func TestParseScalar(t *testing.T) {
	cases := []struct {
		in   string
		want Value
	}{
		{"0", Int(0)},
		{"-17", Int(-17)},
		{"9223372036854775807", Int(math.MaxInt64)},
		{"9223372036854775808", Text("9223372036854775808")},
		{"1.5", Float(1.5)},
		{"-0.25", Float(-0.25)},
		{"3.0", Float(3)},
		{"1e+21", Float(1e21)},
		{"007", Text("007")},
		{"+1", Text("+1")},
		{"1.50", Text("1.50")},
		{" 1", Text(" 1")},
		{"NaN", Text("NaN")},
		{"Inf", Text("Inf")},
		{"", Text("")},
		{"abc", Text("abc")},
	}
	for _, tc := range cases {
		got := parseScalar(tc.in)
		assert.Equal(t, tc.want, got, "parseScalar(%q)", tc.in)
	}
}

func TestFormatFloatNeverLooksIntegral(t *testing.T) {
	for _, f := range []float64{0, 1, -2, 100, 1e6, 1e21, 0.5, math.MaxFloat64, math.SmallestNonzeroFloat64} {
		s := formatFloat(f)
		assert.Equal(t, Float(f), parseScalar(s), "formatFloat(%v) = %q", f, s)
	}
}

func TestValueAccessors(t *testing.T) {
	i, ok := Int(3).Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(3), i)
	_, ok = Float(3).Int64()
	assert.False(t, ok)

	f, ok := Int(3).Float64()
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)
	_, ok = Text("3").Float64()
	assert.False(t, ok)

	var zero Value
	assert.Equal(t, KindText, zero.Kind())
	assert.True(t, zero.IsText())
	assert.Equal(t, "", zero.String())
	assert.Equal(t, "float", Float(1).Kind().String())
}

func sampleHash() Hash {
	return Hash{
		"text":  Text("héllo"),
		"empty": Text(""),
		"int":   Int(-9000000000),
		"small": Int(7),
		"float": Float(2.5),
		"whole": Float(4),
	}
}

func TestHashCodecsKeepKinds(t *testing.T) {
	codecs := map[string]c.Codec[Hash]{
		"msgpack":   c.Msgpack[Hash]{},
		"cbor":      c.MustCBOR[Hash](true),
		"cbor-fast": c.MustCBOR[Hash](false),
		"json":      c.JSON[Hash]{},
		"protowire": ProtoHash{},
	}
	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			b1, err := codec.Encode(sampleHash())
			require.NoError(t, err)
			b2, err := codec.Encode(sampleHash())
			require.NoError(t, err)
			assert.Equal(t, b1, b2, "encoding must be byte-stable")

			got, err := codec.Decode(b1)
			require.NoError(t, err)
			assert.Equal(t, sampleHash(), got)
		})
	}
}

func TestMembersCodecs(t *testing.T) {
	codecs := map[string]c.Codec[Members]{
		"msgpack":   c.Msgpack[Members]{},
		"cbor":      c.MustCBOR[Members](true),
		"json":      c.JSON[Members]{},
		"protowire": ProtoMembers{},
	}
	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			b, err := codec.Encode(Members{"a", "b", ""})
			require.NoError(t, err)
			got, err := codec.Decode(b)
			require.NoError(t, err)
			assert.ElementsMatch(t, Members{"a", "b", ""}, got)
		})
	}
}

func TestValueJSON(t *testing.T) {
	b, err := json.Marshal([]Value{Int(1), Float(1), Text("1")})
	require.NoError(t, err)
	assert.Equal(t, `[1,1.0,"1"]`, string(b))

	var back []Value
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, []Value{Int(1), Float(1), Text("1")}, back)

	_, err = json.Marshal(Float(math.Inf(1)))
	assert.Error(t, err)
}

func TestJSONRefusesInvalidUTF8(t *testing.T) {
	_, err := json.Marshal(Text("\xff"))
	assert.Error(t, err)
	_, err = c.JSON[Hash]{}.Encode(Hash{"\xff": Int(1)})
	assert.Error(t, err)
	_, err = c.JSON[Members]{}.Encode(Members{"ok", "\xff"})
	assert.Error(t, err)

	env := newTestClient(t, func(o *Options) {
		o.HashCodec = c.JSON[Hash]{}
		o.SetCodec = c.JSON[Members]{}
	})
	ctx := context.Background()

	require.NoError(t, env.cl.HSet(ctx, "h", "f", Text("héllo")))
	err = env.cl.HSet(ctx, "h", "f", Text("\xff"))
	assert.ErrorIs(t, err, ErrOperationFailed)
	v, ok, err := env.cl.HGet(ctx, "h", "f")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Text("héllo"), v, "the failed write must not replace the field")

	_, err = env.cl.SAdd(ctx, "s", "\xff")
	assert.ErrorIs(t, err, ErrOperationFailed)
	n, err := env.cl.Exists(ctx, "s")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProtoHashSkipsUnknownFields(t *testing.T) {
	b, err := ProtoHash{}.Encode(Hash{"a": Int(1)})
	require.NoError(t, err)
	// field 9, varint 5
	b = append([]byte{9 << 3, 5}, b...)

	got, err := ProtoHash{}.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, Hash{"a": Int(1)}, got)

	_, err = ProtoHash{}.Decode(b[:len(b)-1])
	assert.Error(t, err)
}

func TestClientWithAlternativeCodecs(t *testing.T) {
	for name, opt := range map[string]func(*Options){
		"cbor": func(o *Options) {
			o.HashCodec = c.MustCBOR[Hash](true)
			o.SetCodec = c.MustCBOR[Members](true)
		},
		"cbor-fast": func(o *Options) {
			o.HashCodec = c.MustCBOR[Hash](false)
			o.SetCodec = c.MustCBOR[Members](false)
		},
		"protowire": func(o *Options) {
			o.HashCodec = ProtoHash{}
			o.SetCodec = ProtoMembers{}
		},
	} {
		t.Run(name, func(t *testing.T) {
			env := newTestClient(t, opt)
			ctx := context.Background()

			f, err := env.cl.HIncrByFloat(ctx, "h", "f", 1.5)
			require.NoError(t, err)
			assert.Equal(t, 1.5, f)
			n, err := env.cl.HIncrBy(ctx, "h", "i", 2)
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)
			all, err := env.cl.HGetAll(ctx, "h")
			require.NoError(t, err)
			assert.Equal(t, Hash{"f": Float(1.5), "i": Int(2)}, all)

			_, err = env.cl.SAdd(ctx, "s", "y", "x")
			require.NoError(t, err)
			members, err := env.cl.SMembers(ctx, "s")
			require.NoError(t, err)
			assert.Equal(t, []string{"x", "y"}, members)

			// text is bytes: whatever is written must read back unchanged
			require.NoError(t, env.cl.HSet(ctx, "bin", "\xfe", Text("\xff\xfe")))
			v, ok, err := env.cl.HGet(ctx, "bin", "\xfe")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, Text("\xff\xfe"), v)
			_, err = env.cl.SAdd(ctx, "bins", "\xc3")
			require.NoError(t, err)
			members, err = env.cl.SMembers(ctx, "bins")
			require.NoError(t, err)
			assert.Equal(t, []string{"\xc3"}, members)
		})
	}
}

func TestMaxPayloadRefusesLargeCollections(t *testing.T) {
	env := newTestClient(t, func(o *Options) { o.MaxPayload = 32 })
	ctx := context.Background()

	require.NoError(t, env.cl.HSet(ctx, "h", "f", Int(1)))
	err := env.cl.HSet(ctx, "h", "big", Text(string(make([]byte, 64))))
	assert.ErrorIs(t, err, ErrOperationFailed)
	assert.ErrorIs(t, err, c.ErrTooLarge)

	all, err := env.cl.HGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, Hash{"f": Int(1)}, all)
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{TypeNone, TypeString, TypeHash, TypeSet, TypeList, TypeSortedSet} {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := ParseType("stream")
	assert.Error(t, err)
	assert.Equal(t, "type(9)", Type(9).String())
}
