package redcached

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Kind discriminates the scalar held by a Value.
type Kind uint8

const (
	KindText Kind = iota + 1
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "text"
	}
}

// Value is a scalar: text, a 64-bit integer or a 64-bit float.
// The zero Value is the empty text.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
}

// Hash is the payload of a hash-typed key.
type Hash map[string]Value

// Members is the payload of a set-typed key.
type Members []string

func Text(s string) Value    { return Value{kind: KindText, s: s} }
func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func (v Value) Kind() Kind   { return coalesce(v.kind, KindText) }
func (v Value) IsText() bool { return v.Kind() == KindText }

// Int64 returns the integer held by v. Floats and texts are not converted.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// Float64 returns v as a float. Integers are widened.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// Text returns the canonical text form, which is also the bare scalar
// representation written to the backend.
func (v Value) Text() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	default:
		return v.s
	}
}

func (v Value) String() string { return v.Text() }

// normalize maps the zero Value onto the empty text so equality holds after a round trip.
func (v Value) normalize() Value {
	if v.kind == 0 {
		return Text(v.s)
	}
	return v
}

// formatFloat always keeps a fraction or exponent so the text never reads back as an integer.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") { // NaN and ±Inf carry an 'n'/'N'
		return s
	}
	return s + ".0"
}

// parseScalar infers the kind of a bare scalar. A text is numeric only when
// it is the canonical spelling of that number, so "007" or "1.50" stay text.
func parseScalar(s string) Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(i, 10) == s {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) && formatFloat(f) == s {
		return Float(f)
	}
	return Text(s)
}

func (v *Value) fromAny(x any) error {
	switch n := x.(type) {
	case string:
		*v = Text(n)
	case []byte:
		*v = Text(string(n))
	case int8:
		*v = Int(int64(n))
	case int16:
		*v = Int(int64(n))
	case int32:
		*v = Int(int64(n))
	case int64:
		*v = Int(n)
	case int:
		*v = Int(int64(n))
	case uint8:
		*v = Int(int64(n))
	case uint16:
		*v = Int(int64(n))
	case uint32:
		*v = Int(int64(n))
	case uint64:
		if n > math.MaxInt64 {
			return fmt.Errorf("redcached: integer %d overflows int64", n)
		}
		*v = Int(int64(n))
	case uint:
		if uint64(n) > math.MaxInt64 {
			return fmt.Errorf("redcached: integer %d overflows int64", n)
		}
		*v = Int(int64(n))
	case float32:
		*v = Float(float64(n))
	case float64:
		*v = Float(n)
	default:
		return fmt.Errorf("redcached: unsupported scalar %T", x)
	}
	return nil
}

var (
	_ msgpack.CustomEncoder = Value{}
	_ msgpack.CustomDecoder = (*Value)(nil)
	_ cbor.Marshaler        = Value{}
	_ cbor.Unmarshaler      = (*Value)(nil)
	_ json.Marshaler        = Value{}
	_ json.Unmarshaler      = (*Value)(nil)
	_ json.Marshaler        = Hash{}
	_ json.Marshaler        = Members{}
)

func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case KindInt:
		return enc.EncodeInt(v.i)
	case KindFloat:
		return enc.EncodeFloat64(v.f)
	default:
		return enc.EncodeString(v.s)
	}
}

func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	x, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	return v.fromAny(x)
}

func (v Value) MarshalCBOR() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return cbor.Marshal(v.i)
	case KindFloat:
		return cbor.Marshal(v.f)
	default:
		return cbor.Marshal(v.s)
	}
}

// cborScalars mirrors the codec's decode mode so text with invalid UTF-8
// reads back exactly as it was written.
var cborScalars = func() cbor.DecMode {
	dm, err := cbor.DecOptions{UTF8: cbor.UTF8DecodeInvalid}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

func (v *Value) UnmarshalCBOR(b []byte) error {
	var x any
	if err := cborScalars.Unmarshal(b, &x); err != nil {
		return err
	}
	return v.fromAny(x)
}

// MarshalJSON writes integers without a fraction and floats always with one,
// so the kind survives encoding/json.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return nil, fmt.Errorf("redcached: %v has no JSON representation", v.f)
		}
		return []byte(formatFloat(v.f)), nil
	default:
		if err := jsonText(v.s); err != nil {
			return nil, err
		}
		return json.Marshal(v.s)
	}
}

// jsonText refuses text encoding/json would rewrite: invalid UTF-8 is
// replaced with U+FFFD, so the stored bytes would no longer match.
func jsonText(s string) error {
	if utf8.ValidString(s) {
		return nil
	}
	return fmt.Errorf("redcached: text %q is not valid UTF-8 and cannot be stored as JSON", s)
}

// MarshalJSON checks field names the way Value checks text.
func (h Hash) MarshalJSON() ([]byte, error) {
	for f := range h {
		if err := jsonText(f); err != nil {
			return nil, err
		}
	}
	return json.Marshal(map[string]Value(h))
}

func (m Members) MarshalJSON() ([]byte, error) {
	for _, s := range m {
		if err := jsonText(s); err != nil {
			return nil, err
		}
	}
	return json.Marshal([]string(m))
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
	s := string(b)
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("redcached: bad JSON number %q: %w", s, err)
		}
		*v = Float(f)
		return nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("redcached: bad JSON number %q: %w", s, err)
	}
	*v = Int(i)
	return nil
}

// ParseValue reads s the way bare scalars are read back from the backend:
// canonical integers and floats become numbers, anything else stays text.
func ParseValue(s string) Value { return parseScalar(s) }
