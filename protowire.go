package redcached

import (
	"errors"
	"fmt"
	"math"
	"slices"

	c "github.com/unkn0wn-root/redcached/codec"
	"google.golang.org/protobuf/encoding/protowire"
)

// ProtoHash encodes a Hash in protobuf wire format without generated code:
//
//	message Hash  { repeated Entry entries = 1; }
//	message Entry { string name = 1; oneof v { string text = 2; sint64 int = 3; double float = 4; } }
//
// Entries are written in field-name order so the output is byte-stable.
type ProtoHash struct{}

// ProtoMembers encodes Members as `repeated string members = 1`, sorted.
type ProtoMembers struct{}

var (
	_ c.Codec[Hash]    = ProtoHash{}
	_ c.Codec[Members] = ProtoMembers{}
)

var errProtoEntry = errors.New("protowire: malformed hash entry")

const (
	fieldEntry  protowire.Number = 1
	fieldName   protowire.Number = 1
	fieldText   protowire.Number = 2
	fieldInt    protowire.Number = 3
	fieldFloat  protowire.Number = 4
	fieldMember protowire.Number = 1
)

func (ProtoHash) Encode(h Hash) ([]byte, error) {
	var out, entry []byte
	for _, name := range fieldNames(h) {
		v := h[name]
		entry = entry[:0]
		entry = protowire.AppendTag(entry, fieldName, protowire.BytesType)
		entry = protowire.AppendString(entry, name)
		switch v.Kind() {
		case KindInt:
			entry = protowire.AppendTag(entry, fieldInt, protowire.VarintType)
			entry = protowire.AppendVarint(entry, protowire.EncodeZigZag(v.i))
		case KindFloat:
			entry = protowire.AppendTag(entry, fieldFloat, protowire.Fixed64Type)
			entry = protowire.AppendFixed64(entry, math.Float64bits(v.f))
		default:
			entry = protowire.AppendTag(entry, fieldText, protowire.BytesType)
			entry = protowire.AppendString(entry, v.s)
		}
		out = protowire.AppendTag(out, fieldEntry, protowire.BytesType)
		out = protowire.AppendBytes(out, entry)
	}
	return out, nil
}

func (ProtoHash) Decode(b []byte) (Hash, error) {
	h := make(Hash)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		if num != fieldEntry || typ != protowire.BytesType {
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		entry, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		name, v, err := decodeProtoEntry(entry)
		if err != nil {
			return nil, err
		}
		h[name] = v
	}
	return h, nil
}

func decodeProtoEntry(b []byte) (string, Value, error) {
	var (
		name    string
		v       = Text("")
		hasName bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", Value{}, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == fieldName && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return "", Value{}, protowire.ParseError(n)
			}
			name, hasName, b = s, true, b[n:]
		case num == fieldText && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return "", Value{}, protowire.ParseError(n)
			}
			v, b = Text(s), b[n:]
		case num == fieldInt && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return "", Value{}, protowire.ParseError(n)
			}
			v, b = Int(protowire.DecodeZigZag(x)), b[n:]
		case num == fieldFloat && typ == protowire.Fixed64Type:
			x, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return "", Value{}, protowire.ParseError(n)
			}
			v, b = Float(math.Float64frombits(x)), b[n:]
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return "", Value{}, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	if !hasName {
		return "", Value{}, fmt.Errorf("%w: no name", errProtoEntry)
	}
	return name, v, nil
}

func (ProtoMembers) Encode(m Members) ([]byte, error) {
	sorted := slices.Clone(m)
	slices.Sort(sorted)
	var out []byte
	for _, s := range sorted {
		out = protowire.AppendTag(out, fieldMember, protowire.BytesType)
		out = protowire.AppendString(out, s)
	}
	return out, nil
}

func (ProtoMembers) Decode(b []byte) (Members, error) {
	var m Members
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		if num != fieldMember || typ != protowire.BytesType {
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		s, n := protowire.ConsumeString(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		m = append(m, s)
		b = b[n:]
	}
	return m, nil
}
