package redcached

import (
	"fmt"

	"github.com/unkn0wn-root/redcached/internal/wire"
)

// Type is the tag stored in an envelope. It decides which command family may
// touch a key. Bare scalars are TypeString.
type Type byte

const (
	TypeNone Type = iota // key is absent
	TypeString
	TypeHash
	TypeSet
	TypeList
	TypeSortedSet
)

var typeNames = [...]string{
	TypeNone:      "none",
	TypeString:    "string",
	TypeHash:      "hash",
	TypeSet:       "set",
	TypeList:      "list",
	TypeSortedSet: "zset",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", byte(t))
}

// ParseType accepts the names returned by Type.String.
func ParseType(s string) (Type, error) {
	for i, n := range typeNames {
		if n == s {
			return Type(i), nil
		}
	}
	return TypeNone, fmt.Errorf("redcached: unknown type %q", s)
}

func (t Type) stored() bool { return t > TypeNone && t <= TypeSortedSet }

// inspect classifies raw backend bytes without decoding a collection payload.
// For TypeString the returned payload is the scalar text.
func inspect(raw []byte) (Type, []byte, error) {
	if !wire.HasMagic(raw) {
		return TypeString, raw, nil
	}
	tag, payload, err := wire.DecodeEnvelope(raw)
	if err != nil {
		return TypeNone, nil, err
	}
	if t := Type(tag); t.stored() {
		return t, payload, nil
	}
	return TypeNone, nil, fmt.Errorf("%w: unknown type tag %d", wire.ErrCorrupt, tag)
}

// requireType returns the payload held under key when it is of type want.
// Absent keys yield ok=false and no error; anything else that is not want
// is a *WrongTypeError.
func (cl *client) requireType(key string, raw []byte, present bool, want Type) (payload []byte, ok bool, err error) {
	if !present {
		return nil, false, nil
	}
	got, payload, err := inspect(raw)
	if err != nil {
		cl.hooks.CorruptEnvelope(cl.storageKey(key), err)
		cl.log.Warn("undecodable envelope", Fields{"key": key, "want": want.String(), "err": err})
		return nil, false, &WrongTypeError{Key: key, Want: want, Err: err}
	}
	if got != want {
		cl.hooks.WrongType(key, want, got)
		return nil, false, &WrongTypeError{Key: key, Want: want, Got: got}
	}
	return payload, true, nil
}
