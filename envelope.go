package redcached

import (
	"slices"

	"github.com/unkn0wn-root/redcached/internal/wire"
)

// encodeScalar returns the bare text of v. Text that happens to start with the
// envelope magic is wrapped in a string envelope so it is never mistaken for one.
func encodeScalar(v Value) []byte {
	b := []byte(v.Text())
	if wire.HasMagic(b) {
		return wire.EncodeEnvelope(byte(TypeString), b)
	}
	return b
}

// decodeScalar turns a TypeString payload (as returned by requireType) into a Value.
func decodeScalar(payload []byte) Value {
	return parseScalar(string(payload))
}

func (cl *client) encodeHash(h Hash) ([]byte, error) {
	payload, err := cl.hashCodec.Encode(h)
	if err != nil {
		return nil, err
	}
	return wire.EncodeEnvelope(byte(TypeHash), payload), nil
}

func (cl *client) decodeHash(key string, payload []byte) (Hash, error) {
	h, err := cl.hashCodec.Decode(payload)
	if err != nil {
		cl.hooks.CorruptEnvelope(cl.storageKey(key), err)
		return nil, &WrongTypeError{Key: key, Want: TypeHash, Got: TypeHash, Err: err}
	}
	if h == nil {
		h = make(Hash)
	}
	return h, nil
}

func (cl *client) encodeSet(m Members) ([]byte, error) {
	slices.Sort(m)
	payload, err := cl.setCodec.Encode(m)
	if err != nil {
		return nil, err
	}
	return wire.EncodeEnvelope(byte(TypeSet), payload), nil
}

func (cl *client) decodeSet(key string, payload []byte) (Members, error) {
	m, err := cl.setCodec.Decode(payload)
	if err != nil {
		cl.hooks.CorruptEnvelope(cl.storageKey(key), err)
		return nil, &WrongTypeError{Key: key, Want: TypeSet, Got: TypeSet, Err: err}
	}
	return m, nil
}
