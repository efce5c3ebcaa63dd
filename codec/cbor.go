package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR is a Codec that serializes values using fxamacker/cbor.
// The zero value is NOT ready to use. Construct with NewCBOR or MustCBOR.
//
// Map keys are always sorted (length-first when deterministic=true, per
// RFC 8949 Core Deterministic; bytewise otherwise) so envelopes stay byte-stable.
// Deterministic mode additionally uses shortest-form floats and rejects
// indefinite-length items on decode. Text strings decode byte for byte in
// both modes: the encoder does not validate UTF-8, so the decoder must not
// either or a stored hash could become unreadable.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[map[string]string] = CBOR[map[string]string]{}

func NewCBOR[V any](deterministic bool) (CBOR[V], error) {
	var (
		eo cbor.EncOptions
		do = cbor.DecOptions{UTF8: cbor.UTF8DecodeInvalid}
	)
	if deterministic {
		eo = cbor.CoreDetEncOptions()
		do.IndefLength = cbor.IndefLengthForbidden
	} else {
		eo = cbor.PreferredUnsortedEncOptions()
		eo.Sort = cbor.SortBytewiseLexical
	}

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := do.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error.
// Handy for package-level variables in tests.
func MustCBOR[V any](deterministic bool) CBOR[V] {
	c, err := NewCBOR[V](deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
