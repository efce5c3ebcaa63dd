// Package codec turns envelope payloads into bytes and back.
//
// Every codec used for envelopes must be byte-stable: encoding equal values
// twice yields equal bytes, so map keys are always written in sorted order.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
