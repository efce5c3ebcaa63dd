package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version byte = 1

	// HeaderLen is the fixed envelope prefix before the payload.
	HeaderLen = 4 + 1 + 1 + 4
)

var (
	ErrCorrupt = errors.New("redcached: corrupt envelope")
	magic4     = [...]byte{0x00, 'R', 'C', 'D'}
)

// HasMagic reports whether b starts with the envelope magic. Values without it
// are bare scalars.
func HasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Envelope: magic(4) | ver(1) | tag(1) | plen(u32 be) | payload(plen)
func EncodeEnvelope(tag byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(HeaderLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(tag)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeEnvelope returns the tag and a payload slice aliasing b.
// The tag is not interpreted here; tag 0 is rejected as it never appears on the wire.
func DecodeEnvelope(b []byte) (tag byte, payload []byte, err error) {
	if len(b) < HeaderLen || !HasMagic(b) || b[4] != version || b[5] == 0 {
		return 0, nil, ErrCorrupt
	}
	tag = b[5]

	off := 6
	plen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if plen < 0 || plen != len(b)-off { // exact: no trailing bytes
		return 0, nil, ErrCorrupt
	}
	return tag, b[off : off+plen], nil
}
