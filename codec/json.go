package codec

import "encoding/json"

// JSON is a Codec backed by encoding/json, which already sorts map keys.
// Handy when the backend is inspected by hand; the payload is readable text.
//
// encoding/json rewrites invalid UTF-8 as U+FFFD instead of failing, so it
// is only lossless for types that refuse such text themselves. The
// redcached Value, Hash and Members types do; their writes fail instead.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
