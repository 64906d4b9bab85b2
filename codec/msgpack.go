package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack is a binary codec backed by github.com/vmihailenco/msgpack/v5.
//
// Struct fields are keyed by their json tags so one record type serves both
// the text and the binary formats. Saves written by old builds used this
// format; new saves never do.
type Msgpack struct{}

// Marshal encodes the value to msgpack.
func (Msgpack) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes msgpack data into v.
func (Msgpack) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// Name returns the unique name of the codec ("msgpack").
func (Msgpack) Name() string { return "msgpack" }
