// Package codec turns save records into the persisted byte format and back.
//
// A record is first encoded to structured text by a Codec, then optionally
// compressed by an Envelope. Changing the default text codec is a breaking
// change for files written by older builds; the compression layer is
// self-describing and may change freely.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
//
// Configuration files and the farctl tool refer to codecs by these names.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json", "":
		return GoJSON{}, true
	case "msgpack":
		return Msgpack{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
