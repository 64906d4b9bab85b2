package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Sentinel is the leading byte of a compressed save.
const Sentinel byte = 0xDE

var (
	// ErrCorrupt is returned when persisted bytes cannot be decoded.
	ErrCorrupt = errors.New("codec: corrupt save data")

	// ErrTooShort is returned for payloads shorter than two bytes. It wraps
	// ErrCorrupt.
	ErrTooShort = fmt.Errorf("%w: payload shorter than 2 bytes", ErrCorrupt)
)

// Envelope encodes records to the persisted save format:
//
//	compressed:   0xDE <frame>   where <frame> is gzip, zstd or lz4
//	uncompressed: <text>
//
// Frames are identified by their own magic number, so a payload that starts
// with 0xDE but carries no known frame is read as uncompressed text.
//
// The zero value uses Default and Gzip.
type Envelope struct {
	Codec       Codec
	Compression Compression
	// Level is passed to the compressor; 0 selects its default.
	Level int
}

func (e Envelope) codec() Codec {
	if e.Codec == nil {
		return Default
	}
	return e.Codec
}

// Encode serializes rec and compresses it when compress is set.
func (e Envelope) Encode(rec Record, compress bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.EncodeTo(&buf, rec, compress); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes the encoded form of rec to w.
func (e Envelope) EncodeTo(w io.Writer, rec Record, compress bool) error {
	text, err := e.codec().Marshal(rec)
	if err != nil {
		return fmt.Errorf("codec: marshal with %s: %w", e.codec().Name(), err)
	}
	if !compress || e.Compression == None {
		_, err := w.Write(text)
		return err
	}
	if _, err := w.Write([]byte{Sentinel}); err != nil {
		return err
	}
	if err := compressTo(w, e.Compression, e.Level, text); err != nil {
		return fmt.Errorf("codec: %s: %w", e.Compression, err)
	}
	return nil
}

// Decode fills rec from data and returns the version that was stored in the
// payload. rec is stamped with CurrentVersion afterwards, so deprecation
// checks must use the returned value. Failures wrap ErrCorrupt.
func (e Envelope) Decode(data []byte, rec Record) (int, error) {
	text, err := Unwrap(data)
	if err != nil {
		return 0, err
	}
	if err := e.codec().Unmarshal(text, rec); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrCorrupt, e.codec().Name(), err)
	}
	stored := rec.FileVersion()
	rec.StampVersion()
	return stored, nil
}

// Unwrap strips the sentinel and decompresses a save, returning the encoded
// text.
func Unwrap(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, ErrTooShort
	}
	if data[0] != Sentinel {
		return data, nil
	}
	c, ok := sniff(data[1:])
	if !ok {
		return data, nil
	}
	text, err := decompress(c, data[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, c, err)
	}
	return text, nil
}

// Inspect reports how data is framed without decoding the record.
func Inspect(data []byte) (compressed bool, c Compression, err error) {
	if len(data) < 2 {
		return false, None, ErrTooShort
	}
	if data[0] != Sentinel {
		return false, None, nil
	}
	c, ok := sniff(data[1:])
	return ok, c, nil
}

// DecodeLegacy decodes a save written in the obsolete binary format by the
// legacy codec. The payload has no sentinel or compression. It returns the
// stored version and stamps rec like Decode.
func DecodeLegacy(data []byte, rec Record, legacy Codec) (int, error) {
	if legacy == nil {
		legacy = Msgpack{}
	}
	if len(data) < 2 {
		return 0, ErrTooShort
	}
	if err := legacy.Unmarshal(data, rec); err != nil {
		return 0, fmt.Errorf("%w: legacy %s: %w", ErrCorrupt, legacy.Name(), err)
	}
	stored := rec.FileVersion()
	rec.StampVersion()
	return stored, nil
}
