package codec

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the frame format written after the sentinel byte.
type Compression uint8

const (
	// Gzip writes a gzip stream. It is the format every build can read.
	Gzip Compression = iota
	// Zstd writes a zstd frame (better ratio, faster decode).
	Zstd
	// LZ4 writes an LZ4 frame (fastest, lower ratio).
	LZ4
	// None never compresses, even when compression is requested.
	None
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// String returns the configuration name of c.
func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	case None:
		return "none"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses a configuration name. The empty string selects Gzip.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gzip":
		return Gzip, nil
	case "zstd":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	case "none", "off":
		return None, nil
	default:
		return None, fmt.Errorf("codec: unknown compression %q", name)
	}
}

// sniff identifies the compressed frame at the start of data.
func sniff(data []byte) (Compression, bool) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip, true
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd, true
	case bytes.HasPrefix(data, lz4Magic):
		return LZ4, true
	default:
		return None, false
	}
}

// compressTo writes data to w as a single frame. level 0 selects the
// algorithm's default.
func compressTo(w io.Writer, c Compression, level int, data []byte) error {
	var zw io.WriteCloser
	switch c {
	case Gzip:
		if level == 0 {
			level = gzip.DefaultCompression
		}
		gw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return err
		}
		zw = gw
	case Zstd:
		el := zstd.SpeedDefault
		if level != 0 {
			el = zstd.EncoderLevelFromZstd(level)
		}
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(el))
		if err != nil {
			return err
		}
		zw = enc
	case LZ4:
		lw := lz4.NewWriter(w)
		if err := lw.Apply(lz4.CompressionLevelOption(lz4Level(level))); err != nil {
			return err
		}
		zw = lw
	default:
		_, err := w.Write(data)
		return err
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

func lz4Level(level int) lz4.CompressionLevel {
	return lz4Levels[max(0, min(level, len(lz4Levels)-1))]
}

// zstdDecoder is shared by every DecodeAll call, which is safe for
// concurrent use. It is never closed.
var zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
})

// decompress inflates a single frame of kind c.
func decompress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case Gzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case Zstd:
		dec, err := zstdDecoder()
		if err != nil {
			return nil, err
		}
		return dec.DecodeAll(data, nil)
	case LZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	default:
		return data, nil
	}
}
