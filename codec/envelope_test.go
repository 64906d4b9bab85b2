package codec

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Header
	Name   string         `json:"name"`
	Scores []int          `json:"scores"`
	Flags  map[string]int `json:"flags,omitempty"`
}

func sampleProfile() *profile {
	return &profile{
		Header: NewHeader(),
		Name:   "player one",
		Scores: []int{10, 20, 30},
		Flags:  map[string]int{"tutorial": 1},
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	codecs := []Codec{JSON{}, GoJSON{}, Msgpack{}}
	compressions := []Compression{Gzip, Zstd, LZ4, None}

	for _, c := range codecs {
		for _, comp := range compressions {
			t.Run(c.Name()+"/"+comp.String(), func(t *testing.T) {
				env := Envelope{Codec: c, Compression: comp}

				packed, err := env.Encode(sampleProfile(), true)
				require.NoError(t, err)
				plain, err := env.Encode(sampleProfile(), false)
				require.NoError(t, err)

				var fromPacked, fromPlain profile
				_, err = env.Decode(packed, &fromPacked)
				require.NoError(t, err)
				_, err = env.Decode(plain, &fromPlain)
				require.NoError(t, err)

				assert.Equal(t, fromPlain, fromPacked)
				assert.Equal(t, *sampleProfile(), fromPacked)
			})
		}
	}
}

func TestEnvelopeFraming(t *testing.T) {
	tests := []struct {
		compression Compression
		magic       []byte
	}{
		{Gzip, gzipMagic},
		{Zstd, zstdMagic},
		{LZ4, lz4Magic},
	}
	for _, tt := range tests {
		t.Run(tt.compression.String(), func(t *testing.T) {
			data, err := Envelope{Compression: tt.compression}.Encode(sampleProfile(), true)
			require.NoError(t, err)
			require.Greater(t, len(data), 1+len(tt.magic))
			assert.Equal(t, Sentinel, data[0])
			assert.Equal(t, tt.magic, data[1:1+len(tt.magic)])

			compressed, kind, err := Inspect(data)
			require.NoError(t, err)
			assert.True(t, compressed)
			assert.Equal(t, tt.compression, kind)
		})
	}

	t.Run("uncompressed is raw text", func(t *testing.T) {
		data, err := Envelope{}.Encode(sampleProfile(), false)
		require.NoError(t, err)
		assert.Equal(t, byte('{'), data[0])
		compressed, _, err := Inspect(data)
		require.NoError(t, err)
		assert.False(t, compressed)
	})

	t.Run("none never writes the sentinel", func(t *testing.T) {
		data, err := Envelope{Compression: None}.Encode(sampleProfile(), true)
		require.NoError(t, err)
		assert.NotEqual(t, Sentinel, data[0])
	})
}

func TestDecodeReturnsStoredVersion(t *testing.T) {
	old := sampleProfile()
	old.Version = 1
	data, err := Envelope{}.Encode(old, true)
	require.NoError(t, err)

	var got profile
	stored, err := Envelope{}.Decode(data, &got)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	assert.Equal(t, CurrentVersion, got.Version)

	var missing profile
	stored, err = Envelope{}.Decode([]byte(`{"name":"x"}`), &missing)
	require.NoError(t, err)
	assert.Equal(t, 0, stored)
	assert.Equal(t, CurrentVersion, missing.FileVersion())
}

func TestDecodeCorrupt(t *testing.T) {
	valid, err := Envelope{}.Encode(sampleProfile(), true)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"one byte", valid[:1]},
		{"truncated gzip", valid[:len(valid)/2]},
		{"sentinel with unknown frame", append([]byte{Sentinel}, "garbage"...)},
		{"not json", []byte("not a save")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p profile
			_, err := Envelope{}.Decode(tt.data, &p)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}

	var p profile
	_, err = Envelope{}.Decode(valid[:1], &p)
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestDecodeLegacy(t *testing.T) {
	old := sampleProfile()
	old.Version = 2
	data := MustMarshal(Msgpack{}, old)

	var got profile
	stored, err := DecodeLegacy(data, &got, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Equal(t, CurrentVersion, got.Version)
	assert.Equal(t, old.Name, got.Name)

	_, err = DecodeLegacy([]byte{0xc1, 0xc1, 0xc1}, &got, Msgpack{})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestEnvelopeLevels(t *testing.T) {
	big := sampleProfile()
	big.Name = strings.Repeat("abc", 2000)

	for _, env := range []Envelope{
		{Compression: Gzip, Level: 9},
		{Compression: Zstd, Level: 19},
		{Compression: LZ4, Level: 42},
	} {
		t.Run(fmt.Sprintf("%s-%d", env.Compression, env.Level), func(t *testing.T) {
			data, err := env.Encode(big, true)
			require.NoError(t, err)
			assert.Less(t, len(data), len(big.Name))

			var got profile
			_, err = env.Decode(data, &got)
			require.NoError(t, err)
			assert.Equal(t, big.Name, got.Name)
		})
	}
}

func TestEncodeToWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Envelope{Compression: Zstd}.EncodeTo(&buf, sampleProfile(), true))

	text, err := Unwrap(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, GoJSON{}.Valid(text))
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    Compression
		wantErr bool
	}{
		{"", Gzip, false},
		{"gzip", Gzip, false},
		{" ZSTD ", Zstd, false},
		{"lz4", LZ4, false},
		{"off", None, false},
		{"brotli", None, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCompression(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json", "msgpack"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("xml")
	assert.False(t, ok)
}

func BenchmarkEnvelopeEncode(b *testing.B) {
	rec := sampleProfile()
	rec.Scores = make([]int, 4096)
	for i := range rec.Scores {
		rec.Scores[i] = i % 17
	}
	for _, comp := range []Compression{None, Gzip, Zstd, LZ4} {
		b.Run(comp.String(), func(b *testing.B) {
			env := Envelope{Compression: comp}
			b.ReportAllocs()
			for b.Loop() {
				if _, err := env.Encode(rec, true); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func TestZstdDecodeConcurrent(t *testing.T) {
	env := Envelope{Compression: Zstd}
	packed, err := env.Encode(sampleProfile(), true)
	require.NoError(t, err)
	truncated := packed[:len(packed)-3]

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var p profile
			if i%4 == 0 {
				_, err := env.Decode(truncated, &p)
				assert.ErrorIs(t, err, ErrCorrupt)
				return
			}
			_, err := env.Decode(packed, &p)
			assert.NoError(t, err)
			assert.Equal(t, "player one", p.Name)
		}()
	}
	wg.Wait()

	dec, err := zstdDecoder()
	require.NoError(t, err)
	again, err := zstdDecoder()
	require.NoError(t, err)
	assert.Same(t, dec, again)
}
