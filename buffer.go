package filehandler

import "bytes"

// bufferState tracks where the bytes of a save buffer live.
type bufferState uint8

const (
	bufferEmpty bufferState = iota
	bufferStaged
	bufferCommitted
)

func (s bufferState) String() string {
	switch s {
	case bufferStaged:
		return "staged"
	case bufferCommitted:
		return "committed"
	default:
		return "empty"
	}
}

// buffer stages the encoded bytes of one logical save.
type buffer struct {
	name  string
	file  string
	sink  *bytes.Buffer
	state bufferState
}

func newBuffer(name, file string) *buffer {
	return &buffer{name: name, file: file}
}

// reset opens a fresh sink. Bytes staged by an earlier cycle are dropped.
func (b *buffer) reset() *bytes.Buffer {
	b.sink = new(bytes.Buffer)
	b.state = bufferEmpty
	return b.sink
}

func (b *buffer) stage() { b.state = bufferStaged }

func (b *buffer) commit() { b.state = bufferCommitted }

// payload returns the staged bytes, or nil when nothing was staged.
func (b *buffer) payload() []byte {
	if b.sink == nil {
		return nil
	}
	return b.sink.Bytes()
}
