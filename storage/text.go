package storage

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ByteIO is the subset of Provider that TextOps is built on.
type ByteIO interface {
	ReadAllBytes(path string) ([]byte, error)
	WriteAllBytes(path string, data []byte) error
	AppendBytes(path string, data []byte) error
}

// TextOps implements the text and line operations of Provider on top of a
// backend's byte operations. Backends embed it and point it at themselves.
type TextOps struct {
	raw ByteIO
}

// NewTextOps returns text operations that read and write through raw.
func NewTextOps(raw ByteIO) TextOps { return TextOps{raw: raw} }

// UTF8 is the default text encoding. A leading byte-order mark is stripped
// on read.
var UTF8 encoding.Encoding = unicode.UTF8BOM

func (t TextOps) ReadAllText(path string) (string, error) {
	return t.ReadAllTextEncoding(path, UTF8)
}

func (t TextOps) WriteAllText(path string, contents string) error {
	return t.raw.WriteAllBytes(path, []byte(contents))
}

func (t TextOps) ReadAllTextEncoding(path string, enc encoding.Encoding) (string, error) {
	data, err := t.raw.ReadAllBytes(path)
	if err != nil {
		return "", err
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func (t TextOps) WriteAllTextEncoding(path string, contents string, enc encoding.Encoding) error {
	encoded, err := enc.NewEncoder().Bytes([]byte(contents))
	if err != nil {
		return err
	}
	return t.raw.WriteAllBytes(path, encoded)
}

func (t TextOps) ReadAllLines(path string) ([]string, error) {
	text, err := t.ReadAllText(path)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n"), nil
}

func (t TextOps) WriteAllLines(path string, lines []string) error {
	return t.raw.WriteAllBytes(path, joinLines(lines))
}

func (t TextOps) AppendLines(path string, lines ...string) error {
	return t.raw.AppendBytes(path, joinLines(lines))
}

func joinLines(lines []string) []byte {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
