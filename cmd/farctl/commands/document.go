package commands

import (
	"github.com/asger60/filehandler/codec"
)

// document is a save record of unknown shape. It keeps every field so that
// unpack and pack are lossless.
type document map[string]any

var _ codec.Record = (*document)(nil)

func (d *document) FileVersion() int {
	switch v := (*d)["fileVersion"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	default:
		return 0
	}
}

func (d *document) StampVersion() {
	if *d == nil {
		*d = document{}
	}
	(*d)["fileVersion"] = codec.CurrentVersion
}

// restore puts back the stored version after a decode stamped the current
// one, so tools report and re-encode what is actually on disk.
func (d *document) restore(version int) {
	if *d == nil {
		*d = document{}
	}
	(*d)["fileVersion"] = version
}
