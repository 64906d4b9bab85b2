package filehandler

import (
	"context"
	"fmt"

	"github.com/asger60/filehandler/codec"
)

// LoadStatus classifies the outcome of a load.
type LoadStatus uint8

const (
	// StatusLoaded means the stored record was decoded and adopted.
	StatusLoaded LoadStatus = iota
	// StatusMissing means no file exists for the save.
	StatusMissing
	// StatusEmpty means the file exists but holds no bytes.
	StatusEmpty
	// StatusCorrupt means the file could not be decoded and was deleted.
	StatusCorrupt
	// StatusDeprecated means the file decoded but carries an older version
	// than the caller expects.
	StatusDeprecated
)

func (s LoadStatus) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusMissing:
		return "missing"
	case StatusEmpty:
		return "empty"
	case StatusCorrupt:
		return "corrupt"
	case StatusDeprecated:
		return "deprecated"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// LoadResult describes a load.
type LoadResult struct {
	Name   string
	Path   string
	Status LoadStatus
	// StoredVersion is the version read from the payload before it was
	// restamped. Zero unless the payload decoded.
	StoredVersion int
	// Legacy is set when the payload was read by the legacy decoder.
	Legacy bool
	// Err holds the decode failure of a corrupt save.
	Err error
}

// Load returns the stored record for name, or fallback when the save is
// missing, empty, corrupt or older than fallback's version. A nil fallback
// is replaced by a zero record stamped with codec.CurrentVersion.
//
//	type Profile struct {
//		codec.Header
//		Name string `json:"name"`
//	}
//
//	p, res, err := filehandler.Load(ctx, svc, "profile", &Profile{Header: codec.NewHeader()})
func Load[T any, P interface {
	*T
	codec.Record
}](ctx context.Context, s *Service, name string, fallback P) (P, LoadResult, error) {
	want := codec.CurrentVersion
	if fallback != nil {
		want = fallback.FileVersion()
	}
	into := P(new(T))
	res, err := s.LoadDetailed(ctx, name, into, want)
	if err == nil && res.Status == StatusLoaded {
		return into, res, nil
	}
	if fallback != nil {
		return fallback, res, err
	}
	def := P(new(T))
	def.StampVersion()
	return def, res, err
}
