package filehandler

import (
	"errors"
	"fmt"

	"github.com/asger60/filehandler/mount"
)

var (
	// ErrClosed is returned by operations on a closed Service.
	ErrClosed = errors.New("filehandler: service closed")

	// ErrInvalidName is returned for save names the mount cannot address.
	ErrInvalidName = errors.New("filehandler: invalid save name")

	// ErrNoMount is returned when a Service is created without a mount point.
	ErrNoMount = errors.New("filehandler: no mount point")
)

// CorruptSaveError describes a save that existed but could not be decoded.
// Load recovers from it by deleting the file; the error is reported through
// LoadResult.Err and the logger.
//
// The decode error can be accessed via errors.Unwrap.
type CorruptSaveError struct {
	Name  string
	Path  string
	Bytes int
	cause error
}

func (e *CorruptSaveError) Error() string {
	return fmt.Sprintf("filehandler: save %q at %s is corrupt (%d bytes): %v", e.Name, e.Path, e.Bytes, e.cause)
}

func (e *CorruptSaveError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mount.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	if errors.Is(err, mount.ErrInvalidName) {
		return fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	return err
}
