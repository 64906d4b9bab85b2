package storage

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotFound is returned when a file or directory does not exist.
	// It is os.ErrNotExist so that os errors from the local provider match.
	ErrNotFound = os.ErrNotExist

	// ErrAlreadyExists is returned when a destination already exists.
	ErrAlreadyExists = os.ErrExist

	// ErrNotRooted is returned when a provider receives a non-rooted path.
	ErrNotRooted = errors.New("storage: path is not rooted")

	// ErrDirectoryNotEmpty is returned by non-recursive directory deletes.
	ErrDirectoryNotEmpty = errors.New("storage: directory is not empty")

	// ErrRootOperation is returned when a destructive operation targets a root.
	ErrRootOperation = errors.New("storage: operation is not supported on a root directory")

	// ErrIsDirectory is returned when a file operation targets a directory.
	ErrIsDirectory = errors.New("storage: path is a directory")
)

// ArgumentError reports an invalid argument passed to a Provider operation.
type ArgumentError struct {
	Op   string
	Path string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("storage: %s requires a rooted path but got %q", e.Op, e.Path)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// requireRooted returns an *ArgumentError for the first non-rooted path.
func requireRooted(p interface{ IsRooted(string) bool }, op string, paths ...string) error {
	for _, path := range paths {
		if !p.IsRooted(path) {
			return &ArgumentError{Op: op, Path: path, Err: ErrNotRooted}
		}
	}
	return nil
}

// pathError wraps err with the op and path, keeping errors.Is behaviour.
func pathError(op, path string, err error) error {
	return &os.PathError{Op: op, Path: path, Err: err}
}
