// Package kvstore implements storage.Provider on top of BadgerDB.
//
// Files and directories are stored as keys derived from spath.Path.Key, so
// the store suits case-sensitive path styles (Unix and console volumes). It is
// mainly used to emulate a constrained save volume that survives restarts
// without touching the real filesystem layout.
package kvstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/asger60/filehandler/spath"
	"github.com/asger60/filehandler/storage"
)

const (
	filePrefix = 'f'
	dirPrefix  = 'd'
)

// ErrUnsupportedPlatform is returned for platforms with case-insensitive paths.
var ErrUnsupportedPlatform = errors.New("kvstore: platform paths are case-insensitive")

// Options configures a Store.
type Options struct {
	// Dir is the directory for BadgerDB data files. Required unless InMemory.
	Dir string
	// InMemory runs BadgerDB without disk persistence.
	InMemory bool
	// Platform is the emulated platform. The zero value is storage.Linux.
	Platform storage.Platform
	// Logger receives badger's warnings and errors. Defaults to slog.Default.
	Logger *slog.Logger
	// TempDirectory is reported by TempDirectory. Defaults to the root of the
	// "tmp" volume on consoles and "/tmp" elsewhere.
	TempDirectory string
}

// Store is a BadgerDB-backed Provider.
type Store struct {
	storage.TextOps

	db       *badger.DB
	platform storage.Platform
	style    spath.Style
	temp     string
}

var _ storage.Provider = (*Store)(nil)

// Open opens or creates a store.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("kvstore: Options.Dir is required for on-disk mode")
	}
	if !opts.Platform.PathStyle().CaseSensitive() {
		return nil, ErrUnsupportedPlatform
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(slogAdapter{logger: logger})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open: %w", err)
	}

	temp := opts.TempDirectory
	if temp == "" {
		if opts.Platform == storage.Console {
			temp = "tmp:/"
		} else {
			temp = "/tmp"
		}
	}
	s := &Store{
		db:       db,
		platform: opts.Platform,
		style:    opts.Platform.PathStyle(),
		temp:     temp,
	}
	s.TextOps = storage.NewTextOps(s)
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Platform() storage.Platform { return s.platform }

func (s *Store) IsRooted(p string) bool { return s.style.IsRooted(p) }

func (s *Store) parse(op, text string) (spath.Path, error) {
	if !s.IsRooted(text) {
		return spath.Path{}, &storage.ArgumentError{Op: op, Path: text, Err: storage.ErrNotRooted}
	}
	p, err := s.style.Parse(text)
	if err != nil {
		return spath.Path{}, &storage.ArgumentError{Op: op, Path: text, Err: err}
	}
	return p, nil
}

func fileKey(p spath.Path) []byte { return append([]byte{filePrefix}, p.Key()...) }
func dirKey(p spath.Path) []byte  { return append([]byte{dirPrefix}, p.Key()...) }

// childPrefix returns the key prefix shared by every entry below dir.
func childPrefix(kind byte, dir spath.Path) []byte {
	return append(append([]byte{kind}, dir.Key()...), '/')
}

func pathErr(op, p string, err error) error {
	return &os.PathError{Op: op, Path: p, Err: err}
}

func has(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func isDir(txn *badger.Txn, p spath.Path) (bool, error) {
	if p.IsRoot() {
		return true, nil
	}
	return has(txn, dirKey(p))
}

// parentIsDir reports whether the parent of p exists as a directory.
func parentIsDir(txn *badger.Txn, p spath.Path) (bool, error) {
	parent, err := p.Parent()
	if err != nil {
		return false, nil
	}
	return isDir(txn, parent)
}

func (s *Store) FileExists(text string) (bool, error) {
	p, err := s.parse("FileExists", text)
	if err != nil {
		return false, err
	}
	var ok bool
	err = s.db.View(func(txn *badger.Txn) error {
		ok, err = has(txn, fileKey(p))
		return err
	})
	return ok, err
}

func (s *Store) DirectoryExists(text string) (bool, error) {
	p, err := s.parse("DirectoryExists", text)
	if err != nil {
		return false, err
	}
	var ok bool
	err = s.db.View(func(txn *badger.Txn) error {
		ok, err = isDir(txn, p)
		return err
	})
	return ok, err
}

func (s *Store) ReadAllBytes(text string) ([]byte, error) {
	p, err := s.parse("ReadAllBytes", text)
	if err != nil {
		return nil, err
	}
	var val []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(fileKey(p))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, pathErr("ReadAllBytes", text, storage.ErrNotFound)
	}
	return val, err
}

// putFile writes data to p inside txn after checking p can hold a file.
func putFile(txn *badger.Txn, op, text string, p spath.Path, data []byte) error {
	if dir, err := isDir(txn, p); err != nil {
		return err
	} else if dir {
		return pathErr(op, text, storage.ErrIsDirectory)
	}
	if ok, err := parentIsDir(txn, p); err != nil {
		return err
	} else if !ok {
		return pathErr(op, text, storage.ErrNotFound)
	}
	if data == nil {
		data = []byte{}
	}
	return txn.Set(fileKey(p), data)
}

func (s *Store) WriteAllBytes(text string, data []byte) error {
	p, err := s.parse("WriteAllBytes", text)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return putFile(txn, "WriteAllBytes", text, p, data)
	})
}

func (s *Store) AppendBytes(text string, data []byte) error {
	p, err := s.parse("AppendBytes", text)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		var existing []byte
		item, err := txn.Get(fileKey(p))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if existing, err = item.ValueCopy(nil); err != nil {
				return err
			}
		}
		return putFile(txn, "AppendBytes", text, p, append(existing, data...))
	})
}

func (s *Store) CopyFile(src, dst string, overwrite bool) error {
	sp, err := s.parse("CopyFile", src)
	if err != nil {
		return err
	}
	dp, err := s.parse("CopyFile", dst)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(fileKey(sp))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return pathErr("CopyFile", src, storage.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if !overwrite {
			if exists, err := has(txn, fileKey(dp)); err != nil {
				return err
			} else if exists {
				return pathErr("CopyFile", dst, storage.ErrAlreadyExists)
			}
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return putFile(txn, "CopyFile", dst, dp, data)
	})
}

func (s *Store) MoveFile(src, dst string) error {
	sp, err := s.parse("MoveFile", src)
	if err != nil {
		return err
	}
	dp, err := s.parse("MoveFile", dst)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(fileKey(sp))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return pathErr("MoveFile", src, storage.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if exists, err := has(txn, fileKey(dp)); err != nil {
			return err
		} else if exists {
			return pathErr("MoveFile", dst, storage.ErrAlreadyExists)
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := putFile(txn, "MoveFile", dst, dp, data); err != nil {
			return err
		}
		return txn.Delete(fileKey(sp))
	})
}

func (s *Store) DeleteFile(text string) error {
	p, err := s.parse("DeleteFile", text)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if ok, err := has(txn, fileKey(p)); err != nil {
			return err
		} else if !ok {
			return pathErr("DeleteFile", text, storage.ErrNotFound)
		}
		return txn.Delete(fileKey(p))
	})
}

func (s *Store) CreateDirectory(text string) error {
	p, err := s.parse("CreateDirectory", text)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		chain := []spath.Path{p}
		for a := range p.Ancestors() {
			chain = append(chain, a)
		}
		for _, dir := range chain {
			if dir.IsRoot() {
				continue
			}
			if ok, err := has(txn, fileKey(dir)); err != nil {
				return err
			} else if ok {
				return pathErr("CreateDirectory", dir.String(), storage.ErrAlreadyExists)
			}
			if err := txn.Set(dirKey(dir), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) DeleteDirectory(text string, recursive bool) error {
	p, err := s.parse("DeleteDirectory", text)
	if err != nil {
		return err
	}
	if p.IsRoot() {
		return pathErr("DeleteDirectory", text, storage.ErrRootOperation)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if ok, err := isDir(txn, p); err != nil {
			return err
		} else if !ok {
			return pathErr("DeleteDirectory", text, storage.ErrNotFound)
		}
		children := append(keysWithPrefix(txn, childPrefix(filePrefix, p)),
			keysWithPrefix(txn, childPrefix(dirPrefix, p))...)
		if len(children) > 0 && !recursive {
			return pathErr("DeleteDirectory", text, storage.ErrDirectoryNotEmpty)
		}
		for _, k := range children {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return txn.Delete(dirKey(p))
	})
}

func (s *Store) MoveDirectory(src, dst string) error {
	sp, err := s.parse("MoveDirectory", src)
	if err != nil {
		return err
	}
	dp, err := s.parse("MoveDirectory", dst)
	if err != nil {
		return err
	}
	if sp.IsRoot() {
		return pathErr("MoveDirectory", src, storage.ErrRootOperation)
	}
	if inside, _ := dp.IsChildOf(sp); inside {
		return &storage.ArgumentError{Op: "MoveDirectory", Path: dst, Err: storage.ErrRootOperation}
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if ok, err := isDir(txn, sp); err != nil {
			return err
		} else if !ok {
			return pathErr("MoveDirectory", src, storage.ErrNotFound)
		}
		if ok, err := isDir(txn, dp); err != nil {
			return err
		} else if ok {
			return pathErr("MoveDirectory", dst, storage.ErrAlreadyExists)
		}
		if ok, err := has(txn, fileKey(dp)); err != nil {
			return err
		} else if ok {
			return pathErr("MoveDirectory", dst, storage.ErrAlreadyExists)
		}
		if ok, err := parentIsDir(txn, dp); err != nil {
			return err
		} else if !ok {
			return pathErr("MoveDirectory", dst, storage.ErrNotFound)
		}

		oldBase, newBase := sp.Key(), dp.Key()
		for _, kind := range []byte{filePrefix, dirPrefix} {
			for _, k := range keysWithPrefix(txn, childPrefix(kind, sp)) {
				item, err := txn.Get(k)
				if err != nil {
					return err
				}
				val, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				moved := append([]byte{kind}, newBase...)
				moved = append(moved, k[1+len(oldBase):]...)
				if err := txn.Set(moved, val); err != nil {
					return err
				}
				if err := txn.Delete(k); err != nil {
					return err
				}
			}
		}
		if err := txn.Delete(dirKey(sp)); err != nil {
			return err
		}
		return txn.Set(dirKey(dp), []byte{})
	})
}

// keysWithPrefix collects keys first so callers may mutate inside txn.
func keysWithPrefix(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

func (s *Store) Files(dir, pattern string, recursive bool) ([]string, error) {
	return s.enumerate("Files", filePrefix, dir, pattern, recursive)
}

func (s *Store) Directories(dir, pattern string, recursive bool) ([]string, error) {
	return s.enumerate("Directories", dirPrefix, dir, pattern, recursive)
}

func (s *Store) enumerate(op string, kind byte, text, pattern string, recursive bool) ([]string, error) {
	p, err := s.parse(op, text)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		pattern = "*"
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, err
	}
	var out []string
	err = s.db.View(func(txn *badger.Txn) error {
		if ok, err := isDir(txn, p); err != nil {
			return err
		} else if !ok {
			return pathErr(op, text, storage.ErrNotFound)
		}
		prefix := childPrefix(kind, p)
		for _, k := range keysWithPrefix(txn, prefix) {
			rest := string(k[len(prefix):])
			if !recursive && strings.Contains(rest, "/") {
				continue
			}
			name := rest[strings.LastIndexByte(rest, '/')+1:]
			if ok, _ := path.Match(pattern, name); !ok {
				continue
			}
			entry, err := s.fromKey(k[1:])
			if err != nil {
				return err
			}
			out = append(out, entry)
		}
		return nil
	})
	return out, err
}

// fromKey rebuilds the display form of a path from its Key. Keys of
// case-sensitive styles are not folded, so the mapping is exact.
func (s *Store) fromKey(key []byte) (string, error) {
	k := string(key)
	if len(k) < 2 || k[0] != 'a' {
		return "", fmt.Errorf("kvstore: malformed key %q", k)
	}
	volume, rest, ok := strings.Cut(k[1:], ":")
	if !ok {
		return "", fmt.Errorf("kvstore: malformed key %q", k)
	}
	if rest == "" {
		rest = "/"
	}
	if volume != "" {
		return volume + ":" + rest, nil
	}
	return rest, nil
}

// CurrentDirectory is the root of the emulated medium.
func (s *Store) CurrentDirectory() string {
	if s.platform == storage.Console {
		return ""
	}
	return "/"
}

func (s *Store) TempDirectory() string { return s.temp }

// SpecialFolder reports only the temporary directory.
func (s *Store) SpecialFolder(f storage.Folder) (string, error) {
	if f == storage.FolderTemp {
		return s.temp, nil
	}
	return "", pathErr("SpecialFolder", "", storage.ErrNotFound)
}

// slogAdapter routes badger logging to slog. Info and debug output is
// dropped.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Errorf(f string, v ...any) {
	a.logger.Error(strings.TrimSpace(fmt.Sprintf(f, v...)), "component", "badger")
}

func (a slogAdapter) Warningf(f string, v ...any) {
	a.logger.Warn(strings.TrimSpace(fmt.Sprintf(f, v...)), "component", "badger")
}

func (slogAdapter) Infof(string, ...any)  {}
func (slogAdapter) Debugf(string, ...any) {}
