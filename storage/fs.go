package storage

import (
	"errors"

	"github.com/google/uuid"

	"github.com/asger60/filehandler/spath"
)

// ErrNotDirectory is returned when a directory operation targets a file.
var ErrNotDirectory = errors.New("storage: path is not a directory")

// DeleteMode controls how Delete reacts to I/O failures.
type DeleteMode uint8

const (
	// DeleteNormal reports every failure.
	DeleteNormal DeleteMode = iota
	// DeleteSoft ignores I/O failures while removing the target.
	DeleteSoft
)

// FS offers path-level conveniences over a Provider. Relative paths are
// resolved against the provider's current directory.
type FS struct {
	p     Provider
	style spath.Style
}

// NewFS wraps p.
func NewFS(p Provider) *FS {
	return &FS{p: p, style: p.Platform().PathStyle()}
}

// Provider returns the wrapped provider.
func (f *FS) Provider() Provider { return f.p }

// Parse parses text with the provider's path style.
func (f *FS) Parse(text string) (spath.Path, error) { return f.style.Parse(text) }

func (f *FS) abs(p spath.Path) (spath.Path, error) {
	if !p.IsInitialized() {
		return spath.Path{}, spath.ErrUninitialized
	}
	if !p.IsRelative() {
		return p, nil
	}
	cwd, err := f.style.Parse(f.p.CurrentDirectory())
	if err != nil {
		return spath.Path{}, err
	}
	return p.MakeAbsolute(cwd)
}

func (f *FS) absNotRoot(op string, p spath.Path) (spath.Path, error) {
	a, err := f.abs(p)
	if err != nil {
		return spath.Path{}, err
	}
	if a.IsRoot() {
		return spath.Path{}, pathError(op, a.String(), ErrRootOperation)
	}
	return a, nil
}

// FileExists reports whether p names an existing file.
func (f *FS) FileExists(p spath.Path) (bool, error) {
	a, err := f.abs(p)
	if err != nil {
		return false, err
	}
	return f.p.FileExists(a.String())
}

// DirectoryExists reports whether p names an existing directory.
func (f *FS) DirectoryExists(p spath.Path) (bool, error) {
	a, err := f.abs(p)
	if err != nil {
		return false, err
	}
	return f.p.DirectoryExists(a.String())
}

// Exists reports whether p names a file or a directory.
func (f *FS) Exists(p spath.Path) (bool, error) {
	if ok, err := f.FileExists(p); err != nil || ok {
		return ok, err
	}
	return f.DirectoryExists(p)
}

// CreateFile creates an empty file at p, creating parent directories.
func (f *FS) CreateFile(p spath.Path) (spath.Path, error) {
	a, err := f.absNotRoot("CreateFile", p)
	if err != nil {
		return spath.Path{}, err
	}
	if err := f.EnsureParentDirectoryExists(a); err != nil {
		return spath.Path{}, err
	}
	return a, f.p.WriteAllBytes(a.String(), nil)
}

// CreateDirectory creates p and any missing parents.
func (f *FS) CreateDirectory(p spath.Path) (spath.Path, error) {
	a, err := f.absNotRoot("CreateDirectory", p)
	if err != nil {
		return spath.Path{}, err
	}
	return a, f.p.CreateDirectory(a.String())
}

// EnsureDirectoryExists creates p unless it already is a directory. Roots
// always exist.
func (f *FS) EnsureDirectoryExists(p spath.Path) error {
	a, err := f.abs(p)
	if err != nil {
		return err
	}
	if a.IsRoot() {
		return nil
	}
	ok, err := f.p.DirectoryExists(a.String())
	if err != nil || ok {
		return err
	}
	return f.p.CreateDirectory(a.String())
}

// EnsureParentDirectoryExists creates the directory containing p.
func (f *FS) EnsureParentDirectoryExists(p spath.Path) error {
	a, err := f.abs(p)
	if err != nil {
		return err
	}
	parent, err := a.Parent()
	if err != nil {
		return err
	}
	return f.EnsureDirectoryExists(parent)
}

// Delete removes the file or directory tree at p. It fails with ErrNotFound
// when nothing exists at p.
func (f *FS) Delete(p spath.Path, mode DeleteMode) error {
	a, err := f.absNotRoot("Delete", p)
	if err != nil {
		return err
	}
	isFile, err := f.p.FileExists(a.String())
	if err != nil {
		return err
	}
	isDir := false
	if !isFile {
		if isDir, err = f.p.DirectoryExists(a.String()); err != nil {
			return err
		}
	}
	if !isFile && !isDir {
		return pathError("Delete", a.String(), ErrNotFound)
	}
	if isFile {
		err = f.p.DeleteFile(a.String())
	} else {
		err = f.p.DeleteDirectory(a.String(), true)
	}
	if err != nil && mode == DeleteSoft && !isArgumentError(err) {
		return nil
	}
	return err
}

// DeleteIfExists deletes p when it exists.
func (f *FS) DeleteIfExists(p spath.Path, mode DeleteMode) error {
	ok, err := f.Exists(p)
	if err != nil || !ok {
		return err
	}
	return f.Delete(p, mode)
}

// DeleteContents empties the directory p, creating it if missing. Failures
// are ignored as long as no file remains below p afterwards.
func (f *FS) DeleteContents(p spath.Path) (spath.Path, error) {
	a, err := f.absNotRoot("DeleteContents", p)
	if err != nil {
		return spath.Path{}, err
	}
	if ok, err := f.p.FileExists(a.String()); err != nil {
		return spath.Path{}, err
	} else if ok {
		return spath.Path{}, pathError("DeleteContents", a.String(), ErrNotDirectory)
	}
	ok, err := f.p.DirectoryExists(a.String())
	if err != nil {
		return spath.Path{}, err
	}
	if !ok {
		return a, f.p.CreateDirectory(a.String())
	}

	if delErr := f.deleteChildren(a); delErr != nil {
		left, err := f.p.Files(a.String(), "*", true)
		if err != nil {
			return spath.Path{}, err
		}
		if len(left) > 0 {
			return spath.Path{}, delErr
		}
	}
	return a, nil
}

func (f *FS) deleteChildren(dir spath.Path) error {
	files, err := f.p.Files(dir.String(), "*", false)
	if err != nil {
		return err
	}
	var errs []error
	for _, file := range files {
		errs = append(errs, f.p.DeleteFile(file))
	}
	dirs, err := f.p.Directories(dir.String(), "*", false)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		errs = append(errs, f.p.DeleteDirectory(d, true))
	}
	return errors.Join(errs...)
}

// Move moves the file or directory src to dst and returns the final
// location. A relative dst is resolved against the parent of src; an
// existing directory dst receives src under its own name. An existing file
// at the destination is replaced.
func (f *FS) Move(src, dst spath.Path) (spath.Path, error) {
	a, err := f.absNotRoot("Move", src)
	if err != nil {
		return spath.Path{}, err
	}
	d, err := f.resolveDestination(a, dst)
	if err != nil {
		return spath.Path{}, err
	}
	if ok, err := f.p.FileExists(a.String()); err != nil {
		return spath.Path{}, err
	} else if ok {
		if err := f.DeleteIfExists(d, DeleteNormal); err != nil {
			return spath.Path{}, err
		}
		if err := f.EnsureParentDirectoryExists(d); err != nil {
			return spath.Path{}, err
		}
		return d, f.p.MoveFile(a.String(), d.String())
	}
	if ok, err := f.p.DirectoryExists(a.String()); err != nil {
		return spath.Path{}, err
	} else if ok {
		return d, f.p.MoveDirectory(a.String(), d.String())
	}
	return spath.Path{}, pathError("Move", a.String(), ErrNotFound)
}

// Copy copies the file or directory tree src to dst and returns the final
// location. Destinations are resolved like Move. Files whose destination is
// rejected by filter are skipped; a nil filter accepts everything.
func (f *FS) Copy(src, dst spath.Path, filter func(spath.Path) bool) (spath.Path, error) {
	a, err := f.abs(src)
	if err != nil {
		return spath.Path{}, err
	}
	d, err := f.resolveDestination(a, dst)
	if err != nil {
		return spath.Path{}, err
	}
	if filter == nil {
		filter = func(spath.Path) bool { return true }
	}
	return f.copyTo(a, d, filter)
}

func (f *FS) resolveDestination(src, dst spath.Path) (spath.Path, error) {
	if !dst.IsInitialized() {
		return spath.Path{}, spath.ErrUninitialized
	}
	if dst.IsRelative() {
		parent, err := src.Parent()
		if err != nil {
			return spath.Path{}, err
		}
		if dst, err = parent.Combine(dst); err != nil {
			return spath.Path{}, err
		}
	}
	ok, err := f.p.DirectoryExists(dst.String())
	if err != nil || !ok {
		return dst, err
	}
	name, err := src.FileName()
	if err != nil {
		return spath.Path{}, err
	}
	return dst.CombineStrings(name)
}

func (f *FS) copyTo(src, dst spath.Path, filter func(spath.Path) bool) (spath.Path, error) {
	if ok, err := f.p.FileExists(src.String()); err != nil {
		return spath.Path{}, err
	} else if ok {
		if !filter(dst) {
			return spath.Path{}, nil
		}
		if err := f.EnsureParentDirectoryExists(dst); err != nil {
			return spath.Path{}, err
		}
		return dst, f.p.CopyFile(src.String(), dst.String(), true)
	}
	if ok, err := f.p.DirectoryExists(src.String()); err != nil {
		return spath.Path{}, err
	} else if !ok {
		return spath.Path{}, pathError("Copy", src.String(), ErrNotFound)
	}
	if err := f.EnsureDirectoryExists(dst); err != nil {
		return spath.Path{}, err
	}
	contents, err := f.Contents(src, "*", false)
	if err != nil {
		return spath.Path{}, err
	}
	for _, child := range contents {
		rel, err := child.RelativeTo(src)
		if err != nil {
			return spath.Path{}, err
		}
		target, err := dst.Combine(rel)
		if err != nil {
			return spath.Path{}, err
		}
		if _, err := f.copyTo(child, target, filter); err != nil {
			return spath.Path{}, err
		}
	}
	return dst, nil
}

// Files lists the files in dir matching pattern.
func (f *FS) Files(dir spath.Path, pattern string, recursive bool) ([]spath.Path, error) {
	a, err := f.abs(dir)
	if err != nil {
		return nil, err
	}
	names, err := f.p.Files(a.String(), pattern, recursive)
	if err != nil {
		return nil, err
	}
	return f.parseAll(names)
}

// Directories lists the subdirectories of dir matching pattern.
func (f *FS) Directories(dir spath.Path, pattern string, recursive bool) ([]spath.Path, error) {
	a, err := f.abs(dir)
	if err != nil {
		return nil, err
	}
	names, err := f.p.Directories(a.String(), pattern, recursive)
	if err != nil {
		return nil, err
	}
	return f.parseAll(names)
}

// Contents lists files followed by directories.
func (f *FS) Contents(dir spath.Path, pattern string, recursive bool) ([]spath.Path, error) {
	files, err := f.Files(dir, pattern, recursive)
	if err != nil {
		return nil, err
	}
	dirs, err := f.Directories(dir, pattern, recursive)
	if err != nil {
		return nil, err
	}
	return append(files, dirs...), nil
}

func (f *FS) parseAll(names []string) ([]spath.Path, error) {
	out := make([]spath.Path, 0, len(names))
	for _, n := range names {
		p, err := f.style.Parse(n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ReadAllBytes reads the file at p.
func (f *FS) ReadAllBytes(p spath.Path) ([]byte, error) {
	a, err := f.abs(p)
	if err != nil {
		return nil, err
	}
	return f.p.ReadAllBytes(a.String())
}

// WriteAllBytes writes data to p, creating parent directories.
func (f *FS) WriteAllBytes(p spath.Path, data []byte) error {
	a, err := f.absNotRoot("WriteAllBytes", p)
	if err != nil {
		return err
	}
	if err := f.EnsureParentDirectoryExists(a); err != nil {
		return err
	}
	return f.p.WriteAllBytes(a.String(), data)
}

// ReadAllText reads the UTF-8 file at p.
func (f *FS) ReadAllText(p spath.Path) (string, error) {
	a, err := f.abs(p)
	if err != nil {
		return "", err
	}
	return f.p.ReadAllText(a.String())
}

// WriteAllText writes contents to p, creating parent directories.
func (f *FS) WriteAllText(p spath.Path, contents string) error {
	a, err := f.absNotRoot("WriteAllText", p)
	if err != nil {
		return err
	}
	if err := f.EnsureParentDirectoryExists(a); err != nil {
		return err
	}
	return f.p.WriteAllText(a.String(), contents)
}

// TempFileName returns an unused path in the temporary directory. The file is
// not created.
func (f *FS) TempFileName(prefix string) (spath.Path, error) {
	base, err := f.style.Parse(f.p.TempDirectory())
	if err != nil {
		return spath.Path{}, err
	}
	for {
		candidate, err := base.CombineStrings(tempName(prefix))
		if err != nil {
			return spath.Path{}, err
		}
		ok, err := f.Exists(candidate)
		if err != nil {
			return spath.Path{}, err
		}
		if !ok {
			return candidate, nil
		}
	}
}

// CreateTempDirectory creates a new uniquely named directory below the
// temporary directory.
func (f *FS) CreateTempDirectory(prefix string) (spath.Path, error) {
	p, err := f.TempFileName(prefix)
	if err != nil {
		return spath.Path{}, err
	}
	return f.CreateDirectory(p)
}

func tempName(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "_" + uuid.NewString()
}

func isArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}
