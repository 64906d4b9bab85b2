package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Local implements Provider on the host filesystem using the os package.
type Local struct {
	TextOps

	platform Platform
	perm     os.FileMode

	mu      sync.Mutex
	folders map[Folder]string

	// lookupEnv and userHome are replaced in tests.
	lookupEnv func(string) (string, bool)
	userHome  func() (string, error)
}

var _ Provider = (*Local)(nil)

// NewLocal returns a provider for the host filesystem.
func NewLocal() *Local {
	l := &Local{
		platform:  HostPlatform(),
		perm:      0o644,
		folders:   make(map[Folder]string),
		lookupEnv: os.LookupEnv,
		userHome:  os.UserHomeDir,
	}
	l.TextOps = NewTextOps(l)
	return l
}

// Platform returns the host platform.
func (l *Local) Platform() Platform { return l.platform }

// IsRooted reports whether path is absolute on the host. Off Windows only
// filepath.IsAbs counts, so "C:/x" is relative there.
func (l *Local) IsRooted(path string) bool {
	if !l.platform.IsWindows() {
		return filepath.IsAbs(path)
	}
	return filepath.IsAbs(path) || l.platform.PathStyle().IsRooted(path)
}

func (l *Local) FileExists(path string) (bool, error) {
	if err := requireRooted(l, "FileExists", path); err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

func (l *Local) DirectoryExists(path string) (bool, error) {
	if err := requireRooted(l, "DirectoryExists", path); err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (l *Local) ReadAllBytes(path string) ([]byte, error) {
	if err := requireRooted(l, "ReadAllBytes", path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (l *Local) WriteAllBytes(path string, data []byte) error {
	if err := requireRooted(l, "WriteAllBytes", path); err != nil {
		return err
	}
	return os.WriteFile(path, data, l.perm)
}

func (l *Local) AppendBytes(path string, data []byte) error {
	if err := requireRooted(l, "AppendBytes", path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, l.perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (l *Local) CopyFile(src, dst string, overwrite bool) error {
	if err := requireRooted(l, "CopyFile", src, dst); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !overwrite {
		flag |= os.O_EXCL
	}
	out, err := os.OpenFile(dst, flag, l.perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func (l *Local) MoveFile(src, dst string) error {
	if err := requireRooted(l, "MoveFile", src, dst); err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return pathError("MoveFile", src, ErrIsDirectory)
	}
	if _, err := os.Lstat(dst); err == nil {
		return pathError("MoveFile", dst, ErrAlreadyExists)
	}
	return os.Rename(src, dst)
}

func (l *Local) DeleteFile(path string) error {
	if err := requireRooted(l, "DeleteFile", path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return pathError("DeleteFile", path, ErrIsDirectory)
	}
	return os.Remove(path)
}

func (l *Local) CreateDirectory(path string) error {
	if err := requireRooted(l, "CreateDirectory", path); err != nil {
		return err
	}
	return os.MkdirAll(path, 0o755)
}

func (l *Local) DeleteDirectory(path string, recursive bool) error {
	if err := requireRooted(l, "DeleteDirectory", path); err != nil {
		return err
	}
	clean := filepath.Clean(path)
	if filepath.Dir(clean) == clean {
		return pathError("DeleteDirectory", path, ErrRootOperation)
	}
	info, err := os.Stat(clean)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return pathError("DeleteDirectory", path, ErrNotFound)
	}
	if recursive {
		return os.RemoveAll(clean)
	}
	entries, err := os.ReadDir(clean)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return pathError("DeleteDirectory", path, ErrDirectoryNotEmpty)
	}
	return os.Remove(clean)
}

func (l *Local) MoveDirectory(src, dst string) error {
	if err := requireRooted(l, "MoveDirectory", src, dst); err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return pathError("MoveDirectory", src, ErrNotFound)
	}
	if _, err := os.Lstat(dst); err == nil {
		return pathError("MoveDirectory", dst, ErrAlreadyExists)
	}
	return os.Rename(src, dst)
}

func (l *Local) Files(dir, pattern string, recursive bool) ([]string, error) {
	if err := requireRooted(l, "Files", dir); err != nil {
		return nil, err
	}
	return l.enumerate(dir, pattern, recursive, false)
}

func (l *Local) Directories(dir, pattern string, recursive bool) ([]string, error) {
	if err := requireRooted(l, "Directories", dir); err != nil {
		return nil, err
	}
	return l.enumerate(dir, pattern, recursive, true)
}

func (l *Local) enumerate(dir, pattern string, recursive, dirs bool) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if err := validPattern(pattern); err != nil {
		return nil, err
	}
	var out []string
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() == dirs && globMatch(pattern, e.Name()) {
				out = append(out, filepath.Join(dir, e.Name()))
			}
		}
		return out, nil
	}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == dir {
			return nil
		}
		if d.IsDir() == dirs && globMatch(pattern, d.Name()) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// CurrentDirectory returns the process working directory, or "" if it cannot
// be determined.
func (l *Local) CurrentDirectory() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

func (l *Local) TempDirectory() string { return os.TempDir() }

// SpecialFolder resolves f once per Local and caches the result.
func (l *Local) SpecialFolder(f Folder) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if dir, ok := l.folders[f]; ok {
		return dir, nil
	}
	dir, err := l.resolveFolder(f)
	if err != nil {
		return "", err
	}
	l.folders[f] = dir
	return dir, nil
}

func (l *Local) resolveFolder(f Folder) (string, error) {
	if f == FolderTemp {
		return os.TempDir(), nil
	}
	if l.platform == Windows {
		key := map[Folder]string{
			FolderHome:          "USERPROFILE",
			FolderAppData:       "APPDATA",
			FolderLocalAppData:  "LOCALAPPDATA",
			FolderCommonAppData: "PROGRAMDATA",
		}[f]
		if v, ok := l.lookupEnv(key); ok && v != "" {
			return v, nil
		}
		return "", pathError("SpecialFolder", key, ErrNotFound)
	}
	home, err := l.userHome()
	if err != nil {
		return "", err
	}
	xdg := func(key, fallback string) string {
		if v, ok := l.lookupEnv(key); ok && filepath.IsAbs(v) {
			return v
		}
		return fallback
	}
	switch f {
	case FolderHome:
		return home, nil
	case FolderAppData:
		if l.platform == Mac {
			return filepath.Join(home, "Library", "Preferences"), nil
		}
		return xdg("XDG_CONFIG_HOME", filepath.Join(home, ".config")), nil
	case FolderLocalAppData:
		if l.platform == Mac {
			return filepath.Join(home, "Library", "Application Support"), nil
		}
		return xdg("XDG_DATA_HOME", filepath.Join(home, ".local", "share")), nil
	case FolderCommonAppData:
		if l.platform == Mac {
			return "/Library/Application Support", nil
		}
		return "/usr/share", nil
	}
	return "", pathError("SpecialFolder", "", ErrNotFound)
}
