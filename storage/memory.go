package storage

import (
	"slices"
	"sync"

	"github.com/asger60/filehandler/spath"
)

type memFile struct {
	path spath.Path
	data []byte
}

// Memory is an in-memory Provider. It emulates any Platform, including the
// console save volume, and is safe for concurrent use.
//
// Root directories always exist. Other directories must be created before
// files are written into them.
type Memory struct {
	TextOps

	platform Platform
	style    spath.Style

	mu      sync.RWMutex
	files   map[string]*memFile
	dirs    map[string]spath.Path
	folders map[Folder]string
	cwd     string
	writes  int
}

var _ Provider = (*Memory)(nil)

// NewMemory creates an empty in-memory provider for platform p.
func NewMemory(p Platform) *Memory {
	m := &Memory{
		platform: p,
		style:    p.PathStyle(),
		files:    make(map[string]*memFile),
		dirs:     make(map[string]spath.Path),
		folders:  defaultMemoryFolders(p),
	}
	switch p {
	case Windows:
		m.cwd = `C:\`
	case Console:
	default:
		m.cwd = "/"
	}
	m.TextOps = NewTextOps(m)
	return m
}

func defaultMemoryFolders(p Platform) map[Folder]string {
	switch p {
	case Windows:
		return map[Folder]string{
			FolderHome:          `C:\Users\player`,
			FolderAppData:       `C:\Users\player\AppData\Roaming`,
			FolderLocalAppData:  `C:\Users\player\AppData\Local`,
			FolderCommonAppData: `C:\ProgramData`,
			FolderTemp:          `C:\Temp`,
		}
	case Console:
		return map[Folder]string{}
	case Mac:
		return map[Folder]string{
			FolderHome:          "/Users/player",
			FolderAppData:       "/Users/player/Library/Preferences",
			FolderLocalAppData:  "/Users/player/Library/Application Support",
			FolderCommonAppData: "/Library/Application Support",
			FolderTemp:          "/tmp",
		}
	default:
		return map[Folder]string{
			FolderHome:          "/home/player",
			FolderAppData:       "/home/player/.config",
			FolderLocalAppData:  "/home/player/.local/share",
			FolderCommonAppData: "/usr/share",
			FolderTemp:          "/tmp",
		}
	}
}

// SetSpecialFolder overrides the location reported for f.
func (m *Memory) SetSpecialFolder(f Folder, dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[f] = dir
}

// WriteCount returns the number of successful writes, appends and copies.
func (m *Memory) WriteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *Memory) Platform() Platform { return m.platform }

func (m *Memory) IsRooted(path string) bool { return m.style.IsRooted(path) }

func (m *Memory) parse(op, path string) (spath.Path, error) {
	if err := requireRooted(m, op, path); err != nil {
		return spath.Path{}, err
	}
	p, err := m.style.Parse(path)
	if err != nil {
		return spath.Path{}, &ArgumentError{Op: op, Path: path, Err: err}
	}
	return p, nil
}

// isDir must be called with m.mu held.
func (m *Memory) isDir(p spath.Path) bool {
	if p.IsRoot() {
		return true
	}
	_, ok := m.dirs[p.Key()]
	return ok
}

func (m *Memory) FileExists(path string) (bool, error) {
	p, err := m.parse("FileExists", path)
	if err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[p.Key()]
	return ok, nil
}

func (m *Memory) DirectoryExists(path string) (bool, error) {
	p, err := m.parse("DirectoryExists", path)
	if err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isDir(p), nil
}

func (m *Memory) ReadAllBytes(path string) ([]byte, error) {
	p, err := m.parse("ReadAllBytes", path)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[p.Key()]
	if !ok {
		if m.isDir(p) {
			return nil, pathError("ReadAllBytes", path, ErrIsDirectory)
		}
		return nil, pathError("ReadAllBytes", path, ErrNotFound)
	}
	return slices.Clone(f.data), nil
}

func (m *Memory) WriteAllBytes(path string, data []byte) error {
	p, err := m.parse("WriteAllBytes", path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writableLocked("WriteAllBytes", path, p); err != nil {
		return err
	}
	m.files[p.Key()] = &memFile{path: p, data: slices.Clone(data)}
	m.writes++
	return nil
}

func (m *Memory) AppendBytes(path string, data []byte) error {
	p, err := m.parse("AppendBytes", path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[p.Key()]; ok {
		f.data = append(f.data, data...)
		m.writes++
		return nil
	}
	if err := m.writableLocked("AppendBytes", path, p); err != nil {
		return err
	}
	m.files[p.Key()] = &memFile{path: p, data: slices.Clone(data)}
	m.writes++
	return nil
}

// writableLocked checks that p can hold a file.
func (m *Memory) writableLocked(op, path string, p spath.Path) error {
	if m.isDir(p) {
		return pathError(op, path, ErrIsDirectory)
	}
	parent, err := p.Parent()
	if err != nil || !m.isDir(parent) {
		return pathError(op, path, ErrNotFound)
	}
	return nil
}

func (m *Memory) CopyFile(src, dst string, overwrite bool) error {
	sp, err := m.parse("CopyFile", src)
	if err != nil {
		return err
	}
	dp, err := m.parse("CopyFile", dst)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[sp.Key()]
	if !ok {
		return pathError("CopyFile", src, ErrNotFound)
	}
	if _, exists := m.files[dp.Key()]; exists && !overwrite {
		return pathError("CopyFile", dst, ErrAlreadyExists)
	}
	if err := m.writableLocked("CopyFile", dst, dp); err != nil {
		return err
	}
	m.files[dp.Key()] = &memFile{path: dp, data: slices.Clone(f.data)}
	m.writes++
	return nil
}

func (m *Memory) MoveFile(src, dst string) error {
	sp, err := m.parse("MoveFile", src)
	if err != nil {
		return err
	}
	dp, err := m.parse("MoveFile", dst)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[sp.Key()]
	if !ok {
		return pathError("MoveFile", src, ErrNotFound)
	}
	if _, exists := m.files[dp.Key()]; exists {
		return pathError("MoveFile", dst, ErrAlreadyExists)
	}
	if err := m.writableLocked("MoveFile", dst, dp); err != nil {
		return err
	}
	delete(m.files, sp.Key())
	m.files[dp.Key()] = &memFile{path: dp, data: f.data}
	return nil
}

func (m *Memory) DeleteFile(path string) error {
	p, err := m.parse("DeleteFile", path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[p.Key()]; !ok {
		return pathError("DeleteFile", path, ErrNotFound)
	}
	delete(m.files, p.Key())
	return nil
}

func (m *Memory) CreateDirectory(path string) error {
	p, err := m.parse("CreateDirectory", path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for dir := range p.Ancestors() {
		if _, ok := m.files[dir.Key()]; ok {
			return pathError("CreateDirectory", dir.String(), ErrAlreadyExists)
		}
	}
	if _, ok := m.files[p.Key()]; ok {
		return pathError("CreateDirectory", path, ErrAlreadyExists)
	}
	for dir := range p.Ancestors() {
		if !dir.IsRoot() {
			m.dirs[dir.Key()] = dir
		}
	}
	if !p.IsRoot() {
		m.dirs[p.Key()] = p
	}
	return nil
}

func (m *Memory) DeleteDirectory(path string, recursive bool) error {
	p, err := m.parse("DeleteDirectory", path)
	if err != nil {
		return err
	}
	if p.IsRoot() {
		return pathError("DeleteDirectory", path, ErrRootOperation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isDir(p) {
		return pathError("DeleteDirectory", path, ErrNotFound)
	}
	files, dirs := m.childrenLocked(p)
	if !recursive && (len(files) > 0 || len(dirs) > 0) {
		return pathError("DeleteDirectory", path, ErrDirectoryNotEmpty)
	}
	for _, k := range files {
		delete(m.files, k)
	}
	for _, k := range dirs {
		delete(m.dirs, k)
	}
	delete(m.dirs, p.Key())
	return nil
}

func (m *Memory) MoveDirectory(src, dst string) error {
	sp, err := m.parse("MoveDirectory", src)
	if err != nil {
		return err
	}
	dp, err := m.parse("MoveDirectory", dst)
	if err != nil {
		return err
	}
	if sp.IsRoot() {
		return pathError("MoveDirectory", src, ErrRootOperation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isDir(sp) {
		return pathError("MoveDirectory", src, ErrNotFound)
	}
	if _, ok := m.files[dp.Key()]; ok || m.isDir(dp) {
		return pathError("MoveDirectory", dst, ErrAlreadyExists)
	}
	if under(dp, sp) {
		return &ArgumentError{Op: "MoveDirectory", Path: dst, Err: ErrRootOperation}
	}
	parent, err := dp.Parent()
	if err != nil || !m.isDir(parent) {
		return pathError("MoveDirectory", dst, ErrNotFound)
	}

	rebase := func(p spath.Path) spath.Path {
		rel, _ := p.RelativeTo(sp)
		out, _ := dp.Combine(rel)
		return out
	}
	files, dirs := m.childrenLocked(sp)
	for _, k := range files {
		f := m.files[k]
		delete(m.files, k)
		np := rebase(f.path)
		m.files[np.Key()] = &memFile{path: np, data: f.data}
	}
	for _, k := range dirs {
		d := m.dirs[k]
		delete(m.dirs, k)
		np := rebase(d)
		m.dirs[np.Key()] = np
	}
	delete(m.dirs, sp.Key())
	m.dirs[dp.Key()] = dp
	return nil
}

// childrenLocked returns the keys of every file and directory below dir.
func (m *Memory) childrenLocked(dir spath.Path) (files, dirs []string) {
	for k, f := range m.files {
		if under(f.path, dir) {
			files = append(files, k)
		}
	}
	for k, d := range m.dirs {
		if !d.Equal(dir) && under(d, dir) {
			dirs = append(dirs, k)
		}
	}
	return files, dirs
}

func under(p, dir spath.Path) bool {
	ok, _ := p.IsChildOf(dir)
	return ok
}

func (m *Memory) Files(dir, pattern string, recursive bool) ([]string, error) {
	return m.enumerate("Files", dir, pattern, recursive, false)
}

func (m *Memory) Directories(dir, pattern string, recursive bool) ([]string, error) {
	return m.enumerate("Directories", dir, pattern, recursive, true)
}

func (m *Memory) enumerate(op, dir, pattern string, recursive, dirs bool) ([]string, error) {
	p, err := m.parse(op, dir)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		pattern = "*"
	}
	if err := validPattern(pattern); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.isDir(p) {
		return nil, pathError(op, dir, ErrNotFound)
	}
	var found []spath.Path
	consider := func(c spath.Path) {
		if !recursive && c.Depth() != p.Depth()+1 {
			return
		}
		name, _ := c.FileName()
		if globMatch(pattern, name) {
			found = append(found, c)
		}
	}
	fileKeys, dirKeys := m.childrenLocked(p)
	if dirs {
		for _, k := range dirKeys {
			consider(m.dirs[k])
		}
	} else {
		for _, k := range fileKeys {
			consider(m.files[k].path)
		}
	}
	slices.SortFunc(found, func(a, b spath.Path) int { return a.Compare(b) })
	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.String()
	}
	return out, nil
}

func (m *Memory) CurrentDirectory() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cwd
}

// SetCurrentDirectory changes the directory reported by CurrentDirectory.
func (m *Memory) SetCurrentDirectory(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cwd = dir
}

func (m *Memory) TempDirectory() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.folders[FolderTemp]
}

func (m *Memory) SpecialFolder(f Folder) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dir, ok := m.folders[f]
	if !ok {
		return "", pathError("SpecialFolder", "", ErrNotFound)
	}
	return dir, nil
}
