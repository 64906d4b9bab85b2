package mount

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/asger60/filehandler/spath"
	"github.com/asger60/filehandler/storage"
)

// Direct is a MountPoint that writes through to the provider immediately.
// It is used on desktop platforms, where saves live below an
// application-data directory.
type Direct struct {
	fs     *storage.FS
	root   spath.Path
	opts   options
	closed atomic.Bool
}

var _ MountPoint = (*Direct)(nil)

// NewDirect creates a direct mount rooted at root, which must be absolute.
// The directory is created on the first save.
func NewDirect(p storage.Provider, root string, opts ...Option) (*Direct, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	fs := storage.NewFS(p)
	rp, err := fs.Parse(root)
	if err != nil {
		return nil, fmt.Errorf("mount: root %q: %w", root, err)
	}
	if rp.IsRelative() {
		return nil, &storage.ArgumentError{Op: "NewDirect", Path: root, Err: storage.ErrNotRooted}
	}
	return &Direct{fs: fs, root: rp, opts: o}, nil
}

// AppDataRoot returns <folder>/<app> on p, e.g. the per-user application
// support directory for one game.
func AppDataRoot(p storage.Provider, folder storage.Folder, app string) (string, error) {
	base, err := p.SpecialFolder(folder)
	if err != nil {
		return "", err
	}
	if app == "" {
		return base, nil
	}
	bp, err := p.Platform().PathStyle().Parse(base)
	if err != nil {
		return "", err
	}
	dir, err := bp.CombineStrings(app)
	if err != nil {
		return "", err
	}
	return dir.String(), nil
}

// Root returns the directory saves are written to.
func (d *Direct) Root() spath.Path { return d.root }

func (d *Direct) Path(filename string) (spath.Path, error) {
	if err := checkName(filename); err != nil {
		return spath.Path{}, err
	}
	return d.root.CombineStrings(filename)
}

func (d *Direct) Exists(filename string) (bool, error) {
	p, err := d.Path(filename)
	if err != nil {
		return false, err
	}
	return d.fs.FileExists(p)
}

func (d *Direct) Load(filename string) ([]byte, error) {
	p, err := d.Path(filename)
	if err != nil {
		return nil, err
	}
	return d.fs.ReadAllBytes(p)
}

func (d *Direct) Save(filename string, data []byte) error {
	if d.closed.Load() {
		return ErrClosed
	}
	p, err := d.Path(filename)
	if err != nil {
		return err
	}
	d.opts.guard.Enter()
	defer d.opts.guard.Leave()
	if err := d.fs.WriteAllBytes(p, data); err != nil {
		return err
	}
	d.opts.logger.Debug("save written", "path", p.String(), "bytes", len(data))
	return nil
}

func (d *Direct) Delete(filename string) error {
	p, err := d.Path(filename)
	if err != nil {
		return err
	}
	err = d.fs.Provider().DeleteFile(p.String())
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// Flush is a no-op: every save is already on the medium.
func (d *Direct) Flush(mode FlushMode) (FlushResult, error) {
	return FlushResult{Mode: mode}, nil
}

// Pending always returns 0.
func (d *Direct) Pending() int { return 0 }

func (d *Direct) Close() error {
	d.closed.Store(true)
	return nil
}
