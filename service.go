package filehandler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/asger60/filehandler/codec"
	"github.com/asger60/filehandler/mount"
	"github.com/asger60/filehandler/storage"
)

// Service persists records by name through a mount point.
//
// It owns the save-buffer registry: one buffer per logical save name,
// created on first use and dropped by Delete or Close. The mutex guards the
// registry only; callers must not use the same name from several goroutines
// at once.
type Service struct {
	mp   mount.MountPoint
	opts options

	mu      sync.Mutex
	buffers map[string]*buffer
	closed  bool
}

// New creates a Service committing saves through mp.
func New(mp mount.MountPoint, optFns ...Option) (*Service, error) {
	if mp == nil {
		return nil, ErrNoMount
	}
	return &Service{
		mp:      mp,
		opts:    applyOptions(optFns),
		buffers: make(map[string]*buffer),
	}, nil
}

// Mount returns the underlying mount point.
func (s *Service) Mount() mount.MountPoint { return s.mp }

// FileName returns the file a save name is stored in.
func (s *Service) FileName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	return name + s.opts.extension, nil
}

// buffer returns the registry entry for name, creating it on first use.
func (s *Service) buffer(name string) (*buffer, error) {
	file, err := s.FileName(name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	b, ok := s.buffers[name]
	if !ok {
		b = newBuffer(name, file)
		s.buffers[name] = b
	}
	return b, nil
}

// Names returns the save names currently held in the registry, sorted.
func (s *Service) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.buffers))
	for name := range s.buffers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Save encodes rec into a fresh buffer for name and commits it.
func (s *Service) Save(ctx context.Context, name string, rec codec.Record) error {
	start := time.Now()
	n, err := s.save(name, rec)
	s.opts.metricsCollector.RecordSave(n, time.Since(start), err)
	s.opts.logger.LogSave(ctx, name, n, s.opts.compress(), err)
	return err
}

func (s *Service) save(name string, rec codec.Record) (int, error) {
	if rec == nil {
		return 0, fmt.Errorf("filehandler: save %q: nil record", name)
	}
	b, err := s.buffer(name)
	if err != nil {
		return 0, err
	}
	sink := b.reset()
	if err := s.opts.envelope.EncodeTo(sink, rec, s.opts.compress()); err != nil {
		return 0, err
	}
	b.stage()
	data := b.payload()
	if err := s.mp.Save(b.file, data); err != nil {
		return len(data), translateError(err)
	}
	b.commit()
	return len(data), nil
}

// LoadDetailed decodes the save for name into into.
//
// into is only meaningful when the status is StatusLoaded. wantVersion is
// the version the caller expects; a decoded save with a lower stored
// version is reported as StatusDeprecated. A corrupt save is deleted and
// reported through the result, not the error. The error is reserved for
// I/O failures and invalid names.
func (s *Service) LoadDetailed(ctx context.Context, name string, into codec.Record, wantVersion int) (LoadResult, error) {
	start := time.Now()
	res, err := s.load(name, into, wantVersion)
	s.opts.metricsCollector.RecordLoad(res.Status, time.Since(start), err)
	s.opts.logger.LogLoad(ctx, res, err)
	return res, err
}

func (s *Service) load(name string, into codec.Record, wantVersion int) (LoadResult, error) {
	res := LoadResult{Name: name, Status: StatusMissing}
	if into == nil {
		return res, fmt.Errorf("filehandler: load %q: nil record", name)
	}
	b, err := s.buffer(name)
	if err != nil {
		return res, err
	}
	p, err := s.mp.Path(b.file)
	if err != nil {
		return res, translateError(err)
	}
	res.Path = p.String()

	data, err := s.mp.Load(b.file)
	if errors.Is(err, storage.ErrNotFound) {
		return res, nil
	}
	if err != nil {
		return res, translateError(err)
	}
	if len(data) == 0 {
		res.Status = StatusEmpty
		return res, nil
	}

	stored, derr := s.opts.envelope.Decode(data, into)
	if derr != nil && s.opts.legacy != nil {
		if v, lerr := codec.DecodeLegacy(data, into, s.opts.legacy); lerr == nil {
			stored, derr = v, nil
			res.Legacy = true
		}
	}
	if derr != nil {
		res.Status = StatusCorrupt
		res.Err = &CorruptSaveError{Name: name, Path: res.Path, Bytes: len(data), cause: derr}
		if err := s.mp.Delete(b.file); err != nil {
			res.Err = errors.Join(res.Err, fmt.Errorf("filehandler: remove corrupt save: %w", err))
		}
		return res, nil
	}

	res.StoredVersion = stored
	if stored < wantVersion {
		res.Status = StatusDeprecated
		return res, nil
	}
	res.Status = StatusLoaded
	return res, nil
}

// Delete removes the save for name from the registry and the medium,
// including any pending write. Deleting a missing save is not an error.
func (s *Service) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := s.delete(name)
	s.opts.metricsCollector.RecordDelete(time.Since(start), err)
	s.opts.logger.LogDelete(ctx, name, err)
	return err
}

func (s *Service) delete(name string) error {
	file, err := s.FileName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	delete(s.buffers, name)
	s.mu.Unlock()
	return translateError(s.mp.Delete(file))
}

// Flush runs a commit cycle on the mount point.
func (s *Service) Flush(ctx context.Context, mode mount.FlushMode) (mount.FlushResult, error) {
	res, err := s.mp.Flush(mode)
	err = translateError(err)
	s.opts.metricsCollector.RecordFlush(res.Written, res.Pending, err)
	s.opts.logger.LogFlush(ctx, res, err)
	return res, err
}

// Pending returns the number of saves waiting for a commit cycle.
func (s *Service) Pending() int { return s.mp.Pending() }

// Close drains the mount point and clears the registry. It is safe to
// call more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pending := s.mp.Pending()
	clear(s.buffers)
	s.mu.Unlock()

	err := s.mp.Close()
	s.opts.metricsCollector.RecordFlush(pending-s.mp.Pending(), s.mp.Pending(), err)
	if err != nil {
		s.opts.logger.Error("drain on close failed", "pending", s.mp.Pending(), "error", err)
	}
	return translateError(err)
}

// DrainOnSignal blocks until one of sigs arrives, then closes the Service so
// that every queued save reaches the medium before the process exits. With
// no sigs it waits for SIGINT and SIGTERM. It returns ctx.Err() if ctx is
// done first, leaving the Service open.
func (s *Service) DrainOnSignal(ctx context.Context, sigs ...os.Signal) error {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	defer signal.Stop(ch)
	return s.drainOn(ctx, ch)
}

func (s *Service) drainOn(ctx context.Context, ch <-chan os.Signal) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-ch:
		s.opts.logger.Info("exit requested, draining saves", "signal", sig.String(), "pending", s.mp.Pending())
		return s.Close()
	}
}
