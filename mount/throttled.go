package mount

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/asger60/filehandler/spath"
	"github.com/asger60/filehandler/storage"
)

// DefaultPrefix is the mount name used for console save volumes.
const DefaultPrefix = "rytmos"

// Budget limits what a single commit cycle may write.
type Budget struct {
	// MaxBytes caps the bytes written per cycle.
	MaxBytes int64
	// MaxWrites caps the number of files written per cycle.
	MaxWrites int
	// ShortCooldown is the wait after a cycle that drained the queue.
	ShortCooldown time.Duration
	// LongCooldown is the wait after a cycle that left work queued.
	LongCooldown time.Duration
}

// DefaultBudget returns 14 MiB and 28 writes per cycle with 5s/60s
// cooldowns.
func DefaultBudget() Budget {
	return Budget{
		MaxBytes:      14 << 20,
		MaxWrites:     28,
		ShortCooldown: 5 * time.Second,
		LongCooldown:  60 * time.Second,
	}
}

func (b Budget) withDefaults() Budget {
	d := DefaultBudget()
	if b.MaxBytes <= 0 {
		b.MaxBytes = d.MaxBytes
	}
	if b.MaxWrites <= 0 {
		b.MaxWrites = d.MaxWrites
	}
	if b.ShortCooldown <= 0 {
		b.ShortCooldown = d.ShortCooldown
	}
	if b.LongCooldown <= 0 {
		b.LongCooldown = d.LongCooldown
	}
	return b
}

type pending struct {
	path spath.Path
	data []byte
}

// Throttled is a MountPoint for write-constrained save volumes addressed as
// "<prefix>:/<file>". Saves are queued and committed in cycles limited by a
// Budget, separated by a cooldown. At most one write per path is queued; a
// newer save replaces the queued payload in place.
//
// Load and Exists see queued payloads before the medium. Close drains the
// queue regardless of budget.
type Throttled struct {
	fs     *storage.FS
	prefix string
	opts   options
	gated  rate.Sometimes

	mu       sync.Mutex
	queue    []*pending
	byKey    map[string]*pending
	cooldown time.Time
	closed   bool
}

var _ MountPoint = (*Throttled)(nil)

// NewThrottled creates a throttled mount on p. p must accept "<prefix>:/"
// paths, i.e. report the Console platform.
func NewThrottled(p storage.Provider, prefix string, opts ...Option) (*Throttled, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !p.IsRooted(prefix + ":/") {
		return nil, fmt.Errorf("mount: provider %s cannot address %q volumes", p.Platform(), prefix)
	}
	return &Throttled{
		fs:     storage.NewFS(p),
		prefix: prefix,
		opts:   o,
		gated:  rate.Sometimes{First: 1, Interval: 10 * time.Second},
		byKey:  make(map[string]*pending),
	}, nil
}

// Budget returns the per-cycle budget.
func (t *Throttled) Budget() Budget { return t.opts.budget }

func (t *Throttled) Path(filename string) (spath.Path, error) {
	if err := checkName(filename); err != nil {
		return spath.Path{}, err
	}
	return spath.Console.Parse(t.prefix + ":/" + filename)
}

func (t *Throttled) Exists(filename string) (bool, error) {
	p, err := t.Path(filename)
	if err != nil {
		return false, err
	}
	t.mu.Lock()
	_, queued := t.byKey[p.Key()]
	t.mu.Unlock()
	if queued {
		return true, nil
	}
	return t.fs.FileExists(p)
}

func (t *Throttled) Load(filename string) ([]byte, error) {
	p, err := t.Path(filename)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	e, queued := t.byKey[p.Key()]
	var data []byte
	if queued {
		data = slices.Clone(e.data)
	}
	t.mu.Unlock()
	if queued {
		return data, nil
	}
	return t.fs.ReadAllBytes(p)
}

// Save queues data and then attempts a due flush.
func (t *Throttled) Save(filename string, data []byte) error {
	p, err := t.Path(filename)
	if err != nil {
		return err
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if e, ok := t.byKey[p.Key()]; ok {
		e.data = slices.Clone(data)
	} else {
		e := &pending{path: p, data: slices.Clone(data)}
		t.queue = append(t.queue, e)
		t.byKey[p.Key()] = e
	}
	t.mu.Unlock()

	_, err = t.Flush(FlushDue)
	return err
}

func (t *Throttled) Delete(filename string) error {
	p, err := t.Path(filename)
	if err != nil {
		return err
	}
	t.mu.Lock()
	if e, ok := t.byKey[p.Key()]; ok {
		delete(t.byKey, p.Key())
		t.queue = slices.DeleteFunc(t.queue, func(q *pending) bool { return q == e })
	}
	t.mu.Unlock()

	err = t.fs.Provider().DeleteFile(p.String())
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

func (t *Throttled) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

// Tick runs a due flush. It is meant to be called from a frame or timer loop.
func (t *Throttled) Tick() (FlushResult, error) { return t.Flush(FlushDue) }

// Flush runs one commit cycle. Entries are written in queue order until the
// next one would exceed the budget; the first entry of a cycle is always
// written so a payload larger than MaxBytes cannot block the queue. Failed
// writes stay queued and count against the write budget.
//
// The flush hook runs after the lock is released, so it may call back into
// the mount.
func (t *Throttled) Flush(mode FlushMode) (FlushResult, error) {
	t.mu.Lock()
	res, err := t.flushLocked(mode)
	t.mu.Unlock()
	t.notify(res)
	return res, err
}

func (t *Throttled) flushLocked(mode FlushMode) (FlushResult, error) {
	now := t.opts.now()
	res := FlushResult{Mode: mode}
	if mode == FlushDue && now.Before(t.cooldown) {
		res.Deferred = true
		res.Pending = len(t.queue)
		res.NextFlush = t.cooldown
		t.gated.Do(func() {
			t.opts.logger.Debug("flush gated by cooldown",
				"wait", t.cooldown.Sub(now), "pending", len(t.queue))
		})
		return res, nil
	}

	var errs []error
	if len(t.queue) > 0 {
		errs = t.commitLocked(mode, &res)
	}

	if len(t.queue) > 0 {
		t.cooldown = now.Add(t.opts.budget.LongCooldown)
	} else {
		t.cooldown = now.Add(t.opts.budget.ShortCooldown)
	}
	res.Pending = len(t.queue)
	res.NextFlush = t.cooldown

	if res.Written > 0 || res.Failed > 0 {
		t.opts.logger.Debug("flush cycle",
			"mode", mode.String(), "written", res.Written, "bytes", res.Bytes,
			"failed", res.Failed, "pending", res.Pending, "next", t.cooldown)
	}
	return res, errors.Join(errs...)
}

func (t *Throttled) commitLocked(mode FlushMode, res *FlushResult) []error {
	t.opts.guard.Enter()
	defer t.opts.guard.Leave()

	b := t.opts.budget
	var (
		errs     []error
		attempts int
		kept     = make([]*pending, 0, len(t.queue))
	)
	for i, e := range t.queue {
		size := int64(len(e.data))
		if mode != FlushDrain && attempts > 0 &&
			(res.Bytes+size > b.MaxBytes || attempts+1 > b.MaxWrites) {
			kept = append(kept, t.queue[i:]...)
			break
		}
		attempts++
		if err := t.fs.WriteAllBytes(e.path, e.data); err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("mount: write %s: %w", e.path, err))
			t.opts.logger.Warn("save write failed", "path", e.path.String(), "error", err)
			kept = append(kept, e)
			continue
		}
		res.Written++
		res.Bytes += size
		delete(t.byKey, e.path.Key())
	}
	t.queue = kept
	return errs
}

func (t *Throttled) notify(res FlushResult) {
	if t.opts.onFlush != nil {
		t.opts.onFlush(res)
	}
}

// Run calls Tick every interval until ctx is done, then drains the queue.
// It returns the drain error, if any.
func (t *Throttled) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_, err := t.Flush(FlushDrain)
			return err
		case <-ticker.C:
			if _, err := t.Tick(); err != nil {
				t.opts.logger.Warn("periodic flush failed", "error", err)
			}
		}
	}
}

// Close drains the queue, ignoring cooldown and budget, and rejects further
// saves.
func (t *Throttled) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	_, err := t.Flush(FlushDrain)
	return err
}
