package mount

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/asger60/filehandler/spath"
)

var (
	// ErrClosed is returned by operations on a closed mount point.
	ErrClosed = errors.New("mount: closed")

	// ErrInvalidName is returned for save file names that are empty or would
	// leave the mount root.
	ErrInvalidName = errors.New("mount: invalid file name")
)

// MountPoint resolves save file names to paths on a medium and commits
// payloads to it.
type MountPoint interface {
	// Path returns the location of filename on the medium.
	Path(filename string) (spath.Path, error)
	// Exists reports whether filename is stored or pending.
	Exists(filename string) (bool, error)
	// Load returns the stored or pending payload. Missing files yield an
	// error satisfying errors.Is(err, storage.ErrNotFound).
	Load(filename string) ([]byte, error)
	// Save commits data, immediately or through a write queue.
	Save(filename string, data []byte) error
	// Delete removes filename and any pending write for it. Deleting a
	// missing file is not an error.
	Delete(filename string) error
	// Flush runs a commit cycle according to mode.
	Flush(mode FlushMode) (FlushResult, error)
	// Pending returns the number of queued writes.
	Pending() int
	// Close drains pending writes and releases the mount point.
	Close() error
}

// FlushMode selects how a commit cycle treats the cooldown and budgets.
type FlushMode uint8

const (
	// FlushDue runs a cycle only when the cooldown has expired.
	FlushDue FlushMode = iota
	// FlushForce ignores the cooldown but honors the per-cycle budget.
	FlushForce
	// FlushDrain ignores both and writes the whole queue. Used on exit.
	FlushDrain
)

func (m FlushMode) String() string {
	switch m {
	case FlushDue:
		return "due"
	case FlushForce:
		return "force"
	case FlushDrain:
		return "drain"
	default:
		return fmt.Sprintf("flush(%d)", uint8(m))
	}
}

// FlushResult summarizes one commit cycle.
type FlushResult struct {
	Mode    FlushMode
	Written int
	Bytes   int64
	Failed  int
	Pending int
	// Deferred is set when a due flush was skipped because of the cooldown.
	Deferred bool
	// NextFlush is the earliest time a due flush will run again.
	NextFlush time.Time
}

// ExitGuard brackets writes that must not be interrupted by process exit.
type ExitGuard interface {
	Enter()
	Leave()
}

// NopGuard is an ExitGuard that does nothing.
type NopGuard struct{}

func (NopGuard) Enter() {}
func (NopGuard) Leave() {}

type options struct {
	logger  *slog.Logger
	guard   ExitGuard
	now     func() time.Time
	budget  Budget
	onFlush func(FlushResult)
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.DiscardHandler),
		guard:  NopGuard{},
		now:    time.Now,
		budget: DefaultBudget(),
	}
}

// Option configures a mount point.
type Option func(*options)

// WithLogger sets the logger. Nil keeps the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithExitGuard sets the guard entered around every commit cycle.
func WithExitGuard(g ExitGuard) Option {
	return func(o *options) {
		if g != nil {
			o.guard = g
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithBudget sets the per-cycle budget of a throttled mount. Zero fields keep
// their defaults.
func WithBudget(b Budget) Option {
	return func(o *options) {
		o.budget = b.withDefaults()
	}
}

// WithFlushHook registers fn to observe every completed commit cycle,
// including deferred ones.
func WithFlushHook(fn func(FlushResult)) Option {
	return func(o *options) { o.onFlush = fn }
}

// checkName rejects names that are empty, rooted or climb out of the mount.
func checkName(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.HasPrefix(filename, "/") || strings.HasPrefix(filename, `\`) || strings.Contains(filename, ":") {
		return fmt.Errorf("%w: %q is rooted", ErrInvalidName, filename)
	}
	for _, seg := range strings.FieldsFunc(filename, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return fmt.Errorf("%w: %q leaves the mount", ErrInvalidName, filename)
		}
	}
	return nil
}
