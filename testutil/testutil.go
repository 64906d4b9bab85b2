package testutil

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const segmentAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Segment returns a path segment of 1..8 characters without separators,
// dots or colons.
func (r *RNG) Segment() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.segmentLocked()
}

func (r *RNG) segmentLocked() string {
	n := 1 + r.rand.Intn(8)
	var b strings.Builder
	for range n {
		b.WriteByte(segmentAlphabet[r.rand.Intn(len(segmentAlphabet))])
	}
	return b.String()
}

// RelativePath returns a "/"-joined relative path of depth plain segments.
// Depth 0 yields ".".
func (r *RNG) RelativePath(depth int) string {
	if depth <= 0 {
		return "."
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	segs := make([]string, depth)
	for i := range segs {
		segs[i] = r.segmentLocked()
	}
	return strings.Join(segs, "/")
}

// DottedPath returns a relative path of up to maxDepth segments sprinkled
// with "." and ".." segments. The result may climb above its start.
func (r *RNG) DottedPath(maxDepth int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 1 + r.rand.Intn(max(maxDepth, 1))
	segs := make([]string, n)
	for i := range segs {
		switch r.rand.Intn(5) {
		case 0:
			segs[i] = "."
		case 1:
			segs[i] = ".."
		default:
			segs[i] = r.segmentLocked()
		}
	}
	return strings.Join(segs, "/")
}

// Names returns n distinct save names.
func (r *RNG) Names(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		name := r.segmentLocked()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Payload returns n pseudo-random bytes.
func (r *RNG) Payload(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// Clock is a manually advanced time source. It is safe for concurrent use.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock set to a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
