package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelativePath(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.RelativePath(4)
	segs := strings.Split(p, "/")
	assert.Len(t, segs, 4)
	for _, s := range segs {
		assert.NotEmpty(t, s)
		assert.NotContains(t, s, ".")
		assert.NotContains(t, s, ":")
	}
	assert.Equal(t, ".", rng.RelativePath(0))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	first := rng.DottedPath(8)
	rng.Reset()
	assert.Equal(t, first, rng.DottedPath(8))
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestNamesAreDistinct(t *testing.T) {
	rng := NewRNG(1)
	names := rng.Names(50)
	seen := make(map[string]bool)
	for _, n := range names {
		assert.False(t, seen[n], n)
		seen[n] = true
	}
	assert.Len(t, rng.Payload(17), 17)
}

func TestClock(t *testing.T) {
	c := NewClock()
	start := c.Now()
	c.Advance(90 * time.Second)
	assert.Equal(t, 90*time.Second, c.Now().Sub(start))
}
