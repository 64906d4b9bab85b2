// Package testutil provides testing utilities for the save layer.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded generator for paths, save names and payloads, and a
// manually advanced clock for throttling tests.
//
// # Random Paths
//
//	rng := testutil.NewRNG(seed)
//	rel := rng.RelativePath(3)   // "aZ/k9/_x"
//	odd := rng.DottedPath(6)     // "q/../r/./s"
//
// # Fake Time
//
//	clock := testutil.NewClock()
//	mp, _ := mount.NewThrottled(p, "rytmos", mount.WithClock(clock.Now))
//	clock.Advance(5 * time.Second)
package testutil
