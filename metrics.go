package filehandler

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordSave is called after each save. bytes is the encoded size.
	RecordSave(bytes int, duration time.Duration, err error)

	// RecordLoad is called after each load with the resulting status.
	RecordLoad(status LoadStatus, duration time.Duration, err error)

	// RecordDelete is called after each delete operation.
	RecordDelete(duration time.Duration, err error)

	// RecordFlush is called after each explicit flush or drain.
	RecordFlush(written, pending int, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSave(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordLoad(LoadStatus, time.Duration, error) {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)           {}
func (NoopMetricsCollector) RecordFlush(int, int, error)                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SaveCount      atomic.Int64
	SaveErrors     atomic.Int64
	SaveBytes      atomic.Int64
	SaveTotalNanos atomic.Int64
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadMissing    atomic.Int64
	LoadCorrupt    atomic.Int64
	LoadDeprecated atomic.Int64
	LoadTotalNanos atomic.Int64
	DeleteCount    atomic.Int64
	DeleteErrors   atomic.Int64
	FlushCount     atomic.Int64
	FlushWritten   atomic.Int64
	FlushErrors    atomic.Int64
	LastPending    atomic.Int64
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(bytes int, duration time.Duration, err error) {
	b.SaveCount.Add(1)
	b.SaveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(int64(bytes))
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(status LoadStatus, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	switch status {
	case StatusMissing, StatusEmpty:
		b.LoadMissing.Add(1)
	case StatusCorrupt:
		b.LoadCorrupt.Add(1)
	case StatusDeprecated:
		b.LoadDeprecated.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(duration time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(written, pending int, err error) {
	b.FlushCount.Add(1)
	b.FlushWritten.Add(int64(written))
	b.LastPending.Store(int64(pending))
	if err != nil {
		b.FlushErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SaveCount:      b.SaveCount.Load(),
		SaveErrors:     b.SaveErrors.Load(),
		SaveBytes:      b.SaveBytes.Load(),
		SaveAvgNanos:   avg(b.SaveTotalNanos.Load(), b.SaveCount.Load()),
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadMissing:    b.LoadMissing.Load(),
		LoadCorrupt:    b.LoadCorrupt.Load(),
		LoadDeprecated: b.LoadDeprecated.Load(),
		LoadAvgNanos:   avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		DeleteCount:    b.DeleteCount.Load(),
		DeleteErrors:   b.DeleteErrors.Load(),
		FlushCount:     b.FlushCount.Load(),
		FlushWritten:   b.FlushWritten.Load(),
		FlushErrors:    b.FlushErrors.Load(),
		Pending:        b.LastPending.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SaveCount      int64
	SaveErrors     int64
	SaveBytes      int64
	SaveAvgNanos   int64
	LoadCount      int64
	LoadErrors     int64
	LoadMissing    int64
	LoadCorrupt    int64
	LoadDeprecated int64
	LoadAvgNanos   int64
	DeleteCount    int64
	DeleteErrors   int64
	FlushCount     int64
	FlushWritten   int64
	FlushErrors    int64
	Pending        int64
}
