package filehandler

import (
	"log/slog"
	"strings"

	"github.com/asger60/filehandler/codec"
)

// DefaultExtension is appended to every save name.
const DefaultExtension = ".far"

// BuildMode selects the default compression policy.
type BuildMode uint8

const (
	// Release builds compress every save.
	Release BuildMode = iota
	// Debug builds write plain text so saves can be inspected by hand.
	Debug
)

func (m BuildMode) String() string {
	if m == Debug {
		return "debug"
	}
	return "release"
}

type options struct {
	envelope         codec.Envelope
	forceCompress    bool
	buildMode        BuildMode
	legacy           codec.Codec
	extension        string
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Service.
type Option func(*options)

// WithCodec configures the text codec for new saves and for decoding.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.envelope.Codec = c
	}
}

// WithCompression selects the compression frame and level used when a save
// is compressed. Level 0 selects the compressor default.
func WithCompression(c codec.Compression, level int) Option {
	return func(o *options) {
		o.envelope.Compression = c
		o.envelope.Level = level
	}
}

// WithCompress forces compression on, regardless of build mode.
func WithCompress(force bool) Option {
	return func(o *options) {
		o.forceCompress = force
	}
}

// WithBuildMode sets the build mode. Debug builds skip compression unless
// WithCompress(true) is also given.
func WithBuildMode(m BuildMode) Option {
	return func(o *options) {
		o.buildMode = m
	}
}

// WithLegacyCodec enables the fallback decoder for saves written in the
// obsolete binary format. Nil selects msgpack.
func WithLegacyCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Msgpack{}
		}
		o.legacy = c
	}
}

// WithExtension overrides the file extension. A missing dot is added.
func WithExtension(ext string) Option {
	return func(o *options) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		o.extension = ext
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &filehandler.BasicMetricsCollector{}
//	svc, _ := filehandler.New(mp, filehandler.WithMetricsCollector(metrics))
//	// ... use svc ...
//	stats := metrics.GetStats()
//	fmt.Printf("Saves: %d, corrupt loads: %d\n", stats.SaveCount, stats.LoadCorrupt)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		envelope:         codec.Envelope{Codec: codec.Default, Compression: codec.Gzip},
		extension:        DefaultExtension,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// compress reports whether new saves are compressed.
func (o options) compress() bool {
	return o.forceCompress || o.buildMode == Release
}
