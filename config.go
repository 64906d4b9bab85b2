package filehandler

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/asger60/filehandler/codec"
	"github.com/asger60/filehandler/mount"
	"github.com/asger60/filehandler/storage"
)

// DefaultApp is the application directory used when Config.App is empty.
const DefaultApp = "filehandler"

// ErrInvalidConfig is returned when a Config field cannot be interpreted.
var ErrInvalidConfig = errors.New("filehandler: invalid config")

// Config is the file form of the Service options.
//
//	compress: false
//	build_mode: release
//	compression: zstd
//	max_writes: 28
//	short_cooldown: 5s
//	mount_prefix: rytmos
type Config struct {
	// Compress forces compression regardless of build mode.
	Compress bool `yaml:"compress,omitempty"`
	// BuildMode is "release" (default) or "debug".
	BuildMode string `yaml:"build_mode,omitempty"`
	// Compression is "gzip" (default), "zstd", "lz4" or "none".
	Compression string `yaml:"compression,omitempty"`
	// CompressionLevel is passed to the compressor; 0 selects its default.
	CompressionLevel int `yaml:"compression_level,omitempty"`
	// Codec is "go-json" (default), "json" or "msgpack".
	Codec string `yaml:"codec,omitempty"`
	// LegacyCodec enables the fallback decoder when set, e.g. "msgpack".
	LegacyCodec string `yaml:"legacy_codec,omitempty"`

	// MaxBytes is the byte budget per commit cycle on constrained media.
	MaxBytes int64 `yaml:"max_bytes,omitempty"`
	// MaxWrites is the write budget per commit cycle on constrained media.
	MaxWrites int `yaml:"max_writes,omitempty"`
	// ShortCooldown follows a cycle that drained the queue, e.g. "5s".
	ShortCooldown string `yaml:"short_cooldown,omitempty"`
	// LongCooldown follows a cycle that left work queued, e.g. "1m".
	LongCooldown string `yaml:"long_cooldown,omitempty"`

	// MountPrefix names the console save volume.
	MountPrefix string `yaml:"mount_prefix,omitempty"`
	// DataDir overrides the desktop save directory.
	DataDir string `yaml:"data_dir,omitempty"`
	// App names the directory below the local application-data folder.
	App string `yaml:"app,omitempty"`
	// Extension is appended to save names. Defaults to ".far".
	Extension string `yaml:"extension,omitempty"`
}

// DefaultConfig returns the configuration matching the zero options.
func DefaultConfig() Config {
	b := mount.DefaultBudget()
	return Config{
		BuildMode:     Release.String(),
		Compression:   codec.Gzip.String(),
		Codec:         codec.Default.Name(),
		MaxBytes:      b.MaxBytes,
		MaxWrites:     b.MaxWrites,
		ShortCooldown: b.ShortCooldown.String(),
		LongCooldown:  b.LongCooldown.String(),
		MountPrefix:   mount.DefaultPrefix,
		App:           DefaultApp,
		Extension:     DefaultExtension,
	}
}

// ParseConfig decodes YAML onto DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file through p. A missing file yields
// DefaultConfig.
func LoadConfig(p storage.Provider, path string) (Config, error) {
	data, err := p.ReadAllBytes(path)
	if errors.Is(err, storage.ErrNotFound) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// Marshal encodes the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Options converts the config to Service options.
func (c Config) Options() ([]Option, error) {
	var opts []Option

	switch c.BuildMode {
	case "", "release":
		opts = append(opts, WithBuildMode(Release))
	case "debug":
		opts = append(opts, WithBuildMode(Debug))
	default:
		return nil, fmt.Errorf("%w: build_mode %q", ErrInvalidConfig, c.BuildMode)
	}
	opts = append(opts, WithCompress(c.Compress))

	comp, err := codec.ParseCompression(c.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	opts = append(opts, WithCompression(comp, c.CompressionLevel))

	cd, ok := codec.ByName(c.Codec)
	if !ok {
		return nil, fmt.Errorf("%w: codec %q", ErrInvalidConfig, c.Codec)
	}
	opts = append(opts, WithCodec(cd))

	if c.LegacyCodec != "" {
		legacy, ok := codec.ByName(c.LegacyCodec)
		if !ok {
			return nil, fmt.Errorf("%w: legacy_codec %q", ErrInvalidConfig, c.LegacyCodec)
		}
		opts = append(opts, WithLegacyCodec(legacy))
	}
	if c.Extension != "" {
		opts = append(opts, WithExtension(c.Extension))
	}
	return opts, nil
}

// Budget converts the throttling fields. Zero fields keep their defaults.
func (c Config) Budget() (mount.Budget, error) {
	b := mount.Budget{MaxBytes: c.MaxBytes, MaxWrites: c.MaxWrites}
	var err error
	if b.ShortCooldown, err = parseDuration("short_cooldown", c.ShortCooldown); err != nil {
		return mount.Budget{}, err
	}
	if b.LongCooldown, err = parseDuration("long_cooldown", c.LongCooldown); err != nil {
		return mount.Budget{}, err
	}
	return b, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidConfig, field, s)
	}
	return d, nil
}

// Open builds a Service for p from cfg. Console providers get a throttled
// mount on cfg.MountPrefix; desktop providers write directly below
// cfg.DataDir, or <local app data>/<cfg.App> when DataDir is empty.
// optFns are applied after the options derived from cfg.
func Open(p storage.Provider, cfg Config, optFns ...Option) (*Service, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, optFns...)
	o := applyOptions(opts)
	mountOpts := []mount.Option{mount.WithLogger(o.logger.Logger)}

	var mp mount.MountPoint
	if p.Platform().IsConsole() {
		b, err := cfg.Budget()
		if err != nil {
			return nil, err
		}
		mp, err = mount.NewThrottled(p, cfg.MountPrefix, append(mountOpts, mount.WithBudget(b))...)
		if err != nil {
			return nil, err
		}
	} else {
		root := cfg.DataDir
		if root == "" {
			app := cfg.App
			if app == "" {
				app = DefaultApp
			}
			if root, err = mount.AppDataRoot(p, storage.FolderLocalAppData, app); err != nil {
				return nil, err
			}
		}
		if mp, err = mount.NewDirect(p, root, mountOpts...); err != nil {
			return nil, err
		}
	}
	return New(mp, opts...)
}
