package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asger60/filehandler/storage"
	"github.com/asger60/filehandler/storage/kvstore"
)

var (
	// Global flags
	verbose   bool
	storeSpec string
)

var rootCmd = &cobra.Command{
	Use:   "farctl",
	Short: "Inspect and convert .far save files",
	Long: `farctl - tools for versioned save files.

A save is UTF-8 JSON text carrying "fileVersion", optionally compressed and
prefixed with the 0xDE sentinel byte.

Saves are read from the local filesystem by default. Use --store to work on
a BadgerDB save volume instead:
  --store local
  --store badger:/path/to/db

Examples:
  farctl inspect saves/*.far
  farctl unpack --pretty saves/profile.far
  farctl pack -c zstd profile.json saves/profile.far
  farctl --store badger:./volume list /`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&storeSpec, "store", "local", "storage backend: local or badger:<dir>")
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

func logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// openStore opens the backend named by --store. The returned closer must be
// called when the command finishes.
func openStore(cmd *cobra.Command) (*storage.FS, io.Closer, error) {
	switch {
	case storeSpec == "" || storeSpec == "local":
		return storage.NewFS(storage.NewLocal()), io.NopCloser(nil), nil
	case strings.HasPrefix(storeSpec, "badger:"):
		dir := strings.TrimPrefix(storeSpec, "badger:")
		if dir == "" {
			return nil, nil, fmt.Errorf("--store badger: needs a directory")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		st, err := kvstore.Open(kvstore.Options{Dir: dir, Logger: logger(cmd)})
		if err != nil {
			return nil, nil, err
		}
		return storage.NewFS(st), st, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", storeSpec)
	}
}
