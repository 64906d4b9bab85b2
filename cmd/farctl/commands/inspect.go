package commands

import (
	"fmt"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/asger60/filehandler/codec"
	"github.com/asger60/filehandler/storage"
)

var (
	inspectJobs   int
	inspectLegacy bool
)

// report describes one save file.
type report struct {
	Path       string
	Size       int
	Compressed bool
	Frame      codec.Compression
	Version    int
	Legacy     bool
	Err        error
}

func (r report) frame() string {
	if !r.Compressed {
		return "text"
	}
	return r.Frame.String()
}

func (r report) status() string {
	switch {
	case r.Err != nil:
		return "corrupt: " + r.Err.Error()
	case r.Legacy:
		return "ok (legacy)"
	case r.Version < codec.CurrentVersion:
		return "deprecated"
	default:
		return "ok"
	}
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>...",
	Short: "Show framing, size and version of save files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		reports, err := inspectAll(cmd, fs, args)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PATH\tSIZE\tFRAME\tVERSION\tSTATUS")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n", r.Path, r.Size, r.frame(), r.Version, r.status())
		}
		return w.Flush()
	},
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectJobs, "jobs", "j", runtime.GOMAXPROCS(0), "files decoded in parallel")
	inspectCmd.Flags().BoolVar(&inspectLegacy, "legacy", false, "try the legacy msgpack decoder on files that fail")
	rootCmd.AddCommand(inspectCmd)
}

// inspectAll decodes every file in parallel. Decode failures are reported
// per file; only read errors abort.
func inspectAll(cmd *cobra.Command, fs *storage.FS, files []string) ([]report, error) {
	reports := make([]report, len(files))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(inspectJobs, 1))
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := inspectFile(fs, name)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func inspectFile(fs *storage.FS, name string) (report, error) {
	p, err := fs.Parse(name)
	if err != nil {
		return report{}, fmt.Errorf("%s: %w", name, err)
	}
	data, err := fs.ReadAllBytes(p)
	if err != nil {
		return report{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	r := report{Path: p.String(), Size: len(data)}
	r.Compressed, r.Frame, r.Err = codec.Inspect(data)
	if r.Err != nil {
		return r, nil
	}

	var doc document
	r.Version, r.Err = codec.Envelope{}.Decode(data, &doc)
	if r.Err != nil && inspectLegacy {
		var legacy document
		if v, err := codec.DecodeLegacy(data, &legacy, nil); err == nil {
			r.Version, r.Legacy, r.Err = v, true, nil
		}
	}
	return r, nil
}
