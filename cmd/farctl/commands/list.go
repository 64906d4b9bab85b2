package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	listPattern   string
	listRecursive bool
	listLong      bool
)

var listCmd = &cobra.Command{
	Use:     "list <dir>",
	Aliases: []string{"ls"},
	Short:   "List save files below a directory",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		dir, err := fs.Parse(args[0])
		if err != nil {
			return err
		}
		files, err := fs.Files(dir, listPattern, listRecursive)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", dir, err)
		}

		if !listLong {
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f.String())
			}
			return nil
		}

		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.String()
		}
		reports, err := inspectAll(cmd, fs, names)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%d\t%s\tv%d\n", r.Path, r.Size, r.frame(), r.Version)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().StringVar(&listPattern, "pattern", "*.far", "file name pattern")
	listCmd.Flags().BoolVarP(&listRecursive, "recursive", "r", false, "descend into subdirectories")
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "show size, frame and version")
	rootCmd.AddCommand(listCmd)
}
