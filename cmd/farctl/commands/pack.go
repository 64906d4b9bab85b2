package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/asger60/filehandler/codec"
)

var (
	packCompression string
	packLevel       int
	packCodec       string
)

var packCmd = &cobra.Command{
	Use:   "pack <in.json|-> <out.far>",
	Short: "Encode a JSON document into a save file",
	Long: `Encode a JSON document into a save file.

Documents without "fileVersion" are stamped with the current version.
Use -c none to write plain text.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		comp, err := codec.ParseCompression(packCompression)
		if err != nil {
			return err
		}
		cd, ok := codec.ByName(packCodec)
		if !ok {
			return fmt.Errorf("unknown codec %q", packCodec)
		}

		fs, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		var input []byte
		if args[0] == "-" {
			input, err = io.ReadAll(cmd.InOrStdin())
		} else {
			in, perr := fs.Parse(args[0])
			if perr != nil {
				return perr
			}
			input, err = fs.ReadAllBytes(in)
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		var doc document
		if err := (codec.GoJSON{}).Unmarshal(input, &doc); err != nil {
			return fmt.Errorf("input is not a JSON object: %w", err)
		}
		if doc.FileVersion() == 0 {
			doc.StampVersion()
		}

		env := codec.Envelope{Codec: cd, Compression: comp, Level: packLevel}
		data, err := env.Encode(&doc, comp != codec.None)
		if err != nil {
			return err
		}

		out, err := fs.Parse(args[1])
		if err != nil {
			return err
		}
		if err := fs.WriteAllBytes(out, data); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		if IsVerbose() {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes, %s)\n", out, len(data), comp)
		}
		return nil
	},
}

func init() {
	packCmd.Flags().StringVarP(&packCompression, "compression", "c", "gzip", "gzip, zstd, lz4 or none")
	packCmd.Flags().IntVarP(&packLevel, "level", "l", 0, "compression level (0 = default)")
	packCmd.Flags().StringVar(&packCodec, "codec", "go-json", "text codec: go-json, json or msgpack")
	rootCmd.AddCommand(packCmd)
}
