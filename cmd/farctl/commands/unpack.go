package commands

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/asger60/filehandler/codec"
)

var (
	unpackPretty bool
	unpackLegacy bool
)

var unpackCmd = &cobra.Command{
	Use:   "unpack <in.far> [out.json]",
	Short: "Decode a save file to JSON",
	Long: `Decode a save file to JSON.

The stored text is written unchanged to out.json, or to stdout when no
output is given. Legacy msgpack saves are converted with --legacy.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		in, err := fs.Parse(args[0])
		if err != nil {
			return err
		}
		data, err := fs.ReadAllBytes(in)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", in, err)
		}

		text, err := unpack(data)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		if unpackPretty {
			var buf bytes.Buffer
			if err := json.Indent(&buf, text, "", "  "); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			text = buf.Bytes()
		}

		if len(args) == 1 {
			_, err := cmd.OutOrStdout().Write(append(text, '\n'))
			return err
		}
		out, err := fs.Parse(args[1])
		if err != nil {
			return err
		}
		return fs.WriteAllBytes(out, text)
	},
}

func init() {
	unpackCmd.Flags().BoolVarP(&unpackPretty, "pretty", "p", false, "indent the JSON output")
	unpackCmd.Flags().BoolVar(&unpackLegacy, "legacy", false, "convert legacy msgpack saves")
	rootCmd.AddCommand(unpackCmd)
}

func unpack(data []byte) ([]byte, error) {
	text, err := codec.Unwrap(data)
	if err != nil {
		return nil, err
	}
	if json.Valid(text) || !unpackLegacy {
		return text, nil
	}
	var doc document
	version, err := codec.DecodeLegacy(data, &doc, nil)
	if err != nil {
		return nil, err
	}
	doc.restore(version)
	return codec.GoJSON{}.Marshal(doc)
}
