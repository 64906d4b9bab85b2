package commands

import (
	"github.com/spf13/cobra"

	"github.com/asger60/filehandler"
)

var configFile string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective service configuration",
	Long: `Print the effective service configuration as YAML.

Without --file the defaults are printed, which makes a good starting point
for a new config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := filehandler.DefaultConfig()
		if configFile != "" {
			fs, closer, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer closer.Close()
			p, err := fs.Parse(configFile)
			if err != nil {
				return err
			}
			data, err := fs.ReadAllBytes(p)
			if err != nil {
				return err
			}
			if cfg, err = filehandler.ParseConfig(data); err != nil {
				return err
			}
		}
		if _, err := cfg.Options(); err != nil {
			return err
		}
		if _, err := cfg.Budget(); err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configCmd.Flags().StringVarP(&configFile, "file", "f", "", "config file to validate and print")
	rootCmd.AddCommand(configCmd)
}
