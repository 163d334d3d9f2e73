// cmd/benchdash/config.go
package benchdash

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

// configCmd prints the effective configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  `The 'config' command prints the configuration after defaults, the config file, BENCHDASH_* environment variables and flags are merged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, err = pp.Fprintln(cmd.OutOrStdout(), cfg)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
