// cmd/benchdash/suite.go
package benchdash

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/benchdash/internal/report"
)

// suiteCmd prints the runner's test suite catalog.
var suiteCmd = &cobra.Command{
	Use:   "suite",
	Short: "Show the test suite catalog",
	Long:  `The 'suite' command loads the suite at --suite from the Job Runner and prints its categories, tests and pass thresholds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		f, err := report.ParseFormat(cfg.Format)
		if err != nil {
			return err
		}
		suite, err := cfg.Client().Suite(cmd.Context(), cfg.SuitePath)
		if err != nil {
			return err
		}
		return report.WriteSuite(cmd.OutOrStdout(), f, suite)
	},
}

func init() {
	rootCmd.AddCommand(suiteCmd)
}
