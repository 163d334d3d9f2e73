// cmd/benchdash/dashboard.go
package benchdash

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/benchdash/internal/tui"
)

// startDashboard is the TUI entry point, replaced in tests.
var startDashboard = tui.Start

// dashboardCmd represents the 'dashboard' command.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive benchmark dashboard",
	Long: `The 'dashboard' command opens a terminal UI: pick models, start a job, watch
results arrive, sort the table, read the summary and override verdicts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return startDashboard(cfg)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
