// cmd/benchdash/list_models.go
package benchdash

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/benchdash/internal/report"
)

// listModelsCmd implements 'list models', which asks the runner for the
// models the inference server offers and whether each is loaded.
var listModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available on the inference server",
	Long:  `The 'models' subcommand asks the Job Runner for the models served at --base-url, with their type (llm or vlm), load state, quantization and architecture.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		f, err := report.ParseFormat(cfg.Format)
		if err != nil {
			return err
		}
		models, err := cfg.Client().Models(cmd.Context(), cfg.BaseURL)
		if err != nil {
			return err
		}
		return report.WriteModels(cmd.OutOrStdout(), f, models)
	},
}

func init() {
	listCmd.AddCommand(listModelsCmd)
}
