// cmd/benchdash/root.go
package benchdash

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/benchdash/internal/config"
)

// cfgFile is the optional YAML or JSON config file given with --config.
var cfgFile string

// rootCmd is the base Cobra command for the benchdash application.
// All subcommands are attached to this root to form the complete CLI.
var rootCmd = &cobra.Command{
	Use:   "benchdash",
	Short: "Dashboard and headless client for LLM benchmark jobs",
	Long: `benchdash drives a benchmark Job Runner: it starts jobs against a set of models,
follows their progress, evaluates results against the suite's pass criteria and
lets an operator override individual verdicts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root Cobra command and all registered subcommands.
// It prints any returned error and exits the process with a non-zero
// status code on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	config.Register(viper.GetViper())

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	pf.String("runner-url", "", "Job Runner root URL")
	pf.String("base-url", "", "inference server the runner benchmarks against")
	pf.StringSlice("models", nil, "models to benchmark, comma separated")
	pf.String("suite", "", "suite path on the runner")
	pf.String("locale", "", "collation locale for sorted columns")
	pf.Duration("poll-interval", 0, "status poll interval")
	pf.Duration("request-timeout", 0, "timeout of each request to the runner")
	pf.String("log-file", "", "debug log file of the dashboard")
	pf.Bool("debug", false, "log dropped and stale responses")
	pf.StringP("format", "f", "", "output format: text, markdown, json or yaml")

	bindFlags(rootCmd, map[string]string{
		"runner_url":      "runner-url",
		"base_url":        "base-url",
		"models":          "models",
		"suite_path":      "suite",
		"locale":          "locale",
		"poll_interval":   "poll-interval",
		"request_timeout": "request-timeout",
		"log_file":        "log-file",
		"debug":           "debug",
		"format":          "format",
	}, true)
}

// bindFlags binds config keys to the named flags of cmd.
func bindFlags(cmd *cobra.Command, keys map[string]string, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// loadConfig merges defaults, the config file, the environment and flags.
var loadConfig = func() (config.Config, error) {
	return config.Load(viper.GetViper(), cfgFile)
}
