// cmd/benchdash/list_commands.go
package benchdash

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mwiater/benchdash/internal/report"
)

// commandsCmd implements 'list commands', which prints the command tree with
// the flags each command defines.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands with their own flags",
	Long:  `The 'commands' subcommand prints every benchdash command, indented by depth, next to the flags it defines and its short description. Inherited flags are shown once, on the command that defines them. --format markdown renders a Markdown table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		f, err := report.ParseFormat(cfg.Format)
		if err != nil {
			return err
		}
		return listAllCommands(cmd.OutOrStdout(), rootCmd, f == report.Markdown)
	},
}

func init() {
	listCmd.AddCommand(commandsCmd)
}

// listAllCommands renders the command tree under root as a table.
func listAllCommands(w io.Writer, root *cobra.Command, markdown bool) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Command", "Flags", "Description"})
	walkCommands(root, 0, func(c *cobra.Command, depth int) {
		tw.AppendRow(table.Row{strings.Repeat("  ", depth) + c.CommandPath(), strings.Join(ownFlags(c), " "), c.Short})
	})

	out := tw.Render()
	if markdown {
		out = tw.RenderMarkdown()
	}
	_, err := io.WriteString(w, "Commands and Subcommands:\n"+out+"\n")
	return err
}

// walkCommands visits c and its subcommands depth first. Hidden commands,
// help and shell completion are skipped.
func walkCommands(c *cobra.Command, depth int, visit func(*cobra.Command, int)) {
	visit(c, depth)
	for _, sub := range c.Commands() {
		if !sub.IsAvailableCommand() || sub.Name() == "completion" {
			continue
		}
		walkCommands(sub, depth+1, visit)
	}
}

// ownFlags returns the visible flags defined on c itself, as --name.
func ownFlags(c *cobra.Command) []string {
	var names []string
	c.NonInheritedFlags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		names = append(names, "--"+f.Name)
	})
	return names
}
