package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/Dicklesworthstone/claude_accounts/internal/config"
	"github.com/spf13/cobra"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show where claude-accounts reads and writes files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(tw, "claude config\t%s\n", store.Path())
		_, _ = fmt.Fprintf(tw, "app config\t%s\n", activeConfigPath())
		_, _ = fmt.Fprintf(tw, "backups\t%s\n", keeper.Dir())
		_, _ = fmt.Fprintf(tw, "history\t%s\n", cfg.HistoryPath())
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}

// activeConfigPath is the config file in use, honouring --config.
func activeConfigPath() string {
	if flagConfigFile != "" {
		return flagConfigFile
	}
	return config.Path()
}
