package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/Dicklesworthstone/claude_accounts/internal/db"
	"github.com/Dicklesworthstone/claude_accounts/internal/tui"
	"github.com/spf13/cobra"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List or restore snapshots of ~/.claude.json",
	Long: `Snapshots of ~/.claude.json are taken before each switch (see
safety.auto_backup_before_switch). This lists them, newest last, or puts one
back in place.

Restoring first snapshots the current file (unless backups are disabled),
so a restore can be undone.

Examples:
  claude-accounts backups
  claude-accounts backups --restore claude_20260101_120000.000.json`,
	Args: cobra.NoArgs,
	RunE: runBackups,
}

func init() {
	rootCmd.AddCommand(backupsCmd)
	backupsCmd.Flags().String("restore", "", "restore the named snapshot")
}

func runBackups(cmd *cobra.Command, args []string) error {
	restore, _ := cmd.Flags().GetString("restore")
	out := cmd.OutOrStdout()

	if restore != "" {
		saved, err := keeper.Restore(restore, store.Path())
		if err != nil {
			return err
		}

		mgr, closeHistory := newManager()
		defer closeHistory()
		mgr.Note(db.Event{Type: db.EventRestore, Details: map[string]any{"snapshot": restore, "saved": saved}})

		styles := tui.DefaultStyles()
		fmt.Fprintln(out, styles.Success.Render("Restored "+restore+" to "+store.Path()))
		if saved != "" {
			fmt.Fprintln(out, "Previous file saved as "+saved)
		}
		fmt.Fprintln(out, styles.Hint.Render("Close and re-open any Claude Code terminals to apply changes!"))
		return nil
	}

	snaps, err := keeper.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(out, "No backups in "+keeper.Dir())
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tTAKEN\tSIZE")
	for _, s := range snaps {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", s.Name, s.TakenAt.Local().Format("2006-01-02 15:04:05"), s.Size)
	}
	return tw.Flush()
}
