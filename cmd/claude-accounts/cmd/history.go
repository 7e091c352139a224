package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Dicklesworthstone/claude_accounts/internal/db"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent activity events",
	Long: `Show recent switches, newly recorded accounts and logins from the
activity log.

Examples:
  claude-accounts history              # Show last 20 events
  claude-accounts history --limit 50   # Show last 50 events
  claude-accounts history --account 3f2a9c1e-...
  claude-accounts history --stats      # Switch counts per account

Events older than history.retention, or beyond history.max_events, are
dropped whenever the history is opened. Per-account counts are kept.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of events to show")
	historyCmd.Flags().String("account", "", "only show events for this account UUID")
	historyCmd.Flags().Bool("stats", false, "show per-account switch counts instead of events")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	accountUUID, _ := cmd.Flags().GetString("account")
	showStats, _ := cmd.Flags().GetBool("stats")

	if !cfg.History.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "History is disabled (history.enabled in "+activeConfigPath()+").")
		return nil
	}

	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	if showStats {
		stats, err := history.Stats(accountUUID)
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}
		if len(stats) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No accounts recorded.")
			return nil
		}
		return renderStats(cmd.OutOrStdout(), stats, accountLabels())
	}

	events, err := history.RecentEvents(db.Filter{AccountUUID: accountUUID, Limit: limit})
	if err != nil {
		return fmt.Errorf("get events: %w", err)
	}

	if len(events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events recorded.")
		return nil
	}

	return renderEventList(cmd.OutOrStdout(), events)
}

func renderEventList(w io.Writer, events []db.Event) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIMESTAMP\tTYPE\tACCOUNT")
	for _, ev := range events {
		label := ev.Label
		if label == "" {
			label = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n",
			ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
			ev.Type,
			label,
		)
	}
	return tw.Flush()
}

// accountLabels maps "account/organization" to the stored label. The stats
// view works without it, so a load failure just yields no labels.
func accountLabels() map[string]string {
	labels := map[string]string{}
	doc, err := store.Load()
	if err != nil {
		logger.Debug("no labels for stats", "error", err)
		return labels
	}
	for _, rec := range doc.Accounts() {
		if id := rec.Identity(); id.WellFormed() {
			labels[id.Key()] = rec.Label()
		}
	}
	return labels
}

func renderStats(w io.Writer, stats []db.AccountStats, labels map[string]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ACCOUNT\tSWITCHES\tFIRST SEEN\tLAST SWITCHED")
	for _, st := range stats {
		key := st.AccountUUID + "/" + st.OrganizationUUID
		label, ok := labels[key]
		if !ok {
			label = key
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", label, st.TotalSwitches, formatStamp(st.FirstSeen), formatStamp(st.LastSwitched))
	}
	return tw.Flush()
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
