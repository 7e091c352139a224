package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dicklesworthstone/claude_accounts/internal/switcher"
	"github.com/Dicklesworthstone/claude_accounts/internal/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Record new logins as they happen",
	Long: `Watch ~/.claude.json and reconcile the account list every time Claude Code
rewrites it, so accounts added with /login are recorded without opening the
menu. Runs until interrupted.

Examples:
  claude-accounts watch
  claude-accounts watch --debounce 2s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("debounce", 0, "wait this long after a change before reconciling (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	debounce, _ := cmd.Flags().GetDuration("debounce")
	if debounce <= 0 {
		debounce = cfg.Watch.Debounce.Duration()
	}

	mgr, closeHistory := newManager()
	defer closeHistory()

	// Record whatever is active right now before waiting for changes.
	if _, err := mgr.Reconcile(cmd.Context()); err != nil {
		return loadError(err)
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	w, err := watcher.New(mgr, watcher.Config{
		Path:             store.Path(),
		DebounceInterval: debounce,
		Logger:           logger,
		OnReconcile: func(res switcher.Reconciliation) {
			if res.Added != nil {
				fmt.Fprintf(out, "Recorded new account: %s\n", res.Added.Label())
			}
		},
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return err
	}
	fmt.Fprintf(out, "Watching %s (ctrl+c to stop)\n", store.Path())

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	return w.Stop()
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
