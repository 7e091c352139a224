package cmd

import (
	"fmt"

	"github.com/Dicklesworthstone/claude_accounts/internal/tui"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log into another account through Claude Code",
	Long: `Start Claude Code's own login flow (claude /login by default, see
claude.login_command in the config).

Without --wait the login flow takes over the terminal and claude-accounts
exits; the new account is recorded the next time claude-accounts runs.
With --wait claude-accounts waits for the login to finish and records the
account right away.

Examples:
  claude-accounts login
  claude-accounts login --wait`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wait, _ := cmd.Flags().GetBool("wait")

		mgr, closeHistory := newManager()
		defer closeHistory()

		if !wait {
			return startLogin(cmd, mgr)
		}

		recordLogin(mgr)
		if err := launcher.Run(cmd.Context()); err != nil {
			return fmt.Errorf("login: %w", err)
		}

		res, err := mgr.Reconcile(cmd.Context())
		if err != nil {
			return loadError(err)
		}
		if res.Active == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No account selected")
			return nil
		}
		msg := "Logged in as: " + res.Active.Label()
		if res.Added != nil {
			msg = "Recorded new account: " + res.Added.Label()
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.DefaultStyles().Success.Render(msg))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().Bool("wait", false, "wait for the login to finish and record the account")
}
