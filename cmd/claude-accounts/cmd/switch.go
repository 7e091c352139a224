package cmd

import (
	"errors"

	"github.com/Dicklesworthstone/claude_accounts/internal/switcher"
	"github.com/spf13/cobra"
)

var switchCmd = &cobra.Command{
	Use:     "switch <account>",
	Aliases: []string{"use"},
	Short:   "Switch to an account without the menu",
	Long: `Make another recorded account the active Claude Code login.

<account> may be the account's label, its email address, its account UUID
(or a unique prefix of it), or "accountUuid/organizationUuid" when the same
account belongs to several organizations.

Examples:
  claude-accounts switch work@example.com
  claude-accounts switch 3f2a9c1e
  claude-accounts switch "Work"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, closeHistory := newManager()
		defer closeHistory()

		rec, err := mgr.Find(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, switcher.ErrNoMatch) || errors.Is(err, switcher.ErrAmbiguous) {
				return err
			}
			return loadError(err)
		}
		return switchTo(cmd, mgr, rec)
	},
}

func init() {
	rootCmd.AddCommand(switchCmd)
}
