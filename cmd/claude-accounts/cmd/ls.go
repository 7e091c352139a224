package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Dicklesworthstone/claude_accounts/internal/switcher"
	"github.com/spf13/cobra"
)

// accountJSON is the --json shape of one account. Credentials are never
// printed, only whether one is stored.
type accountJSON struct {
	Label            string `json:"label"`
	Name             string `json:"name,omitempty"`
	Email            string `json:"email,omitempty"`
	AccountUUID      string `json:"account_uuid"`
	OrganizationUUID string `json:"organization_uuid"`
	Active           bool   `json:"active"`
	HasCredential    bool   `json:"has_credential"`
}

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List recorded accounts",
	Long: `List every account recorded in ~/.claude.json. The active account is
marked with ●.

The active Claude Code login is recorded first if it is not in the list yet.

Examples:
  claude-accounts ls
  claude-accounts ls --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")

		mgr, closeHistory := newManager()
		defer closeHistory()

		res, err := mgr.Reconcile(cmd.Context())
		if err != nil {
			return loadError(err)
		}

		if jsonOut {
			return writeAccountsJSON(cmd, res)
		}
		printAccounts(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().Bool("json", false, "output as JSON")
}

func writeAccountsJSON(cmd *cobra.Command, res switcher.Reconciliation) error {
	out := make([]accountJSON, 0, len(res.Accounts))
	for i, rec := range res.Accounts {
		id := rec.Identity()
		if !id.WellFormed() {
			continue
		}
		out = append(out, accountJSON{
			Label:            rec.Label(),
			Name:             rec.Name(),
			Email:            rec.Email(),
			AccountUUID:      id.AccountUUID,
			OrganizationUUID: id.OrganizationUUID,
			Active:           i == res.ActiveIndex,
			HasCredential:    rec.Credential() != "",
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	return nil
}
