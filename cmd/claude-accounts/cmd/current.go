package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, closeHistory := newManager()
		defer closeHistory()

		res, err := mgr.Reconcile(cmd.Context())
		if err != nil {
			return loadError(err)
		}

		out := cmd.OutOrStdout()
		if res.Active == nil {
			fmt.Fprintln(out, "No account selected")
			return nil
		}

		id := res.Active.Identity()
		fmt.Fprintln(out, res.Active.Label())
		fmt.Fprintf(out, "Account UUID: %s\n", id.AccountUUID)
		fmt.Fprintf(out, "Organization UUID: %s\n", id.OrganizationUUID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(currentCmd)
}
