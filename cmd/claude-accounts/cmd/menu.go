package cmd

import (
	"fmt"

	"github.com/Dicklesworthstone/claude_accounts/internal/account"
	"github.com/Dicklesworthstone/claude_accounts/internal/db"
	"github.com/Dicklesworthstone/claude_accounts/internal/switcher"
	"github.com/Dicklesworthstone/claude_accounts/internal/tui"
	"github.com/spf13/cobra"
)

func runMenu(cmd *cobra.Command) error {
	mgr, closeHistory := newManager()
	defer closeHistory()

	res, err := mgr.Reconcile(cmd.Context())
	if err != nil {
		return loadError(err)
	}

	if !stdoutIsTerminal() {
		// No terminal to drive the menu; print the list instead.
		printAccounts(cmd.OutOrStdout(), res)
		return nil
	}

	choice, err := selector.Select(cmd.Context(), buildMenu(res))
	if err != nil {
		return err
	}

	switch choice.Kind {
	case tui.ChoiceAccount:
		rec, ok := choice.Value.(*account.Record)
		if !ok {
			return fmt.Errorf("unexpected menu value %T", choice.Value)
		}
		return switchTo(cmd, mgr, rec)

	case tui.ChoiceLogin:
		return startLogin(cmd, mgr)

	default:
		return nil
	}
}

// buildMenu lists every well-formed account in stored order.
func buildMenu(res switcher.Reconciliation) tui.Menu {
	menu := tui.Menu{
		ConfigPath: store.Path(),
		LoginHint:  loginHint(),
	}
	for i, rec := range res.Accounts {
		if !rec.Identity().WellFormed() {
			continue
		}
		menu.Entries = append(menu.Entries, tui.Entry{
			Label:  rec.Label(),
			Active: i == res.ActiveIndex,
			Value:  rec,
		})
	}
	if res.Active != nil {
		id := res.Active.Identity()
		menu.Current = &tui.Current{
			Label:            res.Active.Label(),
			AccountUUID:      id.AccountUUID,
			OrganizationUUID: id.OrganizationUUID,
		}
	}
	return menu
}

// switchTo switches and prints the outcome.
func switchTo(cmd *cobra.Command, mgr *switcher.Manager, rec *account.Record) error {
	res, err := mgr.Switch(cmd.Context(), rec)
	if err != nil {
		return updateError(err)
	}

	styles := tui.DefaultStyles()
	out := cmd.OutOrStdout()
	if res.Status == switcher.AlreadyActive {
		fmt.Fprintln(out, styles.Warning.Render("Account already selected"))
		return nil
	}
	fmt.Fprintln(out, styles.Success.Render("Successfully switched to account: "+res.Label))
	fmt.Fprintln(out, styles.Hint.Render("Close and re-open any Claude Code terminals to apply changes!"))
	return nil
}

// startLogin hands the terminal to Claude Code's login flow and returns.
func startLogin(cmd *cobra.Command, mgr *switcher.Manager) error {
	pid, err := launcher.StartDetached()
	if err != nil {
		return fmt.Errorf("start login: %w", err)
	}
	logger.Debug("login started", "pid", pid)
	recordLogin(mgr)
	return nil
}

func recordLogin(mgr *switcher.Manager) {
	mgr.Note(db.Event{
		Type:    db.EventLogin,
		Details: map[string]any{"command": launcher.Command()},
	})
}
