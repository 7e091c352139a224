// Package cmd implements the CLI commands for claude-accounts.
//
// claude-accounts keeps a list of Claude Code accounts inside
// ~/.claude.json (the __ext__accounts member) and switches Claude Code's
// active session between them. Adding an account is done with Claude
// Code's own `/login`; every run afterwards records whichever account
// Claude Code has active.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Dicklesworthstone/claude_accounts/internal/backup"
	"github.com/Dicklesworthstone/claude_accounts/internal/claudecfg"
	"github.com/Dicklesworthstone/claude_accounts/internal/config"
	"github.com/Dicklesworthstone/claude_accounts/internal/db"
	"github.com/Dicklesworthstone/claude_accounts/internal/logging"
	"github.com/Dicklesworthstone/claude_accounts/internal/login"
	"github.com/Dicklesworthstone/claude_accounts/internal/switcher"
	"github.com/Dicklesworthstone/claude_accounts/internal/tui"
	"github.com/Dicklesworthstone/claude_accounts/internal/version"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfg      *config.Config
	logger   *slog.Logger
	store    *claudecfg.Store
	keeper   *backup.Keeper
	launcher *login.Launcher

	// selector is swapped out in tests.
	selector tui.Selector = tui.Program{}

	// stdoutIsTerminal is swapped out in tests.
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

	flagConfigFile string
	flagClaudePath string
	flagVerbose    bool
	flagDebug      bool
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "claude-accounts",
	Short: "Switch between Claude Code accounts",
	Long: `claude-accounts keeps every Claude Code account you have logged into in
~/.claude.json and switches the active one without logging in again.

Run without arguments to open the account menu:

  Current account:
  lorem.ipsum@example.com (org: e7b0fffc)

  Select a different account:
    demo.account@gmail.com (org: aeb81593)
  ❯ lorem.ipsum@example.com (org: e7b0fffc)
    add new (claude /login)
    exit (esc)

Accounts are recorded automatically: whenever Claude Code's active login is
not in the list yet, it is added. Use "add new" (or 'claude-accounts login')
to log into another account through Claude Code.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if flagConfigFile != "" {
			cfg, err = config.LoadFrom(flagConfigFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.Log.Level
		if flagVerbose {
			level = "info"
		}
		if flagDebug {
			level = "debug"
		}
		logger = logging.Setup(cmd.ErrOrStderr(), level)

		claudePath := cfg.Claude.ConfigPath
		if flagClaudePath != "" {
			claudePath = flagClaudePath
		}
		store = claudecfg.NewStore(claudePath, logger)
		keeper = backup.NewKeeper(config.BackupDir(), backup.Mode(cfg.Safety.AutoBackupBeforeSwitch), cfg.Safety.MaxAutoBackups)
		launcher = login.NewLauncher(cfg.Claude.LoginCommand, logger)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), tui.DefaultStyles().Error.Render(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().StringVar(&flagClaudePath, "claude-config", "", "Claude Code config file (default "+claudecfg.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log what changes")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "debug logging")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Info())
	},
}

// newManager wires a switcher.Manager to the configured store, backups and
// history. The returned func closes the history database.
func newManager() (*switcher.Manager, func()) {
	mcfg := switcher.ManagerConfig{
		Store:                  store,
		Backups:                keeper,
		DetectConcurrentWrites: cfg.Safety.DetectConcurrentWrites,
		Logger:                 logger,
	}

	closer := func() {}
	if cfg.History.Enabled {
		history, err := openHistory()
		if err != nil {
			// History is optional; a broken database never blocks switching.
			logger.Warn("history unavailable", "path", cfg.HistoryPath(), "error", err)
		} else {
			mcfg.History = history
			closer = func() { _ = history.Close() }
		}
	}

	return switcher.NewManager(mcfg), closer
}

// openHistory opens the activity database, pruned to the configured retention.
func openHistory() (*db.DB, error) {
	return db.Open(cfg.HistoryPath(), db.Retention{
		MaxAge:    cfg.History.Retention.Duration(),
		MaxEvents: cfg.History.MaxEvents,
	})
}

// loadError phrases a reconcile failure the way the menu reports it.
func loadError(err error) error {
	return fmt.Errorf("Error loading accounts: %s", describe(err))
}

// updateError phrases a switch failure.
func updateError(err error) error {
	return fmt.Errorf("Error updating accounts: %s", describe(err))
}

func describe(err error) string {
	switch {
	case errors.Is(err, claudecfg.ErrNotFound):
		return fmt.Sprintf("%v (log into Claude Code once with 'claude' first)", err)
	case errors.Is(err, claudecfg.ErrMalformed):
		return fmt.Sprintf("%v (fix or restore the file; see 'claude-accounts backups')", err)
	default:
		return err.Error()
	}
}

func printAccounts(w io.Writer, res switcher.Reconciliation) {
	if len(res.Accounts) == 0 {
		fmt.Fprintln(w, "No accounts found")
		fmt.Fprintln(w, "\nTo add one, log into Claude Code: claude-accounts login")
		return
	}

	styles := tui.DefaultStyles()
	for i, rec := range res.Accounts {
		if !rec.Identity().WellFormed() {
			continue
		}
		marker := "  "
		label := rec.Label()
		if i == res.ActiveIndex {
			marker = "● "
			if stdoutIsTerminal() {
				label = styles.Active.Render(label)
			}
		}
		fmt.Fprintf(w, "%s%s  %s\n", marker, label, rec.Identity().Key())
	}
}

func loginHint() string {
	return strings.Join(launcher.Command(), " ")
}
