package switcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dicklesworthstone/claude_accounts/internal/account"
	"github.com/Dicklesworthstone/claude_accounts/internal/claudecfg"
	"github.com/Dicklesworthstone/claude_accounts/internal/db"
)

// Snapshotter takes a copy of a file before it is rewritten.
type Snapshotter interface {
	Snapshot(path string) (string, error)
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Store reads and writes ~/.claude.json. Required.
	Store *claudecfg.Store

	// History records events. Optional.
	History db.EventLogger

	// Backups snapshots the file before a switch. Optional.
	Backups Snapshotter

	// DetectConcurrentWrites saves switches with Store.SaveChecked.
	DetectConcurrentWrites bool

	// Logger for structured logging.
	Logger *slog.Logger
}

// Manager runs reconcile and switch against the file on disk.
// Every call loads the document fresh; nothing is cached between calls.
type Manager struct {
	store   *claudecfg.Store
	history db.EventLogger
	backups Snapshotter
	checked bool
	logger  *slog.Logger
}

// NewManager creates a manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		store:   cfg.Store,
		history: cfg.History,
		backups: cfg.Backups,
		checked: cfg.DetectConcurrentWrites,
		logger:  cfg.Logger,
	}
}

// Store returns the underlying store.
func (m *Manager) Store() *claudecfg.Store {
	return m.store
}

// Reconcile loads the document, reconciles it and saves it when needed.
func (m *Manager) Reconcile(ctx context.Context) (Reconciliation, error) {
	if err := ctx.Err(); err != nil {
		return Reconciliation{}, err
	}

	doc, err := m.store.Load()
	if err != nil {
		return Reconciliation{}, err
	}

	res, err := Reconcile(doc)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("reconcile: %w", err)
	}
	if !res.Dirty {
		m.logger.Debug("accounts in sync", "accounts", len(res.Accounts))
		return res, nil
	}

	if err := m.store.Save(doc); err != nil {
		return Reconciliation{}, err
	}

	opID := db.NewOperationID()
	if res.Added != nil {
		m.logger.Info("recorded new account from active session",
			"account", res.Added.Identity().AccountUUID,
			"label", res.Added.Label())
		m.record(db.Event{OperationID: opID, Type: db.EventDiscover}, res.Added)
	}
	if res.CredentialUpdated {
		m.logger.Info("updated stored credential for active account",
			"account", res.Active.Identity().AccountUUID)
		m.record(db.Event{OperationID: opID, Type: db.EventCredentialUpdate}, res.Active)
	}
	return res, nil
}

// Switch makes target the active account. The document is reloaded first so
// that changes Claude Code made since the menu was shown are kept.
func (m *Manager) Switch(ctx context.Context, target *account.Record) (SwitchResult, error) {
	if err := ctx.Err(); err != nil {
		return SwitchResult{}, err
	}

	doc, err := m.store.Load()
	if err != nil {
		return SwitchResult{}, err
	}

	// Prefer the freshly loaded copy of the target, which may carry a newer
	// credential than the one shown in the menu.
	if i := account.Index(doc.Accounts(), target.Identity()); i >= 0 {
		target = doc.Accounts()[i]
	}

	res, err := Switch(doc, target)
	if err != nil {
		return SwitchResult{}, err
	}

	opID := db.NewOperationID()
	if res.Status == AlreadyActive {
		m.logger.Info("account already active", "label", res.Label)
		m.record(db.Event{OperationID: opID, Type: db.EventAlreadyActive}, target)
		return res, nil
	}

	if m.backups != nil {
		if name, err := m.backups.Snapshot(m.store.Path()); err != nil {
			m.logger.Warn("snapshot before switch failed", "error", err)
		} else if name != "" {
			m.logger.Debug("snapshot before switch", "name", name)
		}
	}

	if m.checked {
		err = m.store.SaveChecked(doc)
	} else {
		err = m.store.Save(doc)
	}
	if err != nil {
		return SwitchResult{}, err
	}

	m.logger.Info("switched account",
		"account", target.Identity().AccountUUID,
		"label", res.Label,
		"preserved_previous", res.Preserved != nil)
	if res.Preserved != nil {
		m.record(db.Event{OperationID: opID, Type: db.EventDiscover}, res.Preserved)
	}
	m.record(db.Event{OperationID: opID, Type: db.EventSwitch}, target)
	return res, nil
}

// Find reconciles and then resolves query against the account list. See
// the package-level Find for the matching rules.
func (m *Manager) Find(ctx context.Context, query string) (*account.Record, error) {
	res, err := m.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	return Find(res.Accounts, query)
}

// Note records an event that belongs to no particular account, such as a
// login being started.
func (m *Manager) Note(event db.Event) {
	m.record(event, nil)
}

func (m *Manager) record(event db.Event, rec *account.Record) {
	if m.history == nil {
		return
	}
	if rec != nil {
		id := rec.Identity()
		event.AccountUUID = id.AccountUUID
		event.OrganizationUUID = id.OrganizationUUID
		event.Label = rec.Label()
	}
	if err := m.history.LogEvent(event); err != nil {
		m.logger.Warn("record history event failed", "type", event.Type, "error", err)
	}
}
