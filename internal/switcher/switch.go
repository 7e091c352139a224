package switcher

import (
	"errors"

	"github.com/Dicklesworthstone/claude_accounts/internal/account"
	"github.com/Dicklesworthstone/claude_accounts/internal/claudecfg"
)

// ErrUnmatchableTarget is returned when asked to switch to a record that has
// no complete identity.
var ErrUnmatchableTarget = errors.New("account has no complete identity")

// Status is the outcome of a switch.
type Status int

const (
	// Switched means the session now points at the target.
	Switched Status = iota
	// AlreadyActive means the target was already the session; nothing changed.
	AlreadyActive
)

func (s Status) String() string {
	switch s {
	case Switched:
		return "switched"
	case AlreadyActive:
		return "already_active"
	default:
		return "unknown"
	}
}

// SwitchResult describes what Switch did.
type SwitchResult struct {
	Status Status

	// Label is the target's display label.
	Label string

	// Preserved is the record synthesized for the superseded session when it
	// was not yet listed.
	Preserved *account.Record

	// Appended is set when the target itself had to be added to the list.
	Appended bool
}

// Switch points the document's session at target.
//
// doc must be freshly loaded. If the session already is target nothing
// changes. Otherwise the outgoing session is recorded in the account list
// if it is missing, target is added if missing, the session's oauthAccount
// is replaced with target's and primaryApiKey is replaced when target
// carries one. Other members of the document are untouched.
func Switch(doc *claudecfg.Document, target *account.Record) (SwitchResult, error) {
	targetID := target.Identity()
	if !targetID.WellFormed() {
		return SwitchResult{}, ErrUnmatchableTarget
	}
	res := SwitchResult{Label: target.Label()}

	session := doc.Session()
	if session != nil && session.Identity().Matches(targetID) {
		res.Status = AlreadyActive
		return res, nil
	}

	accounts := doc.Accounts()
	if session != nil && session.Identity().WellFormed() && account.Index(accounts, session.Identity()) < 0 {
		rec := account.FromSession(session, doc.Credential())
		accounts = append(accounts, rec)
		res.Preserved = rec
	}

	if account.Index(accounts, targetID) < 0 {
		accounts = append(accounts, target.Clone())
		res.Appended = true
	}

	if res.Preserved != nil || res.Appended {
		if err := doc.SetAccounts(accounts); err != nil {
			return SwitchResult{}, err
		}
	}

	if err := doc.SetSession(target.OAuthAccount()); err != nil {
		return SwitchResult{}, err
	}
	if credential := target.Credential(); credential != "" {
		if err := doc.SetCredential(credential); err != nil {
			return SwitchResult{}, err
		}
	}

	res.Status = Switched
	return res, nil
}
