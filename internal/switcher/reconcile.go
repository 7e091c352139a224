// Package switcher keeps the account list in ~/.claude.json in step with the
// session Claude Code writes, and switches that session between accounts.
//
// Reconcile and Switch are pure transformations of a claudecfg.Document;
// Manager adds the load/save cycle and side effects around them.
package switcher

import (
	"github.com/Dicklesworthstone/claude_accounts/internal/account"
	"github.com/Dicklesworthstone/claude_accounts/internal/claudecfg"
)

// Reconciliation is the outcome of Reconcile.
type Reconciliation struct {
	// Accounts is the account list after reconciliation.
	Accounts []*account.Record

	// Active is the record matching the session, or nil.
	Active *account.Record

	// ActiveIndex is Active's position in Accounts, or -1.
	ActiveIndex int

	// Dirty is set when the document changed and must be saved.
	Dirty bool

	// Added is the record synthesized from the session, if any.
	Added *account.Record

	// CredentialUpdated is set when the active record took the session's
	// credential.
	CredentialUpdated bool
}

// Reconcile matches the document's active session against its account list.
//
// A session whose identity is already listed becomes the active record and
// donates its credential when that differs. A well-formed session that is
// not listed is appended under a synthesized name. A session missing either
// identity component changes nothing. Records are never removed.
//
// The document is modified only when the result is Dirty.
func Reconcile(doc *claudecfg.Document) (Reconciliation, error) {
	accounts := doc.Accounts()
	res := Reconciliation{Accounts: accounts, ActiveIndex: -1}

	session := doc.Session()
	if session == nil {
		return res, nil
	}
	id := session.Identity()
	credential := doc.Credential()

	if i := account.Index(accounts, id); i >= 0 {
		match := accounts[i]
		if credential != "" && match.Credential() != credential {
			match.SetCredential(credential)
			res.Dirty = true
			res.CredentialUpdated = true
		}
		res.Active = match
		res.ActiveIndex = i
	} else if id.WellFormed() {
		rec := account.FromSession(session, credential)
		accounts = append(accounts, rec)
		res.Accounts = accounts
		res.Active = rec
		res.ActiveIndex = len(accounts) - 1
		res.Added = rec
		res.Dirty = true
	}

	if res.Dirty {
		if err := doc.SetAccounts(res.Accounts); err != nil {
			return Reconciliation{}, err
		}
	}
	return res, nil
}
