// Package account defines the account records kept in the shared Claude Code
// config file and the identity used to tell them apart.
package account

import (
	"encoding/json"
	"fmt"

	"github.com/Dicklesworthstone/claude_accounts/internal/jsonobj"
)

// JSON member names used by Claude Code.
const (
	fieldAccountUUID      = "accountUuid"
	fieldOrganizationUUID = "organizationUuid"
	fieldEmailAddress     = "emailAddress"

	fieldOAuthAccount  = "oauthAccount"
	fieldName          = "name"
	fieldPrimaryAPIKey = "primaryApiKey"
)

// labelPrefixLen is how many characters of a UUID appear in synthesized names.
const labelPrefixLen = 8

// Identity is the (account, organization) pair that uniquely identifies an
// account. Both parts are opaque tokens compared byte for byte.
type Identity struct {
	AccountUUID      string
	OrganizationUUID string
}

// WellFormed reports whether both components are present.
func (id Identity) WellFormed() bool {
	return id.AccountUUID != "" && id.OrganizationUUID != ""
}

// Matches reports whether two identities refer to the same account.
// An identity missing either component never matches anything.
func (id Identity) Matches(other Identity) bool {
	if !id.WellFormed() || !other.WellFormed() {
		return false
	}
	return id.AccountUUID == other.AccountUUID && id.OrganizationUUID == other.OrganizationUUID
}

// Key returns "account/organization", used for display and lookups.
func (id Identity) Key() string {
	return id.AccountUUID + "/" + id.OrganizationUUID
}

func (id Identity) String() string {
	return id.Key()
}

// OAuthAccount is the oauthAccount object Claude Code writes after login.
// Only the identity and email are interpreted; every other member is kept
// as-is so the object can be copied between the session and the list.
type OAuthAccount struct {
	obj *jsonobj.Object
}

// NewOAuthAccount builds an OAuthAccount from its interpreted fields.
func NewOAuthAccount(accountUUID, organizationUUID, email string) *OAuthAccount {
	a := &OAuthAccount{obj: &jsonobj.Object{}}
	_ = a.obj.Set(fieldAccountUUID, accountUUID)
	_ = a.obj.Set(fieldOrganizationUUID, organizationUUID)
	if email != "" {
		_ = a.obj.Set(fieldEmailAddress, email)
	}
	return a
}

// Identity returns the account's identity.
func (a *OAuthAccount) Identity() Identity {
	if a == nil {
		return Identity{}
	}
	return Identity{
		AccountUUID:      a.obj.String(fieldAccountUUID),
		OrganizationUUID: a.obj.String(fieldOrganizationUUID),
	}
}

// Email returns the emailAddress member, or "".
func (a *OAuthAccount) Email() string {
	if a == nil {
		return ""
	}
	return a.obj.String(fieldEmailAddress)
}

// Clone returns a deep copy.
func (a *OAuthAccount) Clone() *OAuthAccount {
	if a == nil {
		return nil
	}
	return &OAuthAccount{obj: a.obj.Clone()}
}

// MarshalJSON implements json.Marshaler.
func (a *OAuthAccount) MarshalJSON() ([]byte, error) {
	if a == nil || a.obj == nil {
		return []byte("null"), nil
	}
	return a.obj.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *OAuthAccount) UnmarshalJSON(data []byte) error {
	obj, err := jsonobj.Parse(data)
	if err != nil {
		return fmt.Errorf("parse oauthAccount: %w", err)
	}
	a.obj = obj
	return nil
}

// SynthesizedName is the label given to an account discovered from the
// active session: "{email} (org: {org prefix})" or "Account {account prefix}".
func SynthesizedName(a *OAuthAccount) string {
	if email := a.Email(); email != "" {
		return fmt.Sprintf("%s (org: %s)", email, prefix(a.Identity().OrganizationUUID))
	}
	return fmt.Sprintf("Account %s", prefix(a.Identity().AccountUUID))
}

func prefix(s string) string {
	r := []rune(s)
	if len(r) <= labelPrefixLen {
		return s
	}
	return string(r[:labelPrefixLen])
}

// Record is one entry of the __ext__accounts list.
//
// Records round-trip unknown members. An entry that is not a JSON object is
// kept verbatim and can never be matched.
type Record struct {
	obj    *jsonobj.Object
	opaque json.RawMessage
}

// NewRecord creates a record for the given account.
func NewRecord(oauth *OAuthAccount, name, credential string) *Record {
	r := &Record{obj: &jsonobj.Object{}}
	if oauth != nil {
		_ = r.obj.Set(fieldOAuthAccount, oauth)
	}
	if name != "" {
		_ = r.obj.Set(fieldName, name)
	}
	if credential != "" {
		_ = r.obj.Set(fieldPrimaryAPIKey, credential)
	}
	return r
}

// FromSession synthesizes the record for an account found only in the
// active session.
func FromSession(oauth *OAuthAccount, credential string) *Record {
	return NewRecord(oauth.Clone(), SynthesizedName(oauth), credential)
}

// OAuthAccount returns the record's oauthAccount, or nil.
func (r *Record) OAuthAccount() *OAuthAccount {
	if r == nil || r.obj == nil || r.obj.IsNull(fieldOAuthAccount) {
		return nil
	}
	var oa OAuthAccount
	if ok, err := r.obj.Get(fieldOAuthAccount, &oa); !ok || err != nil {
		return nil
	}
	return &oa
}

// Identity returns the record identity. Records without an oauthAccount
// yield the zero Identity, which never matches.
func (r *Record) Identity() Identity {
	return r.OAuthAccount().Identity()
}

// Name returns the stored display name, or "".
func (r *Record) Name() string {
	if r == nil || r.obj == nil {
		return ""
	}
	return r.obj.String(fieldName)
}

// Credential returns primaryApiKey, or "".
func (r *Record) Credential() string {
	if r == nil || r.obj == nil {
		return ""
	}
	return r.obj.String(fieldPrimaryAPIKey)
}

// SetCredential replaces primaryApiKey.
func (r *Record) SetCredential(credential string) {
	if r.obj == nil {
		return
	}
	_ = r.obj.Set(fieldPrimaryAPIKey, credential)
}

// Email returns the email of the record's oauthAccount, or "".
func (r *Record) Email() string {
	return r.OAuthAccount().Email()
}

// Label is the text shown for the record: its name when set, otherwise the
// synthesized name.
func (r *Record) Label() string {
	if name := r.Name(); name != "" {
		return name
	}
	return SynthesizedName(r.OAuthAccount())
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{obj: r.obj.Clone(), opaque: append(json.RawMessage(nil), r.opaque...)}
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	if r.obj == nil {
		if len(r.opaque) == 0 {
			return []byte("null"), nil
		}
		return r.opaque, nil
	}
	return r.obj.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler. It never fails on valid JSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	obj, err := jsonobj.Parse(data)
	if err != nil {
		r.obj = nil
		r.opaque = append(json.RawMessage(nil), data...)
		return nil
	}
	r.obj = obj
	r.opaque = nil
	return nil
}

// Index returns the position of the first record matching id, or -1.
func Index(records []*Record, id Identity) int {
	for i, r := range records {
		if r.Identity().Matches(id) {
			return i
		}
	}
	return -1
}
