package claudecfg

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Dicklesworthstone/claude_accounts/internal/account"
	"github.com/Dicklesworthstone/claude_accounts/internal/jsonobj"
)

// Top-level members of ~/.claude.json that this tool interprets.
const (
	KeySession    = "oauthAccount"
	KeyCredential = "primaryApiKey"
	KeyAccounts   = "__ext__accounts"
)

// Document is a parsed ~/.claude.json. Members other than the three above
// belong to Claude Code and are written back untouched.
type Document struct {
	root   *jsonobj.Object
	digest string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{root: &jsonobj.Object{}}
}

// Parse decodes a document from raw bytes.
func Parse(data []byte) (*Document, error) {
	root, err := jsonobj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &Document{root: root, digest: digest(data)}, nil
}

// Digest is the sha256 of the bytes the document was parsed from, or "" for
// documents built in memory.
func (d *Document) Digest() string {
	return d.digest
}

// Keys returns the top-level member names in file order.
func (d *Document) Keys() []string {
	return d.root.Keys()
}

// Raw returns the raw bytes of a top-level member.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	return d.root.Raw(key)
}

// Session returns the active oauthAccount, or nil when absent, null or not
// an object.
func (d *Document) Session() *account.OAuthAccount {
	if d.root.IsNull(KeySession) {
		return nil
	}
	var oa account.OAuthAccount
	if ok, err := d.root.Get(KeySession, &oa); !ok || err != nil {
		return nil
	}
	return &oa
}

// SetSession replaces the active oauthAccount.
func (d *Document) SetSession(oa *account.OAuthAccount) error {
	return d.root.Set(KeySession, oa)
}

// Credential returns primaryApiKey, or "" when absent or not a string.
func (d *Document) Credential() string {
	return d.root.String(KeyCredential)
}

// SetCredential replaces primaryApiKey.
func (d *Document) SetCredential(credential string) error {
	return d.root.Set(KeyCredential, credential)
}

// Accounts returns the stored account list. A missing member, or one that
// is not an array, yields an empty list.
func (d *Document) Accounts() []*account.Record {
	var records []*account.Record
	if ok, err := d.root.Get(KeyAccounts, &records); !ok || err != nil || records == nil {
		return []*account.Record{}
	}
	out := records[:0]
	for _, r := range records {
		if r == nil {
			r = &account.Record{}
			_ = r.UnmarshalJSON([]byte("null"))
		}
		out = append(out, r)
	}
	return out
}

// SetAccounts replaces the stored account list.
func (d *Document) SetAccounts(records []*account.Record) error {
	if records == nil {
		records = []*account.Record{}
	}
	return d.root.Set(KeyAccounts, records)
}

// Encode renders the document the way Claude Code does (two-space indent).
func (d *Document) Encode() ([]byte, error) {
	data, err := d.root.MarshalIndent("", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy that shares nothing with d.
func (d *Document) Clone() *Document {
	return &Document{root: d.root.Clone(), digest: d.digest}
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
