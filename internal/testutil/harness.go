// Package testutil provides fixtures for tests that work on a real
// ~/.claude.json in a temp directory.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Well-known identities used across tests.
const (
	AccountA = "11111111-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	AccountB = "22222222-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	AccountC = "33333333-cccc-4ccc-8ccc-cccccccccccc"
	OrgX     = "e7b0fffc-1111-4111-8111-111111111111"
	OrgY     = "aeb81593-2222-4222-8222-222222222222"
)

// TestHarness manages a temp directory holding a Claude config file.
type TestHarness struct {
	T       *testing.T
	TempDir string
}

// NewHarness creates a new test harness. HOME and the claude-accounts
// directories point into the temp directory for the rest of the test.
func NewHarness(t *testing.T) *TestHarness {
	t.Helper()
	tempDir := t.TempDir()

	t.Setenv("HOME", tempDir)
	t.Setenv("CLAUDE_ACCOUNTS_HOME", filepath.Join(tempDir, "claude-accounts"))
	t.Setenv("CLAUDE_CONFIG_PATH", filepath.Join(tempDir, ".claude.json"))

	return &TestHarness{T: t, TempDir: tempDir}
}

// ClaudePath is where the harness keeps ~/.claude.json.
func (h *TestHarness) ClaudePath() string {
	return filepath.Join(h.TempDir, ".claude.json")
}

// WriteFile writes content to a file in the temp directory.
func (h *TestHarness) WriteFile(relPath, content string) string {
	h.T.Helper()
	fullPath := filepath.Join(h.TempDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0700); err != nil {
		h.T.Fatalf("Failed to create dir for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0600); err != nil {
		h.T.Fatalf("Failed to write file %s: %v", relPath, err)
	}
	return fullPath
}

// WriteJSON writes data as indented JSON.
func (h *TestHarness) WriteJSON(relPath string, data interface{}) string {
	h.T.Helper()
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		h.T.Fatalf("Failed to marshal JSON for %s: %v", relPath, err)
	}
	return h.WriteFile(relPath, string(jsonBytes))
}

// WriteClaude writes data as ~/.claude.json and returns its path.
func (h *TestHarness) WriteClaude(data interface{}) string {
	h.T.Helper()
	return h.WriteJSON(".claude.json", data)
}

// ReadClaude decodes ~/.claude.json into a generic map.
func (h *TestHarness) ReadClaude() map[string]interface{} {
	h.T.Helper()
	data, err := os.ReadFile(h.ClaudePath())
	if err != nil {
		h.T.Fatalf("Failed to read %s: %v", h.ClaudePath(), err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		h.T.Fatalf("Failed to parse %s: %v", h.ClaudePath(), err)
	}
	return out
}

// OAuth returns an oauthAccount object.
func OAuth(accountUUID, organizationUUID, email string) map[string]interface{} {
	m := map[string]interface{}{
		"accountUuid":      accountUUID,
		"organizationUuid": organizationUUID,
	}
	if email != "" {
		m["emailAddress"] = email
	}
	return m
}

// Entry returns an __ext__accounts entry. Empty name or key are omitted.
func Entry(oauth map[string]interface{}, name, key string) map[string]interface{} {
	m := map[string]interface{}{"oauthAccount": oauth}
	if name != "" {
		m["name"] = name
	}
	if key != "" {
		m["primaryApiKey"] = key
	}
	return m
}

// Accounts extracts the __ext__accounts list from a decoded config.
func Accounts(cfg map[string]interface{}) []map[string]interface{} {
	raw, _ := cfg["__ext__accounts"].([]interface{})
	out := make([]map[string]interface{}, 0, len(raw))
	for _, e := range raw {
		m, _ := e.(map[string]interface{})
		out = append(out, m)
	}
	return out
}

// SessionAccount returns oauthAccount.accountUuid from a decoded config.
func SessionAccount(cfg map[string]interface{}) string {
	oauth, _ := cfg["oauthAccount"].(map[string]interface{})
	s, _ := oauth["accountUuid"].(string)
	return s
}
