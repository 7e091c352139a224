package switcher

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/Dicklesworthstone/claude_accounts/internal/claudecfg"
	"github.com/Dicklesworthstone/claude_accounts/internal/db"
	"github.com/Dicklesworthstone/claude_accounts/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHistory struct {
	events []db.Event
	err    error
}

func (h *recordingHistory) LogEvent(e db.Event) error {
	h.events = append(h.events, e)
	return h.err
}

func (h *recordingHistory) types() []string {
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.Type
	}
	return out
}

type fakeSnapshotter struct {
	calls int
	err   error
}

func (f *fakeSnapshotter) Snapshot(string) (string, error) {
	f.calls++
	return "snap", f.err
}

func newTestManager(t *testing.T, cfg map[string]any) (*Manager, *testutil.TestHarness, *recordingHistory, *fakeSnapshotter) {
	t.Helper()
	h := testutil.NewHarness(t)
	h.WriteClaude(cfg)

	history := &recordingHistory{}
	snaps := &fakeSnapshotter{}
	m := NewManager(ManagerConfig{
		Store:   claudecfg.NewStore(h.ClaudePath(), nil),
		History: history,
		Backups: snaps,
	})
	return m, h, history, snaps
}

func TestManagerReconcile_PersistsNewAccount(t *testing.T) {
	m, h, history, _ := newTestManager(t, map[string]any{
		"theme":         "dark",
		"oauthAccount":  testutil.OAuth(testutil.AccountA, testutil.OrgX, "a@example.com"),
		"primaryApiKey": "key-a",
	})

	res, err := m.Reconcile(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Added)

	onDisk := h.ReadClaude()
	accounts := testutil.Accounts(onDisk)
	require.Len(t, accounts, 1)
	assert.Equal(t, "a@example.com (org: e7b0fffc)", accounts[0]["name"])
	assert.Equal(t, "key-a", accounts[0]["primaryApiKey"])
	assert.Equal(t, "dark", onDisk["theme"])
	assert.Equal(t, []string{db.EventDiscover}, history.types())
	assert.Equal(t, testutil.AccountA, history.events[0].AccountUUID)
}

func TestManagerReconcile_CleanDoesNotWrite(t *testing.T) {
	m, h, history, _ := newTestManager(t, map[string]any{
		"oauthAccount": testutil.OAuth(testutil.AccountA, testutil.OrgX, ""),
		"__ext__accounts": []any{
			testutil.Entry(testutil.OAuth(testutil.AccountA, testutil.OrgX, ""), "A", ""),
		},
	})
	before, err := os.Stat(h.ClaudePath())
	require.NoError(t, err)

	res, err := m.Reconcile(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Dirty)

	after, err := os.Stat(h.ClaudePath())
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	assert.Empty(t, history.events)
}

func TestManagerReconcile_MissingFile(t *testing.T) {
	h := testutil.NewHarness(t)
	m := NewManager(ManagerConfig{Store: claudecfg.NewStore(h.ClaudePath(), nil)})

	_, err := m.Reconcile(context.Background())
	require.ErrorIs(t, err, claudecfg.ErrNotFound)
}

func TestManagerReconcile_MalformedFileUntouched(t *testing.T) {
	h := testutil.NewHarness(t)
	path := h.WriteFile(".claude.json", "{oops")
	m := NewManager(ManagerConfig{Store: claudecfg.NewStore(path, nil)})

	_, err := m.Reconcile(context.Background())
	require.ErrorIs(t, err, claudecfg.ErrMalformed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{oops", string(data))
}

func TestManagerSwitch_WritesAndRecords(t *testing.T) {
	m, h, history, snaps := newTestManager(t, map[string]any{
		"oauthAccount":  testutil.OAuth(testutil.AccountC, testutil.OrgX, "c@example.com"),
		"primaryApiKey": "key-c",
		"__ext__accounts": []any{
			testutil.Entry(testutil.OAuth(testutil.AccountB, testutil.OrgY, "b@example.com"), "B", "key-b"),
		},
	})
	target, err := m.Find(context.Background(), "B")
	require.NoError(t, err)

	res, err := m.Switch(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, Switched, res.Status)
	assert.Equal(t, 1, snaps.calls)

	onDisk := h.ReadClaude()
	assert.Equal(t, testutil.AccountB, testutil.SessionAccount(onDisk))
	assert.Equal(t, "key-b", onDisk["primaryApiKey"])
	assert.Len(t, testutil.Accounts(onDisk), 2)

	// Find reconciled first, which recorded C; the switch then recorded B.
	assert.Equal(t, []string{db.EventDiscover, db.EventSwitch}, history.types())
	switchEvent := history.events[len(history.events)-1]
	assert.Equal(t, testutil.AccountB, switchEvent.AccountUUID)
	assert.Equal(t, "B", switchEvent.Label)
	assert.NotEmpty(t, switchEvent.OperationID)
}

func TestManagerSwitch_AlreadyActiveDoesNotWrite(t *testing.T) {
	m, h, history, snaps := newTestManager(t, map[string]any{
		"oauthAccount": testutil.OAuth(testutil.AccountA, testutil.OrgX, ""),
		"__ext__accounts": []any{
			testutil.Entry(testutil.OAuth(testutil.AccountA, testutil.OrgX, ""), "A", ""),
		},
	})
	res, err := m.Reconcile(context.Background())
	require.NoError(t, err)
	before, err := os.ReadFile(h.ClaudePath())
	require.NoError(t, err)

	sw, err := m.Switch(context.Background(), res.Accounts[0])
	require.NoError(t, err)
	assert.Equal(t, AlreadyActive, sw.Status)
	assert.Zero(t, snaps.calls)

	after, err := os.ReadFile(h.ClaudePath())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Equal(t, []string{db.EventAlreadyActive}, history.types())
}

// The file is reloaded before switching, so a login that Claude Code
// performed after the menu was shown is preserved.
func TestManagerSwitch_ReloadsBeforeWriting(t *testing.T) {
	m, h, _, _ := newTestManager(t, map[string]any{
		"oauthAccount": testutil.OAuth(testutil.AccountA, testutil.OrgX, ""),
		"__ext__accounts": []any{
			testutil.Entry(testutil.OAuth(testutil.AccountA, testutil.OrgX, ""), "A", "key-a"),
			testutil.Entry(testutil.OAuth(testutil.AccountB, testutil.OrgX, ""), "B", "key-b"),
		},
	})
	res, err := m.Reconcile(context.Background())
	require.NoError(t, err)
	target := res.Accounts[1]

	// Meanwhile Claude Code logs into a third account and rotates B's key.
	h.WriteClaude(map[string]any{
		"oauthAccount":  testutil.OAuth(testutil.AccountC, testutil.OrgY, "c@example.com"),
		"primaryApiKey": "key-c",
		"__ext__accounts": []any{
			testutil.Entry(testutil.OAuth(testutil.AccountA, testutil.OrgX, ""), "A", "key-a"),
			testutil.Entry(testutil.OAuth(testutil.AccountB, testutil.OrgX, ""), "B", "key-b2"),
		},
	})

	sw, err := m.Switch(context.Background(), target)
	require.NoError(t, err)
	require.NotNil(t, sw.Preserved)

	onDisk := h.ReadClaude()
	accounts := testutil.Accounts(onDisk)
	require.Len(t, accounts, 3)
	assert.Equal(t, "c@example.com (org: aeb81593)", accounts[2]["name"])
	assert.Equal(t, "key-c", accounts[2]["primaryApiKey"])
	assert.Equal(t, "key-b2", onDisk["primaryApiKey"])
}

func TestManagerSwitch_HistoryAndBackupFailuresAreNotFatal(t *testing.T) {
	m, h, history, snaps := newTestManager(t, map[string]any{
		"oauthAccount": testutil.OAuth(testutil.AccountA, testutil.OrgX, ""),
		"__ext__accounts": []any{
			testutil.Entry(testutil.OAuth(testutil.AccountA, testutil.OrgX, ""), "A", ""),
			testutil.Entry(testutil.OAuth(testutil.AccountB, testutil.OrgX, ""), "B", ""),
		},
	})
	history.err = errors.New("disk full")
	snaps.err = errors.New("no space")

	res, err := m.Reconcile(context.Background())
	require.NoError(t, err)

	_, err = m.Switch(context.Background(), res.Accounts[1])
	require.NoError(t, err)
	assert.Equal(t, testutil.AccountB, testutil.SessionAccount(h.ReadClaude()))
}

func TestManagerSwitch_ConflictAborts(t *testing.T) {
	h := testutil.NewHarness(t)
	h.WriteClaude(map[string]any{
		"oauthAccount": testutil.OAuth(testutil.AccountA, testutil.OrgX, ""),
		"__ext__accounts": []any{
			testutil.Entry(testutil.OAuth(testutil.AccountA, testutil.OrgX, ""), "A", ""),
			testutil.Entry(testutil.OAuth(testutil.AccountB, testutil.OrgX, ""), "B", ""),
		},
	})

	changed := "{\"oauthAccount\": {}, \"touched\": true}"
	snaps := snapshotFunc(func() {
		// Simulate Claude Code rewriting the file between reload and save.
		require.NoError(t, os.WriteFile(h.ClaudePath(), []byte(changed), 0600))
	})
	m := NewManager(ManagerConfig{
		Store:                  claudecfg.NewStore(h.ClaudePath(), nil),
		Backups:                snaps,
		DetectConcurrentWrites: true,
	})

	res, err := m.Reconcile(context.Background())
	require.NoError(t, err)
	_, err = m.Switch(context.Background(), res.Accounts[1])
	require.ErrorIs(t, err, claudecfg.ErrConflict)

	data, err := os.ReadFile(h.ClaudePath())
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "touched"))
}

func TestManager_CancelledContext(t *testing.T) {
	m, _, _, _ := newTestManager(t, map[string]any{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Reconcile(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

type snapshotFunc func()

func (f snapshotFunc) Snapshot(string) (string, error) {
	f()
	return "", nil
}
