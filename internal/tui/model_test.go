package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func sampleMenu() Menu {
	return Menu{
		Entries: []Entry{
			{Label: "demo.account@gmail.com (org: aeb81593)", Value: "first"},
			{Label: "lorem.ipsum@example.com (org: e7b0fffc)", Active: true, Value: "second"},
			{Label: "Work", Value: "third"},
		},
		Current: &Current{
			Label:            "lorem.ipsum@example.com (org: e7b0fffc)",
			AccountUUID:      "3f2a9c1e-1111",
			OrganizationUUID: "e7b0fffc-2222",
		},
		ConfigPath: "/home/me/.claude.json",
		LoginHint:  "claude /login",
	}
}

func TestNewModel_CursorOnActive(t *testing.T) {
	m := NewModel(sampleMenu())
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}

	none := sampleMenu()
	none.Entries[1].Active = false
	if m := NewModel(none); m.cursor != 0 {
		t.Fatalf("cursor without active = %d, want 0", m.cursor)
	}
}

func TestEnterSelectsAccount(t *testing.T) {
	m, cmd := press(t, NewModel(sampleMenu()), "down", "enter")

	if !m.Done() {
		t.Fatal("model not done after enter")
	}
	if cmd == nil {
		t.Fatal("enter should quit the program")
	}
	got := m.Choice()
	if got.Kind != ChoiceAccount || got.Value != "third" {
		t.Fatalf("Choice() = %+v, want third account", got)
	}
}

func TestFixedLines(t *testing.T) {
	// Three accounts, then "add new", then "exit".
	m, _ := press(t, NewModel(sampleMenu()), "G", "up", "enter")
	if m.Choice().Kind != ChoiceLogin {
		t.Fatalf("Choice() = %v, want login", m.Choice().Kind)
	}

	m, _ = press(t, NewModel(sampleMenu()), "G", "enter")
	if m.Choice().Kind != ChoiceExit {
		t.Fatalf("Choice() = %v, want exit", m.Choice().Kind)
	}
	if m.Choice().Value != nil {
		t.Fatalf("exit carries value %v", m.Choice().Value)
	}
}

func TestNavigationWraps(t *testing.T) {
	m, _ := press(t, NewModel(sampleMenu()), "g", "up")
	if m.cursor != len(m.lines)-1 {
		t.Fatalf("up from top: cursor = %d, want %d", m.cursor, len(m.lines)-1)
	}
	m, _ = press(t, m, "j")
	if m.cursor != 0 {
		t.Fatalf("down from bottom: cursor = %d, want 0", m.cursor)
	}
}

func TestCancelKeys(t *testing.T) {
	for _, k := range []string{"esc", "ctrl+c", "q"} {
		t.Run(k, func(t *testing.T) {
			m, cmd := press(t, NewModel(sampleMenu()), k)
			if !m.Done() || cmd == nil {
				t.Fatal("cancel should finish the program")
			}
			if m.Choice().Kind != ChoiceCancelled {
				t.Fatalf("Choice() = %v, want cancelled", m.Choice().Kind)
			}
		})
	}
}

func TestView(t *testing.T) {
	view := NewModel(sampleMenu()).View()

	for _, want := range []string{
		"Claude Code",
		"/home/me/.claude.json",
		"Current account:",
		"Account UUID: 3f2a9c1e-1111",
		"Organization UUID: e7b0fffc-2222",
		"Select a different account:",
		"demo.account@gmail.com (org: aeb81593)",
		"(active)",
		"add new",
		"claude /login",
		"exit",
		"❯ lorem.ipsum@example.com",
		"↑/k move up",
		"enter select",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestView_NoAccounts(t *testing.T) {
	m := NewModel(Menu{ConfigPath: "/x/.claude.json"})
	view := m.View()

	for _, want := range []string{"No account selected", "No accounts found", "add new", "exit"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}

	m, _ = press(t, m, "enter")
	if m.Choice().Kind != ChoiceLogin {
		t.Fatalf("first line of an empty menu = %v, want login", m.Choice().Kind)
	}
}

func TestView_EmptyAfterDone(t *testing.T) {
	m, _ := press(t, NewModel(sampleMenu()), "esc")
	if m.View() != "" {
		t.Fatalf("View() after done = %q", m.View())
	}
}

func TestChoiceKindString(t *testing.T) {
	cases := map[ChoiceKind]string{
		ChoiceCancelled: "cancelled",
		ChoiceAccount:   "account",
		ChoiceLogin:     "login",
		ChoiceExit:      "exit",
	}
	for k, want := range cases {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", k, k.String(), want)
		}
	}
}
