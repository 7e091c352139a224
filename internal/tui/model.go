package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Entry is one selectable account line.
type Entry struct {
	Label string

	// Active marks the entry matching the current session.
	Active bool

	// Value is returned untouched in Choice.Value.
	Value any
}

// Current describes the active account shown in the header.
type Current struct {
	Label            string
	AccountUUID      string
	OrganizationUUID string
}

// Menu is everything the menu displays.
type Menu struct {
	Entries []Entry

	// Current is nil when no account is active.
	Current *Current

	// ConfigPath is shown in the header.
	ConfigPath string

	// LoginHint is the command shown next to "add new".
	LoginHint string
}

// ChoiceKind says which kind of line was picked.
type ChoiceKind int

const (
	// ChoiceCancelled means the user pressed esc/ctrl+c/q.
	ChoiceCancelled ChoiceKind = iota
	// ChoiceAccount means an account entry was selected.
	ChoiceAccount
	// ChoiceLogin means "add new" was selected.
	ChoiceLogin
	// ChoiceExit means "exit" was selected.
	ChoiceExit
)

func (k ChoiceKind) String() string {
	switch k {
	case ChoiceAccount:
		return "account"
	case ChoiceLogin:
		return "login"
	case ChoiceExit:
		return "exit"
	default:
		return "cancelled"
	}
}

// Choice is the result of the menu.
type Choice struct {
	Kind ChoiceKind

	// Value is the selected Entry's Value for ChoiceAccount.
	Value any
}

// line is a row of the menu: an account entry or one of the fixed items.
type line struct {
	kind  ChoiceKind
	entry Entry
}

// Model is the Bubble Tea model for the account menu.
type Model struct {
	menu   Menu
	lines  []line
	cursor int
	width  int

	keys   keyMap
	help   help.Model
	styles Styles

	choice Choice
	done   bool
}

// NewModel builds the menu model. The cursor starts on the active entry if
// there is one.
func NewModel(menu Menu) Model {
	lines := make([]line, 0, len(menu.Entries)+2)
	cursor := 0
	for i, e := range menu.Entries {
		if e.Active {
			cursor = i
		}
		lines = append(lines, line{kind: ChoiceAccount, entry: e})
	}
	lines = append(lines,
		line{kind: ChoiceLogin},
		line{kind: ChoiceExit},
	)

	return Model{
		menu:   menu,
		lines:  lines,
		cursor: cursor,
		keys:   defaultKeyMap(),
		help:   help.New(),
		styles: DefaultStyles(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.choice = Choice{Kind: ChoiceCancelled}
		m.done = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.lines) - 1
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.lines)-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(m.lines) - 1

	case key.Matches(msg, m.keys.Enter):
		l := m.lines[m.cursor]
		m.choice = Choice{Kind: l.kind}
		if l.kind == ChoiceAccount {
			m.choice.Value = l.entry.Value
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// Choice returns what the user picked. It is ChoiceCancelled until the menu
// finishes.
func (m Model) Choice() Choice {
	return m.choice
}

// Done reports whether the user made a choice or cancelled.
func (m Model) Done() bool {
	return m.done
}

// View implements tea.Model.
func (m Model) View() string {
	if m.done {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderMenu(),
		m.styles.Help.Render(m.help.ShortHelpView(m.keys.ShortHelp())),
	) + "\n"
}

func (m Model) renderHeader() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Welcome to %s account switcher!\n\n",
		m.styles.Star.Render("✻"), lipgloss.NewStyle().Bold(true).Render("Claude Code"))
	b.WriteString(m.styles.Muted.Render("> config: " + m.menu.ConfigPath))
	b.WriteString("\n\n")

	if cur := m.menu.Current; cur != nil {
		b.WriteString("⏺ " + lipgloss.NewStyle().Underline(true).Render("Current account:") + "\n")
		b.WriteString(m.styles.Current.Render(cur.Label) + "\n")
		b.WriteString(m.styles.Muted.Render("Account UUID: "+cur.AccountUUID) + "\n")
		b.WriteString(m.styles.Muted.Render("Organization UUID: " + cur.OrganizationUUID))
	} else {
		b.WriteString(m.styles.NoneCurrent.Render("No account selected"))
	}
	return m.styles.Header.Render(b.String())
}

func (m Model) renderMenu() string {
	var b strings.Builder
	if m.menu.Current != nil {
		b.WriteString("Select a different account:\n")
	} else {
		b.WriteString("Select an account:\n")
	}
	if len(m.menu.Entries) == 0 {
		b.WriteString(m.styles.Muted.Render("No accounts found") + "\n")
	}

	for i, l := range m.lines {
		text := m.lineText(l)
		if i == m.cursor {
			b.WriteString(m.styles.SelectedItem.Render("❯ " + text))
		} else {
			b.WriteString(m.styles.Item.Render(text))
		}
		if i < len(m.lines)-1 {
			b.WriteString("\n")
		}
	}
	return m.styles.Menu.Render(b.String())
}

func (m Model) lineText(l line) string {
	switch l.kind {
	case ChoiceLogin:
		hint := m.menu.LoginHint
		if hint == "" {
			hint = "claude /login"
		}
		return "add new " + lipgloss.NewStyle().Bold(true).Render("("+hint+")")
	case ChoiceExit:
		return "exit " + m.styles.Hint.Render("(esc)")
	default:
		if l.entry.Active {
			return l.entry.Label + " " + m.styles.Active.Render("(active)")
		}
		return l.entry.Label
	}
}
