package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Selector shows a Menu and returns the user's Choice.
type Selector interface {
	Select(ctx context.Context, menu Menu) (Choice, error)
}

// Program is the terminal Selector.
type Program struct {
	In  io.Reader
	Out io.Writer
}

// Select runs the menu inline (no alt screen) until the user picks a line
// or cancels.
func (p Program) Select(ctx context.Context, menu Menu) (Choice, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(NewModel(menu), opts...).Run()
	if err != nil {
		return Choice{}, fmt.Errorf("run menu: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Choice{}, fmt.Errorf("unexpected menu model %T", final)
	}
	return m.Choice(), nil
}
