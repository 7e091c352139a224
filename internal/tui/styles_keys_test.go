package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func TestDefaultStyles(t *testing.T) {
	styles := DefaultStyles()

	for name, s := range map[string]interface{ Render(...string) string }{
		"Header":       styles.Header,
		"Menu":         styles.Menu,
		"Item":         styles.Item,
		"SelectedItem": styles.SelectedItem,
		"Active":       styles.Active,
		"Success":      styles.Success,
		"Error":        styles.Error,
	} {
		if s.Render("text") == "" {
			t.Errorf("%s style should render non-empty output", name)
		}
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := defaultKeyMap()

	bindings := map[string]key.Binding{
		"Up":     km.Up,
		"Down":   km.Down,
		"Top":    km.Top,
		"Bottom": km.Bottom,
		"Enter":  km.Enter,
		"Quit":   km.Quit,
	}
	for name, b := range bindings {
		if len(b.Keys()) == 0 {
			t.Errorf("%s has no keys", name)
		}
		if b.Help().Key == "" {
			t.Errorf("%s has no help text", name)
		}
	}

	if got := len(km.ShortHelp()); got != 4 {
		t.Errorf("ShortHelp() len = %d, want 4", got)
	}
}
