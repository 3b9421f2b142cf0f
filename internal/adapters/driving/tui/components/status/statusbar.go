// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady   State = "ready"
	StateBusy    State = "busy"
	StateSuccess State = "success"
	StateWarning State = "warning"
	StateError   State = "error"
)

// Bar displays the signed-in user, notifications and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	bindings []key.Binding
	state    State
	message  string
	user     string
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles:   s,
		keymap:   km,
		bindings: km.ShortHelp(),
		state:    StateReady,
		width:    80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is mostly passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	var msg string
	switch s.state {
	case StateBusy:
		text := s.message
		if text == "" {
			text = "Working..."
		}
		msg = s.styles.Muted.Render(text)
	case StateSuccess:
		msg = s.styles.Success.Render(s.message)
	case StateWarning:
		msg = s.styles.Warning.Render(s.message)
	case StateError:
		if s.message != "" {
			msg = s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		} else {
			msg = s.styles.Error.Render("Error")
		}
	case StateReady:
		msg = s.styles.Muted.Render("Ready")
		if s.message != "" {
			msg = s.styles.Normal.Render(s.message)
		}
	}

	user := s.styles.Muted.Render("signed out")
	if s.user != "" {
		user = s.styles.Subtitle.Render(s.user)
	}
	return user + s.styles.Muted.Render(" | ") + msg
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	hints := make([]string, 0, len(s.bindings))
	for _, b := range s.bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state and message.
func (s *Bar) SetState(state State, message string) {
	s.state = state
	s.message = message
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetUser sets the signed-in user shown on the left. Empty means signed out.
func (s *Bar) SetUser(user string) {
	s.user = user
}

// User returns the displayed user.
func (s *Bar) User() string {
	return s.user
}

// SetBindings sets the keybinding hints shown on the right.
func (s *Bar) SetBindings(bindings []key.Binding) {
	s.bindings = bindings
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the notification.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
