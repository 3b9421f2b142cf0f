// Package login provides the account view: sign in when signed out,
// sign out otherwise.
package login

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// ErrNoAuthService indicates the view was built without an auth service.
var ErrNoAuthService = errors.New("auth service is required")

// View is the account view.
type View struct {
	styles   *styles.Styles
	auth     driving.AuthService
	settings driving.SettingsService
	ctx      context.Context

	email    *input.Field
	password *input.Field
	focus    int

	user   *domain.AuthUser
	busy   bool
	err    error
	width  int
	height int
	ready  bool
}

// NewView creates the account view. settings may be nil.
func NewView(s *styles.Styles, auth driving.AuthService, settings driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	v := &View{
		styles:   s,
		auth:     auth,
		settings: settings,
		ctx:      context.Background(),
		email:    input.NewField(s, "Email:   ", "you@example.com"),
		password: input.NewPasswordField(s, "Password:"),
		width:    80,
		height:   24,
	}
	v.password.Blur()
	return v
}

// WithContext sets the context for backend calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.email.Init()
}

// Reset clears the form and focuses the email field.
func (v *View) Reset() {
	v.email.Reset()
	v.password.Reset()
	v.focus = 0
	v.email.Focus()
	v.password.Blur()
	v.err = nil
	v.busy = false
}

// SetUser records the signed-in user; nil means signed out.
func (v *View) SetUser(user *domain.AuthUser) {
	v.user = user
}

// Update handles messages for the account view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SignedIn:
		v.busy = false
		if msg.Err != nil {
			v.err = msg.Err
			v.password.Reset()
			return v, nil
		}
		v.user = msg.User
		v.Reset()
		return v, nil

	case messages.SignedOut:
		v.busy = false
		v.user = nil
		v.Reset()
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	if v.busy {
		return v, nil
	}

	if v.user != nil {
		if msg.Type == tea.KeyEnter {
			v.busy = true
			return v, v.signOut()
		}
		return v, nil
	}

	//nolint:exhaustive // only form keys are handled
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		v.toggleFocus()
		return v, nil
	case tea.KeyEnter:
		if v.focus == 0 {
			v.toggleFocus()
			return v, nil
		}
		email := strings.TrimSpace(v.email.Value())
		if email == "" || v.password.Value() == "" {
			v.err = errors.New("email and password are required")
			return v, nil
		}
		v.err = nil
		v.busy = true
		return v, v.signIn(email, v.password.Value())
	}

	var cmd tea.Cmd
	if v.focus == 0 {
		v.email, cmd = v.email.Update(msg)
	} else {
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *View) toggleFocus() {
	if v.focus == 0 {
		v.focus = 1
		v.email.Blur()
		v.password.Focus()
		return
	}
	v.focus = 0
	v.password.Blur()
	v.email.Focus()
}

func (v *View) signIn(email, password string) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.auth == nil {
			return messages.SignedIn{Err: ErrNoAuthService}
		}
		user, err := v.auth.Login(ctx, domain.Credentials{Email: email, Password: password})
		if err != nil {
			return messages.SignedIn{Err: err}
		}
		cfg := domain.DefaultSystemConfig()
		if v.settings != nil {
			cfg, _ = v.settings.LoadSystemConfig(ctx, string(user.ID))
		}
		return messages.SignedIn{User: user, Config: cfg}
	}
}

func (v *View) signOut() tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.auth == nil {
			return messages.SignedOut{Err: ErrNoAuthService}
		}
		return messages.SignedOut{Err: v.auth.Logout(ctx)}
	}
}

// View renders the account view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Account"))
	b.WriteString("\n\n")

	if v.user != nil {
		b.WriteString(v.styles.Normal.Render("Signed in as " + v.user.Name + " <" + v.user.Email + ">"))
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Role: " + string(v.user.Role)))
		b.WriteString("\n\n")
		if v.busy {
			b.WriteString(v.styles.Muted.Render("Signing out..."))
		} else {
			b.WriteString(v.styles.Help.Render("[enter] sign out  [esc] back"))
		}
		return b.String()
	}

	b.WriteString(v.email.View())
	b.WriteString("\n")
	b.WriteString(v.password.View())
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}
	if v.busy {
		b.WriteString(v.styles.Muted.Render("Signing in..."))
	} else {
		b.WriteString(v.styles.Help.Render("[tab] next field  [enter] sign in  [esc] back"))
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.email.SetWidth(width / 2)
	v.password.SetWidth(width / 2)
}

// Err returns the last sign-in error.
func (v *View) Err() error {
	return v.err
}

// Busy reports whether a request is in flight.
func (v *View) Busy() bool {
	return v.busy
}
