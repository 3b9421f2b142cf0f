package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/views/login"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/views/stores"
	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles is shared by every view and restyled in place on theme changes.
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	menuView      *menu.View
	loginView     *login.View
	storesView    *stores.View
	chatView      *chat.View
	documentsView *documents.View
	settingsView  *settings.View
	statusbar     *status.Bar

	// user is the signed-in user, nil when signed out.
	user *domain.AuthUser

	// config is the SystemConfig in effect.
	config domain.SystemConfig

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	cfg := domain.DefaultSystemConfig()
	if ports.Settings != nil {
		cfg = ports.Settings.SystemConfig()
	}

	s := styles.NewStyles(styles.ThemeFor(cfg.Theme))
	km := keymap.DefaultKeyMap()
	a := &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		help:          help.New(),
		menuView:      menu.NewView(s),
		loginView:     login.NewView(s, ports.Auth, ports.Settings),
		storesView:    stores.NewView(s, ports.Stores),
		chatView:      chat.NewView(s, ports.Chat),
		documentsView: documents.NewView(s, ports.Documents, ports.Tracker),
		settingsView:  settings.NewView(s, ports.Settings),
		statusbar:     status.NewBar(s, km),
		config:        cfg,
		currentView:   messages.ViewMenu,
	}
	a.menuView.SetTitle(cfg.SystemName)
	return a, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.loginView.WithContext(ctx)
	a.storesView.WithContext(ctx)
	a.chatView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle(a.config.SystemName),
		a.checkSession(),
	)
}

// checkSession looks for a stored session so a returning user skips login.
func (a *App) checkSession() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if a.ports.Auth == nil {
			return messages.SessionChecked{}
		}
		session, err := a.ports.Auth.Session(ctx)
		if err != nil || session == nil || !session.IsAuthenticated() || session.User == nil {
			return messages.SessionChecked{}
		}
		cfg := domain.DefaultSystemConfig()
		if a.ports.Settings != nil {
			cfg, _ = a.ports.Settings.LoadSystemConfig(ctx, string(session.User.ID))
		}
		return messages.SessionChecked{User: session.User, Config: cfg}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.routeKey(msg)

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.SessionChecked:
		a.setUser(msg.User)
		if msg.User == nil {
			return a, nil
		}
		return a, a.applyConfig(msg.Config)

	case messages.SignedIn:
		a.loginView, cmd = a.loginView.Update(msg)
		if msg.Err != nil {
			return a, cmd
		}
		a.setUser(msg.User)
		return a, tea.Batch(cmd, a.applyConfig(msg.Config),
			a.notify("Signed in as "+msg.User.Email, messages.LevelSuccess),
			a.switchView(messages.ViewMenu))

	case messages.SignedOut:
		a.loginView, _ = a.loginView.Update(msg)
		a.setUser(nil)
		a.chatView.Close()
		a.ports.Chat.Reset()
		a.menuView.SetChatting("")
		cfg := domain.DefaultSystemConfig()
		if a.ports.Settings != nil {
			cfg = a.ports.Settings.SystemConfig()
		}
		cmds := []tea.Cmd{a.applyConfig(cfg), a.switchView(messages.ViewMenu)}
		if msg.Err != nil {
			cmds = append(cmds, a.notify("Signed out locally; the server did not answer", messages.LevelWarning))
		} else {
			cmds = append(cmds, a.notify("Signed out", messages.LevelInfo))
		}
		return a, tea.Batch(cmds...)

	case messages.StoreSelected:
		a.enter(messages.ViewChat)
		return a, a.chatView.Start(msg.Store)

	case messages.UploadRequested:
		a.enter(messages.ViewChat)
		return a, a.chatView.Upload(msg.Store, msg.Path)

	case messages.ChatStarted:
		a.chatView, cmd = a.chatView.Update(msg)
		switch {
		case errors.Is(msg.Err, domain.ErrStoreEmpty):
			return a, tea.Batch(cmd,
				a.notify(msg.Store.Label()+" has no documents yet", messages.LevelWarning),
				a.switchView(messages.ViewStores))
		case msg.Err != nil:
			a.err = msg.Err
			return a, tea.Batch(cmd, a.notify(msg.Err.Error(), messages.LevelError))
		}
		a.menuView.SetChatting(msg.Store.Label())
		return a, tea.Batch(cmd, a.notify("Chatting with "+msg.Store.Label(), messages.LevelInfo))

	case messages.ChatEnded:
		a.menuView.SetChatting("")
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ChatUpdated, messages.ChatAnswered, messages.UploadStepped, spinner.TickMsg:
		// Streams keep running when the user navigates away.
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.StoresLoaded:
		a.storesView, cmd = a.storesView.Update(msg)
		return a, cmd

	case messages.DocumentsLoaded, messages.DocumentsTicked, messages.DocumentDeleted:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		if msg.Err != nil {
			return a, cmd
		}
		return a, tea.Batch(cmd, a.applyConfig(msg.Config), a.notify("Settings saved", messages.LevelSuccess))

	case messages.ConfigFileChanged:
		return a, a.reloadConfig()

	case messages.ConfigChanged:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, tea.Batch(cmd, a.applyConfig(msg.Config))

	case messages.Notify:
		a.showNotification(msg)
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusbar.SetState(status.StateError, msg.Err.Error())
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to active view
	return a, a.forward(msg)
}

func (a *App) routeKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewMenu:
		if msg.String() == "?" {
			return a.switchView(messages.ViewHelp)
		}
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewLogin:
		a.loginView, cmd = a.loginView.Update(msg)
	case messages.ViewStores:
		a.storesView, cmd = a.storesView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		// Esc from help goes to menu
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			return a.switchView(messages.ViewMenu)
		}
	}
	return cmd
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewLogin:
		a.loginView, cmd = a.loginView.Update(msg)
	case messages.ViewStores:
		a.storesView, cmd = a.storesView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}
	return cmd
}

// switchView activates a view and runs its initialisation.
func (a *App) switchView(view messages.ViewType) tea.Cmd {
	if a.currentView == messages.ViewDocuments && view != messages.ViewDocuments {
		a.documentsView.Deactivate()
	}
	if view == messages.ViewChat && a.chatView.Store() == nil {
		view = messages.ViewStores
	}
	a.enter(view)

	switch view {
	case messages.ViewLogin:
		a.loginView.Reset()
		return a.loginView.Init()
	case messages.ViewStores:
		return a.storesView.Init()
	case messages.ViewChat:
		return a.chatView.Init()
	case messages.ViewDocuments:
		return a.documentsView.Init()
	case messages.ViewSettings:
		a.settingsView.Reset()
		return a.settingsView.Init()
	case messages.ViewMenu, messages.ViewHelp:
		// Static views
	}
	return nil
}

// enter makes a view current and updates the key hints.
func (a *App) enter(view messages.ViewType) {
	a.currentView = view
	switch view {
	case messages.ViewChat:
		a.statusbar.SetBindings(a.keymap.ChatHelp())
	case messages.ViewStores, messages.ViewDocuments:
		a.statusbar.SetBindings(a.keymap.ListHelp())
	default:
		a.statusbar.SetBindings(a.keymap.ShortHelp())
	}
}

func (a *App) setUser(user *domain.AuthUser) {
	a.user = user
	a.loginView.SetUser(user)
	if user == nil {
		a.statusbar.SetUser("")
		a.menuView.SetUser("")
		a.settingsView.SetUserID("")
		return
	}
	name := user.Name
	if name == "" {
		name = user.Email
	}
	a.statusbar.SetUser(user.Email)
	a.menuView.SetUser(name)
	a.settingsView.SetUserID(string(user.ID))
}

// applyConfig makes cfg current: theme, title and notification policy.
func (a *App) applyConfig(cfg domain.SystemConfig) tea.Cmd {
	if cfg.Theme != a.config.Theme {
		a.styles.Apply(styles.ThemeFor(cfg.Theme))
	}
	a.config = cfg
	a.menuView.SetTitle(cfg.SystemName)
	return tea.SetWindowTitle(cfg.SystemName)
}

func (a *App) reloadConfig() tea.Cmd {
	if a.ports.Settings == nil {
		return nil
	}
	userID := ""
	if a.user != nil {
		userID = string(a.user.ID)
	}
	return func() tea.Msg {
		return messages.ConfigChanged{Config: a.ports.Settings.ReloadSystemConfig(userID)}
	}
}

func (a *App) notify(text string, level messages.Level) tea.Cmd {
	return func() tea.Msg { return messages.Notify{Text: text, Level: level} }
}

// showNotification updates the status bar. With notifications turned
// off only warnings and errors are shown.
func (a *App) showNotification(n messages.Notify) {
	switch n.Level {
	case messages.LevelError:
		a.statusbar.SetState(status.StateError, n.Text)
	case messages.LevelWarning:
		a.statusbar.SetState(status.StateWarning, n.Text)
	case messages.LevelSuccess:
		if a.config.Notifications {
			a.statusbar.SetState(status.StateSuccess, n.Text)
		}
	case messages.LevelInfo:
		if a.config.Notifications {
			a.statusbar.SetState(status.StateReady, n.Text)
		}
	}
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewMenu:
		body = a.menuView.View()
	case messages.ViewLogin:
		body = a.loginView.View()
	case messages.ViewStores:
		body = a.storesView.View()
	case messages.ViewChat:
		body = a.chatView.View()
	case messages.ViewDocuments:
		body = a.documentsView.View()
	case messages.ViewSettings:
		body = a.settingsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.menuView.View()
	}

	body = lipgloss.NewStyle().Height(a.height - 1).MaxHeight(a.height - 1).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, body, a.statusbar.View())
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	a.help.ShowAll = true
	a.help.Width = a.width
	return a.styles.Title.Render("Help") + "\n\n" +
		a.help.View(a.keymap) + "\n\n" +
		a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// User returns the signed-in user, or nil.
func (a *App) User() *domain.AuthUser {
	return a.user
}

// Config returns the SystemConfig in effect.
func (a *App) Config() domain.SystemConfig {
	return a.config
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// The status bar takes the last row.
	h := height - 1
	a.menuView.SetDimensions(width, h)
	a.loginView.SetDimensions(width, h)
	a.storesView.SetDimensions(width, h)
	a.chatView.SetDimensions(width, h)
	a.documentsView.SetDimensions(width, h)
	a.settingsView.SetDimensions(width, h)
	a.statusbar.SetWidth(width)
}
