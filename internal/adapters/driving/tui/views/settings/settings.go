// Package settings provides the preferences view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// ErrNoSettingsService indicates the view was built without a settings service.
var ErrNoSettingsService = errors.New("settings service is required")

// Field identifies an editable preference.
type Field int

const (
	FieldSystemName Field = iota
	FieldTheme
	FieldLanguage
	FieldNotifications
	FieldAutoSave
)

var fieldLabels = []string{
	FieldSystemName:    "System name",
	FieldTheme:         "Theme",
	FieldLanguage:      "Language",
	FieldNotifications: "Notifications",
	FieldAutoSave:      "Auto-save",
}

// Languages offered when cycling the language field.
var Languages = []string{"pt-BR", "en-US", "es-ES"}

// View edits the signed-in user's SystemConfig. With auto-save on,
// every change is persisted immediately; otherwise s saves.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	userID   string
	config   domain.SystemConfig
	dirty    bool
	selected Field
	editing  *input.Field
	err      error
	saved    bool

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		settingsService: settingsService,
		config:          domain.DefaultSystemConfig(),
	}
}

// SetUserID sets whose preferences are edited. Empty means signed out;
// changes then apply to this run only.
func (v *View) SetUserID(id string) {
	v.userID = id
}

// Init loads the current config into the editor.
func (v *View) Init() tea.Cmd {
	return nil
}

// Reset discards unsaved edits and reloads the current config.
func (v *View) Reset() {
	if v.settingsService != nil {
		v.config = v.settingsService.SystemConfig()
	}
	v.dirty = false
	v.editing = nil
	v.err = nil
	v.saved = false
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.dirty = false
		v.saved = true
		v.config = msg.Config
		return v, nil

	case messages.ConfigChanged:
		if !v.dirty {
			v.config = msg.Config
		}
		return v, nil

	case tea.KeyMsg:
		if v.editing != nil {
			return v.handleEditKey(msg)
		}
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.Reset()
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case "up", "k":
		if v.selected > FieldSystemName {
			v.selected--
		}
	case "down", "j":
		if v.selected < FieldAutoSave {
			v.selected++
		}
	case "enter", " ":
		if v.selected == FieldSystemName {
			v.editing = input.NewField(v.styles, "", "")
			v.editing.SetValue(v.config.SystemName)
			v.editing.SetWidth(v.width / 2)
			return v, v.editing.Init()
		}
		v.change()
		return v, v.autoSave()
	case "s":
		return v, v.save()
	case "r":
		v.config = domain.DefaultSystemConfig()
		v.dirty = true
		v.saved = false
		return v, v.autoSave()
	}
	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // only form keys are handled
	switch msg.Type {
	case tea.KeyEsc:
		v.editing = nil
		return v, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(v.editing.Value())
		v.editing = nil
		if name == "" || name == v.config.SystemName {
			return v, nil
		}
		v.config.SystemName = name
		v.dirty = true
		v.saved = false
		return v, v.autoSave()
	}

	var cmd tea.Cmd
	v.editing, cmd = v.editing.Update(msg)
	return v, cmd
}

// change toggles or cycles the selected field.
func (v *View) change() {
	switch v.selected {
	case FieldTheme:
		if v.config.Theme == domain.ThemeDark {
			v.config.Theme = domain.ThemeLight
		} else {
			v.config.Theme = domain.ThemeDark
		}
	case FieldLanguage:
		v.config.Language = nextLanguage(v.config.Language)
	case FieldNotifications:
		v.config.Notifications = !v.config.Notifications
	case FieldAutoSave:
		v.config.AutoSave = !v.config.AutoSave
	case FieldSystemName:
		return
	}
	v.dirty = true
	v.saved = false
}

func nextLanguage(current string) string {
	for i, l := range Languages {
		if l == current {
			return Languages[(i+1)%len(Languages)]
		}
	}
	return Languages[0]
}

func (v *View) autoSave() tea.Cmd {
	if !v.config.AutoSave && v.selected != FieldAutoSave {
		return nil
	}
	return v.save()
}

func (v *View) save() tea.Cmd {
	cfg := v.config
	userID := v.userID
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Err: ErrNoSettingsService}
		}
		if err := v.settingsService.SaveSystemConfig(userID, cfg); err != nil {
			return messages.SettingsSaved{Err: err}
		}
		return messages.SettingsSaved{Config: v.settingsService.SystemConfig()}
	}
}

// View renders the settings view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.userID == "" {
		b.WriteString(v.styles.Warning.Render("Not signed in: changes apply to this session only."))
		b.WriteString("\n\n")
	}

	for f := FieldSystemName; f <= FieldAutoSave; f++ {
		label := fmt.Sprintf("%-14s", fieldLabels[f])
		value := v.value(f)
		if f == FieldSystemName && v.editing != nil {
			b.WriteString("> " + v.styles.Subtitle.Render(label) + " " + v.editing.View())
			b.WriteString("\n")
			continue
		}
		if f == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + label + " " + value))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label) + " " + v.styles.Muted.Render(value))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	case v.saved:
		b.WriteString(v.styles.Success.Render("Saved"))
		b.WriteString("\n\n")
	case v.dirty:
		b.WriteString(v.styles.Warning.Render("Unsaved changes"))
		b.WriteString("\n\n")
	}

	if v.editing != nil {
		b.WriteString(v.styles.Help.Render("[enter] apply  [esc] cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] change  [s] save  [r] defaults  [esc] back"))
	}
	return b.String()
}

func (v *View) value(f Field) string {
	switch f {
	case FieldSystemName:
		return v.config.SystemName
	case FieldTheme:
		return string(v.config.Theme)
	case FieldLanguage:
		return v.config.Language
	case FieldNotifications:
		return onOff(v.config.Notifications)
	case FieldAutoSave:
		return onOff(v.config.AutoSave)
	}
	return ""
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Config returns the config being edited.
func (v *View) Config() domain.SystemConfig {
	return v.config
}

// Dirty reports unsaved changes.
func (v *View) Dirty() bool {
	return v.dirty
}

// Selected returns the selected field.
func (v *View) Selected() Field {
	return v.selected
}

// Editing reports whether the system name is being edited.
func (v *View) Editing() bool {
	return v.editing != nil
}

// Err returns the last save error.
func (v *View) Err() error {
	return v.err
}
