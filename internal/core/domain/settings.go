package domain

import "time"

// Theme is the colour scheme preference.
type Theme string

// Themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// SystemConfig holds per-user presentation preferences.
type SystemConfig struct {
	SystemName    string `json:"systemName" toml:"system_name"`
	Theme         Theme  `json:"theme" toml:"theme"`
	Language      string `json:"language" toml:"language"`
	Notifications bool   `json:"notifications" toml:"notifications"`
	AutoSave      bool   `json:"autoSave" toml:"auto_save"`
}

// DefaultSystemConfig returns the configuration used when signed out.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		SystemName:    "RAG Chat",
		Theme:         ThemeDark,
		Language:      "pt-BR",
		Notifications: true,
		AutoSave:      true,
	}
}

// GeneralSettings are backend-wide settings, kept as loose key/value
// pairs because the backend owns their schema.
type GeneralSettings map[string]any

// SystemPrompt is the instruction the backend prepends to every query.
type SystemPrompt struct {
	Prompt    string    `json:"prompt"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
