package driving

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// SettingsService manages backend settings and the local per-user SystemConfig.
type SettingsService interface {
	// SystemPrompt returns the backend's system prompt.
	SystemPrompt(ctx context.Context) (*domain.SystemPrompt, error)

	// UpdateSystemPrompt replaces the system prompt.
	UpdateSystemPrompt(ctx context.Context, prompt string) (*domain.SystemPrompt, error)

	// ResetSystemPrompt restores the backend default.
	ResetSystemPrompt(ctx context.Context) (*domain.SystemPrompt, error)

	// GeneralSettings returns backend-wide settings.
	GeneralSettings(ctx context.Context) (domain.GeneralSettings, error)

	// UpdateGeneralSettings merges the given keys into backend settings.
	UpdateGeneralSettings(ctx context.Context, settings domain.GeneralSettings) (domain.GeneralSettings, error)

	// ResetGeneralSettings restores backend defaults.
	ResetGeneralSettings(ctx context.Context) (domain.GeneralSettings, error)

	// SystemConfig returns the config currently in effect.
	SystemConfig() domain.SystemConfig

	// LoadSystemConfig loads the config of a user, falling back to
	// defaults for anything not stored.
	LoadSystemConfig(ctx context.Context, userID string) (domain.SystemConfig, error)

	// SaveSystemConfig persists the config of a user and makes it current.
	SaveSystemConfig(userID string, cfg domain.SystemConfig) error

	// ReloadSystemConfig re-reads the cached config of a user, e.g. after
	// the config file was edited by hand.
	ReloadSystemConfig(userID string) domain.SystemConfig

	// ResetSystemConfig restores defaults as the current config.
	ResetSystemConfig() domain.SystemConfig
}
