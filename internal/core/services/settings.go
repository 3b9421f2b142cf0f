package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

var settingsLog = logger.With("settings")

// SystemConfig field keys, shared by the config file and general settings.
const (
	fieldSystemName    = "system_name"
	fieldTheme         = "theme"
	fieldLanguage      = "language"
	fieldNotifications = "notifications"
	fieldAutoSave      = "auto_save"
)

// remoteAliases maps backend general-settings keys onto SystemConfig fields.
var remoteAliases = map[string]string{
	"systemName":    fieldSystemName,
	"system_name":   fieldSystemName,
	"theme":         fieldTheme,
	"language":      fieldLanguage,
	"notifications": fieldNotifications,
	"autoSave":      fieldAutoSave,
	"auto_save":     fieldAutoSave,
}

// SettingsService manages backend settings and the per-user SystemConfig.
// The SystemConfig of each user is cached in the config store under
// users.<id>.system_config.
type SettingsService struct {
	api    driven.SettingsAPI
	config driven.ConfigStore

	mu      sync.RWMutex
	current domain.SystemConfig
}

// NewSettingsService creates a settings service starting from defaults.
func NewSettingsService(api driven.SettingsAPI, config driven.ConfigStore) *SettingsService {
	return &SettingsService{
		api:     api,
		config:  config,
		current: domain.DefaultSystemConfig(),
	}
}

// SystemPrompt returns the backend's system prompt.
func (s *SettingsService) SystemPrompt(ctx context.Context) (*domain.SystemPrompt, error) {
	return s.api.GetSystemPrompt(ctx)
}

// UpdateSystemPrompt replaces the system prompt.
func (s *SettingsService) UpdateSystemPrompt(ctx context.Context, prompt string) (*domain.SystemPrompt, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is empty", domain.ErrInvalidInput)
	}
	return s.api.UpdateSystemPrompt(ctx, prompt)
}

// ResetSystemPrompt restores the backend default.
func (s *SettingsService) ResetSystemPrompt(ctx context.Context) (*domain.SystemPrompt, error) {
	return s.api.ResetSystemPrompt(ctx)
}

// GeneralSettings returns backend-wide settings.
func (s *SettingsService) GeneralSettings(ctx context.Context) (domain.GeneralSettings, error) {
	return s.api.GetGeneralSettings(ctx)
}

// UpdateGeneralSettings merges keys into backend settings.
func (s *SettingsService) UpdateGeneralSettings(
	ctx context.Context,
	settings domain.GeneralSettings,
) (domain.GeneralSettings, error) {
	if len(settings) == 0 {
		return nil, fmt.Errorf("%w: no settings given", domain.ErrInvalidInput)
	}
	return s.api.UpdateGeneralSettings(ctx, settings)
}

// ResetGeneralSettings restores backend defaults.
func (s *SettingsService) ResetGeneralSettings(ctx context.Context) (domain.GeneralSettings, error) {
	return s.api.ResetGeneralSettings(ctx)
}

// SystemConfig returns the config in effect.
func (s *SettingsService) SystemConfig() domain.SystemConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LoadSystemConfig builds the user's config from defaults, the local
// cache and the backend's general settings, in increasing precedence.
// A backend failure is logged and the cached values are used.
func (s *SettingsService) LoadSystemConfig(ctx context.Context, userID string) (domain.SystemConfig, error) {
	cfg := s.cached(userID)

	if s.api != nil {
		remote, err := s.api.GetGeneralSettings(ctx)
		if err != nil {
			settingsLog.Debug("general settings unavailable, using cache: %v", err)
		} else {
			applyRemote(&cfg, remote)
			if userID != "" {
				if err := s.writeCache(userID, cfg); err != nil {
					settingsLog.Warn("caching system config: %v", err)
				}
			}
		}
	}

	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return cfg, nil
}

// ReloadSystemConfig re-reads the user's cached config, e.g. after the
// config file changed on disk.
func (s *SettingsService) ReloadSystemConfig(userID string) domain.SystemConfig {
	cfg := s.cached(userID)
	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return cfg
}

// SaveSystemConfig persists the user's config and makes it current.
func (s *SettingsService) SaveSystemConfig(userID string, cfg domain.SystemConfig) error {
	if cfg.Theme != domain.ThemeLight && cfg.Theme != domain.ThemeDark {
		return fmt.Errorf("%w: unknown theme %q", domain.ErrInvalidInput, cfg.Theme)
	}
	if strings.TrimSpace(cfg.SystemName) == "" {
		cfg.SystemName = domain.DefaultSystemConfig().SystemName
	}
	if userID != "" {
		if err := s.writeCache(userID, cfg); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return nil
}

// ResetSystemConfig restores defaults as the current config.
func (s *SettingsService) ResetSystemConfig() domain.SystemConfig {
	cfg := domain.DefaultSystemConfig()
	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return cfg
}

// ForgetUser drops the user's cached config and resets to defaults.
// It is registered as a logout hook.
func (s *SettingsService) ForgetUser(_ context.Context, userID string) {
	if userID != "" && s.config != nil {
		if err := s.config.Delete(userKey(userID, "")); err != nil {
			settingsLog.Warn("forgetting system config: %v", err)
		}
	}
	s.ResetSystemConfig()
}

func (s *SettingsService) cached(userID string) domain.SystemConfig {
	cfg := domain.DefaultSystemConfig()
	if userID == "" || s.config == nil {
		return cfg
	}

	if v := s.config.GetString(userKey(userID, fieldSystemName)); v != "" {
		cfg.SystemName = v
	}
	if v := domain.Theme(s.config.GetString(userKey(userID, fieldTheme))); v == domain.ThemeLight || v == domain.ThemeDark {
		cfg.Theme = v
	}
	if v := s.config.GetString(userKey(userID, fieldLanguage)); v != "" {
		cfg.Language = v
	}
	if _, ok := s.config.Get(userKey(userID, fieldNotifications)); ok {
		cfg.Notifications = s.config.GetBool(userKey(userID, fieldNotifications))
	}
	if _, ok := s.config.Get(userKey(userID, fieldAutoSave)); ok {
		cfg.AutoSave = s.config.GetBool(userKey(userID, fieldAutoSave))
	}
	return cfg
}

func (s *SettingsService) writeCache(userID string, cfg domain.SystemConfig) error {
	if s.config == nil {
		return nil
	}
	values := map[string]any{
		fieldSystemName:    cfg.SystemName,
		fieldTheme:         string(cfg.Theme),
		fieldLanguage:      cfg.Language,
		fieldNotifications: cfg.Notifications,
		fieldAutoSave:      cfg.AutoSave,
	}
	for field, value := range values {
		if err := s.config.Set(userKey(userID, field), value); err != nil {
			return fmt.Errorf("saving %s: %w", field, err)
		}
	}
	return nil
}

// userKey returns users.<id>.system_config[.<field>].
func userKey(userID, field string) string {
	key := "users." + userID + ".system_config"
	if field != "" {
		key += "." + field
	}
	return key
}

// applyRemote overlays recognised general-settings keys onto cfg.
// Values of the wrong type are ignored.
func applyRemote(cfg *domain.SystemConfig, remote domain.GeneralSettings) {
	for key, value := range remote {
		switch remoteAliases[key] {
		case fieldSystemName:
			if v, ok := value.(string); ok && v != "" {
				cfg.SystemName = v
			}
		case fieldTheme:
			if v, ok := value.(string); ok && (v == string(domain.ThemeLight) || v == string(domain.ThemeDark)) {
				cfg.Theme = domain.Theme(v)
			}
		case fieldLanguage:
			if v, ok := value.(string); ok && v != "" {
				cfg.Language = v
			}
		case fieldNotifications:
			if v, ok := value.(bool); ok {
				cfg.Notifications = v
			}
		case fieldAutoSave:
			if v, ok := value.(bool); ok {
				cfg.AutoSave = v
			}
		}
	}
}
