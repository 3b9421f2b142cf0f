package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// GetSystemPrompt returns the backend's system prompt.
func (c *Client) GetSystemPrompt(ctx context.Context) (*domain.SystemPrompt, error) {
	var out domain.SystemPrompt
	if err := c.get(ctx, "/settings/system-prompt", nil, &out); err != nil {
		return nil, fmt.Errorf("get system prompt: %w", err)
	}
	return &out, nil
}

// UpdateSystemPrompt replaces the system prompt.
func (c *Client) UpdateSystemPrompt(ctx context.Context, prompt string) (*domain.SystemPrompt, error) {
	var out domain.SystemPrompt
	body := domain.SystemPrompt{Prompt: prompt}
	if err := c.doJSON(ctx, http.MethodPut, "/settings/system-prompt", nil, body, &out, true); err != nil {
		return nil, fmt.Errorf("update system prompt: %w", err)
	}
	return &out, nil
}

// ResetSystemPrompt restores the default prompt.
func (c *Client) ResetSystemPrompt(ctx context.Context) (*domain.SystemPrompt, error) {
	var out domain.SystemPrompt
	if err := c.doJSON(ctx, http.MethodPost, "/settings/reset-system-prompt", nil, nil, &out, true); err != nil {
		return nil, fmt.Errorf("reset system prompt: %w", err)
	}
	return &out, nil
}

// GetGeneralSettings returns backend-wide settings.
func (c *Client) GetGeneralSettings(ctx context.Context) (domain.GeneralSettings, error) {
	out := domain.GeneralSettings{}
	if err := c.get(ctx, "/settings/general", nil, &out); err != nil {
		return nil, fmt.Errorf("get general settings: %w", err)
	}
	return out, nil
}

// UpdateGeneralSettings stores backend-wide settings.
func (c *Client) UpdateGeneralSettings(ctx context.Context, settings domain.GeneralSettings) (domain.GeneralSettings, error) {
	out := domain.GeneralSettings{}
	if err := c.doJSON(ctx, http.MethodPut, "/settings/general", nil, settings, &out, true); err != nil {
		return nil, fmt.Errorf("update general settings: %w", err)
	}
	return out, nil
}

// ResetGeneralSettings restores backend defaults.
func (c *Client) ResetGeneralSettings(ctx context.Context) (domain.GeneralSettings, error) {
	out := domain.GeneralSettings{}
	if err := c.doJSON(ctx, http.MethodPost, "/settings/reset-general", nil, nil, &out, true); err != nil {
		return nil, fmt.Errorf("reset general settings: %w", err)
	}
	return out, nil
}
