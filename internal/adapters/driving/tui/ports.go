// Package tui provides an interactive terminal user interface for ragchat.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Auth signs users in and out.
	Auth driving.AuthService

	// Chat drives conversations.
	Chat driving.ChatService

	// Stores lists the stores a chat can be started with.
	Stores driving.StoreService

	// Documents lists and deletes uploaded documents.
	Documents driving.DocumentService

	// Tracker polls documents that are still processing.
	Tracker driving.DocumentTracker

	// Settings loads and saves the user's preferences.
	Settings driving.SettingsService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Stores == nil {
		return ErrMissingStoreService
	}
	return nil
}
