// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewLogin asks for credentials.
	ViewLogin
	// ViewStores lists the stores a chat can be started with.
	ViewStores
	// ViewChat is the conversation with one store.
	ViewChat
	// ViewDocuments lists uploaded documents and their processing state.
	ViewDocuments
	// ViewSettings edits the user's preferences.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewLogin:
		return "login"
	case ViewStores:
		return "stores"
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Level is the severity of a notification.
type Level int

// Notification levels.
const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Notify shows a transient message in the status bar.
type Notify struct {
	Text  string
	Level Level
}

// Quit signals the application should exit.
type Quit struct{}

// SignedIn carries the result of a login attempt.
type SignedIn struct {
	User   *domain.AuthUser
	Config domain.SystemConfig
	Err    error
}

// SignedOut signals the session ended. Local state is cleared even when
// Err is set.
type SignedOut struct {
	Err error
}

// SessionChecked carries the user found at startup, nil when signed out.
type SessionChecked struct {
	User   *domain.AuthUser
	Config domain.SystemConfig
}

// ConfigChanged carries a system config that became current, after a
// save or an edit of the config file.
type ConfigChanged struct {
	Config domain.SystemConfig
}

// ConfigFileChanged signals the config file was edited outside the app.
type ConfigFileChanged struct{}

// StoresLoaded carries the list of stores.
type StoresLoaded struct {
	Stores []domain.RagStore
	Err    error
}

// StoreSelected asks to start or resume a chat with a store.
type StoreSelected struct {
	Store domain.RagStore
}

// UploadRequested asks to upload a file into a store and chat once it
// is processed.
type UploadRequested struct {
	Store domain.RagStore
	Path  string
}

// UploadStepped reports progress of an upload-and-chat flow.
type UploadStepped struct {
	Step driving.UploadStep
}

// ChatStarted signals a chat is ready, or why it could not start.
type ChatStarted struct {
	Store domain.RagStore
	Err   error
}

// ChatUpdated carries the model message while an answer streams in.
type ChatUpdated struct {
	Message domain.ChatMessage
}

// ChatAnswered signals the end of an answer.
type ChatAnswered struct {
	Message *domain.ChatMessage
	Err     error
}

// ChatEnded signals the session was deleted.
type ChatEnded struct {
	Err error
}

// DocumentsLoaded carries a document listing.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentsTicked carries the tracked documents after a polling round.
type DocumentsTicked struct {
	Documents []domain.Document
	Err       error
}

// DocumentDeleted signals a document was removed.
type DocumentDeleted struct {
	ID  domain.ID
	Err error
}

// SettingsSaved signals the system config was persisted.
type SettingsSaved struct {
	Config domain.SystemConfig
	Err    error
}

// Next returns a command that delivers the next message from ch. It
// returns nil once ch is closed, ending the relay.
func Next(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
