package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Sign in, pick a store and chat with its documents. Answers stream in as
they are generated and can show the passages they were drawn from.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select / Send
  u        - Upload a file into the selected store
  Ctrl+O   - Toggle sources of the last answer
  Ctrl+N   - Start over with the same store
  Ctrl+E   - End the conversation
  Esc      - Back
  ?        - Help (from the menu)
  Ctrl+C   - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from the wired services.
func tuiPorts() *tui.Ports {
	return &tui.Ports{
		Auth:      authService,
		Chat:      chatService,
		Stores:    storeService,
		Documents: documentService,
		Tracker:   documentTracker,
		Settings:  settingsService,
	}
}

// redirectLog sends log output to a file under the data dir while the
// alternate screen is active. The returned func restores the previous output.
func redirectLog() func() {
	if dataDir == "" {
		return func() {}
	}
	f, err := os.OpenFile(filepath.Join(dataDir, "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return func() {}
	}
	prev := logger.SetOutput(f)
	return func() {
		logger.SetOutput(prev)
		_ = f.Close()
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	restore := redirectLog()
	defer restore()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Start scheduler if enabled (TUI is long-running, needs background tasks)
	if schedulerConfig.Enabled && scheduler != nil {
		go func() {
			if err := scheduler.Start(ctx); err != nil {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()

		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("scheduler stop error: %v", err)
			}
		}()
	}

	app.WithContext(ctx)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if configWatcher != nil {
		go func() {
			err := configWatcher.Watch(ctx, func() { p.Send(messages.ConfigFileChanged{}) })
			if err != nil && ctx.Err() == nil {
				logger.Warn("config watcher stopped: %v", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
