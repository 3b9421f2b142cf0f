package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// version is set at build time.
var version = "dev"

// Global flags.
var (
	verbose    bool
	apiURLFlag string
)

// Services holds everything the commands need. The entry point builds it
// once flags are parsed.
type Services struct {
	Auth      driving.AuthService
	Documents driving.DocumentService
	Tracker   driving.DocumentTracker
	Stores    driving.StoreService
	Chat      driving.ChatService
	Settings  driving.SettingsService
	Analytics driving.AnalyticsService
	Users     driving.UserService
	Scheduler driving.Scheduler
	Health    driven.HealthChecker

	// SchedulerConfig decides whether long-running commands start the scheduler.
	SchedulerConfig domain.SchedulerConfig

	// ConfigWatcher is optional; the TUI uses it to pick up config edits.
	ConfigWatcher driven.ConfigWatcher

	// APIURL is the backend the services talk to, for display.
	APIURL string

	// DataDir holds local state; the TUI writes its log there.
	DataDir string
}

// Options carries global flag values to the bootstrap function.
type Options struct {
	APIURL  string
	Verbose bool
}

// Bootstrap builds the services from the parsed global flags.
type Bootstrap func(opts Options) (*Services, error)

var bootstrap Bootstrap

// Wired services.
var (
	authService      driving.AuthService
	documentService  driving.DocumentService
	documentTracker  driving.DocumentTracker
	storeService     driving.StoreService
	chatService      driving.ChatService
	settingsService  driving.SettingsService
	analyticsService driving.AnalyticsService
	userService      driving.UserService
	scheduler        driving.Scheduler
	healthChecker    driven.HealthChecker
	schedulerConfig  domain.SchedulerConfig
	configWatcher    driven.ConfigWatcher
	apiURL           string
	dataDir          string
)

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Chat with your document stores from the terminal",
	Long: `ragchat is a client for a retrieval-augmented chat backend.

Upload documents into stores, wait for them to be processed, and ask
questions answered from their content, with sources.

Run 'ragchat login' first, then 'ragchat chat start <store>' or 'ragchat tui'.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	// cmd.Print* defaults to stderr; keep command output on stdout.
	rootCmd.SetOut(os.Stdout)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Backend URL (overrides config and RAGCHAT_API_URL)")
}

// SetVersion sets the version reported by 'ragchat version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap registers the function that builds the services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices wires services directly.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	authService = s.Auth
	documentService = s.Documents
	documentTracker = s.Tracker
	storeService = s.Stores
	chatService = s.Chat
	settingsService = s.Settings
	analyticsService = s.Analytics
	userService = s.Users
	scheduler = s.Scheduler
	healthChecker = s.Health
	schedulerConfig = s.SchedulerConfig
	configWatcher = s.ConfigWatcher
	apiURL = s.APIURL
	dataDir = s.DataDir
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil || authService != nil || cmd == versionCmd {
		return nil
	}

	s, err := bootstrap(Options{APIURL: apiURLFlag, Verbose: verbose})
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}
