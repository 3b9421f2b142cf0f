// Package main is the ragchat CLI entry point.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/auth"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/backend/rest"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/services"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

// localStores are the persistence ports backed by the data directory.
type localStores struct {
	tokens    driven.TokenStore
	sessions  driven.ChatSessionStore
	scheduler driven.SchedulerStore
	close     func() error
}

func main() {
	var stores *localStores
	cli.SetVersion(version)
	cli.SetBootstrap(func(opts cli.Options) (*cli.Services, error) {
		s, ls, err := bootstrap(opts)
		stores = ls
		return s, err
	})

	err := cli.Execute()
	if stores != nil {
		if cerr := stores.close(); cerr != nil {
			logger.Warn("closing database: %v", cerr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// dataDir returns RAGCHAT_DATA_DIR or ~/.ragchat.
func dataDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(services.EnvDataDir)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ragchat"), nil
}

// openStores opens the SQLite database. When it cannot be opened the
// session lives in memory for this run only.
func openStores(dir string) *localStores {
	db, err := sqlite.NewStore(dir)
	if err != nil {
		logger.Warn("local database unavailable, sign-in will not persist: %v", err)
		return &localStores{
			tokens:    memory.NewTokenStore(),
			sessions:  memory.NewChatSessionStore(),
			scheduler: memory.NewSchedulerStore(),
			close:     func() error { return nil },
		}
	}
	return &localStores{
		tokens:    db.TokenStore(),
		sessions:  db.ChatSessionStore(),
		scheduler: db.SchedulerStore(),
		close:     db.Close,
	}
}

func bootstrap(opts cli.Options) (*cli.Services, *localStores, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, nil, err
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := services.LoadClientConfig(configStore, os.Getenv)
	if opts.APIURL != "" {
		cfg.APIURL = strings.TrimRight(opts.APIURL, "/")
	}
	logger.Debug("api %s, data dir %s", cfg.APIURL, dir)

	stores := openStores(dir)

	client := rest.New(cfg.APIURL,
		rest.WithTimeout(cfg.Timeout),
		rest.WithRateLimit(cfg.RateLimit, 5),
		rest.WithUserAgent("ragchat-cli/"+version),
	)
	tokens := auth.NewSessionProvider(stores.tokens, client)
	client.SetTokenProvider(tokens)

	authService := services.NewAuthService(client, tokens, stores.sessions)
	settingsService := services.NewSettingsService(client, configStore)
	authService.OnLogout(settingsService.ForgetUser)

	analyticsService := services.NewAnalyticsService(client)
	documentService := services.NewDocumentService(client, services.PollConfig{
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.PollAttempts,
	})
	tracker := services.NewDocumentTracker(client)
	chatService := services.NewChatService(services.ChatDeps{
		Chat:      client,
		Stores:    client,
		Documents: documentService,
		Tokens:    tokens,
		Sessions:  stores.sessions,
		Events:    analyticsService,
	})
	scheduler := services.NewScheduler(cfg.Scheduler, stores.scheduler, authService, tracker)

	return &cli.Services{
		Auth:            authService,
		Documents:       documentService,
		Tracker:         tracker,
		Stores:          services.NewStoreService(client),
		Chat:            chatService,
		Settings:        settingsService,
		Analytics:       analyticsService,
		Users:           services.NewUserService(client),
		Scheduler:       scheduler,
		Health:          client,
		SchedulerConfig: cfg.Scheduler,
		ConfigWatcher:   configStore,
		APIURL:          cfg.APIURL,
		DataDir:         dir,
	}, stores, nil
}
