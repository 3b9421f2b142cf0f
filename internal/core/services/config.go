package services

import (
	"strings"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// Config keys.
const (
	KeyAPIURL           = "api.url"
	KeyAPITimeout       = "api.timeout"
	KeyAPIRateLimit     = "api.rate_limit"
	KeyPollInterval     = "poll.interval"
	KeyPollMaxAttempts  = "poll.max_attempts"
	KeySchedulerEnabled = "scheduler.enabled"
)

// Environment overrides.
const (
	EnvAPIURL  = "RAGCHAT_API_URL"
	EnvDataDir = "RAGCHAT_DATA_DIR"
)

// taskIntervalKey returns the config key overriding a task's interval,
// e.g. scheduler.document_status.interval.
func taskIntervalKey(taskID string) string {
	return "scheduler." + strings.ReplaceAll(taskID, "-", "_") + ".interval"
}

// LoadClientConfig resolves the client configuration from the config
// store and the environment. Unset or invalid values keep their defaults.
// getenv may be nil.
func LoadClientConfig(store driven.ConfigStore, getenv func(string) string) domain.ClientConfig {
	cfg := domain.DefaultClientConfig()

	if store != nil {
		if v := strings.TrimSpace(store.GetString(KeyAPIURL)); v != "" {
			cfg.APIURL = v
		}
		if v := store.GetDuration(KeyAPITimeout); v > 0 {
			cfg.Timeout = v
		}
		if v := store.GetFloat(KeyAPIRateLimit); v > 0 {
			cfg.RateLimit = v
		}
		if v := store.GetDuration(KeyPollInterval); v > 0 {
			cfg.PollInterval = v
		}
		if v := store.GetInt(KeyPollMaxAttempts); v > 0 {
			cfg.PollAttempts = v
		}
		if _, ok := store.Get(KeySchedulerEnabled); ok {
			cfg.Scheduler.Enabled = store.GetBool(KeySchedulerEnabled)
		}
		for id, task := range cfg.Scheduler.TaskConfigs {
			if v := store.GetDuration(taskIntervalKey(id)); v > 0 {
				task.Interval = v
				cfg.Scheduler.TaskConfigs[id] = task
			}
		}
	}

	if getenv != nil {
		if v := strings.TrimSpace(getenv(EnvAPIURL)); v != "" {
			cfg.APIURL = v
		}
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	return cfg
}
