package domain

import "time"

// Client defaults.
const (
	DefaultAPIURL       = "http://localhost:8000"
	DefaultTimeout      = 30 * time.Second
	DefaultRateLimit    = 10.0
	DefaultPollInterval = 5 * time.Second
	DefaultPollAttempts = 60
)

// ClientConfig is the resolved runtime configuration of the client.
type ClientConfig struct {
	// APIURL is the backend origin without the /api/v1 prefix.
	APIURL string
	// Timeout bounds every non-streaming request.
	Timeout time.Duration
	// RateLimit is the client-side request budget per second.
	RateLimit float64
	// PollInterval is the wait before each document status poll.
	PollInterval time.Duration
	// PollAttempts bounds document status polling.
	PollAttempts int
	// Scheduler configures background tasks.
	Scheduler SchedulerConfig
}

// DefaultClientConfig returns the configuration used when nothing is set.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		APIURL:       DefaultAPIURL,
		Timeout:      DefaultTimeout,
		RateLimit:    DefaultRateLimit,
		PollInterval: DefaultPollInterval,
		PollAttempts: DefaultPollAttempts,
		Scheduler:    DefaultSchedulerConfig(),
	}
}
