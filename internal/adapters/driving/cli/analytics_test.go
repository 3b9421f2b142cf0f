package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

func TestAnalyticsDashboardCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "analytics", "dashboard")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents:           12,345 (17 this week)")
	assert.Contains(t, out, "Queries:             1,500")
	assert.Contains(t, out, "Processing failures: 2")
}

func TestAnalyticsDashboardCmd_NotAllowed(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.analytics.err = domain.ErrTokenRefreshFailed

	_, err := execute(t, "analytics", "dashboard")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")
}

func TestAnalyticsStatsCmd_SortedKeys(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "analytics", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "avg_latency_ms: 840")
	assert.Contains(t, out, "queries_today: 12")
}

func TestAnalyticsStatsCmd_UsageAlias(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	stats, err := execute(t, "analytics", "stats")
	require.NoError(t, err)
	usage, err := execute(t, "analytics", "usage")
	require.NoError(t, err)
	assert.Equal(t, stats, usage)
}

func TestAnalyticsActivityCmd_PassesLimit(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "analytics", "activity", "-n", "5")

	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded ch1.pdf")
	assert.Contains(t, out, "upload")
	assert.Equal(t, 5, mocks.analytics.limit)
}

func TestAnalyticsQueriesCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "analytics", "queries")

	require.NoError(t, err)
	assert.Contains(t, out, "what is a derivative")
	assert.Contains(t, out, "9")
	assert.Equal(t, 0, mocks.analytics.limit)
}

func TestAnalyticsCmd_ServiceNotConfigured(t *testing.T) {
	old := analyticsService
	analyticsService = nil
	defer func() { analyticsService = old }()

	_, err := execute(t, "analytics", "stats")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "analytics service not configured")
}
