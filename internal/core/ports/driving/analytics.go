package driving

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// AnalyticsService reads usage analytics.
type AnalyticsService interface {
	Dashboard(ctx context.Context) (*domain.DashboardSummary, error)
	Stats(ctx context.Context) (domain.UsageStats, error)
	Activity(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
	TopQueries(ctx context.Context, limit int) ([]domain.QueryStat, error)
	// Track reports a client event. Failures are logged, never returned.
	Track(ctx context.Context, eventType string, data map[string]any)
}
