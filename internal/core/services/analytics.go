package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure AnalyticsService implements the interface.
var _ driving.AnalyticsService = (*AnalyticsService)(nil)

// DefaultAnalyticsLimit caps activity and query listings.
const DefaultAnalyticsLimit = 10

var analyticsLog = logger.With("analytics")

// AnalyticsService reads usage analytics and reports client events.
type AnalyticsService struct {
	api driven.AnalyticsAPI
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(api driven.AnalyticsAPI) *AnalyticsService {
	return &AnalyticsService{api: api}
}

// Dashboard returns the summary counters.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	return s.api.GetDashboard(ctx)
}

// Stats returns usage statistics.
func (s *AnalyticsService) Stats(ctx context.Context) (domain.UsageStats, error) {
	return s.api.GetStats(ctx)
}

// Activity returns recent activity, newest first.
func (s *AnalyticsService) Activity(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	return s.api.GetActivity(ctx, clampLimit(limit))
}

// TopQueries returns the most frequent queries.
func (s *AnalyticsService) TopQueries(ctx context.Context, limit int) ([]domain.QueryStat, error) {
	return s.api.GetTopQueries(ctx, clampLimit(limit))
}

// Track reports a client event. Failures are logged and never surface.
func (s *AnalyticsService) Track(ctx context.Context, eventType string, data map[string]any) {
	eventType = strings.TrimSpace(eventType)
	if s == nil || s.api == nil || eventType == "" {
		return
	}
	if err := s.api.TrackEvent(ctx, domain.TrackedEvent{EventType: eventType, Data: data}); err != nil {
		analyticsLog.Debug("track %s: %v", eventType, err)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultAnalyticsLimit
	}
	return limit
}
