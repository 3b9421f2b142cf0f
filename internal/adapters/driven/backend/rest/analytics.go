package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": []string{strconv.Itoa(limit)}}
}

// GetDashboard returns the dashboard summary.
func (c *Client) GetDashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	var out domain.DashboardSummary
	if err := c.get(ctx, "/analytics/dashboard", nil, &out); err != nil {
		return nil, fmt.Errorf("get dashboard: %w", err)
	}
	return &out, nil
}

// GetStats returns usage statistics.
func (c *Client) GetStats(ctx context.Context) (domain.UsageStats, error) {
	out := domain.UsageStats{}
	if err := c.get(ctx, "/analytics/stats", nil, &out); err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return out, nil
}

// GetActivity returns the most recent activity entries.
func (c *Client) GetActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	var out []domain.ActivityEntry
	if err := c.get(ctx, "/analytics/activity", limitQuery(limit), &out); err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return out, nil
}

// GetTopQueries returns the most frequent queries.
func (c *Client) GetTopQueries(ctx context.Context, limit int) ([]domain.QueryStat, error) {
	var out []domain.QueryStat
	if err := c.get(ctx, "/analytics/queries", limitQuery(limit), &out); err != nil {
		return nil, fmt.Errorf("get top queries: %w", err)
	}
	return out, nil
}

// TrackEvent reports a client event.
func (c *Client) TrackEvent(ctx context.Context, event domain.TrackedEvent) error {
	if err := c.doJSON(ctx, http.MethodPost, "/analytics/track-event", nil, event, nil, true); err != nil {
		return fmt.Errorf("track event: %w", err)
	}
	return nil
}
