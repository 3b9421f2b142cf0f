package domain

import "time"

// DashboardSummary is the headline numbers on the dashboard.
type DashboardSummary struct {
	TotalDocuments     int `json:"total_documents"`
	TotalStores        int `json:"total_stores"`
	TotalSessions      int `json:"total_sessions"`
	TotalQueries       int `json:"total_queries"`
	ActiveUsers        int `json:"active_users"`
	DocumentsThisWeek  int `json:"documents_this_week"`
	ProcessingFailures int `json:"processing_failures"`
}

// UsageStats is a loosely typed statistics payload.
type UsageStats map[string]any

// ActivityEntry is one item of the activity feed.
type ActivityEntry struct {
	ID          ID        `json:"id,omitempty"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	UserEmail   string    `json:"user_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// QueryStat is a frequently asked query.
type QueryStat struct {
	Query     string    `json:"query"`
	Count     int       `json:"count"`
	LastAsked time.Time `json:"last_asked,omitempty"`
}

// TrackedEvent is a client-side event reported to analytics.
type TrackedEvent struct {
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"event_data,omitempty"`
}
