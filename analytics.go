package sdk

import (
	"context"
	"net/url"
	"time"

	"github.com/accessmatic/dashboard/sdk/go/routes"
)

// DefaultPlan is reported when the backend does not name a plan.
const DefaultPlan = "Trial"

// ScorePoint is one day of average accessibility scores.
type ScorePoint struct {
	Date         string  `json:"date"`
	AverageScore float64 `json:"average_score"`
	Documents    int     `json:"documents"`
}

// DashboardAnalytics mirrors GET /analytics/dashboard.
type DashboardAnalytics struct {
	TotalDocuments     int                    `json:"total_documents"`
	ProcessedDocuments int                    `json:"processed_documents"`
	AverageScore       *float64               `json:"average_score,omitempty"`
	ActiveAPIKeys      int                    `json:"active_api_keys"`
	Plan               string                 `json:"plan,omitempty"`
	DocumentsByStatus  map[DocumentStatus]int `json:"documents_by_status,omitempty"`
	ScoreHistory       []ScorePoint           `json:"score_history,omitempty"`
}

// AnalyticsOptions bounds the reporting window. Zero values are omitted.
type AnalyticsOptions struct {
	From time.Time
	To   time.Time
}

func (o AnalyticsOptions) query() url.Values {
	params := url.Values{}
	if !o.From.IsZero() {
		params.Set("from", o.From.UTC().Format(time.DateOnly))
	}
	if !o.To.IsZero() {
		params.Set("to", o.To.UTC().Format(time.DateOnly))
	}
	return params
}

// AnalyticsClient wraps the analytics endpoints.
type AnalyticsClient struct {
	client *Client
}

// Dashboard returns the aggregate numbers behind the dashboard.
func (a *AnalyticsClient) Dashboard(ctx context.Context, opts AnalyticsOptions) (DashboardAnalytics, error) {
	if a == nil || a.client == nil {
		return DashboardAnalytics{}, errNotInitialized("analytics")
	}
	var out DashboardAnalytics
	if err := a.client.sendAndDecode(ctx, routes.AnalyticsDashboard, routes.AnalyticsDashboard, RequestOptions{Query: opts.query()}, &out); err != nil {
		return DashboardAnalytics{}, err
	}
	return out, nil
}
