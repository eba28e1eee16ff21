package sdk

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
)

// EmbedScriptURL is the CDN location of the accessibility widget.
const EmbedScriptURL = "https://cdn.accessmatic.us/accessmatic.min.js"

// EmbedSnippet returns the script tag a site owner pastes into their page head.
func EmbedSnippet(apiKey string) (string, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return "", ConfigError{Reason: "api key required for embed snippet"}
	}
	return fmt.Sprintf(`<script src="%s" data-accessmatic-key="%s"></script>`, EmbedScriptURL, html.EscapeString(key)), nil
}

// StatCard is one number on the dashboard overview.
type StatCard struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// DashboardSummary is the four-card overview shown after login.
type DashboardSummary struct {
	APIKey    StatCard `json:"api_key"`
	Documents StatCard `json:"documents"`
	AvgScore  StatCard `json:"avg_score"`
	Plan      StatCard `json:"plan"`
}

// Cards returns the summary in display order.
func (s DashboardSummary) Cards() []StatCard {
	return []StatCard{s.APIKey, s.Documents, s.AvgScore, s.Plan}
}

// Summary combines the API key list and dashboard analytics into the
// overview cards.
func (c *Client) Summary(ctx context.Context) (DashboardSummary, error) {
	keys, err := c.APIKeys.List(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}
	stats, err := c.Analytics.Dashboard(ctx, AnalyticsOptions{})
	if err != nil {
		return DashboardSummary{}, err
	}
	return buildSummary(keys, stats), nil
}

func buildSummary(keys []APIKey, stats DashboardAnalytics) DashboardSummary {
	keyState := "None"
	for _, k := range keys {
		if k.IsActive {
			keyState = "Active"
			break
		}
	}
	avg := "--"
	if stats.ProcessedDocuments > 0 && stats.AverageScore != nil {
		avg = strconv.FormatFloat(*stats.AverageScore, 'f', 1, 64)
	}
	plan := strings.TrimSpace(stats.Plan)
	if plan == "" {
		plan = DefaultPlan
	}
	return DashboardSummary{
		APIKey:    StatCard{Title: "API Key", Value: keyState},
		Documents: StatCard{Title: "Documents", Value: strconv.Itoa(stats.TotalDocuments)},
		AvgScore:  StatCard{Title: "Avg Score", Value: avg},
		Plan:      StatCard{Title: "Plan", Value: plan},
	}
}
