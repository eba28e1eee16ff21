// Package promhooks exports SDK request metrics to Prometheus.
package promhooks

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	sdk "github.com/accessmatic/dashboard/sdk/go"
)

// Collectors holds the metrics registered by New.
type Collectors struct {
	Duration *prometheus.HistogramVec
	Requests *prometheus.CounterVec
}

// New registers the SDK collectors on reg and returns hooks feeding them.
func New(reg prometheus.Registerer) (sdk.TelemetryHooks, *Collectors, error) {
	c := &Collectors{
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "accessmatic",
			Subsystem: "sdk",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of AccessMatic API calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accessmatic",
			Subsystem: "sdk",
			Name:      "http_requests_total",
			Help:      "AccessMatic API calls by outcome.",
		}, []string{"method", "route", "status"}),
	}
	for _, col := range []prometheus.Collector{c.Duration, c.Requests} {
		if err := reg.Register(col); err != nil {
			return sdk.TelemetryHooks{}, nil, err
		}
	}
	hooks := sdk.TelemetryHooks{
		OnMetric: func(_ context.Context, m sdk.Metric) {
			if m.Name != sdk.MetricHTTPRequestLatency {
				return
			}
			labels := prometheus.Labels{
				"method": m.Labels["method"],
				"route":  m.Labels["route"],
				"status": m.Labels["status"],
			}
			c.Duration.With(labels).Observe(m.Value)
			c.Requests.With(labels).Inc()
		},
	}
	return hooks, c, nil
}
