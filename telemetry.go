package sdk

import (
	"context"
	"net/http"
	"time"
)

// MetricHTTPRequestLatency is emitted once per HTTP attempt, in seconds,
// labelled by method, route and status ("0" when no response arrived).
const MetricHTTPRequestLatency = "sdk_http_request_latency_seconds"

// TelemetryHooks expose observability callbacks without forcing dependencies on the caller.
type TelemetryHooks struct {
	// OnHTTPRequest fires before the HTTP request is sent.
	OnHTTPRequest func(ctx context.Context, req *http.Request)
	// OnHTTPResponse fires after the request completes (even when err != nil).
	OnHTTPResponse func(ctx context.Context, req *http.Request, resp *http.Response, err error, latency time.Duration)
	// OnLogEntry allows callers to capture SDK log events.
	OnLogEntry func(ctx context.Context, entry LogEntry)
	// OnMetric records lightweight counters/gauges for observability dashboards.
	OnMetric func(ctx context.Context, metric Metric)
}

// LogLevel encodes the severity for log hooks.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelError LogLevel = "error"
)

// LogEntry captures structured log details for SDK consumers.
// Fields never contain credentials.
type LogEntry struct {
	Level   LogLevel
	Message string
	Fields  map[string]any
}

// Metric represents a single observability datapoint.
type Metric struct {
	Name   string
	Value  float64
	Labels map[string]string
}

// MergeTelemetry fans every callback out to each non-nil hook in order.
func MergeTelemetry(hooks ...TelemetryHooks) TelemetryHooks {
	var merged TelemetryHooks
	var (
		onReq  []func(context.Context, *http.Request)
		onResp []func(context.Context, *http.Request, *http.Response, error, time.Duration)
		onLog  []func(context.Context, LogEntry)
		onMet  []func(context.Context, Metric)
	)
	for _, h := range hooks {
		if h.OnHTTPRequest != nil {
			onReq = append(onReq, h.OnHTTPRequest)
		}
		if h.OnHTTPResponse != nil {
			onResp = append(onResp, h.OnHTTPResponse)
		}
		if h.OnLogEntry != nil {
			onLog = append(onLog, h.OnLogEntry)
		}
		if h.OnMetric != nil {
			onMet = append(onMet, h.OnMetric)
		}
	}
	if len(onReq) > 0 {
		merged.OnHTTPRequest = func(ctx context.Context, req *http.Request) {
			for _, fn := range onReq {
				fn(ctx, req)
			}
		}
	}
	if len(onResp) > 0 {
		merged.OnHTTPResponse = func(ctx context.Context, req *http.Request, resp *http.Response, err error, latency time.Duration) {
			for _, fn := range onResp {
				fn(ctx, req, resp, err, latency)
			}
		}
	}
	if len(onLog) > 0 {
		merged.OnLogEntry = func(ctx context.Context, entry LogEntry) {
			for _, fn := range onLog {
				fn(ctx, entry)
			}
		}
	}
	if len(onMet) > 0 {
		merged.OnMetric = func(ctx context.Context, m Metric) {
			for _, fn := range onMet {
				fn(ctx, m)
			}
		}
	}
	return merged
}

func (t TelemetryHooks) log(ctx context.Context, level LogLevel, msg string, fields map[string]any) {
	if t.OnLogEntry == nil {
		return
	}
	entry := LogEntry{Level: level, Message: msg, Fields: fields}
	t.OnLogEntry(ctx, entry)
}

func (t TelemetryHooks) metric(ctx context.Context, name string, value float64, labels map[string]string) {
	if t.OnMetric == nil {
		return
	}
	t.OnMetric(ctx, Metric{Name: name, Value: value, Labels: labels})
}
