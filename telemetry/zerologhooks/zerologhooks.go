// Package zerologhooks routes SDK telemetry log entries to a zerolog logger.
package zerologhooks

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	sdk "github.com/accessmatic/dashboard/sdk/go"
)

// New returns hooks that write SDK log entries and completed HTTP round trips
// to logger.
func New(logger zerolog.Logger) sdk.TelemetryHooks {
	return sdk.TelemetryHooks{
		OnLogEntry: func(_ context.Context, entry sdk.LogEntry) {
			ev := logger.WithLevel(level(entry.Level))
			if len(entry.Fields) > 0 {
				ev = ev.Fields(entry.Fields)
			}
			ev.Msg(entry.Message)
		},
		// Transport failures are already logged as http_request_failed.
		OnHTTPResponse: func(_ context.Context, req *http.Request, resp *http.Response, err error, latency time.Duration) {
			if err != nil {
				return
			}
			ev := logger.Debug().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Dur("latency", latency)
			if resp != nil {
				ev = ev.Int("status", resp.StatusCode)
			}
			ev.Msg("http_response")
		},
	}
}

func level(l sdk.LogLevel) zerolog.Level {
	switch l {
	case sdk.LogLevelDebug:
		return zerolog.DebugLevel
	case sdk.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
