package zerologhooks

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	sdk "github.com/accessmatic/dashboard/sdk/go"
)

func TestLogEntriesReachLogger(t *testing.T) {
	var buf bytes.Buffer
	hooks := New(zerolog.New(&buf).Level(zerolog.DebugLevel))

	hooks.OnLogEntry(context.Background(), sdk.LogEntry{
		Level:   sdk.LogLevelError,
		Message: "http_request_failed",
		Fields:  map[string]any{"method": "GET"},
	})
	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, `"message":"http_request_failed"`) || !strings.Contains(out, `"method":"GET"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestHTTPResponseLoggedAtDebug(t *testing.T) {
	var buf bytes.Buffer
	hooks := New(zerolog.New(&buf).Level(zerolog.InfoLevel))
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/documents", nil)
	hooks.OnHTTPResponse(context.Background(), req, &http.Response{StatusCode: 200}, nil, time.Millisecond)
	if buf.Len() != 0 {
		t.Fatalf("expected debug entry to be filtered at info level, got %s", buf.String())
	}

	buf.Reset()
	hooks = New(zerolog.New(&buf).Level(zerolog.DebugLevel))
	hooks.OnHTTPResponse(context.Background(), req, &http.Response{StatusCode: 201}, nil, time.Millisecond)
	if !strings.Contains(buf.String(), `"status":201`) || !strings.Contains(buf.String(), `"path":"/documents"`) {
		t.Fatalf("unexpected log output: %s", buf.String())
	}
}

func TestFailedRequestLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	hooks := New(zerolog.New(&buf).Level(zerolog.DebugLevel))
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/documents", nil)
	hooks.OnHTTPResponse(context.Background(), req, nil, errors.New("connection refused"), time.Millisecond)
	if buf.Len() != 0 {
		t.Fatalf("expected no http_response entry for a transport failure, got %s", buf.String())
	}
}

func TestFailedRequestThroughClient(t *testing.T) {
	var buf bytes.Buffer
	client, err := sdk.NewClient(sdk.Config{
		BaseURL:   "http://127.0.0.1:1",
		Telemetry: New(zerolog.New(&buf).Level(zerolog.DebugLevel)),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Request(context.Background(), "/documents", sdk.RequestOptions{}); err == nil {
		t.Fatalf("expected network error")
	}
	out := buf.String()
	if n := strings.Count(out, "http_request_failed"); n != 1 {
		t.Fatalf("expected one failure entry, got %d: %s", n, out)
	}
	if strings.Contains(out, `"message":"http_response"`) {
		t.Fatalf("unexpected http_response entry: %s", out)
	}
}
