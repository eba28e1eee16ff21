package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/accessmatic/dashboard/sdk/go/session"
)

func newTestClient(t *testing.T, srv *httptest.Server, store *session.Store) *Client {
	t.Helper()
	if store == nil {
		store = session.NewMemoryStore()
	}
	client, err := NewClient(Config{
		BaseURL:    srv.URL,
		Session:    store,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("new test client: %v", err)
	}
	return client
}

func mustSet(t *testing.T, store *session.Store, token string) {
	t.Helper()
	if err := store.Set(context.Background(), token); err != nil {
		t.Fatalf("set token: %v", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.BaseURL() != DefaultBaseURL {
		t.Fatalf("expected default base url, got %s", client.BaseURL())
	}
	if client.Session() == nil {
		t.Fatalf("expected default session store")
	}
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"no-scheme.example.com", "ftp://example.com", "https://"} {
		_, err := NewClient(Config{BaseURL: raw})
		var cfgErr ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigError for %q, got %v", raw, err)
		}
	}
}

func TestNormalizeBaseURLTrimsSlash(t *testing.T) {
	got, err := normalizeBaseURL(" https://api.example.com/v1/ ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "https://api.example.com/v1" {
		t.Fatalf("unexpected base url %s", got)
	}
}

func TestRequestAttachesCredentialWhenPresent(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		if _, err := uuid.Parse(r.Header.Get("X-Request-Id")); err != nil {
			t.Errorf("expected uuid request id, got %q", r.Header.Get("X-Request-Id"))
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	client := newTestClient(t, srv, store)
	ctx := context.Background()

	if _, err := client.Request(ctx, "/documents", RequestOptions{}); err != nil {
		t.Fatalf("anonymous request: %v", err)
	}
	mustSet(t, store, "my-secret-token")
	if _, err := client.Request(ctx, "/documents", RequestOptions{}); err != nil {
		t.Fatalf("authenticated request: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := client.Request(ctx, "documents", RequestOptions{}); err != nil {
		t.Fatalf("request after clear: %v", err)
	}

	want := []string{"", "Bearer my-secret-token", ""}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != len(want) {
		t.Fatalf("expected %d requests, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("request %d: expected Authorization %q, got %q", i, want[i], seen[i])
		}
	}
}

func TestBearerTokenNotDuplicated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer my-secret-token" {
			t.Errorf("Expected 'Bearer my-secret-token', got '%s'", auth)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	mustSet(t, store, "Bearer my-secret-token")
	client := newTestClient(t, srv, store)
	if _, err := client.Request(context.Background(), "/foo", RequestOptions{}); err != nil {
		t.Fatalf("request failed: %v", err)
	}
}

func TestRequestRejectsForeignAbsoluteURL(t *testing.T) {
	var hits int
	var mu sync.Mutex
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer other.Close()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer my-secret-token" {
			t.Errorf("expected credential on same-origin request, got %q", auth)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	mustSet(t, store, "my-secret-token")
	client := newTestClient(t, srv, store)
	ctx := context.Background()

	for _, target := range []string{other.URL + "/x", "https://other.example/x", "HTTP://other.example/x"} {
		_, err := client.Request(ctx, target, RequestOptions{})
		var cfgErr ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: expected ConfigError, got %v", target, err)
		}
	}
	mu.Lock()
	if hits != 0 {
		t.Fatalf("expected no request to foreign host, got %d", hits)
	}
	mu.Unlock()

	if _, err := client.Request(ctx, srv.URL+"/documents", RequestOptions{}); err != nil {
		t.Fatalf("same-origin absolute URL: %v", err)
	}
}

func TestRequestCallerHeadersOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Custom"); got != "yes" {
			t.Errorf("expected custom header, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/merge-patch+json" {
			t.Errorf("expected caller content type, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer stored" {
			t.Errorf("expected stored credential to survive, got %q", got)
		}
		if got := r.Header.Get("X-Request-Id"); got != "req-1" {
			t.Errorf("expected caller request id, got %q", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	mustSet(t, store, "stored")
	client := newTestClient(t, srv, store)
	h := http.Header{}
	h.Set("X-Custom", "yes")
	h.Set("Content-Type", "application/merge-patch+json")
	h.Set("X-Request-Id", "req-1")
	if _, err := client.Request(context.Background(), "/x", RequestOptions{Method: http.MethodPatch, Body: map[string]string{"a": "b"}, Headers: h}); err != nil {
		t.Fatalf("request: %v", err)
	}
}

func TestRequestSendsBodyAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Query().Get("a") != "1" || r.URL.Query().Get("b") != "2" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["name"] != "demo" {
			t.Errorf("unexpected body %v", body)
		}
		_, _ = w.Write([]byte(`{"echo":"demo"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	raw, err := client.Request(context.Background(), "/things?a=1", RequestOptions{
		Method: "post",
		Body:   map[string]string{"name": "demo"},
		Query:  map[string][]string{"b": {"2"}},
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if string(raw) != `{"echo":"demo"}` {
		t.Fatalf("unexpected body %s", raw)
	}
}

func TestRequestAPIErrorWithMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "req-401")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	_, err := client.Request(context.Background(), "/auth/me", RequestOptions{})
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.Status != 401 || apiErr.Message != "invalid token" || apiErr.RequestID != "req-401" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !IsUnauthorized(err) || !IsAuthRejection(err) {
		t.Fatalf("expected auth rejection helpers to match")
	}
}

func TestRequestAPIErrorFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	_, err := client.Request(context.Background(), "/documents", RequestOptions{})
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 500 || apiErr.Message != "HTTP 500" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if IsAuthRejection(err) {
		t.Fatalf("500 is not an auth rejection")
	}
}

func TestRequestAPIErrorDetailField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Email already registered"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	_, err := client.Request(context.Background(), "/auth/register", RequestOptions{Method: http.MethodPost})
	var apiErr APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Email already registered" {
		t.Fatalf("expected detail message, got %v", err)
	}
}

func TestRequestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, srv, nil)
	srv.Close()

	_, err := client.Request(context.Background(), "/documents", RequestOptions{})
	var netErr NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T %v", err, err)
	}
	if netErr.Cause == nil || netErr.Method != http.MethodGet {
		t.Fatalf("unexpected network error %+v", netErr)
	}
	if !IsNetworkError(err) {
		t.Fatalf("expected IsNetworkError")
	}
}

func TestRequestCancelledContextIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Request(ctx, "/documents", RequestOptions{})
	if !IsNetworkError(err) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled network error, got %v", err)
	}
}

func TestRequestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/empty":
		default:
			_, _ = w.Write([]byte(`{"truncated":`))
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	for _, path := range []string{"/bad", "/empty"} {
		_, err := client.Request(context.Background(), path, RequestOptions{})
		var decodeErr DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("%s: expected DecodeError, got %v", path, err)
		}
		if decodeErr.Status != http.StatusOK {
			t.Fatalf("%s: expected status 200 on decode error, got %d", path, decodeErr.Status)
		}
	}
}

func TestRequestNoContentIsNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	raw, err := client.Request(context.Background(), "/api-keys/1", RequestOptions{Method: http.MethodDelete})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if string(raw) != "null" {
		t.Fatalf("expected null result, got %s", raw)
	}
}

func TestRequestInjectsTraceparent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "00-0102030405060708090a0b0c0d0e0f10-0102030405060708-01"
		if got := r.Header.Get("Traceparent"); got != want {
			t.Errorf("expected traceparent %q, got %q", want, got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		SpanID:     trace.SpanID{1, 2, 3, 4, 5, 6, 7, 8},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	client := newTestClient(t, srv, nil)
	if _, err := client.Request(ctx, "/documents", RequestOptions{}); err != nil {
		t.Fatalf("request: %v", err)
	}
}

func TestTelemetryHooksFire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	var (
		requests int
		metrics  []Metric
		logs     []LogEntry
	)
	hooks := MergeTelemetry(
		TelemetryHooks{OnHTTPRequest: func(context.Context, *http.Request) { requests++ }},
		TelemetryHooks{
			OnMetric:   func(_ context.Context, m Metric) { metrics = append(metrics, m) },
			OnLogEntry: func(_ context.Context, e LogEntry) { logs = append(logs, e) },
		},
	)
	client, err := NewClient(Config{BaseURL: srv.URL, Telemetry: hooks})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	mustSet(t, client.Session(), "secret-token")
	if _, err := client.APIKeys.List(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if requests != 1 {
		t.Fatalf("expected 1 request hook call, got %d", requests)
	}
	if len(metrics) != 1 || metrics[0].Name != MetricHTTPRequestLatency || metrics[0].Labels["route"] != "/api-keys" || metrics[0].Labels["status"] != "200" {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
	for _, e := range logs {
		for _, v := range e.Fields {
			if s, ok := v.(string); ok && strings.Contains(s, "secret-token") {
				t.Fatalf("credential leaked into log entry %+v", e)
			}
		}
	}
}
