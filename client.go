package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/accessmatic/dashboard/sdk/go/headers"
	"github.com/accessmatic/dashboard/sdk/go/session"
)

// DefaultBaseURL is used when Config.BaseURL is empty.
const DefaultBaseURL = "https://accessmatic-backend-production.up.railway.app"

const defaultUserAgent = "accessmatic-sdk-go/" + Version

// Config wires the base URL, session store, and telemetry for the API client.
type Config struct {
	BaseURL string
	// Session holds the bearer credential. A fresh in-memory store is used
	// when nil.
	Session *session.Store
	// APIKey is an optional widget key sent alongside the bearer credential.
	APIKey     string
	HTTPClient *http.Client
	Telemetry  TelemetryHooks
	UserAgent  string
}

// Client provides high-level helpers for interacting with the AccessMatic API.
// It holds no per-call state; the credential is read from the session store
// on every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Store
	auth       authChain
	telemetry  TelemetryHooks
	userAgent  string

	// Grouped service clients.
	Auth      *AuthClient
	Documents *DocumentsClient
	APIKeys   *APIKeysClient
	Analytics *AnalyticsClient
}

// RequestOptions describes a single API call.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Body is JSON-encoded unless it is already a json.RawMessage or []byte.
	Body any
	// Headers are applied after the fixed headers and override them.
	Headers http.Header
	// Query is merged with any query string already present in the path.
	Query url.Values
}

// NewClient validates the configuration and returns a ready-to-use Client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	store := cfg.Session
	if store == nil {
		store = session.NewMemoryStore()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	client := &Client{
		baseURL:    normalized,
		httpClient: httpClient,
		session:    store,
		auth:       buildAuthChain(cfg, store),
		telemetry:  cfg.Telemetry,
		userAgent:  ua,
	}
	client.Auth = &AuthClient{client: client}
	client.Documents = &DocumentsClient{client: client}
	client.APIKeys = &APIKeysClient{client: client}
	client.Analytics = &AnalyticsClient{client: client}
	return client, nil
}

// BaseURL returns the normalized base address requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Session returns the store the client reads its credential from.
func (c *Client) Session() *session.Store { return c.session }

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ConfigError{Reason: "base URL required"}
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", ConfigError{Reason: fmt.Sprintf("invalid base URL: %v", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ConfigError{Reason: "base URL missing scheme (http/https)"}
	}
	if u.Host == "" {
		return "", ConfigError{Reason: "base URL missing host"}
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return strings.TrimSuffix(u.String(), "/"), nil
}

// Request performs one authenticated call and returns the JSON body.
//
// Transport failures yield NetworkError, non-2xx statuses APIError, and a
// success body that is not JSON DecodeError. Requests are never retried.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	route := path
	if i := strings.IndexByte(route, '?'); i >= 0 {
		route = route[:i]
	}
	_, raw, err := c.do(ctx, route, path, opts)
	return raw, err
}

// sendAndDecode performs the call and decodes the body into out. When out
// implements validator, the decoded value is checked before returning.
func (c *Client) sendAndDecode(ctx context.Context, route, path string, opts RequestOptions, out any) error {
	status, raw, err := c.do(ctx, route, path, opts)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return DecodeError{Status: status, Cause: err}
	}
	if v, ok := out.(validator); ok {
		if err := v.validate(); err != nil {
			return DecodeError{Status: status, Reason: err.Error()}
		}
	}
	return nil
}

type validator interface {
	validate() error
}

func (c *Client) do(ctx context.Context, route, path string, opts RequestOptions) (int, json.RawMessage, error) {
	req, err := c.newJSONRequest(ctx, path, opts)
	if err != nil {
		return 0, nil, err
	}
	resp, err := c.send(req, route)
	if err != nil {
		return 0, nil, err
	}
	//nolint:errcheck // best-effort cleanup on return
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, NetworkError{Method: req.Method, URL: req.URL.String(), Cause: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		if resp.StatusCode == http.StatusNoContent || req.Method == http.MethodDelete {
			return resp.StatusCode, json.RawMessage("null"), nil
		}
		return resp.StatusCode, nil, DecodeError{Status: resp.StatusCode, Reason: "empty response body"}
	}
	if !json.Valid(data) {
		return resp.StatusCode, nil, DecodeError{Status: resp.StatusCode, Reason: "response body is not valid JSON"}
	}
	return resp.StatusCode, json.RawMessage(data), nil
}

func (c *Client) newJSONRequest(ctx context.Context, path string, opts RequestOptions) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	switch payload := opts.Body.(type) {
	case nil:
	case json.RawMessage:
		body = bytes.NewReader(payload)
	case []byte:
		body = bytes.NewReader(payload)
	default:
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("sdk: encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	target, err := c.buildURL(path, opts.Query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(headers.ContentType, "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set(headers.RequestID, uuid.NewString())
	c.auth.Apply(req)
	injectTraceparent(ctx, req)
	for name, values := range opts.Headers {
		if len(values) == 0 {
			continue
		}
		req.Header.Del(name)
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	return req, nil
}

func (c *Client) send(req *http.Request, route string) (*http.Response, error) {
	ctx := req.Context()
	if c.telemetry.OnHTTPRequest != nil {
		c.telemetry.OnHTTPRequest(ctx, req)
	}
	c.telemetry.log(ctx, LogLevelDebug, "http_request", map[string]any{
		"method":     req.Method,
		"url":        req.URL.String(),
		"request_id": req.Header.Get(headers.RequestID),
	})
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if c.telemetry.OnHTTPResponse != nil {
		c.telemetry.OnHTTPResponse(ctx, req, resp, err, latency)
	}
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.telemetry.metric(ctx, MetricHTTPRequestLatency, latency.Seconds(), map[string]string{
		"method": req.Method,
		"route":  route,
		"status": strconv.Itoa(status),
	})
	if err != nil {
		c.telemetry.log(ctx, LogLevelError, "http_request_failed", map[string]any{
			"method": req.Method,
			"url":    req.URL.String(),
			"error":  err.Error(),
		})
		return nil, NetworkError{Method: req.Method, URL: req.URL.String(), Cause: err}
	}
	if resp.StatusCode >= 400 {
		//nolint:errcheck // best-effort cleanup on return
		defer func() { _ = resp.Body.Close() }()
		apiErr := decodeAPIError(resp)
		c.telemetry.log(ctx, LogLevelInfo, "http_response_error", map[string]any{
			"method": req.Method,
			"url":    req.URL.String(),
			"status": resp.StatusCode,
		})
		return nil, apiErr
	}
	return resp, nil
}

// buildURL resolves path against the base URL. Absolute URLs are accepted
// only when they point at the base URL's scheme and host, so the credential
// is never sent to another origin.
func (c *Client) buildURL(path string, query url.Values) (string, error) {
	target := path
	if isAbsoluteURL(path) {
		if err := c.checkSameOrigin(path); err != nil {
			return "", err
		}
	} else {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		target = c.baseURL + path
	}
	if len(query) == 0 {
		return target, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", ConfigError{Reason: fmt.Sprintf("invalid request path: %v", err)}
	}
	merged := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	u.RawQuery = merged.Encode()
	return u.String(), nil
}

func isAbsoluteURL(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func (c *Client) checkSameOrigin(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return ConfigError{Reason: fmt.Sprintf("invalid request URL: %v", err)}
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return ConfigError{Reason: fmt.Sprintf("invalid base URL: %v", err)}
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return ConfigError{Reason: "request URL host does not match base URL"}
	}
	return nil
}

// errNotInitialized is returned by service clients built without NewClient.
func errNotInitialized(name string) error {
	return errors.New("sdk: " + name + " client not initialized")
}
