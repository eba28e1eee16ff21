package sdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/accessmatic/dashboard/sdk/go/routes"
)

// APIKey describes a widget API key. Key is only populated in the response
// to Create.
type APIKey struct {
	ID         ID         `json:"id"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"key_prefix,omitempty"`
	Key        string     `json:"key,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// Redacted returns the key prefix suitable for display.
func (k APIKey) Redacted() string {
	if k.KeyPrefix != "" {
		return k.KeyPrefix + "****"
	}
	if len(k.Key) > 8 {
		return k.Key[:8] + "****"
	}
	return "****"
}

// APIKeyCreateRequest mirrors POST /api-keys.
type APIKeyCreateRequest struct {
	Name string `json:"name"`
}

// APIKeysClient wraps API key endpoints.
type APIKeysClient struct {
	client *Client
}

func (a *APIKeysClient) ensureInitialized() error {
	if a == nil || a.client == nil {
		return errNotInitialized("api keys")
	}
	return nil
}

// List returns the API keys for the authenticated organization.
func (a *APIKeysClient) List(ctx context.Context) ([]APIKey, error) {
	if err := a.ensureInitialized(); err != nil {
		return nil, err
	}
	status, raw, err := a.client.do(ctx, routes.APIKeys, routes.APIKeys, RequestOptions{})
	if err != nil {
		return nil, err
	}
	var keys []APIKey
	if err := decodeCollection(status, raw, "api_keys", &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// Create issues a new API key. The returned value carries the full key once.
func (a *APIKeysClient) Create(ctx context.Context, req APIKeyCreateRequest) (APIKey, error) {
	if err := a.ensureInitialized(); err != nil {
		return APIKey{}, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return APIKey{}, ConfigError{Reason: "api key name required"}
	}
	var out apiKeyCreateResponse
	if err := a.client.sendAndDecode(ctx, routes.APIKeys, routes.APIKeys, RequestOptions{Method: http.MethodPost, Body: req}, &out); err != nil {
		return APIKey{}, err
	}
	return out.key(), nil
}

// Revoke deletes the API key with the provided identifier.
func (a *APIKeysClient) Revoke(ctx context.Context, id ID) error {
	if err := a.ensureInitialized(); err != nil {
		return err
	}
	if strings.TrimSpace(string(id)) == "" {
		return ConfigError{Reason: "api key id required"}
	}
	path := strings.Replace(routes.APIKeysByID, "{key_id}", url.PathEscape(string(id)), 1)
	return a.client.sendAndDecode(ctx, routes.APIKeysByID, path, RequestOptions{Method: http.MethodDelete}, nil)
}

// apiKeyCreateResponse accepts the key bare or wrapped as {"api_key": {...}}.
type apiKeyCreateResponse struct {
	APIKey
	Wrapped *APIKey `json:"api_key,omitempty"`
}

func (r *apiKeyCreateResponse) key() APIKey {
	if r.Wrapped != nil {
		return *r.Wrapped
	}
	return r.APIKey
}

func (r *apiKeyCreateResponse) validate() error {
	k := r.key()
	if k.ID == "" {
		return errMissingField("api key id")
	}
	if strings.TrimSpace(k.Key) == "" {
		return errMissingField("api key secret")
	}
	return nil
}
