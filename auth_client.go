package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/accessmatic/dashboard/sdk/go/routes"
)

// AuthClient wraps the login, registration and identity endpoints.
type AuthClient struct {
	client *Client
}

func (a *AuthClient) ensureInitialized() error {
	if a == nil || a.client == nil {
		return errNotInitialized("auth")
	}
	return nil
}

// Login exchanges email and password for a bearer token. When the response
// carries an access_token it is stored in the session before returning.
// Rejected credentials surface as APIError; the call is never retried.
func (a *AuthClient) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	if err := a.ensureInitialized(); err != nil {
		return AuthResponse{}, err
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return AuthResponse{}, ConfigError{Reason: "email and password required"}
	}
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}
	return a.authenticate(ctx, routes.AuthLogin, body)
}

// Register creates an account and, like Login, stores the returned token.
func (a *AuthClient) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	if err := a.ensureInitialized(); err != nil {
		return AuthResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return AuthResponse{}, err
	}
	return a.authenticate(ctx, routes.AuthRegister, req)
}

func (a *AuthClient) authenticate(ctx context.Context, route string, body any) (AuthResponse, error) {
	opts := RequestOptions{Method: http.MethodPost, Body: body}
	status, raw, err := a.client.do(ctx, route, route, opts)
	if err != nil {
		return AuthResponse{}, err
	}
	var out AuthResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return AuthResponse{}, DecodeError{Status: status, Cause: err}
	}
	out.Raw = raw
	if out.AccessToken != "" {
		if err := a.client.session.Set(ctx, out.AccessToken); err != nil {
			return AuthResponse{}, fmt.Errorf("sdk: store access token: %w", err)
		}
	}
	return out, nil
}

// Me returns the user the stored credential belongs to (GET /auth/me).
//
// Me never clears the session on failure; deciding whether a failure
// invalidates the credential is left to the caller (see SessionManager).
func (a *AuthClient) Me(ctx context.Context) (User, error) {
	if err := a.ensureInitialized(); err != nil {
		return User{}, err
	}
	status, raw, err := a.client.do(ctx, routes.AuthMe, routes.AuthMe, RequestOptions{})
	if err != nil {
		return User{}, err
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return User{}, DecodeError{Status: status, Reason: "user record is not a JSON object"}
	}
	var envelope struct {
		User *User `json:"user"`
	}
	var user User
	if json.Unmarshal(raw, &envelope) == nil && envelope.User != nil {
		user = *envelope.User
	} else if err := json.Unmarshal(raw, &user); err != nil {
		return User{}, DecodeError{Status: status, Cause: err}
	}
	return user, nil
}

// Logout forgets the stored credential. No request is sent to the server and
// logging out of an empty session is a no-op.
func (a *AuthClient) Logout(ctx context.Context) error {
	if err := a.ensureInitialized(); err != nil {
		return err
	}
	return a.client.session.Clear(ctx)
}
