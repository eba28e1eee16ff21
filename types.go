package sdk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ID is a backend-assigned identifier. The API may encode it as a JSON
// string or number; both decode to the same text.
type ID string

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts a string, a number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Role is the user's role within their organization.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is the identity record returned by the auth endpoints. The backend
// owns its shape; every field may be absent.
type User struct {
	ID               ID         `json:"id,omitempty"`
	Email            string     `json:"email,omitempty"`
	FullName         string     `json:"full_name,omitempty"`
	Role             Role       `json:"role,omitempty"`
	OrganizationID   ID         `json:"organization_id,omitempty"`
	OrganizationName string     `json:"organization_name,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

func errMissingField(name string) error {
	return errors.New(name + " missing")
}

// AuthResponse mirrors the login and registration response bodies.
type AuthResponse struct {
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	User        *User  `json:"user,omitempty"`
	// Raw is the full response payload as received.
	Raw json.RawMessage `json:"-"`
}

// RegisterRequest mirrors POST /auth/register.
type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FullName         string `json:"full_name,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
}

// Validate checks the fields the backend requires.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return ConfigError{Reason: "email is required"}
	}
	if r.Password == "" {
		return ConfigError{Reason: "password is required"}
	}
	return nil
}
