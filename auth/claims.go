// Package auth inspects AccessMatic bearer tokens without contacting the API.
package auth

import "github.com/golang-jwt/jwt/v5"

// Claims encodes the JWT claims embedded into AccessMatic access tokens.
//
// This is a DTO matching the backend's access token contract. Signatures are
// never verified client-side; the backend remains the authority.
type Claims struct {
	Email          string `json:"email,omitempty"`
	Role           string `json:"role,omitempty"`
	OrganizationID string `json:"org_id,omitempty"`
	TokenType      string `json:"type,omitempty"`

	jwt.RegisteredClaims
}
