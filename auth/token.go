package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned when a token does not have the three-segment JWT shape.
var ErrNotJWT = errors.New("sdk/auth: token is not a JWT")

// StripBearer removes an optional "Bearer " prefix and surrounding whitespace.
func StripBearer(token string) string {
	t := strings.TrimSpace(token)
	if len(t) >= 7 && strings.EqualFold(t[:7], "bearer ") {
		t = strings.TrimSpace(t[7:])
	}
	return t
}

// IsJWTLike reports whether token has the three base64url segments of a JWT.
func IsJWTLike(token string) bool {
	t := StripBearer(token)
	if t == "" {
		return false
	}
	return strings.Count(t, ".") == 2
}

// ParseUnverified decodes the claims of token without checking its signature.
func ParseUnverified(token string) (Claims, error) {
	t := StripBearer(token)
	if !IsJWTLike(t) {
		return Claims{}, ErrNotJWT
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(t, &claims); err != nil {
		return Claims{}, fmt.Errorf("sdk/auth: parse token: %w", err)
	}
	return claims, nil
}

// Expiry returns the token's exp claim, if present.
func (c Claims) Expiry() (time.Time, bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// ExpiredAt reports whether the claims carry an exp that is at or before now.
// Tokens without exp never expire client-side.
func (c Claims) ExpiredAt(now time.Time) bool {
	exp, ok := c.Expiry()
	if !ok {
		return false
	}
	return !now.Before(exp)
}

// Expired is a convenience over ParseUnverified + ExpiredAt. Opaque tokens
// and unparsable JWTs report false so the backend gets to decide.
func Expired(token string, now time.Time) bool {
	claims, err := ParseUnverified(token)
	if err != nil {
		return false
	}
	return claims.ExpiredAt(now)
}
