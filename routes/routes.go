// Package routes provides shared API route constants used by the SDK and
// the CLI dashboard to prevent path mismatches with the AccessMatic backend.
package routes

const (
	// AuthLogin exchanges email/password for a bearer token and user record.
	AuthLogin = "/auth/login"

	// AuthRegister creates an account and returns a bearer token and user record.
	AuthRegister = "/auth/register"

	// AuthMe returns the current authenticated user's profile.
	AuthMe = "/auth/me"

	// Documents lists the organization's processed documents.
	Documents = "/documents"

	// APIKeys lists (GET) and creates (POST) API keys.
	APIKeys = "/api-keys"

	// APIKeysByID revokes a single API key.
	APIKeysByID = "/api-keys/{key_id}"

	// AnalyticsDashboard returns the aggregate numbers behind the dashboard cards.
	AnalyticsDashboard = "/analytics/dashboard"
)
