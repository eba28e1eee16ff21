// Package headers defines HTTP header constants used when talking to the
// AccessMatic API.
package headers

const (
	// Authorization carries the bearer credential.
	Authorization = "Authorization"

	// ContentType is always application/json for API calls.
	ContentType = "Content-Type"

	// RequestID is the header for request correlation.
	// Clients generate one per call unless the caller supplies it.
	RequestID = "X-Request-Id"

	// APIKey is the header for widget API key authentication.
	APIKey = "X-AccessMatic-Key" //nolint:gosec // This is a header name, not a credential

	// Traceparent is the W3C trace context header.
	Traceparent = "Traceparent"
)
