package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/accessmatic/dashboard/sdk/go/headers"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// APIError is returned when the API answers with a non-success status.
type APIError struct {
	Status    int
	Message   string
	Code      string
	RequestID string
}

// Error implements the error interface.
func (e APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = httpStatusMessage(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("sdk: %s (%d): %s", e.Code, e.Status, msg)
	}
	return fmt.Sprintf("sdk: %d: %s", e.Status, msg)
}

// NetworkError is returned when no response was received.
type NetworkError struct {
	Method string
	URL    string
	Cause  error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("sdk: network error: %s %s: %v", e.Method, e.URL, e.Cause)
}

func (e NetworkError) Unwrap() error { return e.Cause }

// DecodeError is returned when a success response does not match the
// expected JSON shape.
type DecodeError struct {
	Status int
	Reason string
	Cause  error
}

func (e DecodeError) Error() string {
	switch {
	case e.Reason != "" && e.Cause != nil:
		return fmt.Sprintf("sdk: decode response: %s: %v", e.Reason, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("sdk: decode response: %v", e.Cause)
	default:
		return "sdk: decode response: " + e.Reason
	}
}

func (e DecodeError) Unwrap() error { return e.Cause }

// ConfigError reports invalid client construction or request input.
type ConfigError struct {
	Reason string
}

func (e ConfigError) Error() string { return "sdk: " + e.Reason }

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	var apiErr APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsAuthRejection reports whether the server rejected the credential
// (401 Unauthorized or 403 Forbidden).
func IsAuthRejection(err error) bool {
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// IsNetworkError reports whether err is a NetworkError.
func IsNetworkError(err error) bool {
	var netErr NetworkError
	return errors.As(err, &netErr)
}

func httpStatusMessage(status int) string {
	return fmt.Sprintf("HTTP %d", status)
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := APIError{
		Status:    resp.StatusCode,
		RequestID: resp.Header.Get(headers.RequestID),
	}
	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
		Code    string          `json:"code"`
		Error   string          `json:"error"`
	}
	if len(data) > 0 && json.Unmarshal(data, &payload) == nil {
		apiErr.Code = payload.Code
		apiErr.Message = strings.TrimSpace(payload.Message)
		if apiErr.Message == "" {
			var detail string
			if json.Unmarshal(payload.Detail, &detail) == nil {
				apiErr.Message = strings.TrimSpace(detail)
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(payload.Error)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = httpStatusMessage(resp.StatusCode)
	}
	return apiErr
}
