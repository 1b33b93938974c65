package providers

import (
	"fmt"
	"net/http"
	"strings"

	"model-eval/models"
)

// ErrorKind classifies adapter failures.
type ErrorKind string

const (
	KindRateLimited         ErrorKind = "rate_limited"
	KindAuthFailed          ErrorKind = "auth_failed"
	KindProviderUnavailable ErrorKind = "provider_unavailable"
	KindProviderError       ErrorKind = "provider_error"
)

// Error is returned by every adapter when the vendor call fails.
type Error struct {
	Provider   models.Provider
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// classify maps a vendor status code and message to an ErrorKind.
// 529 is Anthropic's "overloaded" status.
func classify(status int, message string) ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuthFailed
	case status == 529 || status >= 500:
		return KindProviderUnavailable
	}

	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "rate_limit"),
		strings.Contains(msg, "quota"), strings.Contains(msg, "resource_exhausted"):
		return KindRateLimited
	case strings.Contains(msg, "api key"), strings.Contains(msg, "authentication"),
		strings.Contains(msg, "permission_denied"), strings.Contains(msg, "unauthenticated"):
		return KindAuthFailed
	}
	return KindProviderError
}

func newError(p models.Provider, status int, message string, cause error) *Error {
	if message == "" {
		if status > 0 {
			message = http.StatusText(status)
		} else if cause != nil {
			message = cause.Error()
		}
	}
	return &Error{
		Provider:   p,
		Kind:       classify(status, message),
		StatusCode: status,
		Message:    message,
		Err:        cause,
	}
}
