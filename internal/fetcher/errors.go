package fetcher

import (
	"context"
	"errors"
	"fmt"
)

// ErrorType represents the category of error that occurred during a fetch operation
type ErrorType string

const (
	// ErrorTypeNetwork indicates a network-level error (connection refused, DNS, etc.)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit indicates the request was rejected due to rate limiting (HTTP 429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer indicates a server error (HTTP 5xx)
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient indicates a client error (HTTP 4xx except 429)
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeValidation indicates the response was received but could not be decoded
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeTimeout indicates the request timed out
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeUnknown indicates an error of unknown type
	ErrorTypeUnknown ErrorType = "unknown"
)

// FetchError represents a structured error from a fetch operation
type FetchError struct {
	Type ErrorType
	// Source names the upstream API, e.g. "entsoe" or "fingrid"
	Source string
	// Dataset is the upstream dataset id, zero when the API has none
	Dataset    int
	StatusCode int
	Message    string
	// Body is the raw response body of a failed HTTP exchange
	Body  string
	Cause error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	prefix := fmt.Sprintf("%s %s error", e.Source, e.Type)
	if e.Dataset != 0 {
		prefix = fmt.Sprintf("%s %s error (dataset %d)", e.Source, e.Type, e.Dataset)
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d): %s", prefix, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// WithDataset returns the error tagged with an upstream dataset id
func (e *FetchError) WithDataset(id int) *FetchError {
	e.Dataset = id
	return e
}

// NewNetworkError creates a network error. Deadline errors are reported as timeouts.
func NewNetworkError(source string, cause error) *FetchError {
	if errors.Is(cause, context.DeadlineExceeded) {
		return NewTimeoutError(source, cause)
	}
	return &FetchError{
		Type:    ErrorTypeNetwork,
		Source:  source,
		Message: "network request failed",
		Cause:   cause,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(source string, statusCode int, body string) *FetchError {
	return &FetchError{
		Type:       ErrorTypeRateLimit,
		Source:     source,
		StatusCode: statusCode,
		Message:    "rate limit exceeded",
		Body:       body,
	}
}

// NewServerError creates a server error
func NewServerError(source string, statusCode int, body string) *FetchError {
	return &FetchError{
		Type:       ErrorTypeServer,
		Source:     source,
		StatusCode: statusCode,
		Message:    "server returned an error",
		Body:       body,
	}
}

// NewClientError creates a client error
func NewClientError(source string, statusCode int, body string) *FetchError {
	return &FetchError{
		Type:       ErrorTypeClient,
		Source:     source,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("client error: HTTP %d", statusCode),
		Body:       body,
	}
}

// NewValidationError creates a validation error
func NewValidationError(source, message string, cause error) *FetchError {
	return &FetchError{
		Type:    ErrorTypeValidation,
		Source:  source,
		Message: message,
		Cause:   cause,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(source string, cause error) *FetchError {
	return &FetchError{
		Type:    ErrorTypeTimeout,
		Source:  source,
		Message: "request timed out",
		Cause:   cause,
	}
}

// ClassifyHTTPError classifies an HTTP status code into an appropriate FetchError
func ClassifyHTTPError(source string, statusCode int, body string) *FetchError {
	switch {
	case statusCode == 429:
		return NewRateLimitError(source, statusCode, body)
	case statusCode >= 500:
		return NewServerError(source, statusCode, body)
	case statusCode >= 400:
		return NewClientError(source, statusCode, body)
	default:
		return &FetchError{
			Type:       ErrorTypeUnknown,
			Source:     source,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
			Body:       body,
		}
	}
}

// IsType reports whether err is a FetchError of the given type
func IsType(err error, t ErrorType) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Type == t
}
