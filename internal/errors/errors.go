// Package errors provides error types and handling for the scanner.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrorType categorizes errors for handling decisions.
type ErrorType int

const (
	// Unknown is an uncategorized error.
	Unknown ErrorType = iota
	// Network represents network-related errors (DNS, connection).
	Network
	// Timeout represents timeout errors.
	Timeout
	// RateLimit represents rate limiting (429) errors.
	RateLimit
	// Auth represents authentication/authorization errors (401, 403).
	Auth
	// NotFound represents 404 errors.
	NotFound
	// ServerError represents 5xx errors.
	ServerError
	// ClientError represents 4xx errors (except 401, 403, 404, 429).
	ClientError
	// Parse represents parsing errors (HTML, JSON, etc.).
	Parse
	// Cancelled represents context cancellation.
	Cancelled
)

// String returns the string representation of ErrorType.
func (t ErrorType) String() string {
	switch t {
	case Network:
		return "network"
	case Timeout:
		return "timeout"
	case RateLimit:
		return "rate_limit"
	case Auth:
		return "auth"
	case NotFound:
		return "not_found"
	case ServerError:
		return "server_error"
	case ClientError:
		return "client_error"
	case Parse:
		return "parse"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTransient reports whether errors of this type are recoverable locally.
// Transient failures during discovery are treated as "path does not exist"
// rather than surfaced to the operator.
func (t ErrorType) IsTransient() bool {
	switch t {
	case Network, Timeout, RateLimit, ServerError:
		return true
	default:
		return false
	}
}

// ScanError represents a categorized scan error.
type ScanError struct {
	Type       ErrorType
	Endpoint   string
	Operation  string
	Message    string
	Cause      error
	StatusCode int
	Transient  bool
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error during %s on %s: %s (caused by: %v)",
			e.Type.String(), e.Operation, e.Endpoint, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error during %s on %s: %s",
		e.Type.String(), e.Operation, e.Endpoint, e.Message)
}

// Unwrap returns the underlying error.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target.
func (e *ScanError) Is(target error) bool {
	t, ok := target.(*ScanError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// New creates a new ScanError.
func New(errType ErrorType, endpoint, operation, message string, cause error) *ScanError {
	return &ScanError{
		Type:      errType,
		Endpoint:  endpoint,
		Operation: operation,
		Message:   message,
		Cause:     cause,
		Transient: errType.IsTransient(),
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(endpoint, operation string, cause error) *ScanError {
	return New(Network, endpoint, operation, "network failure", cause)
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(endpoint, operation string, cause error) *ScanError {
	return New(Timeout, endpoint, operation, "request timed out", cause)
}

// NewRateLimitError creates a rate limit error.
func NewRateLimitError(endpoint string) *ScanError {
	err := New(RateLimit, endpoint, "request", "target is throttling requests", nil)
	err.StatusCode = 429
	return err
}

// NewAuthError creates an authentication error.
func NewAuthError(endpoint string, statusCode int, message string) *ScanError {
	err := New(Auth, endpoint, "request", message, nil)
	err.StatusCode = statusCode
	err.Transient = false
	return err
}

// NewParseError creates a parse error.
func NewParseError(endpoint, operation string, cause error) *ScanError {
	err := New(Parse, endpoint, operation, "parsing failed", cause)
	err.Transient = false
	return err
}

// NewUnreachableError creates the fatal startup error for a target that
// cannot be reached at all. The scan does not proceed past it.
func NewUnreachableError(target string, cause error) *ScanError {
	err := New(Network, target, "startup", "target is not reachable", cause)
	err.Transient = false
	return err
}

// Categorize determines the error type from a generic error.
func Categorize(err error, endpoint string) *ScanError {
	if err == nil {
		return nil
	}

	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr
	}

	if errors.Is(err, context.Canceled) {
		e := New(Cancelled, endpoint, "request", "operation cancelled", err)
		e.Transient = false
		return e
	}

	if isTimeout(err) {
		return NewTimeoutError(endpoint, "request", err)
	}

	if isNetworkError(err) {
		return NewNetworkError(endpoint, "request", err)
	}

	return New(Unknown, endpoint, "request", err.Error(), err)
}

// CategorizeHTTPStatus creates an error from an HTTP status code.
func CategorizeHTTPStatus(statusCode int, endpoint string) *ScanError {
	switch {
	case statusCode == 401:
		return NewAuthError(endpoint, statusCode, "unauthorized")
	case statusCode == 403:
		return NewAuthError(endpoint, statusCode, "forbidden")
	case statusCode == 404:
		e := New(NotFound, endpoint, "request", "not found", nil)
		e.StatusCode = statusCode
		e.Transient = false
		return e
	case statusCode == 429:
		return NewRateLimitError(endpoint)
	case statusCode >= 500:
		e := New(ServerError, endpoint, "request", fmt.Sprintf("server returned %d", statusCode), nil)
		e.StatusCode = statusCode
		return e
	case statusCode >= 400:
		e := New(ClientError, endpoint, "request", fmt.Sprintf("client error %d", statusCode), nil)
		e.StatusCode = statusCode
		e.Transient = false
		return e
	default:
		return nil
	}
}

// isTimeout checks if an error is a timeout.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// isNetworkError checks if an error is network-related.
func isNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp")
}

// IsTransient checks if an error is recoverable locally.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Transient
	}

	return isTimeout(err) || isNetworkError(err)
}

// IsRateLimitError checks if an error is rate limiting.
func IsRateLimitError(err error) bool {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Type == RateLimit
	}
	return false
}

// GetStatusCode extracts the status code from an error.
func GetStatusCode(err error) int {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.StatusCode
	}
	return 0
}

// GetErrorType extracts the error type from an error.
func GetErrorType(err error) ErrorType {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Type
	}
	return Unknown
}
