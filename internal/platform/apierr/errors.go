package apierr

import (
	"context"
	"fmt"
	"net/http"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// ErrCanceled marks a request aborted by its caller. It is never shown to users.
var ErrCanceled = crerr.New("request canceled")

// NetworkError means no response reached the caller.
type NetworkError struct {
	Message   string
	Retryable bool
	Timestamp time.Time
	cause     error
}

func NewNetworkError(cause error) *NetworkError {
	msg := "network error - please check your connection"
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &NetworkError{
		Message:   msg,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     crerr.WithStack(cause),
	}
}

func (e *NetworkError) Error() string { return e.Message }
func (e *NetworkError) Unwrap() error { return e.cause }

// TimeoutError means the request exceeded Timeout.
type TimeoutError struct {
	Message   string
	Timeout   time.Duration
	Timestamp time.Time
}

func NewTimeoutError(timeout time.Duration) *TimeoutError {
	return &TimeoutError{
		Message:   fmt.Sprintf("request timeout after %s", timeout),
		Timeout:   timeout,
		Timestamp: time.Now().UTC(),
	}
}

func (e *TimeoutError) Error() string { return e.Message }

// APIError is a received non-2xx response.
type APIError struct {
	Status    int
	Code      string
	Message   string
	Details   any
	Timestamp time.Time
}

func NewAPIError(status int, code, message string, details any) *APIError {
	if code == "" {
		code = "HTTP_ERROR"
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d Error", status)
	}
	return &APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error status=%d code=%s: %s", e.Status, e.Code, e.Message)
}

// ValidationError is a local input-shape failure.
type ValidationError struct {
	Field     string
	Message   string
	Timestamp time.Time
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:     field,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// FromResponse maps a non-2xx status and its decoded body to an APIError.
// The body code/message fields are used when present.
func FromResponse(status int, body map[string]any) *APIError {
	var code, message string
	if body != nil {
		code, _ = body["code"].(string)
		message, _ = body["message"].(string)
	}
	var details any
	if body != nil {
		details = body
	}
	return NewAPIError(status, code, message, details)
}

// FromContext converts a finished context into the caller-visible error.
// A deadline becomes a TimeoutError, anything else is a cancellation.
func FromContext(ctx context.Context, timeout time.Duration) error {
	if crerr.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewTimeoutError(timeout)
	}
	return ErrCanceled
}

var nonRetryableStatus = map[int]struct{}{
	http.StatusBadRequest:   {},
	http.StatusUnauthorized: {},
	http.StatusForbidden:    {},
	http.StatusNotFound:     {},
}

func IsRetryable(err error) bool {
	if err == nil || IsCanceled(err) {
		return false
	}

	var netErr *NetworkError
	if crerr.As(err, &netErr) {
		return netErr.Retryable
	}
	var apiErr *APIError
	if crerr.As(err, &apiErr) {
		_, blocked := nonRetryableStatus[apiErr.Status]
		return !blocked
	}
	var valErr *ValidationError
	if crerr.As(err, &valErr) {
		return false
	}

	return true
}

func IsCanceled(err error) bool {
	return crerr.Is(err, ErrCanceled) || crerr.Is(err, context.Canceled)
}

func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return crerr.As(err, &timeoutErr)
}

func StatusOf(err error) (int, bool) {
	var apiErr *APIError
	if crerr.As(err, &apiErr) {
		return apiErr.Status, true
	}
	return 0, false
}
