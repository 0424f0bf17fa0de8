package apierr

import (
	"net/http"

	crerr "github.com/cockroachdb/errors"
)

const unexpectedMessage = "An unexpected error occurred."

// Message resolves the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if crerr.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadRequest:
			return "Invalid request. Please check your input."
		case http.StatusUnauthorized:
			return "Authentication failed. Please check your API key."
		case http.StatusForbidden:
			return "Access denied. You don't have permission to access this resource."
		case http.StatusNotFound:
			return "The requested data was not found."
		case http.StatusTooManyRequests:
			return "Too many requests. Please try again later."
		case http.StatusInternalServerError:
			return "Server error. Please try again later."
		default:
			if apiErr.Message != "" {
				return apiErr.Message
			}
			return unexpectedMessage
		}
	}

	var netErr *NetworkError
	if crerr.As(err, &netErr) {
		return "Network connection failed. Please check your internet connection."
	}

	var timeoutErr *TimeoutError
	if crerr.As(err, &timeoutErr) {
		return "Request timed out. Please try again."
	}

	var valErr *ValidationError
	if crerr.As(err, &valErr) {
		return "Invalid data: " + valErr.Message
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return unexpectedMessage
}
