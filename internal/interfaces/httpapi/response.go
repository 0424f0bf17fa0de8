package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
	"github.com/riskibarqy/matchcenter/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "matchcenter"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

// writeError renders err in the envelope. Upstream failures carry the
// user-facing text from apierr.Message instead of the raw error string.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	message := err.Error()
	if isUpstreamError(err) {
		message = apierr.Message(err)
	}

	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: message,
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	const msg = "internal server error"

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: msg,
				},
			},
		},
	})
}

func isUpstreamError(err error) bool {
	var (
		apiErr     *apierr.APIError
		netErr     *apierr.NetworkError
		timeoutErr *apierr.TimeoutError
		valErr     *apierr.ValidationError
	)
	return errors.As(err, &apiErr) || errors.As(err, &netErr) || errors.As(err, &timeoutErr) || errors.As(err, &valErr)
}

func mapError(err error) mappedError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{HTTPStatus: http.StatusUnauthorized, Reason: "unauthorized", Status: "UNAUTHENTICATED"}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"}
	case apierr.IsCanceled(err):
		// 499 is the de facto "client closed request" code.
		return mappedError{HTTPStatus: 499, Reason: "canceled", Status: "CANCELLED"}
	case apierr.IsTimeout(err):
		return mappedError{HTTPStatus: http.StatusGatewayTimeout, Reason: "upstreamTimeout", Status: "DEADLINE_EXCEEDED"}
	}

	var valErr *apierr.ValidationError
	if errors.As(err, &valErr) {
		return mappedError{HTTPStatus: http.StatusBadGateway, Reason: "upstreamInvalidData", Status: "INTERNAL"}
	}
	var netErr *apierr.NetworkError
	if errors.As(err, &netErr) {
		return mappedError{HTTPStatus: http.StatusBadGateway, Reason: "upstreamUnreachable", Status: "UNAVAILABLE"}
	}
	if status, ok := apierr.StatusOf(err); ok {
		return mapUpstreamStatus(status)
	}

	return mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}
}

// mapUpstreamStatus passes client errors through and reports upstream server errors as 502.
func mapUpstreamStatus(status int) mappedError {
	switch status {
	case http.StatusBadRequest:
		return mappedError{HTTPStatus: http.StatusBadRequest, Reason: "upstreamBadRequest", Status: "INVALID_ARGUMENT"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return mappedError{HTTPStatus: http.StatusBadGateway, Reason: "upstreamUnauthorized", Status: "UNAVAILABLE"}
	case http.StatusNotFound:
		return mappedError{HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"}
	case http.StatusTooManyRequests:
		return mappedError{HTTPStatus: http.StatusTooManyRequests, Reason: "rateLimited", Status: "RESOURCE_EXHAUSTED"}
	default:
		return mappedError{HTTPStatus: http.StatusBadGateway, Reason: "upstreamError", Status: "UNAVAILABLE"}
	}
}
