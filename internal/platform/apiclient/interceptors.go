package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderRequestID      = "X-Request-ID"
	headerRequestedWith  = "X-Requested-With"
	defaultSlowThreshold = time.Second
)

// RequestInterceptor mutates an outgoing request before each attempt.
type RequestInterceptor func(ctx context.Context, req *TransportRequest)

// Exchange is one finished attempt as seen by response interceptors.
// Response is nil when Err came from the transport.
type Exchange struct {
	Request  TransportRequest
	Response *TransportResponse
	Err      error
	Duration time.Duration
}

type ResponseInterceptor func(ctx context.Context, ex Exchange)

func defaultHeaders(apiKey string) RequestInterceptor {
	return func(_ context.Context, req *TransportRequest) {
		if req.Header == nil {
			req.Header = make(http.Header)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set(headerRequestedWith, "XMLHttpRequest")
		if apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}
	}
}

func requestID(newID func() string) RequestInterceptor {
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	return func(_ context.Context, req *TransportRequest) {
		if req.Header == nil {
			req.Header = make(http.Header)
		}
		if req.Header.Get(HeaderRequestID) == "" {
			req.Header.Set(HeaderRequestID, newID())
		}
	}
}

func (c *Client) logRequest(ctx context.Context, req *TransportRequest) {
	if !c.enableLogging {
		return
	}
	c.logger.DebugContext(ctx, "api request",
		"method", req.Method,
		"url", req.URL,
		"request_id", req.Header.Get(HeaderRequestID),
		"body_bytes", len(req.Body),
	)
}

func (c *Client) trackRateLimit(_ context.Context, ex Exchange) {
	if ex.Response != nil {
		c.rateLimit.update(ex.Response.Header)
	}
}

func (c *Client) logResponse(ctx context.Context, ex Exchange) {
	durationMS := ex.Duration.Milliseconds()

	if c.enableLogging {
		switch {
		case ex.Err != nil:
			c.logger.WarnContext(ctx, "api error",
				"method", ex.Request.Method,
				"url", ex.Request.URL,
				"duration_ms", durationMS,
				"error", ex.Err,
			)
		case ex.Response != nil:
			c.logger.InfoContext(ctx, "api response",
				"method", ex.Request.Method,
				"url", ex.Request.URL,
				"status", ex.Response.Status,
				"duration_ms", durationMS,
				"body_bytes", len(ex.Response.Body),
			)
		}
	}

	if c.perfLogging() && ex.Duration > c.slowThreshold {
		c.logger.WarnContext(ctx, "slow api request",
			"method", ex.Request.Method,
			"url", ex.Request.URL,
			"duration_ms", durationMS,
		)
	}
}
