package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
)

// Request is one logical call against the data API. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	Params map[string]string
	Body   any
}

// Options overrides client defaults for a single call. Cancellation comes from the context.
type Options struct {
	// Cache defaults to true for GET and is forced off for other methods.
	Cache    *bool
	CacheTTL time.Duration
	Retries  int
	Timeout  time.Duration
}

func Bool(v bool) *bool { return &v }

func (o Options) cacheEnabled(method string) bool {
	if method != http.MethodGet {
		return false
	}
	if o.Cache == nil {
		return true
	}
	return *o.Cache
}

// Response wraps a successful payload. Data holds the raw JSON body.
type Response struct {
	Data      []byte
	Success   bool
	Timestamp time.Time
}

func (r Response) clone() Response {
	r.Data = append([]byte(nil), r.Data...)
	return r
}

// Decode unmarshals the payload of resp into T. A payload that does not fit T is a ValidationError.
func Decode[T any](resp Response) (T, error) {
	var out T
	if len(resp.Data) == 0 {
		return out, apierr.NewValidationError("response", "empty response body")
	}
	if err := sonic.Unmarshal(resp.Data, &out); err != nil {
		return out, apierr.NewValidationError("response", err.Error())
	}
	return out, nil
}

// TransportRequest is what a Transport sends on the wire. URL is absolute.
type TransportRequest struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

type TransportResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// Transport performs one HTTP exchange. A received response of any status is not an error.
// Failures without a response are reported as apierr.NetworkError or apierr.TimeoutError.
type Transport interface {
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req TransportRequest) (TransportResponse, error)

func (f TransportFunc) Do(ctx context.Context, req TransportRequest) (TransportResponse, error) {
	return f(ctx, req)
}
