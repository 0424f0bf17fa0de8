package apiclient

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
)

const maxResponseBytes = 6 << 20

// HTTPTransport sends requests through net/http with otel client spans.
type HTTPTransport struct {
	client *http.Client
}

func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "football-api " + r.Method + " " + r.URL.Path
				}),
			),
		}
	}
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Do(ctx context.Context, req TransportRequest) (TransportResponse, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return TransportResponse{}, apierr.NewValidationError("url", err.Error())
	}
	httpReq.Header = req.Header.Clone()
	if httpReq.Header == nil {
		httpReq.Header = make(http.Header)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return TransportResponse{}, apierr.FromContext(ctx, req.Timeout)
		}
		return TransportResponse{}, apierr.NewNetworkError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		if ctx.Err() != nil {
			return TransportResponse{}, apierr.FromContext(ctx, req.Timeout)
		}
		return TransportResponse{}, apierr.NewNetworkError(err)
	}

	return TransportResponse{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   append([]byte(nil), buf.B...),
	}, nil
}
