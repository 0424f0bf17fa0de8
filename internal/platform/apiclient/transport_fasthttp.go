package apiclient

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
)

// FastHTTPTransport sends requests through a pooled fasthttp client.
// fasthttp has no context support, so each call runs in its own goroutine and Do
// returns as soon as ctx is done. The abandoned call is still bounded by its deadline
// and releases the pooled request and response itself.
type FastHTTPTransport struct {
	client *fasthttp.Client
}

func NewFastHTTPTransport(client *fasthttp.Client) *FastHTTPTransport {
	if client == nil {
		client = &fasthttp.Client{
			Name:                "matchcenter",
			MaxResponseBodySize: maxResponseBytes,
			ReadTimeout:         30 * time.Second,
			WriteTimeout:        30 * time.Second,
		}
	}
	return &FastHTTPTransport{client: client}
}

type fastHTTPResult struct {
	resp TransportResponse
	err  error
}

func (t *FastHTTPTransport) Do(ctx context.Context, req TransportRequest) (TransportResponse, error) {
	if ctx.Err() != nil {
		return TransportResponse{}, apierr.FromContext(ctx, req.Timeout)
	}

	deadline, hasDeadline := attemptDeadline(ctx, req.Timeout)
	done := make(chan fastHTTPResult, 1)
	go func() {
		done <- t.roundTrip(req, deadline, hasDeadline)
	}()

	select {
	case <-ctx.Done():
		return TransportResponse{}, apierr.FromContext(ctx, req.Timeout)
	case res := <-done:
		if res.err != nil {
			if ctx.Err() != nil {
				return TransportResponse{}, apierr.FromContext(ctx, req.Timeout)
			}
			if errors.Is(res.err, fasthttp.ErrTimeout) {
				return TransportResponse{}, apierr.NewTimeoutError(req.Timeout)
			}
			return TransportResponse{}, apierr.NewNetworkError(res.err)
		}
		return res.resp, nil
	}
}

// roundTrip owns the pooled request and response for the whole call and copies
// everything it returns out of them before releasing.
func (t *FastHTTPTransport) roundTrip(req TransportRequest, deadline time.Time, hasDeadline bool) fastHTTPResult {
	freq := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(freq)
	fresp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(fresp)

	freq.SetRequestURI(req.URL)
	freq.Header.SetMethod(req.Method)
	for key, values := range req.Header {
		for _, value := range values {
			freq.Header.Add(key, value)
		}
	}
	if len(req.Body) > 0 {
		freq.SetBody(req.Body)
	}

	var err error
	if hasDeadline {
		err = t.client.DoDeadline(freq, fresp, deadline)
	} else {
		err = t.client.Do(freq, fresp)
	}
	if err != nil {
		return fastHTTPResult{err: err}
	}

	header := make(http.Header)
	fresp.Header.VisitAll(func(key, value []byte) {
		header.Add(string(key), string(value))
	})
	return fastHTTPResult{resp: TransportResponse{
		Status: fresp.StatusCode(),
		Header: header,
		Body:   append([]byte(nil), fresp.Body()...),
	}}
}

func attemptDeadline(ctx context.Context, timeout time.Duration) (time.Time, bool) {
	deadline, ok := ctx.Deadline()
	if timeout > 0 {
		byTimeout := time.Now().Add(timeout)
		if !ok || byTimeout.Before(deadline) {
			return byTimeout, true
		}
	}
	return deadline, ok
}
