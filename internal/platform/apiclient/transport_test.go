package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
)

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Echo-Method", r.Method)
		w.Header().Set("X-RateLimit-Limit", "5")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTransports_RoundTrip(t *testing.T) {
	t.Parallel()

	server := echoServer(t)
	transports := map[string]Transport{
		"net/http": NewHTTPTransport(server.Client()),
		"fasthttp": NewFastHTTPTransport(nil),
	}

	for name, transport := range transports {
		name, transport := name, transport
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			resp, err := transport.Do(context.Background(), TransportRequest{
				Method:  http.MethodPost,
				URL:     server.URL + "/echo",
				Header:  http.Header{"Content-Type": []string{"application/json"}},
				Body:    []byte(`{"hello":"world"}`),
				Timeout: 2 * time.Second,
			})
			if err != nil {
				t.Fatalf("do: %v", err)
			}
			if resp.Status != http.StatusOK {
				t.Fatalf("unexpected status %d", resp.Status)
			}
			if string(resp.Body) != `{"hello":"world"}` {
				t.Fatalf("unexpected body %q", resp.Body)
			}
			if got := resp.Header.Get("X-Echo-Method"); got != http.MethodPost {
				t.Fatalf("unexpected echoed method %q", got)
			}

			missing, err := transport.Do(context.Background(), TransportRequest{
				Method:  http.MethodGet,
				URL:     server.URL + "/missing",
				Timeout: 2 * time.Second,
			})
			if err != nil {
				t.Fatalf("non-2xx must not be a transport error: %v", err)
			}
			if missing.Status != http.StatusNotFound {
				t.Fatalf("unexpected status %d", missing.Status)
			}
		})
	}
}

func TestTransports_ConnectionRefusedIsNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	transports := map[string]Transport{
		"net/http": NewHTTPTransport(&http.Client{}),
		"fasthttp": NewFastHTTPTransport(nil),
	}
	for name, transport := range transports {
		_, err := transport.Do(context.Background(), TransportRequest{Method: http.MethodGet, URL: addr, Timeout: time.Second})
		if !apierr.IsRetryable(err) || apierr.IsTimeout(err) {
			t.Fatalf("%s: expected retryable network error, got %v", name, err)
		}
		var netErr *apierr.NetworkError
		if !errors.As(err, &netErr) {
			t.Fatalf("%s: expected NetworkError, got %T", name, err)
		}
	}
}

func TestTransports_CanceledContext(t *testing.T) {
	t.Parallel()

	server := echoServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, transport := range map[string]Transport{
		"net/http": NewHTTPTransport(server.Client()),
		"fasthttp": NewFastHTTPTransport(nil),
	} {
		_, err := transport.Do(ctx, TransportRequest{Method: http.MethodGet, URL: server.URL, Timeout: time.Second})
		if !apierr.IsCanceled(err) {
			t.Fatalf("%s: expected cancellation, got %v", name, err)
		}
	}
}

func TestTransports_CancelMidFlightReturnsPromptly(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(800 * time.Millisecond):
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	transports := map[string]Transport{
		"net/http": NewHTTPTransport(server.Client()),
		"fasthttp": NewFastHTTPTransport(nil),
	}
	for name, transport := range transports {
		name, transport := name, transport
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			time.AfterFunc(20*time.Millisecond, cancel)

			started := time.Now()
			_, err := transport.Do(ctx, TransportRequest{Method: http.MethodGet, URL: server.URL, Timeout: 5 * time.Second})
			elapsed := time.Since(started)

			if !apierr.IsCanceled(err) {
				t.Fatalf("expected cancellation, got %v", err)
			}
			if elapsed > 400*time.Millisecond {
				t.Fatalf("cancellation took %s, want an immediate return", elapsed)
			}
		})
	}
}
