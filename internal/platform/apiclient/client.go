package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
	"github.com/riskibarqy/matchcenter/internal/platform/cache"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
	"github.com/riskibarqy/matchcenter/internal/platform/resilience"
)

const (
	DefaultRetries = 3

	healthCheckTimeout = 5 * time.Second
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// DefaultCacheTTL applies to cached GETs that do not set Options.CacheTTL.
	DefaultCacheTTL time.Duration
	EnableLogging   bool
	// PerformanceLogging is read on every response so the flag can change at runtime.
	PerformanceLogging func() bool
	SlowThreshold      time.Duration
	// RateLimit is requests per second towards upstream. Zero disables the limiter.
	RateLimit      float64
	RateBurst      int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client executes logical API requests with caching, retry and error normalization.
type Client struct {
	baseURL       string
	timeout       time.Duration
	defaultTTL    time.Duration
	enableLogging bool
	perfLogging   func() bool
	slowThreshold time.Duration

	transport Transport
	cache     *cache.Manager
	logger    *logging.Logger
	limiter   *rate.Limiter
	breaker   *resilience.CircuitBreaker
	sleep     resilience.Sleeper
	now       func() time.Time
	newID     func() string

	rateLimit rateLimitState
	reqHooks  []RequestInterceptor
	respHooks []ResponseInterceptor
	extraReq  []RequestInterceptor
	extraResp []ResponseInterceptor
}

type Option func(*Client)

func WithTransport(t Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSleeper replaces the backoff wait, mainly for tests.
func WithSleeper(s resilience.Sleeper) Option {
	return func(c *Client) {
		if s != nil {
			c.sleep = s
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func WithRequestIDGenerator(fn func() string) Option {
	return func(c *Client) {
		c.newID = fn
	}
}

func WithRequestInterceptor(fn RequestInterceptor) Option {
	return func(c *Client) {
		if fn != nil {
			c.extraReq = append(c.extraReq, fn)
		}
	}
}

func WithResponseInterceptor(fn ResponseInterceptor) Option {
	return func(c *Client) {
		if fn != nil {
			c.extraResp = append(c.extraResp, fn)
		}
	}
}

func New(cfg Config, store *cache.Manager, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = defaultSlowThreshold
	}
	if store == nil {
		store = cache.NewManager(cfg.DefaultCacheTTL)
	}
	perf := cfg.PerformanceLogging
	if perf == nil {
		perf = func() bool { return false }
	}

	c := &Client{
		baseURL:       strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		timeout:       timeout,
		defaultTTL:    cfg.DefaultCacheTTL,
		enableLogging: cfg.EnableLogging,
		perfLogging:   perf,
		slowThreshold: slow,
		cache:         store,
		logger:        logging.Default(),
		breaker:       resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		sleep:         resilience.SleepContext,
		now:           time.Now,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(nil)
	}
	if c.breaker != nil {
		c.breaker.OnStateChange(func(from, to resilience.CircuitState) {
			c.logger.Warn("football api circuit state changed", "from", from, "to", to)
		})
	}

	c.reqHooks = append([]RequestInterceptor{defaultHeaders(cfg.APIKey), requestID(c.newID), c.logRequest}, c.extraReq...)
	c.respHooks = append([]ResponseInterceptor{c.trackRateLimit, c.logResponse}, c.extraResp...)
	return c
}

// Request runs req through the cache, the retry loop and the transport.
// A cancelled ctx yields apierr.ErrCanceled and no further attempts.
func (c *Client) Request(ctx context.Context, req Request, opts Options) (Response, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return Response{}, apierr.NewValidationError("body", err.Error())
	}

	useCache := opts.cacheEnabled(method)
	key := CacheKey(method, req.Path, req.Params, body)
	if useCache {
		if cached, ok := c.cache.Get(key); ok {
			if resp, ok := cached.(Response); ok {
				return resp.clone(), nil
			}
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	retries := opts.Retries
	if retries <= 0 {
		retries = DefaultRetries
	}

	policy := resilience.DefaultRetryPolicy()
	policy.Attempts = retries
	policy.ShouldRetry = apierr.IsRetryable
	policy.Sleep = c.sleep
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		if c.enableLogging {
			c.logger.DebugContext(ctx, "api request retry scheduled",
				"method", method,
				"path", req.Path,
				"attempt", attempt,
				"delay", delay,
				"error", err,
			)
		}
	}

	treq := TransportRequest{
		Method:  method,
		URL:     c.buildURL(req.Path, req.Params),
		Body:    body,
		Timeout: timeout,
	}

	resp, err := resilience.Retry(ctx, policy, func(ctx context.Context, _ int) (Response, error) {
		return c.attempt(ctx, treq)
	})
	if err != nil {
		err = c.resolveError(ctx, err, timeout)
		if !apierr.IsCanceled(err) && c.enableLogging {
			c.logger.ErrorContext(ctx, "api request failed", "method", method, "path", req.Path, "error", err)
		}
		return Response{}, err
	}

	if useCache {
		ttl := opts.CacheTTL
		if ttl <= 0 {
			ttl = c.defaultTTL
		}
		c.cache.Set(key, resp.clone(), ttl)
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, base TransportRequest) (Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, base.Timeout)
	defer cancel()

	treq := base
	treq.Header = make(http.Header)
	for _, hook := range c.reqHooks {
		hook(attemptCtx, &treq)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(attemptCtx); err != nil {
			if ctx.Err() != nil {
				return Response{}, apierr.FromContext(ctx, base.Timeout)
			}
			return Response{}, apierr.NewTimeoutError(base.Timeout)
		}
	}

	var tresp TransportResponse
	call := func() error {
		var err error
		tresp, err = c.transport.Do(attemptCtx, treq)
		if err != nil {
			return err
		}
		if tresp.Status < 200 || tresp.Status > 299 {
			return apierr.FromResponse(tresp.Status, decodeErrorBody(tresp.Body))
		}
		return nil
	}

	started := c.now()
	var err error
	if c.breaker != nil {
		err = c.breaker.Run(call, countsAgainstBreaker)
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			netErr := apierr.NewNetworkError(err)
			netErr.Retryable = false
			err = netErr
		}
	} else {
		err = call()
	}
	if err != nil && !apierr.IsCanceled(err) && crerr.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = apierr.NewTimeoutError(base.Timeout)
	}

	ex := Exchange{Request: treq, Err: err, Duration: c.now().Sub(started)}
	if tresp.Status != 0 {
		ex.Response = &tresp
	}
	for _, hook := range c.respHooks {
		hook(ctx, ex)
	}

	if err != nil {
		return Response{}, err
	}
	return Response{
		Data:      tresp.Body,
		Success:   true,
		Timestamp: c.now().UTC(),
	}, nil
}

// resolveError folds context failures of the caller into the taxonomy.
func (c *Client) resolveError(ctx context.Context, err error, timeout time.Duration) error {
	if ctx.Err() != nil {
		return apierr.FromContext(ctx, timeout)
	}
	if crerr.Is(err, context.Canceled) {
		return apierr.ErrCanceled
	}
	if crerr.Is(err, context.DeadlineExceeded) {
		return apierr.NewTimeoutError(timeout)
	}
	return err
}

func countsAgainstBreaker(err error) bool {
	if apierr.IsCanceled(err) {
		return false
	}
	if status, ok := apierr.StatusOf(err); ok {
		return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
	}
	return true
}

func (c *Client) buildURL(path string, params map[string]string) string {
	full := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) == 0 {
		return full
	}
	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	return full + "?" + values.Encode()
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return append([]byte(nil), v...), nil
	case string:
		return []byte(v), nil
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(body); err != nil {
		return nil, err
	}
	out := buf.B
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return append([]byte(nil), out...), nil
}

func decodeErrorBody(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var body map[string]any
	if err := sonic.Unmarshal(raw, &body); err != nil {
		return map[string]any{"raw": string(raw)}
	}
	return body
}

func (c *Client) Get(ctx context.Context, path string, params map[string]string, opts Options) (Response, error) {
	return c.Request(ctx, Request{Method: http.MethodGet, Path: path, Params: params}, opts)
}

func (c *Client) Post(ctx context.Context, path string, body any, opts Options) (Response, error) {
	opts.Cache = Bool(false)
	return c.Request(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, opts)
}

func (c *Client) Put(ctx context.Context, path string, body any, opts Options) (Response, error) {
	opts.Cache = Bool(false)
	return c.Request(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, opts)
}

func (c *Client) Delete(ctx context.Context, path string, opts Options) (Response, error) {
	opts.Cache = Bool(false)
	return c.Request(ctx, Request{Method: http.MethodDelete, Path: path}, opts)
}

func (c *Client) ClearCache(key string) bool {
	return c.cache.Clear(key)
}

func (c *Client) ClearCachePrefix(prefix string) int {
	return c.cache.ClearPrefix(prefix)
}

func (c *Client) ClearAllCache() {
	c.cache.ClearAll()
}

func (c *Client) CacheStats() cache.Stats {
	return c.cache.Stats()
}

// RateLimit returns the latest upstream quota; false until a response carried the headers.
func (c *Client) RateLimit() (RateLimitInfo, bool) {
	return c.rateLimit.get()
}

// Circuit reports the breaker, or a closed snapshot when no breaker is configured.
func (c *Client) Circuit() resilience.CircuitSnapshot {
	if c.breaker == nil {
		return resilience.CircuitSnapshot{State: resilience.CircuitStateClosed}
	}
	return c.breaker.Snapshot()
}

func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := c.Get(ctx, "/health", nil, Options{
		Cache:   Bool(false),
		Retries: 1,
		Timeout: healthCheckTimeout,
	})
	return err == nil
}
