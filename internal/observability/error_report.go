package observability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/riskibarqy/matchcenter/internal/config"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
)

const (
	errorReportQueueSize = 1024
	errorReportMaxBatch  = 50
)

// InitErrorReporting tees records at or above cfg.ErrorReportMinLevel to an HTTP
// collector. It is a no-op unless the errorReporting feature is on and an endpoint is set.
func InitErrorReporting(cfg config.Config, base *logging.Logger) (*logging.Logger, func(context.Context) error, error) {
	if base == nil {
		base = logging.New(cfg.LogFormat, cfg.LogLevel)
	}
	noop := func(context.Context) error { return nil }

	if !cfg.FeatureEnabled(config.FeatureErrorReporting) {
		base.Info("error reporting disabled", "reason", "enableErrorReporting=false")
		return base, noop, nil
	}
	endpoint := normalizeReportEndpoint(cfg.ErrorReportEndpoint)
	if endpoint == "" {
		base.Info("error reporting disabled", "reason", "ERROR_REPORT_ENDPOINT empty")
		return base, noop, nil
	}

	reporter := newErrorReporter(endpoint, cfg.ErrorReportToken, cfg.ErrorReportTimeout)
	reportCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(reportEncoderConfig()),
		zapcore.AddSync(reporter),
		cfg.ErrorReportMinLevel,
	).With([]zapcore.Field{
		zap.String("service", cfg.ServiceName),
		zap.String("version", cfg.ServiceVersion),
		zap.String("environment", cfg.AppEnv),
	})

	logger := logging.FromZap(zap.New(
		zapcore.NewTee(base.Zap().Core(), reportCore),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	))
	logger.Info("error reporting enabled",
		"endpoint", endpoint,
		"min_level", cfg.ErrorReportMinLevel.String(),
	)

	return logger, func(ctx context.Context) error {
		if ctx == nil {
			ctx = context.Background()
		}
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
		}
		if err := reporter.Close(ctx); err != nil {
			return fmt.Errorf("drain error report queue: %w", err)
		}
		if err := logger.Sync(); err != nil && !isIgnorableSyncError(err) {
			return err
		}
		return nil
	}, nil
}

func reportEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func normalizeReportEndpoint(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return "https://" + value
}

// errorReporter queues encoded records and posts them as JSON arrays from one goroutine.
// Records are dropped, never blocked on, when the queue is full.
type errorReporter struct {
	endpoint string
	token    string
	client   *http.Client

	queue     chan []byte
	queueMu   sync.RWMutex
	closeOnce sync.Once
	closed    atomic.Bool
	wg        sync.WaitGroup
	dropped   atomic.Uint64
}

func newErrorReporter(endpoint, token string, timeout time.Duration) *errorReporter {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	r := &errorReporter{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
		queue:    make(chan []byte, errorReportQueueSize),
	}
	r.wg.Add(1)
	go r.run()

	return r
}

func (r *errorReporter) Write(p []byte) (int, error) {
	payload := bytes.TrimSpace(p)
	if len(payload) == 0 {
		return len(p), nil
	}

	r.queueMu.RLock()
	defer r.queueMu.RUnlock()
	if r.closed.Load() {
		return len(p), nil
	}

	// zap reuses its buffer once Write returns.
	copied := append([]byte(nil), payload...)

	select {
	case r.queue <- copied:
	default:
		dropped := r.dropped.Add(1)
		if dropped == 1 || dropped%100 == 0 {
			fmt.Fprintf(os.Stderr, "error report queue full; dropped records=%d\n", dropped)
		}
	}

	return len(p), nil
}

func (r *errorReporter) Sync() error {
	return nil
}

func (r *errorReporter) run() {
	defer r.wg.Done()

	batch := make([][]byte, 0, errorReportMaxBatch)
	for payload := range r.queue {
		batch = append(batch[:0], payload)
	drain:
		for len(batch) < errorReportMaxBatch {
			select {
			case next, ok := <-r.queue:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		r.send(batch)
	}
}

func (r *errorReporter) send(batch [][]byte) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_ = buf.WriteByte('[')
	for i, item := range batch {
		if i > 0 {
			_ = buf.WriteByte(',')
		}
		_, _ = buf.Write(item)
	}
	_ = buf.WriteByte(']')

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, r.endpoint, bytes.NewReader(buf.B))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error report request failed: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error report send failed: %v\n", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		fmt.Fprintf(os.Stderr, "error report got non-2xx status=%d\n", resp.StatusCode)
	}
}

// Close stops accepting records and waits for queued ones to be sent.
func (r *errorReporter) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.queueMu.Lock()
		r.closed.Store(true)
		close(r.queue)
		r.queueMu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isIgnorableSyncError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bad file descriptor") || strings.Contains(msg, "invalid argument")
}
