package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func TestRetry_SucceedsOnThirdAttemptWithExponentialDelays(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	policy := DefaultRetryPolicy()
	policy.Sleep = sleeper.sleep

	calls := 0
	got, err := Retry(context.Background(), policy, func(_ context.Context, attempt int) (string, error) {
		calls++
		if attempt < 3 {
			return "", errors.New("connection reset")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("unexpected result: %q", got)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(sleeper.delays) != 2 || sleeper.delays[0] != time.Second || sleeper.delays[1] != 2*time.Second {
		t.Fatalf("unexpected delays: %v", sleeper.delays)
	}
}

func TestRetry_ExhaustedReturnsLastErrorWithoutTrailingDelay(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	policy := DefaultRetryPolicy()
	policy.Attempts = 4
	policy.Sleep = sleeper.sleep

	_, err := Retry(context.Background(), policy, func(_ context.Context, attempt int) (int, error) {
		return 0, fmt.Errorf("attempt %d", attempt)
	})
	if err == nil || err.Error() != "attempt 4" {
		t.Fatalf("expected last error, got %v", err)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("unexpected delays: %v", sleeper.delays)
	}
	for i := range want {
		if sleeper.delays[i] != want[i] {
			t.Fatalf("delay %d=%s, want %s", i, sleeper.delays[i], want[i])
		}
	}
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	fatal := errors.New("not found")
	policy := DefaultRetryPolicy()
	policy.Sleep = sleeper.sleep
	policy.ShouldRetry = func(err error) bool { return !errors.Is(err, fatal) }

	calls := 0
	_, err := Retry(context.Background(), policy, func(context.Context, int) (int, error) {
		calls++
		return 0, fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
	if len(sleeper.delays) != 0 {
		t.Fatalf("expected no delay, got %v", sleeper.delays)
	}
}

func TestRetry_ContextCanceledDuringWait(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	policy := DefaultRetryPolicy()
	policy.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	calls := 0
	_, err := Retry(ctx, policy, func(context.Context, int) (int, error) {
		calls++
		return 0, errors.New("temporary")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no attempt after cancel, got %d calls", calls)
	}
}

func TestSleepContext_ReturnsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
