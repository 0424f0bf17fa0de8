package resilience

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

var ErrCircuitOpen = errors.New("football api circuit is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitSnapshot is a point-in-time view of a breaker for health reporting.
type CircuitSnapshot struct {
	State               CircuitState `json:"state"`
	ConsecutiveFailures int          `json:"consecutiveFailures"`
	OpenedAt            *time.Time   `json:"openedAt,omitempty"`
	RetryAt             *time.Time   `json:"retryAt,omitempty"`
}

// CircuitBreaker stops calls to the football API after a run of failures. Once the
// cool-down passes it lets a few trial requests through before closing again.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold   int
	coolDown    time.Duration
	trialBudget int

	state          CircuitState
	failures       int
	openedAt       time.Time
	trialsInFlight int
	trialsOK       int
	now            func() time.Time
	listeners      []func(from, to CircuitState)
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	cfg := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{
		FailureThreshold: failureThreshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMaxReq,
	})
	return &CircuitBreaker{
		threshold:   cfg.FailureThreshold,
		coolDown:    cfg.OpenTimeout,
		trialBudget: cfg.HalfOpenMaxReq,
		state:       CircuitStateClosed,
		now:         time.Now,
	}
}

// OnStateChange adds a listener. Listeners run with the breaker locked and must not call back into it.
func (b *CircuitBreaker) OnStateChange(fn func(from, to CircuitState)) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

// Run executes fn when the breaker allows it and records the outcome.
// isFailure decides which errors count against the breaker; nil counts every error.
func (b *CircuitBreaker) Run(fn func() error, isFailure func(error) bool) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	if err != nil && (isFailure == nil || isFailure(err)) {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return err
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.coolDown {
			return ErrCircuitOpen
		}
		b.moveTo(CircuitStateHalfOpen)
	}
	if b.state == CircuitStateHalfOpen {
		if b.trialsInFlight >= b.trialBudget {
			return ErrCircuitOpen
		}
		b.trialsInFlight++
	}
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.finishTrial()
		b.trialsOK++
		if b.trialsOK >= b.trialBudget && b.trialsInFlight == 0 {
			b.moveTo(CircuitStateClosed)
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.moveTo(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		b.finishTrial()
		b.failures++
		b.moveTo(CircuitStateOpen)
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}

// State reports half-open as soon as the cool-down has elapsed, even before the next trial request.
func (b *CircuitBreaker) State() CircuitState {
	return b.Snapshot().State
}

func (b *CircuitBreaker) Snapshot() CircuitSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := CircuitSnapshot{State: b.state, ConsecutiveFailures: b.failures}
	if b.state != CircuitStateOpen {
		return snap
	}
	opened := b.openedAt
	retry := opened.Add(b.coolDown)
	snap.OpenedAt = &opened
	if !b.now().Before(retry) {
		snap.State = CircuitStateHalfOpen
		return snap
	}
	snap.RetryAt = &retry
	return snap
}

func (b *CircuitBreaker) finishTrial() {
	if b.trialsInFlight > 0 {
		b.trialsInFlight--
	}
}

func (b *CircuitBreaker) moveTo(to CircuitState) {
	from := b.state
	b.state = to
	b.trialsInFlight = 0
	b.trialsOK = 0

	switch to {
	case CircuitStateClosed:
		b.failures = 0
		b.openedAt = time.Time{}
	case CircuitStateOpen:
		b.openedAt = b.now()
	}

	if from == to {
		return
	}
	for _, fn := range b.listeners {
		fn(from, to)
	}
}
