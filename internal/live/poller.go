package live

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
)

const (
	DefaultInterval       = 30 * time.Second
	defaultMaxConcurrency = 8
	// defaultTickTimeout sits above the client's worst case for one fixture
	// (three attempts at the prod API timeout plus 1s and 2s of backoff).
	defaultTickTimeout = 2 * time.Minute
)

// Fetcher loads the current state of one fixture.
type Fetcher func(ctx context.Context, fixtureID string) (Record, error)

type State string

const (
	StateIdle      State = "idle"
	StatePolling   State = "polling"
	StateSuspended State = "suspended"
)

// Ticker is the subset of time.Ticker the poller uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type Config struct {
	Interval time.Duration
	// Enabled gates every tick, e.g. on the realtime feature flag. Nil means always on.
	Enabled        func() bool
	Visibility     VisibilitySignal
	Logger         *logging.Logger
	Now            func() time.Time
	NewTicker      func(d time.Duration) Ticker
	MaxConcurrency int
	// TickTimeout bounds one tick. A fetch cut off by it counts as that fixture's failure.
	// Defaults to defaultTickTimeout.
	TickTimeout time.Duration
}

// Poller keeps the latest Record for every subscribed fixture fresh.
// The ticker runs only while the set is non-empty and the visibility signal is on.
type Poller struct {
	fetch          Fetcher
	interval       time.Duration
	tickTimeout    time.Duration
	maxConcurrency int
	enabled        func() bool
	visibility     VisibilitySignal
	logger         *logging.Logger
	now            func() time.Time
	newTicker      func(time.Duration) Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	inFlight atomic.Bool

	mu        sync.Mutex
	subs      *SubscriptionSet
	records   map[string]Record
	stop      chan struct{}
	visible   bool
	connected bool
	lastErr   string
	observers map[int]func(map[string]Record)
	nextObs   int
	closed    bool

	stopVisibility func()
}

func NewPoller(fetch Fetcher, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.TickTimeout <= 0 {
		cfg.TickTimeout = defaultTickTimeout
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = newTimeTicker
	}
	if cfg.Visibility == nil {
		cfg.Visibility = NewManualSignal(true)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		fetch:          fetch,
		interval:       cfg.Interval,
		tickTimeout:    cfg.TickTimeout,
		maxConcurrency: cfg.MaxConcurrency,
		enabled:        cfg.Enabled,
		visibility:     cfg.Visibility,
		logger:         cfg.Logger.With("component", "live_poller"),
		now:            cfg.Now,
		newTicker:      cfg.NewTicker,
		ctx:            ctx,
		cancel:         cancel,
		subs:           NewSubscriptionSet(),
		records:        make(map[string]Record),
		visible:        cfg.Visibility.Visible(),
		connected:      true,
		observers:      make(map[int]func(map[string]Record)),
	}
	p.stopVisibility = cfg.Visibility.Subscribe(p.setVisible)
	return p
}

func (p *Poller) Subscribe(id string) {
	p.SubscribeToAll([]string{id})
}

func (p *Poller) SubscribeToAll(ids []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	wasEmpty := p.subs.Len() == 0
	for _, id := range ids {
		if id != "" {
			p.subs.Add(id)
		}
	}
	if wasEmpty && p.subs.Len() > 0 {
		p.startLocked()
	}
}

func (p *Poller) Unsubscribe(id string) {
	p.mu.Lock()
	if !p.subs.Remove(id) {
		p.mu.Unlock()
		return
	}
	delete(p.records, id)
	if p.subs.Len() == 0 {
		p.stopLocked()
	}
	snapshot, observers := p.publishLocked()
	p.mu.Unlock()

	notify(observers, snapshot)
}

// UnsubscribeAll empties the set and drops every record.
func (p *Poller) UnsubscribeAll() {
	p.mu.Lock()
	p.subs.Clear()
	clear(p.records)
	p.stopLocked()
	snapshot, observers := p.publishLocked()
	p.mu.Unlock()

	notify(observers, snapshot)
}

func (p *Poller) Subscriptions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subs.IDs()
}

func (p *Poller) Snapshot() map[string]Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyRecords(p.records)
}

func (p *Poller) Get(id string) (Record, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.records[id]
	return r, ok
}

func (p *Poller) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *Poller) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.closed || p.subs.Len() == 0:
		return StateIdle
	case !p.visible:
		return StateSuspended
	default:
		return StatePolling
	}
}

// OnUpdate registers fn to receive a copy of the record map after every change.
// fn runs on the poller's goroutine and must not block.
func (p *Poller) OnUpdate(fn func(map[string]Record)) (remove func()) {
	p.mu.Lock()
	id := p.nextObs
	p.nextObs++
	p.observers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.observers, id)
		p.mu.Unlock()
	}
}

// Close stops the ticker and waits for an in-flight tick to finish.
func (p *Poller) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.stopLocked()
	p.mu.Unlock()

	p.stopVisibility()
	p.cancel()
	p.wg.Wait()
}

func (p *Poller) setVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.visible == visible {
		return
	}
	p.visible = visible
	if !visible {
		p.stopLocked()
		p.logger.Debug("live polling suspended", "subscriptions", p.subs.Len())
		return
	}
	if p.subs.Len() > 0 {
		p.startLocked()
	}
}

// startLocked fires an immediate tick and starts the ticker. Callers hold p.mu.
func (p *Poller) startLocked() {
	if p.stop != nil || !p.visible || p.closed {
		return
	}
	stop := make(chan struct{})
	p.stop = stop
	ticker := p.newTicker(p.interval)

	p.wg.Add(1)
	go p.loop(ticker, stop)
}

func (p *Poller) stopLocked() {
	if p.stop == nil {
		return
	}
	close(p.stop)
	p.stop = nil
}

func (p *Poller) loop(ticker Ticker, stop <-chan struct{}) {
	defer p.wg.Done()
	defer ticker.Stop()

	p.launchTick()
	for {
		select {
		case <-stop:
			return
		case <-p.ctx.Done():
			return
		case <-ticker.C():
			p.launchTick()
		}
	}
}

// launchTick starts a tick unless the previous one is still running, in which case
// this interval is skipped rather than queued.
func (p *Poller) launchTick() {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("live tick skipped, previous tick still in flight")
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)
		p.tick()
	}()
}

func (p *Poller) tick() {
	if p.enabled != nil && !p.enabled() {
		return
	}

	ids := p.Subscriptions()
	if len(ids) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.tickTimeout)
	defer cancel()

	results, err := p.fetchAll(ctx, ids)
	if p.ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	for _, rec := range results {
		// dropped when unsubscribed while the tick was in flight
		if p.subs.Contains(rec.FixtureID) {
			p.records[rec.FixtureID] = rec
		}
	}
	if err != nil {
		p.connected = false
		p.lastErr = apierr.Message(err)
	} else {
		p.connected = true
		p.lastErr = ""
	}
	snapshot, observers := p.publishLocked()
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("live tick failed", "fixtures", len(ids), "error", err)
	}
	notify(observers, snapshot)
}

// fetchAll refreshes ids concurrently. Per-fixture failures, including fetches cut off by
// the tick deadline, are logged and left out; only a recovered panic is returned.
func (p *Poller) fetchAll(ctx context.Context, ids []string) ([]Record, error) {
	var (
		results []Record
		err     error
		catcher panics.Catcher
	)

	catcher.Try(func() {
		workers := pool.NewWithResults[fetchOutcome]().
			WithContext(ctx).
			WithMaxGoroutines(min(p.maxConcurrency, len(ids)))
		for _, id := range ids {
			workers.Go(func(ctx context.Context) (fetchOutcome, error) {
				rec, fetchErr := p.fetch(ctx, id)
				if fetchErr != nil {
					if p.ctx.Err() == nil {
						p.logger.Warn("live fixture refresh failed", "fixture_id", id, "error", fetchErr)
					}
					return fetchOutcome{}, nil
				}
				if rec.FixtureID == "" {
					rec.FixtureID = id
				}
				if rec.LastUpdated.IsZero() {
					rec.LastUpdated = p.now().UTC()
				}
				return fetchOutcome{record: rec, ok: true}, nil
			})
		}
		outcomes, _ := workers.Wait()
		for _, o := range outcomes {
			if o.ok {
				results = append(results, o.record)
			}
		}
	})

	if recovered := catcher.Recovered(); recovered != nil {
		err = errors.Wrap(recovered.AsError(), "live tick panicked")
		results = nil
	}
	return results, err
}

type fetchOutcome struct {
	record Record
	ok     bool
}

func (p *Poller) publishLocked() (map[string]Record, []func(map[string]Record)) {
	if len(p.observers) == 0 {
		return nil, nil
	}
	observers := make([]func(map[string]Record), 0, len(p.observers))
	for _, fn := range p.observers {
		observers = append(observers, fn)
	}
	return copyRecords(p.records), observers
}

func notify(observers []func(map[string]Record), snapshot map[string]Record) {
	for _, fn := range observers {
		fn(snapshot)
	}
}

func copyRecords(in map[string]Record) map[string]Record {
	out := make(map[string]Record, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type timeTicker struct {
	t *time.Ticker
}

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }
