package viewstate

import (
	"context"
	"sync"

	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/domain/preference"
	"github.com/riskibarqy/matchcenter/internal/live"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
	"github.com/riskibarqy/matchcenter/internal/usecase"
)

type FixturesState struct {
	Fixtures   []fixture.Fixture  `json:"fixtures"`
	Loading    bool               `json:"loading"`
	Error      string             `json:"error,omitempty"`
	Filters    fixture.Filters    `json:"filters"`
	Pagination usecase.Pagination `json:"pagination"`
	HasMore    bool               `json:"hasMore"`
}

type FixturesOptions struct {
	Store  preference.Store
	Live   LiveFeed
	Logger *logging.Logger
}

// Fixtures is the paginated fixture list with persisted filters and live score merging.
type Fixtures struct {
	svc    FixturesService
	store  preference.Store
	live   LiveFeed
	logger *logging.Logger

	mu         sync.Mutex
	state      FixturesState
	generation uint64
	subscribed map[string]struct{}
	stopLive   func()
}

func defaultFixtureFilters() fixture.Filters {
	return fixture.Filters{Page: fixture.DefaultPage, Limit: fixture.DefaultLimit}
}

func NewFixtures(ctx context.Context, svc FixturesService, opts FixturesOptions) *Fixtures {
	h := &Fixtures{
		svc:        svc,
		store:      opts.Store,
		live:       opts.Live,
		logger:     orDefault(opts.Logger),
		subscribed: make(map[string]struct{}),
	}

	filters := defaultFixtureFilters()
	if loadPreference(ctx, h.store, h.logger, preference.KeyFixtureFilters, &filters) {
		filters = filters.WithDefaults()
	}
	h.state.Filters = filters

	if h.live != nil {
		h.stopLive = h.live.OnUpdate(h.ApplyLive)
	}
	return h
}

func (h *Fixtures) State() FixturesState {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.state
	out.Fixtures = append([]fixture.Fixture(nil), h.state.Fixtures...)
	return out
}

// Load replaces the list with the first page for the current filters.
func (h *Fixtures) Load(ctx context.Context) {
	h.mu.Lock()
	h.generation++
	gen := h.generation
	filters := h.state.Filters
	filters.Page = fixture.DefaultPage
	h.state.Loading = true
	h.state.Error = ""
	h.mu.Unlock()

	res, err := h.svc.GetFixtures(ctx, filters)

	h.mu.Lock()
	if gen != h.generation {
		h.mu.Unlock()
		return
	}
	h.state.Loading = false
	if err != nil {
		h.state.Error = errorMessage(err)
		h.mu.Unlock()
		return
	}
	h.state.Filters.Page = filters.Page
	h.state.Fixtures = h.mergeLive(res.Data)
	h.state.Pagination = res.Pagination
	h.state.HasMore = res.Pagination.HasNext
	h.mu.Unlock()

	h.syncLive()
}

func (h *Fixtures) Refetch(ctx context.Context) {
	h.Load(ctx)
}

// SetFilters merges patch into the filters, resets to page 1, persists and reloads.
func (h *Fixtures) SetFilters(ctx context.Context, patch fixture.Filters) {
	h.mu.Lock()
	h.state.Filters = h.state.Filters.Merge(patch)
	h.state.Filters.Page = fixture.DefaultPage
	filters := h.state.Filters
	h.mu.Unlock()

	savePreference(ctx, h.store, h.logger, preference.KeyFixtureFilters, filters)
	h.Load(ctx)
}

func (h *Fixtures) ClearFilters(ctx context.Context) {
	h.mu.Lock()
	h.state.Filters = defaultFixtureFilters()
	h.mu.Unlock()

	savePreference(ctx, h.store, h.logger, preference.KeyFixtureFilters, defaultFixtureFilters())
	h.Load(ctx)
}

// Refresh drops every cached fixture listing before reloading.
func (h *Fixtures) Refresh(ctx context.Context) {
	h.svc.InvalidateFixtures()
	h.Load(ctx)
}

// LoadMore appends the next page. It does nothing while loading or on the last page.
func (h *Fixtures) LoadMore(ctx context.Context) {
	h.mu.Lock()
	if h.state.Loading || !h.state.HasMore {
		h.mu.Unlock()
		return
	}
	h.generation++
	gen := h.generation
	filters := h.state.Filters
	filters.Page++
	h.state.Loading = true
	h.state.Error = ""
	h.mu.Unlock()

	res, err := h.svc.GetFixtures(ctx, filters)

	h.mu.Lock()
	if gen != h.generation {
		h.mu.Unlock()
		return
	}
	h.state.Loading = false
	if err != nil {
		h.state.Error = errorMessage(err)
		h.mu.Unlock()
		return
	}
	h.state.Filters.Page = filters.Page
	h.state.Fixtures = append(h.state.Fixtures, h.mergeLive(res.Data)...)
	h.state.Pagination = res.Pagination
	h.state.HasMore = res.Pagination.HasNext
	h.mu.Unlock()

	h.syncLive()
}

// ApplyLive overlays live records onto the matching fixtures. Fixtures missing from
// records are left as they are.
func (h *Fixtures) ApplyLive(records map[string]live.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, f := range h.state.Fixtures {
		if rec, ok := records[f.ID]; ok {
			h.state.Fixtures[i] = rec.Apply(f)
		}
	}
}

// Close releases every live subscription this list holds.
func (h *Fixtures) Close() {
	if h.live == nil {
		return
	}
	h.mu.Lock()
	ids := make([]string, 0, len(h.subscribed))
	for id := range h.subscribed {
		ids = append(ids, id)
	}
	clear(h.subscribed)
	stop := h.stopLive
	h.stopLive = nil
	h.mu.Unlock()

	if stop != nil {
		stop()
	}
	for _, id := range ids {
		h.live.Unsubscribe(id)
	}
}

func (h *Fixtures) mergeLive(items []fixture.Fixture) []fixture.Fixture {
	out := append([]fixture.Fixture(nil), items...)
	if h.live == nil {
		return out
	}
	records := h.live.Snapshot()
	for i, f := range out {
		if rec, ok := records[f.ID]; ok {
			out[i] = rec.Apply(f)
		}
	}
	return out
}

// syncLive subscribes to fixtures that are live and drops those that no longer are.
func (h *Fixtures) syncLive() {
	if h.live == nil {
		return
	}

	h.mu.Lock()
	liveIDs := make(map[string]struct{})
	for _, f := range h.state.Fixtures {
		if f.IsLive() {
			liveIDs[f.ID] = struct{}{}
		}
	}
	var add, remove []string
	for id := range liveIDs {
		if _, ok := h.subscribed[id]; !ok {
			h.subscribed[id] = struct{}{}
			add = append(add, id)
		}
	}
	for id := range h.subscribed {
		if _, ok := liveIDs[id]; !ok {
			delete(h.subscribed, id)
			remove = append(remove, id)
		}
	}
	h.mu.Unlock()

	for _, id := range add {
		h.live.Subscribe(id)
	}
	for _, id := range remove {
		h.live.Unsubscribe(id)
	}
}
