package viewstate

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/matchcenter/internal/domain/insight"
	"github.com/riskibarqy/matchcenter/internal/domain/preference"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
)

const defaultInsightWorkers = 4

type InsightFilters struct {
	Confidence string `json:"confidence,omitempty"`
	Market     string `json:"market,omitempty"`
	Team       string `json:"team,omitempty"`
}

func (f InsightFilters) Merge(patch InsightFilters) InsightFilters {
	if patch.Confidence != "" {
		f.Confidence = patch.Confidence
	}
	if patch.Market != "" {
		f.Market = patch.Market
	}
	if patch.Team != "" {
		f.Team = patch.Team
	}
	return f
}

func (f InsightFilters) Matches(item insight.Insight) bool {
	if f.Confidence != "" && !strings.EqualFold(item.Confidence, f.Confidence) {
		return false
	}
	if f.Market != "" && !strings.EqualFold(item.Market, f.Market) {
		return false
	}
	return item.Mentions(f.Team)
}

type ConfidenceStats struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type InsightsState struct {
	FixtureIDs []string                     `json:"fixtureIds"`
	ByFixture  map[string][]insight.Insight `json:"byFixture"`
	Loading    bool                         `json:"loading"`
	Error      string                       `json:"error,omitempty"`
	Filters    InsightFilters               `json:"filters"`
}

type InsightsOptions struct {
	Store   preference.Store
	Logger  *logging.Logger
	Workers int
}

// Insights gathers the AI insights of several fixtures on a bounded worker pool.
type Insights struct {
	svc    InsightsService
	store  preference.Store
	logger *logging.Logger
	pool   *ants.Pool

	mu    sync.Mutex
	state InsightsState
}

func NewInsights(ctx context.Context, svc InsightsService, opts InsightsOptions) (*Insights, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultInsightWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "create insights worker pool")
	}

	h := &Insights{
		svc:    svc,
		store:  opts.Store,
		logger: orDefault(opts.Logger),
		pool:   pool,
		state:  InsightsState{ByFixture: map[string][]insight.Insight{}},
	}
	loadPreference(ctx, h.store, h.logger, preference.KeyInsightFilters, &h.state.Filters)
	return h, nil
}

func (h *Insights) Close() {
	h.pool.Release()
}

func (h *Insights) State() InsightsState {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.state
	out.FixtureIDs = append([]string(nil), h.state.FixtureIDs...)
	out.ByFixture = make(map[string][]insight.Insight, len(h.state.ByFixture))
	for id, items := range h.state.ByFixture {
		out.ByFixture[id] = append([]insight.Insight(nil), items...)
	}
	return out
}

// Load fetches insights for every fixture. A fixture whose fetch fails gets an empty list.
func (h *Insights) Load(ctx context.Context, fixtureIDs []string) {
	ids := append([]string(nil), fixtureIDs...)
	h.mu.Lock()
	h.state.FixtureIDs = ids
	h.state.Loading = true
	h.state.Error = ""
	h.mu.Unlock()

	var (
		wg      sync.WaitGroup
		resMu   sync.Mutex
		results = make(map[string][]insight.Insight, len(ids))
	)
	for _, id := range ids {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			items := []insight.Insight{}
			res, err := h.svc.GetAIInsights(ctx, id)
			if err != nil {
				h.logger.DebugContext(ctx, "load insights failed", "fixture_id", id, "error", err)
			} else {
				items = append(items, res.Data...)
			}
			resMu.Lock()
			results[id] = items
			resMu.Unlock()
		}
		if err := h.pool.Submit(task); err != nil {
			wg.Done()
			h.logger.WarnContext(ctx, "submit insights task failed", "fixture_id", id, "error", err)
			resMu.Lock()
			results[id] = []insight.Insight{}
			resMu.Unlock()
		}
	}
	wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Loading = false
	h.state.ByFixture = results
	if err := ctx.Err(); err != nil {
		h.state.Error = errorMessage(err)
	}
}

func (h *Insights) SetFilters(ctx context.Context, patch InsightFilters) {
	h.mu.Lock()
	h.state.Filters = h.state.Filters.Merge(patch)
	filters := h.state.Filters
	h.mu.Unlock()

	savePreference(ctx, h.store, h.logger, preference.KeyInsightFilters, filters)
}

func (h *Insights) ClearFilters(ctx context.Context) {
	h.mu.Lock()
	h.state.Filters = InsightFilters{}
	h.mu.Unlock()

	savePreference(ctx, h.store, h.logger, preference.KeyInsightFilters, InsightFilters{})
}

// Filtered returns every insight passing the current filters, grouped by fixture in load order.
func (h *Insights) Filtered() []insight.Insight {
	h.mu.Lock()
	filters := h.state.Filters
	h.mu.Unlock()
	return h.collect(filters.Matches)
}

func (h *Insights) ByConfidence(level string) []insight.Insight {
	return h.collect(func(item insight.Insight) bool { return strings.EqualFold(item.Confidence, level) })
}

func (h *Insights) ByMarket(market string) []insight.Insight {
	return h.collect(func(item insight.Insight) bool { return strings.EqualFold(item.Market, market) })
}

func (h *Insights) Total() int {
	return len(h.collect(func(insight.Insight) bool { return true }))
}

func (h *Insights) ConfidenceStats() ConfidenceStats {
	var stats ConfidenceStats
	for _, item := range h.collect(func(insight.Insight) bool { return true }) {
		switch strings.ToLower(item.Confidence) {
		case insight.ConfidenceHigh:
			stats.High++
		case insight.ConfidenceMedium:
			stats.Medium++
		case insight.ConfidenceLow:
			stats.Low++
		}
	}
	return stats
}

func (h *Insights) collect(keep func(insight.Insight) bool) []insight.Insight {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := append([]string(nil), h.state.FixtureIDs...)
	if len(ids) == 0 {
		for id := range h.state.ByFixture {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}

	out := make([]insight.Insight, 0)
	for _, id := range ids {
		for _, item := range h.state.ByFixture[id] {
			if keep(item) {
				out = append(out, item)
			}
		}
	}
	return out
}
