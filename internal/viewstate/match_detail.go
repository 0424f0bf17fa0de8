package viewstate

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/domain/insight"
	"github.com/riskibarqy/matchcenter/internal/domain/matchstats"
	"github.com/riskibarqy/matchcenter/internal/domain/playerstats"
	"github.com/riskibarqy/matchcenter/internal/live"
	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
)

type Section string

const (
	SectionFixture  Section = "fixture"
	SectionStats    Section = "stats"
	SectionInsights Section = "insights"
	SectionPlayers  Section = "players"
)

type SectionFlags struct {
	Fixture  bool `json:"fixture"`
	Stats    bool `json:"stats"`
	Insights bool `json:"insights"`
	Players  bool `json:"players"`
}

type SectionErrors struct {
	Fixture  string `json:"fixture,omitempty"`
	Stats    string `json:"stats,omitempty"`
	Insights string `json:"insights,omitempty"`
	Players  string `json:"players,omitempty"`
}

type MatchDetailState struct {
	FixtureID string                    `json:"fixtureId"`
	Fixture   *fixture.Fixture          `json:"fixture"`
	Stats     *matchstats.MatchStats    `json:"stats"`
	Insights  []insight.Insight         `json:"insights"`
	Players   []playerstats.PlayerStats `json:"players"`
	Loading   SectionFlags              `json:"loading"`
	Errors    SectionErrors             `json:"errors"`
}

type MatchDetailOptions struct {
	Live   LiveFeed
	Logger *logging.Logger
}

// MatchDetail loads the sections of one match independently so a failing
// section never hides the others.
type MatchDetail struct {
	svc    MatchDetailService
	live   LiveFeed
	logger *logging.Logger

	mu         sync.Mutex
	state      MatchDetailState
	errs       map[Section]error
	subscribed bool
	stopLive   func()
}

func NewMatchDetail(svc MatchDetailService, fixtureID string, opts MatchDetailOptions) *MatchDetail {
	h := &MatchDetail{
		svc:    svc,
		live:   opts.Live,
		logger: orDefault(opts.Logger),
		state:  MatchDetailState{FixtureID: fixtureID},
		errs:   make(map[Section]error),
	}
	if h.live != nil {
		h.stopLive = h.live.OnUpdate(h.applyLive)
	}
	return h
}

func (h *MatchDetail) State() MatchDetailState {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.state
	if h.state.Fixture != nil {
		f := *h.state.Fixture
		out.Fixture = &f
	}
	if h.state.Stats != nil {
		s := *h.state.Stats
		out.Stats = &s
	}
	out.Insights = append([]insight.Insight(nil), h.state.Insights...)
	out.Players = append([]playerstats.PlayerStats(nil), h.state.Players...)
	return out
}

// Err returns the error behind the section's last failed load, or nil.
func (h *MatchDetail) Err(section Section) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errs[section]
}

// Load fetches fixture, stats and insights concurrently. Player stats stay lazy.
func (h *MatchDetail) Load(ctx context.Context) {
	h.load(ctx, SectionFixture, SectionStats, SectionInsights)
}

// LoadPlayerStats fetches the players section once, on demand.
func (h *MatchDetail) LoadPlayerStats(ctx context.Context) {
	h.mu.Lock()
	skip := len(h.state.Players) > 0 || h.state.Loading.Players
	h.mu.Unlock()
	if skip {
		return
	}
	h.load(ctx, SectionPlayers)
}

func (h *MatchDetail) Refetch(ctx context.Context, section Section) {
	h.load(ctx, section)
}

// RefetchAll reloads every section; players only when they were loaded before.
func (h *MatchDetail) RefetchAll(ctx context.Context) {
	sections := []Section{SectionFixture, SectionStats, SectionInsights}
	h.mu.Lock()
	if len(h.state.Players) > 0 {
		sections = append(sections, SectionPlayers)
	}
	h.mu.Unlock()
	h.load(ctx, sections...)
}

func (h *MatchDetail) Close() {
	h.mu.Lock()
	subscribed := h.subscribed
	h.subscribed = false
	stop := h.stopLive
	h.stopLive = nil
	id := h.state.FixtureID
	h.mu.Unlock()

	if stop != nil {
		stop()
	}
	if subscribed && h.live != nil {
		h.live.Unsubscribe(id)
	}
}

func (h *MatchDetail) load(ctx context.Context, sections ...Section) {
	var g errgroup.Group
	for _, section := range sections {
		g.Go(func() error {
			h.loadSection(ctx, section)
			return nil
		})
	}
	_ = g.Wait()
}

func (h *MatchDetail) loadSection(ctx context.Context, section Section) {
	id := h.state.FixtureID
	h.begin(section)

	var err error
	switch section {
	case SectionFixture:
		res, fetchErr := h.svc.GetFixtureByID(ctx, id)
		if err = fetchErr; err == nil {
			f := res.Data
			if h.live != nil {
				if rec, ok := h.live.Snapshot()[f.ID]; ok {
					f = rec.Apply(f)
				}
			}
			h.mu.Lock()
			h.state.Fixture = &f
			h.mu.Unlock()
			h.syncLive(f)
		}
	case SectionStats:
		res, fetchErr := h.svc.GetMatchStats(ctx, id)
		if err = fetchErr; err == nil {
			stats := res.Data
			h.mu.Lock()
			h.state.Stats = &stats
			h.mu.Unlock()
		}
	case SectionInsights:
		res, fetchErr := h.svc.GetAIInsights(ctx, id)
		if err = fetchErr; err == nil {
			h.mu.Lock()
			h.state.Insights = append([]insight.Insight(nil), res.Data...)
			h.mu.Unlock()
		}
	case SectionPlayers:
		res, fetchErr := h.svc.GetPlayerStats(ctx, id)
		if err = fetchErr; err == nil {
			h.mu.Lock()
			h.state.Players = append([]playerstats.PlayerStats(nil), res.Data...)
			h.mu.Unlock()
		}
	}

	if err != nil && !apierr.IsCanceled(err) {
		h.logger.DebugContext(ctx, "match detail section failed", "fixture_id", id, "section", section, "error", err)
	}
	h.mu.Lock()
	h.errs[section] = err
	h.mu.Unlock()
	h.finish(section, errorMessage(err))
}

func (h *MatchDetail) begin(section Section) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch section {
	case SectionFixture:
		h.state.Loading.Fixture = true
		h.state.Errors.Fixture = ""
	case SectionStats:
		h.state.Loading.Stats = true
		h.state.Errors.Stats = ""
	case SectionInsights:
		h.state.Loading.Insights = true
		h.state.Errors.Insights = ""
	case SectionPlayers:
		h.state.Loading.Players = true
		h.state.Errors.Players = ""
	}
}

func (h *MatchDetail) finish(section Section, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch section {
	case SectionFixture:
		h.state.Loading.Fixture, h.state.Errors.Fixture = false, message
	case SectionStats:
		h.state.Loading.Stats, h.state.Errors.Stats = false, message
	case SectionInsights:
		h.state.Loading.Insights, h.state.Errors.Insights = false, message
	case SectionPlayers:
		h.state.Loading.Players, h.state.Errors.Players = false, message
	}
}

func (h *MatchDetail) syncLive(f fixture.Fixture) {
	if h.live == nil {
		return
	}
	h.mu.Lock()
	subscribe := f.IsLive() && !h.subscribed
	unsubscribe := !f.IsLive() && h.subscribed
	h.subscribed = f.IsLive()
	h.mu.Unlock()

	if subscribe {
		h.live.Subscribe(f.ID)
	}
	if unsubscribe {
		h.live.Unsubscribe(f.ID)
	}
}

func (h *MatchDetail) applyLive(records map[string]live.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.Fixture == nil {
		return
	}
	if rec, ok := records[h.state.Fixture.ID]; ok {
		f := rec.Apply(*h.state.Fixture)
		h.state.Fixture = &f
	}
}
