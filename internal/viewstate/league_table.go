package viewstate

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchcenter/internal/domain/preference"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
)

const DefaultTableRefreshInterval = 30 * time.Minute

type LeagueTableState struct {
	Competition string                    `json:"competition"`
	Standings   []leaguestanding.Standing `json:"standings"`
	Loading     bool                      `json:"loading"`
	Error       string                    `json:"error,omitempty"`
	LastUpdated time.Time                 `json:"lastUpdated"`
}

type LeagueTableOptions struct {
	Store  preference.Store
	Logger *logging.Logger
	Now    func() time.Time
}

type LeagueTable struct {
	svc    LeagueTableService
	store  preference.Store
	logger *logging.Logger
	now    func() time.Time

	mu         sync.Mutex
	state      LeagueTableState
	generation uint64
}

func NewLeagueTable(ctx context.Context, svc LeagueTableService, opts LeagueTableOptions) *LeagueTable {
	h := &LeagueTable{
		svc:    svc,
		store:  opts.Store,
		logger: orDefault(opts.Logger),
		now:    opts.Now,
	}
	if h.now == nil {
		h.now = time.Now
	}

	var selected string
	loadPreference(ctx, h.store, h.logger, preference.KeySelectedCompetition, &selected)
	h.state.Competition = normalizeCompetition(selected)
	return h
}

func (h *LeagueTable) State() LeagueTableState {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.state
	out.Standings = append([]leaguestanding.Standing(nil), h.state.Standings...)
	return out
}

func (h *LeagueTable) LastUpdated() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.LastUpdated
}

func (h *LeagueTable) Load(ctx context.Context) {
	h.mu.Lock()
	h.generation++
	gen := h.generation
	competitionID := h.state.Competition
	h.state.Loading = true
	h.state.Error = ""
	h.mu.Unlock()

	res, err := h.svc.GetLeagueTable(ctx, competitionID)

	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.generation {
		return
	}
	h.state.Loading = false
	if err != nil {
		h.state.Error = errorMessage(err)
		return
	}
	h.state.Standings = append([]leaguestanding.Standing(nil), res.Data...)
	h.state.LastUpdated = h.now().UTC()
}

func (h *LeagueTable) Refetch(ctx context.Context) {
	h.Load(ctx)
}

// SetCompetition switches the table, remembers the choice and loads it.
func (h *LeagueTable) SetCompetition(ctx context.Context, competitionID string) {
	competitionID = normalizeCompetition(competitionID)
	h.mu.Lock()
	h.state.Competition = competitionID
	h.state.Standings = nil
	h.mu.Unlock()

	savePreference(ctx, h.store, h.logger, preference.KeySelectedCompetition, competitionID)
	h.Load(ctx)
}

// Refresh drops the cached table for the current competition and reloads it.
func (h *LeagueTable) Refresh(ctx context.Context) {
	h.mu.Lock()
	competitionID := h.state.Competition
	h.mu.Unlock()

	h.svc.InvalidateLeagueTable(competitionID)
	h.Load(ctx)
}

// StartAutoRefresh refetches every interval until ctx is done.
func (h *LeagueTable) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTableRefreshInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Refetch(ctx)
			}
		}
	}()
}
