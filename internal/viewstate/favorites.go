package viewstate

import (
	"context"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/domain/preference"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
)

// TeamRecord summarises a team's finished fixtures.
type TeamRecord struct {
	TeamID  string  `json:"teamId"`
	Played  int     `json:"played"`
	Wins    int     `json:"wins"`
	Draws   int     `json:"draws"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winRate"`
}

// Favorites is the persisted set of favourite team IDs.
type Favorites struct {
	store  preference.Store
	logger *logging.Logger

	mu  sync.Mutex
	ids []string
}

func NewFavorites(ctx context.Context, store preference.Store, logger *logging.Logger) *Favorites {
	h := &Favorites{store: store, logger: orDefault(logger)}
	loadPreference(ctx, h.store, h.logger, preference.KeyFavoriteTeams, &h.ids)
	return h
}

// Toggle flips teamID and reports whether it is a favourite afterwards.
func (h *Favorites) Toggle(ctx context.Context, teamID string) bool {
	h.mu.Lock()
	idx := slices.Index(h.ids, teamID)
	if idx >= 0 {
		h.ids = slices.Delete(h.ids, idx, idx+1)
	} else {
		h.ids = append(h.ids, teamID)
	}
	ids := append([]string{}, h.ids...)
	h.mu.Unlock()

	savePreference(ctx, h.store, h.logger, preference.KeyFavoriteTeams, ids)
	return idx < 0
}

func (h *Favorites) IsFavorite(teamID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Contains(h.ids, teamID)
}

func (h *Favorites) IDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.ids...)
}

// FavoriteFixtures keeps the fixtures that involve at least one favourite team.
func (h *Favorites) FavoriteFixtures(fixtures []fixture.Fixture) []fixture.Fixture {
	ids := h.IDs()
	out := make([]fixture.Fixture, 0)
	for _, f := range fixtures {
		if slices.Contains(ids, f.HomeTeam.ID) || slices.Contains(ids, f.AwayTeam.ID) {
			out = append(out, f)
		}
	}
	return out
}

// Upcoming returns favourite fixtures scheduled within the next days, earliest first.
func (h *Favorites) Upcoming(fixtures []fixture.Fixture, now time.Time, days int) []fixture.Fixture {
	until := now.AddDate(0, 0, days)
	out := make([]fixture.Fixture, 0)
	for _, f := range h.FavoriteFixtures(fixtures) {
		if f.Status != fixture.StatusScheduled {
			continue
		}
		if f.DateTime.Before(now) || f.DateTime.After(until) {
			continue
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out
}

// RecordFor counts wins, draws and losses of teamID over finished fixtures with a score.
func RecordFor(fixtures []fixture.Fixture, teamID string) TeamRecord {
	rec := TeamRecord{TeamID: teamID}
	for _, f := range fixtures {
		if !f.Involves(teamID) || !fixture.IsFinishedStatus(f.Status) || f.HomeScore == nil || f.AwayScore == nil {
			continue
		}
		own, other := *f.HomeScore, *f.AwayScore
		if f.AwayTeam.ID == teamID {
			own, other = other, own
		}
		rec.Played++
		switch {
		case own > other:
			rec.Wins++
		case own == other:
			rec.Draws++
		default:
			rec.Losses++
		}
	}
	if rec.Played > 0 {
		rec.WinRate = math.Round(float64(rec.Wins)/float64(rec.Played)*1000) / 10
	}
	return rec
}
