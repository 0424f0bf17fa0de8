// Package viewstate holds the per-screen state containers that sit on top of the
// football service and the live poller. Each container is safe for concurrent use,
// never holds its lock across a service call and reports failures as display
// messages rather than errors.
package viewstate

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/matchcenter/internal/domain/competition"
	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/domain/insight"
	"github.com/riskibarqy/matchcenter/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchcenter/internal/domain/matchstats"
	"github.com/riskibarqy/matchcenter/internal/domain/playerstats"
	"github.com/riskibarqy/matchcenter/internal/domain/preference"
	"github.com/riskibarqy/matchcenter/internal/domain/team"
	"github.com/riskibarqy/matchcenter/internal/live"
	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
	"github.com/riskibarqy/matchcenter/internal/usecase"
)

type FixturesService interface {
	GetFixtures(ctx context.Context, filters fixture.Filters) (usecase.PaginatedResult[fixture.Fixture], error)
	InvalidateFixtures() int
}

type MatchDetailService interface {
	GetFixtureByID(ctx context.Context, id string) (usecase.Result[fixture.Fixture], error)
	GetMatchStats(ctx context.Context, fixtureID string) (usecase.Result[matchstats.MatchStats], error)
	GetAIInsights(ctx context.Context, fixtureID string) (usecase.Result[[]insight.Insight], error)
	GetPlayerStats(ctx context.Context, fixtureID string) (usecase.Result[[]playerstats.PlayerStats], error)
}

type LeagueTableService interface {
	GetLeagueTable(ctx context.Context, competitionID string) (usecase.Result[[]leaguestanding.Standing], error)
	InvalidateLeagueTable(competitionID string) bool
}

type InsightsService interface {
	GetAIInsights(ctx context.Context, fixtureID string) (usecase.Result[[]insight.Insight], error)
}

type TeamSearchService interface {
	SearchTeams(ctx context.Context, query string) (usecase.Result[[]team.Team], error)
}

// LiveFeed is the part of live.Poller the containers use.
type LiveFeed interface {
	Subscribe(id string)
	Unsubscribe(id string)
	Snapshot() map[string]live.Record
	OnUpdate(fn func(map[string]live.Record)) (remove func())
}

// errorMessage turns err into display text. Cancellation is not an error for the viewer.
func errorMessage(err error) string {
	if err == nil || apierr.IsCanceled(err) {
		return ""
	}
	return apierr.Message(err)
}

func loadPreference[T any](ctx context.Context, store preference.Store, logger *logging.Logger, key string, dst *T) bool {
	if store == nil {
		return false
	}
	raw, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, preference.ErrNotFound) {
			logger.WarnContext(ctx, "load preference failed", "key", key, "error", err)
		}
		return false
	}
	if err := sonic.Unmarshal(raw, dst); err != nil {
		logger.WarnContext(ctx, "decode preference failed", "key", key, "error", err)
		return false
	}
	return true
}

func savePreference(ctx context.Context, store preference.Store, logger *logging.Logger, key string, value any) {
	if store == nil {
		return
	}
	raw, err := sonic.Marshal(value)
	if err != nil {
		logger.WarnContext(ctx, "encode preference failed", "key", key, "error", err)
		return
	}
	if err := store.Put(ctx, key, raw); err != nil {
		logger.WarnContext(ctx, "save preference failed", "key", key, "error", err)
	}
}

func normalizeCompetition(id string) string {
	if id == "" {
		return competition.DefaultID
	}
	return id
}

func orDefault(logger *logging.Logger) *logging.Logger {
	if logger == nil {
		return logging.Default()
	}
	return logger
}
