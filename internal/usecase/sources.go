package usecase

import (
	"context"

	"github.com/riskibarqy/matchcenter/internal/domain/competition"
	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/domain/insight"
	"github.com/riskibarqy/matchcenter/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchcenter/internal/domain/matchstats"
	"github.com/riskibarqy/matchcenter/internal/domain/playerstats"
	"github.com/riskibarqy/matchcenter/internal/domain/team"
	"github.com/riskibarqy/matchcenter/internal/platform/apiclient"
)

// Requester is the subset of the API client the service needs.
type Requester interface {
	Get(ctx context.Context, path string, params map[string]string, opts apiclient.Options) (apiclient.Response, error)
	ClearCache(key string) bool
	ClearCachePrefix(prefix string) int
}

// MockSource serves generated data with the same shapes as the API.
type MockSource interface {
	Fixtures(ctx context.Context, filters fixture.Filters) ([]fixture.Fixture, error)
	FixtureByID(ctx context.Context, id string) (fixture.Fixture, bool, error)
	MatchStats(ctx context.Context, fixtureID string) (matchstats.MatchStats, error)
	Teams(ctx context.Context) ([]team.Team, error)
	TeamByID(ctx context.Context, id string) (team.Team, bool, error)
	LeagueTable(ctx context.Context, competitionID string) ([]leaguestanding.Standing, error)
	Insights(ctx context.Context, fixtureID string) ([]insight.Insight, error)
	PlayerStats(ctx context.Context, fixtureID string) ([]playerstats.PlayerStats, error)
	Competitions(ctx context.Context) ([]competition.Competition, error)
	SearchTeams(ctx context.Context, query string) ([]team.Team, error)
}
