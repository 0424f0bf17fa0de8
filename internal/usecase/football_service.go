package usecase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/matchcenter/internal/config"
	"github.com/riskibarqy/matchcenter/internal/domain/competition"
	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/domain/insight"
	"github.com/riskibarqy/matchcenter/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchcenter/internal/domain/matchstats"
	"github.com/riskibarqy/matchcenter/internal/domain/playerstats"
	"github.com/riskibarqy/matchcenter/internal/domain/team"
	"github.com/riskibarqy/matchcenter/internal/platform/apiclient"
	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
)

const (
	pathFixtures     = "/fixtures"
	pathTeams        = "/teams"
	pathCompetitions = "/competitions"
	pathSearch       = "/search"
)

type FootballServiceOptions struct {
	UseMockData bool
	// TTL resolves the cache lifetime per resource; nil leaves it to the client default.
	TTL    func(config.Resource) time.Duration
	Now    func() time.Time
	Logger *logging.Logger
}

// FootballService is the typed facade over the data API, or over generated
// data when mock mode is on. Client errors are returned unchanged.
type FootballService struct {
	client    Requester
	mock      MockSource
	useMock   bool
	ttl       func(config.Resource) time.Duration
	now       func() time.Time
	logger    *logging.Logger
	validator *validator.Validate
}

func NewFootballService(client Requester, mock MockSource, opts FootballServiceOptions) *FootballService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.TTL == nil {
		opts.TTL = func(config.Resource) time.Duration { return 0 }
	}
	return &FootballService{
		client:    client,
		mock:      mock,
		useMock:   opts.UseMockData,
		ttl:       opts.TTL,
		now:       opts.Now,
		logger:    opts.Logger,
		validator: validator.New(),
	}
}

func (s *FootballService) UsesMockData() bool {
	return s.useMock
}

func (s *FootballService) GetFixtures(ctx context.Context, filters fixture.Filters) (PaginatedResult[fixture.Fixture], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.GetFixtures")
	defer span.End()

	filters.Status = strings.ToLower(strings.TrimSpace(filters.Status))
	if err := s.validator.StructCtx(ctx, filters); err != nil {
		return PaginatedResult[fixture.Fixture]{}, apierr.NewValidationError("filters", err.Error())
	}
	filters = filters.WithDefaults()

	if s.useMock {
		mock, err := s.mockSource()
		if err != nil {
			return PaginatedResult[fixture.Fixture]{}, err
		}
		items, err := mock.Fixtures(ctx, filters)
		if err != nil {
			return PaginatedResult[fixture.Fixture]{}, err
		}
		return PaginatedResult[fixture.Fixture]{
			Data:       pageOf(items, filters.Page, filters.Limit),
			Success:    true,
			Timestamp:  s.now().UTC(),
			Pagination: newPagination(filters.Page, filters.Limit, len(items)),
		}, nil
	}

	resource := config.ResourceFixtures
	if filters.Status == fixture.StatusLive {
		resource = config.ResourceLiveFixtures
	}
	res, err := fetch[[]fixture.Fixture](ctx, s, pathFixtures, filters.Params(), resource)
	if err != nil {
		return PaginatedResult[fixture.Fixture]{}, err
	}
	return PaginatedResult[fixture.Fixture]{
		Data:       res.Data,
		Success:    true,
		Timestamp:  res.Timestamp,
		Pagination: newPagination(filters.Page, filters.Limit, len(res.Data)),
	}, nil
}

func (s *FootballService) GetFixtureByID(ctx context.Context, id string) (Result[fixture.Fixture], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.GetFixtureByID")
	defer span.End()

	return s.getFixture(ctx, id, config.ResourceFixtures)
}

// GetLiveFixture is GetFixtureByID on the live TTL tier, used by the poller.
func (s *FootballService) GetLiveFixture(ctx context.Context, id string) (Result[fixture.Fixture], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.GetLiveFixture")
	defer span.End()

	return s.getFixture(ctx, id, config.ResourceLiveFixtures)
}

func (s *FootballService) getFixture(ctx context.Context, id string, resource config.Resource) (Result[fixture.Fixture], error) {
	id, err := requireID("fixture id", id)
	if err != nil {
		return Result[fixture.Fixture]{}, err
	}

	if s.useMock {
		mock, err := s.mockSource()
		if err != nil {
			return Result[fixture.Fixture]{}, err
		}
		item, exists, err := mock.FixtureByID(ctx, id)
		if err != nil {
			return Result[fixture.Fixture]{}, err
		}
		if !exists {
			return Result[fixture.Fixture]{}, fmt.Errorf("%w: fixture=%s", ErrNotFound, id)
		}
		return mockResult(s, item), nil
	}

	return fetch[fixture.Fixture](ctx, s, fixturePath(id, ""), nil, resource)
}

func (s *FootballService) GetMatchStats(ctx context.Context, fixtureID string) (Result[matchstats.MatchStats], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.GetMatchStats")
	defer span.End()

	fixtureID, err := requireID("fixture id", fixtureID)
	if err != nil {
		return Result[matchstats.MatchStats]{}, err
	}

	if s.useMock {
		return mockCall(ctx, s, func(ctx context.Context, mock MockSource) (matchstats.MatchStats, error) {
			return mock.MatchStats(ctx, fixtureID)
		})
	}
	return fetch[matchstats.MatchStats](ctx, s, fixturePath(fixtureID, "stats"), nil, config.ResourceMatchStats)
}

// GetTeams forwards params as query filters; mock mode ignores them.
func (s *FootballService) GetTeams(ctx context.Context, params map[string]string) (Result[[]team.Team], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.GetTeams")
	defer span.End()

	if s.useMock {
		return mockCall(ctx, s, func(ctx context.Context, mock MockSource) ([]team.Team, error) {
			return mock.Teams(ctx)
		})
	}
	return fetch[[]team.Team](ctx, s, pathTeams, params, config.ResourceTeams)
}

func (s *FootballService) GetTeamByID(ctx context.Context, id string) (Result[team.Team], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.GetTeamByID")
	defer span.End()

	id, err := requireID("team id", id)
	if err != nil {
		return Result[team.Team]{}, err
	}

	if s.useMock {
		mock, err := s.mockSource()
		if err != nil {
			return Result[team.Team]{}, err
		}
		item, exists, err := mock.TeamByID(ctx, id)
		if err != nil {
			return Result[team.Team]{}, err
		}
		if !exists {
			return Result[team.Team]{}, fmt.Errorf("%w: team=%s", ErrNotFound, id)
		}
		return mockResult(s, item), nil
	}
	return fetch[team.Team](ctx, s, pathTeams+"/"+url.PathEscape(id), nil, config.ResourceTeams)
}

// GetLeagueTable defaults to the Premier League when competitionID is blank.
func (s *FootballService) GetLeagueTable(ctx context.Context, competitionID string) (Result[[]leaguestanding.Standing], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.GetLeagueTable")
	defer span.End()

	competitionID = normalizeCompetition(competitionID)
	if s.useMock {
		return mockCall(ctx, s, func(ctx context.Context, mock MockSource) ([]leaguestanding.Standing, error) {
			return mock.LeagueTable(ctx, competitionID)
		})
	}
	return fetch[[]leaguestanding.Standing](ctx, s, leagueTablePath(competitionID), nil, config.ResourceLeagueTable)
}

func (s *FootballService) GetAIInsights(ctx context.Context, fixtureID string) (Result[[]insight.Insight], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.GetAIInsights")
	defer span.End()

	fixtureID, err := requireID("fixture id", fixtureID)
	if err != nil {
		return Result[[]insight.Insight]{}, err
	}

	if s.useMock {
		return mockCall(ctx, s, func(ctx context.Context, mock MockSource) ([]insight.Insight, error) {
			return mock.Insights(ctx, fixtureID)
		})
	}
	return fetch[[]insight.Insight](ctx, s, fixturePath(fixtureID, "insights"), nil, config.ResourceAIInsights)
}

func (s *FootballService) GetPlayerStats(ctx context.Context, fixtureID string) (Result[[]playerstats.PlayerStats], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.GetPlayerStats")
	defer span.End()

	fixtureID, err := requireID("fixture id", fixtureID)
	if err != nil {
		return Result[[]playerstats.PlayerStats]{}, err
	}

	if s.useMock {
		return mockCall(ctx, s, func(ctx context.Context, mock MockSource) ([]playerstats.PlayerStats, error) {
			return mock.PlayerStats(ctx, fixtureID)
		})
	}
	return fetch[[]playerstats.PlayerStats](ctx, s, fixturePath(fixtureID, "players"), nil, config.ResourceMatchStats)
}

// GetCompetitions shares the teams TTL since competitions rarely change.
func (s *FootballService) GetCompetitions(ctx context.Context) (Result[[]competition.Competition], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.GetCompetitions")
	defer span.End()

	if s.useMock {
		return mockCall(ctx, s, func(ctx context.Context, mock MockSource) ([]competition.Competition, error) {
			return mock.Competitions(ctx)
		})
	}
	return fetch[[]competition.Competition](ctx, s, pathCompetitions, nil, config.ResourceTeams)
}

// SearchTeams returns an empty success for a blank query without touching the network.
func (s *FootballService) SearchTeams(ctx context.Context, query string) (Result[[]team.Team], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.SearchTeams")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return Result[[]team.Team]{Data: []team.Team{}, Success: true, Timestamp: s.now().UTC()}, nil
	}

	if s.useMock {
		return mockCall(ctx, s, func(ctx context.Context, mock MockSource) ([]team.Team, error) {
			return mock.SearchTeams(ctx, query)
		})
	}
	return fetch[[]team.Team](ctx, s, pathSearch, map[string]string{"q": query, "type": "teams"}, config.ResourceTeams)
}

// InvalidateFixtures drops every cached fixture listing and returns how many entries went away.
func (s *FootballService) InvalidateFixtures() int {
	if s.client == nil {
		return 0
	}
	return s.client.ClearCachePrefix(FixturesCachePrefix())
}

func (s *FootballService) InvalidateLeagueTable(competitionID string) bool {
	if s.client == nil {
		return false
	}
	return s.client.ClearCache(LeagueTableCacheKey(competitionID))
}

// FixturesCachePrefix matches the cache keys of all fixture listings but not single fixtures.
func FixturesCachePrefix() string {
	return apiclient.CachePrefix(http.MethodGet, pathFixtures)
}

func LeagueTableCacheKey(competitionID string) string {
	return apiclient.CacheKey(http.MethodGet, leagueTablePath(normalizeCompetition(competitionID)), nil, nil)
}

func fetch[T any](ctx context.Context, s *FootballService, path string, params map[string]string, resource config.Resource) (Result[T], error) {
	if s.client == nil {
		return Result[T]{}, fmt.Errorf("%w: api client is not configured", ErrDependencyUnavailable)
	}
	resp, err := s.client.Get(ctx, path, params, apiclient.Options{CacheTTL: s.ttl(resource)})
	if err != nil {
		return Result[T]{}, err
	}
	data, err := apiclient.Decode[T](resp)
	if err != nil {
		s.logger.WarnContext(ctx, "decode api payload failed", "path", path, "error", err)
		return Result[T]{}, err
	}
	return Result[T]{Data: data, Success: true, Timestamp: resp.Timestamp}, nil
}

func mockCall[T any](ctx context.Context, s *FootballService, fn func(context.Context, MockSource) (T, error)) (Result[T], error) {
	mock, err := s.mockSource()
	if err != nil {
		return Result[T]{}, err
	}
	data, err := fn(ctx, mock)
	if err != nil {
		return Result[T]{}, err
	}
	return mockResult(s, data), nil
}

func mockResult[T any](s *FootballService, data T) Result[T] {
	return Result[T]{Data: data, Success: true, Timestamp: s.now().UTC()}
}

func (s *FootballService) mockSource() (MockSource, error) {
	if s.mock == nil {
		return nil, fmt.Errorf("%w: mock data source is not configured", ErrDependencyUnavailable)
	}
	return s.mock, nil
}

func requireID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apierr.NewValidationError(field, field+" is required")
	}
	return id, nil
}

func normalizeCompetition(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return competition.DefaultID
	}
	return id
}

func fixturePath(id, sub string) string {
	path := pathFixtures + "/" + url.PathEscape(id)
	if sub != "" {
		path += "/" + sub
	}
	return path
}

func leagueTablePath(competitionID string) string {
	return pathCompetitions + "/" + url.PathEscape(competitionID) + "/standings"
}
