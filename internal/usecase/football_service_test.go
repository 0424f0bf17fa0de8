package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/matchcenter/internal/config"
	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchcenter/internal/domain/team"
	usecasemock "github.com/riskibarqy/matchcenter/internal/mocks/usecase"
	"github.com/riskibarqy/matchcenter/internal/platform/apiclient"
	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
)

var testNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func testTTLs(resource config.Resource) time.Duration {
	return config.Defaults(config.EnvDev).TTLFor(resource)
}

func newNetworkService(t *testing.T) (*FootballService, *usecasemock.Requester) {
	t.Helper()
	requester := usecasemock.NewRequester(t)
	svc := NewFootballService(requester, nil, FootballServiceOptions{
		TTL: testTTLs,
		Now: func() time.Time { return testNow },
	})
	return svc, requester
}

func newMockService(t *testing.T) (*FootballService, *usecasemock.MockSource) {
	t.Helper()
	source := usecasemock.NewMockSource(t)
	svc := NewFootballService(nil, source, FootballServiceOptions{
		UseMockData: true,
		TTL:         testTTLs,
		Now:         func() time.Time { return testNow },
	})
	return svc, source
}

func sampleFixtures(n int) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fixture.Fixture{
			ID:       "fixture-" + string(rune('a'+i)),
			HomeTeam: team.Team{ID: "arsenal", Name: "Arsenal"},
			AwayTeam: team.Team{ID: "chelsea", Name: "Chelsea"},
			DateTime: testNow.Add(time.Duration(i) * time.Hour),
			Status:   fixture.StatusLive,
		})
	}
	return out
}

func jsonResponse(t *testing.T, v any) apiclient.Response {
	t.Helper()
	raw, err := sonic.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return apiclient.Response{Data: raw, Success: true, Timestamp: testNow}
}

func TestFootballService_GetFixtures_LiveUsesLiveTTLAndPaginates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, requester := newNetworkService(t)

	requester.
		On("Get", ctx, "/fixtures",
			map[string]string{"page": "1", "limit": "2", "status": "live"},
			apiclient.Options{CacheTTL: 30 * time.Second}).
		Return(jsonResponse(t, sampleFixtures(3)), nil).
		Once()

	got, err := svc.GetFixtures(ctx, fixture.Filters{Limit: 2, Status: "LIVE"})
	if err != nil {
		t.Fatalf("get fixtures: %v", err)
	}
	if len(got.Data) != 3 {
		t.Fatalf("unexpected fixture count: %d", len(got.Data))
	}
	want := Pagination{Page: 1, Limit: 2, Total: 3, TotalPages: 2, HasNext: true, HasPrevious: false}
	if got.Pagination != want {
		t.Fatalf("unexpected pagination: got=%+v want=%+v", got.Pagination, want)
	}
	if !got.Success || !got.Timestamp.Equal(testNow) {
		t.Fatalf("unexpected envelope: success=%v ts=%s", got.Success, got.Timestamp)
	}
}

func TestFootballService_GetFixtures_DefaultsUseFixturesTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, requester := newNetworkService(t)

	requester.
		On("Get", ctx, "/fixtures", map[string]string{"page": "1", "limit": "10"}, apiclient.Options{CacheTTL: 5 * time.Minute}).
		Return(jsonResponse(t, []fixture.Fixture{}), nil).
		Once()

	got, err := svc.GetFixtures(ctx, fixture.Filters{})
	if err != nil {
		t.Fatalf("get fixtures: %v", err)
	}
	if got.Pagination.TotalPages != 0 || got.Pagination.HasNext || got.Pagination.HasPrevious {
		t.Fatalf("unexpected pagination for empty list: %+v", got.Pagination)
	}
}

func TestFootballService_GetFixtures_InvalidFiltersNeverReachNetwork(t *testing.T) {
	t.Parallel()

	svc, _ := newNetworkService(t)

	_, err := svc.GetFixtures(context.Background(), fixture.Filters{Status: "abandoned"})
	var valErr *apierr.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if apierr.IsRetryable(err) {
		t.Fatalf("validation errors must not be retryable")
	}
}

func TestFootballService_PassesClientErrorsThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, requester := newNetworkService(t)
	upstream := apierr.NewAPIError(404, "NOT_FOUND", "fixture missing", nil)

	requester.
		On("Get", ctx, "/fixtures/fx-404", map[string]string(nil), apiclient.Options{CacheTTL: 5 * time.Minute}).
		Return(apiclient.Response{}, upstream).
		Once()

	_, err := svc.GetFixtureByID(ctx, "fx-404")
	var apiErr *apierr.APIError
	if !errors.As(err, &apiErr) || apiErr != upstream {
		t.Fatalf("expected the client error unchanged, got %v", err)
	}
}

func TestFootballService_GetLeagueTable_DefaultCompetition(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, requester := newNetworkService(t)
	rows := []leaguestanding.Standing{{Position: 1, Team: team.Team{ID: "manchester-city"}, Points: 83}}

	requester.
		On("Get", ctx, "/competitions/premier-league/standings", map[string]string(nil), apiclient.Options{CacheTTL: 30 * time.Minute}).
		Return(jsonResponse(t, rows), nil).
		Once()

	got, err := svc.GetLeagueTable(ctx, "  ")
	if err != nil {
		t.Fatalf("get league table: %v", err)
	}
	if len(got.Data) != 1 || got.Data[0].Points != 83 {
		t.Fatalf("unexpected rows: %+v", got.Data)
	}
}

func TestFootballService_DecodeFailureIsValidationError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, requester := newNetworkService(t)

	requester.
		On("Get", ctx, "/teams", map[string]string(nil), mock.AnythingOfType("apiclient.Options")).
		Return(apiclient.Response{Data: []byte(`{"not":"a list"}`), Success: true}, nil).
		Once()

	_, err := svc.GetTeams(ctx, nil)
	var valErr *apierr.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFootballService_SearchTeams(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, requester := newNetworkService(t)

	empty, err := svc.SearchTeams(ctx, "   ")
	if err != nil || !empty.Success || len(empty.Data) != 0 {
		t.Fatalf("blank query: res=%+v err=%v", empty, err)
	}

	requester.
		On("Get", ctx, "/search", map[string]string{"q": "ars", "type": "teams"}, apiclient.Options{CacheTTL: time.Hour}).
		Return(jsonResponse(t, []team.Team{{ID: "arsenal", Name: "Arsenal"}}), nil).
		Once()

	got, err := svc.SearchTeams(ctx, " ars ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got.Data) != 1 || got.Data[0].ID != "arsenal" {
		t.Fatalf("unexpected search result: %+v", got.Data)
	}
}

func TestFootballService_MockMode_PaginatesFilteredList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, source := newMockService(t)

	source.
		On("Fixtures", ctx, fixture.Filters{Page: 3, Limit: 10, Status: fixture.StatusLive}).
		Return(sampleFixtures(25), nil).
		Once()

	got, err := svc.GetFixtures(ctx, fixture.Filters{Page: 3, Status: fixture.StatusLive})
	if err != nil {
		t.Fatalf("get fixtures: %v", err)
	}
	if len(got.Data) != 5 {
		t.Fatalf("expected last page of 5, got %d", len(got.Data))
	}
	want := Pagination{Page: 3, Limit: 10, Total: 25, TotalPages: 3, HasNext: false, HasPrevious: true}
	if got.Pagination != want {
		t.Fatalf("unexpected pagination: got=%+v want=%+v", got.Pagination, want)
	}
	if !got.Timestamp.Equal(testNow) {
		t.Fatalf("unexpected timestamp: %s", got.Timestamp)
	}
}

func TestFootballService_MockMode_MissingFixtureIsNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, source := newMockService(t)

	source.On("FixtureByID", ctx, "fixture-99").Return(fixture.Fixture{}, false, nil).Once()
	source.On("TeamByID", ctx, "nobody").Return(team.Team{}, false, nil).Once()

	if _, err := svc.GetFixtureByID(ctx, "fixture-99"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetTeamByID(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFootballService_MockModeWithoutSource(t *testing.T) {
	t.Parallel()

	svc := NewFootballService(nil, nil, FootballServiceOptions{UseMockData: true})
	if _, err := svc.GetTeams(context.Background(), nil); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestFootballService_Invalidate(t *testing.T) {
	t.Parallel()

	svc, requester := newNetworkService(t)
	requester.On("ClearCachePrefix", "GET:/fixtures:").Return(4).Once()
	requester.On("ClearCache", "GET:/competitions/fa-cup/standings:{}:{}").Return(true).Once()

	if removed := svc.InvalidateFixtures(); removed != 4 {
		t.Fatalf("unexpected removed count: %d", removed)
	}
	if !svc.InvalidateLeagueTable("fa-cup") {
		t.Fatalf("expected league table key to be cleared")
	}
}

func TestFootballService_GetLiveFixture_UsesLiveTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, requester := newNetworkService(t)

	requester.
		On("Get", ctx, "/fixtures/fx-1", map[string]string(nil), apiclient.Options{CacheTTL: 30 * time.Second}).
		Return(jsonResponse(t, sampleFixtures(1)[0]), nil).
		Once()

	got, err := svc.GetLiveFixture(ctx, "fx-1")
	if err != nil {
		t.Fatalf("get live fixture: %v", err)
	}
	if got.Data.Status != fixture.StatusLive {
		t.Fatalf("unexpected status: %s", got.Data.Status)
	}
}
