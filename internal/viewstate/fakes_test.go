package viewstate

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/domain/insight"
	"github.com/riskibarqy/matchcenter/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchcenter/internal/domain/matchstats"
	"github.com/riskibarqy/matchcenter/internal/domain/playerstats"
	"github.com/riskibarqy/matchcenter/internal/domain/team"
	"github.com/riskibarqy/matchcenter/internal/live"
	"github.com/riskibarqy/matchcenter/internal/usecase"
)

var testNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

type fakeService struct {
	mu sync.Mutex

	fixtures     func(fixture.Filters) (usecase.PaginatedResult[fixture.Fixture], error)
	fixtureByID  func(string) (usecase.Result[fixture.Fixture], error)
	stats        func(string) (usecase.Result[matchstats.MatchStats], error)
	insights     func(string) (usecase.Result[[]insight.Insight], error)
	players      func(string) (usecase.Result[[]playerstats.PlayerStats], error)
	table        func(string) (usecase.Result[[]leaguestanding.Standing], error)
	search       func(context.Context, string) (usecase.Result[[]team.Team], error)
	calls        map[string]int
	filtersSeen  []fixture.Filters
	invalidated  int
	tableCleared []string
}

func newFakeService() *fakeService {
	return &fakeService{calls: map[string]int{}}
}

func (f *fakeService) count(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeService) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeService) GetFixtures(_ context.Context, filters fixture.Filters) (usecase.PaginatedResult[fixture.Fixture], error) {
	f.count("fixtures")
	f.mu.Lock()
	f.filtersSeen = append(f.filtersSeen, filters)
	f.mu.Unlock()
	return f.fixtures(filters)
}

func (f *fakeService) InvalidateFixtures() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	return 1
}

func (f *fakeService) GetFixtureByID(_ context.Context, id string) (usecase.Result[fixture.Fixture], error) {
	f.count("fixture")
	return f.fixtureByID(id)
}

func (f *fakeService) GetMatchStats(_ context.Context, id string) (usecase.Result[matchstats.MatchStats], error) {
	f.count("stats")
	return f.stats(id)
}

func (f *fakeService) GetAIInsights(_ context.Context, id string) (usecase.Result[[]insight.Insight], error) {
	f.count("insights")
	return f.insights(id)
}

func (f *fakeService) GetPlayerStats(_ context.Context, id string) (usecase.Result[[]playerstats.PlayerStats], error) {
	f.count("players")
	return f.players(id)
}

func (f *fakeService) GetLeagueTable(_ context.Context, competitionID string) (usecase.Result[[]leaguestanding.Standing], error) {
	f.count("table")
	return f.table(competitionID)
}

func (f *fakeService) InvalidateLeagueTable(competitionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tableCleared = append(f.tableCleared, competitionID)
	return true
}

func (f *fakeService) SearchTeams(ctx context.Context, query string) (usecase.Result[[]team.Team], error) {
	f.count("search")
	return f.search(ctx, query)
}

type fakeLive struct {
	mu        sync.Mutex
	subs      map[string]int
	records   map[string]live.Record
	observers map[int]func(map[string]live.Record)
	next      int
}

func newFakeLive() *fakeLive {
	return &fakeLive{
		subs:      map[string]int{},
		records:   map[string]live.Record{},
		observers: map[int]func(map[string]live.Record){},
	}
}

func (l *fakeLive) Subscribe(id string) {
	l.mu.Lock()
	l.subs[id]++
	l.mu.Unlock()
}

func (l *fakeLive) Unsubscribe(id string) {
	l.mu.Lock()
	delete(l.subs, id)
	l.mu.Unlock()
}

func (l *fakeLive) Snapshot() map[string]live.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]live.Record, len(l.records))
	for k, v := range l.records {
		out[k] = v
	}
	return out
}

func (l *fakeLive) OnUpdate(fn func(map[string]live.Record)) func() {
	l.mu.Lock()
	id := l.next
	l.next++
	l.observers[id] = fn
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.observers, id)
		l.mu.Unlock()
	}
}

func (l *fakeLive) Publish(rec live.Record) {
	l.mu.Lock()
	l.records[rec.FixtureID] = rec
	observers := make([]func(map[string]live.Record), 0, len(l.observers))
	for _, fn := range l.observers {
		observers = append(observers, fn)
	}
	l.mu.Unlock()

	snap := l.Snapshot()
	for _, fn := range observers {
		fn(snap)
	}
}

func (l *fakeLive) Subscribed() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.subs))
	for id := range l.subs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (l *fakeLive) Observers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.observers)
}

func intPtr(v int) *int { return &v }

func makeFixture(id, status, home, away string) fixture.Fixture {
	return fixture.Fixture{
		ID:       id,
		HomeTeam: team.Team{ID: home, Name: home},
		AwayTeam: team.Team{ID: away, Name: away},
		DateTime: testNow,
		Status:   status,
	}
}

func paginated(items []fixture.Fixture, page, limit, total int) usecase.PaginatedResult[fixture.Fixture] {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return usecase.PaginatedResult[fixture.Fixture]{
		Data:    items,
		Success: true,
		Pagination: usecase.Pagination{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	}
}
