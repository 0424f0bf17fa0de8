package viewstate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/domain/insight"
	"github.com/riskibarqy/matchcenter/internal/domain/matchstats"
	"github.com/riskibarqy/matchcenter/internal/domain/playerstats"
	"github.com/riskibarqy/matchcenter/internal/live"
	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
	"github.com/riskibarqy/matchcenter/internal/usecase"
)

func detailService(status string) *fakeService {
	svc := newFakeService()
	svc.fixtureByID = func(id string) (usecase.Result[fixture.Fixture], error) {
		return usecase.Result[fixture.Fixture]{Data: makeFixture(id, status, "a", "b"), Success: true}, nil
	}
	svc.stats = func(string) (usecase.Result[matchstats.MatchStats], error) {
		return usecase.Result[matchstats.MatchStats]{Success: true}, nil
	}
	svc.insights = func(string) (usecase.Result[[]insight.Insight], error) {
		return usecase.Result[[]insight.Insight]{Data: []insight.Insight{{ID: "i1"}}, Success: true}, nil
	}
	svc.players = func(string) (usecase.Result[[]playerstats.PlayerStats], error) {
		return usecase.Result[[]playerstats.PlayerStats]{Data: []playerstats.PlayerStats{{ID: "p1"}}, Success: true}, nil
	}
	return svc
}

func TestMatchDetail_PartialFailureKeepsOtherSections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := detailService(fixture.StatusScheduled)
	svc.stats = func(string) (usecase.Result[matchstats.MatchStats], error) {
		return usecase.Result[matchstats.MatchStats]{}, apierr.NewAPIError(404, "", "", nil)
	}

	h := NewMatchDetail(svc, "fx-1", MatchDetailOptions{})
	h.Load(ctx)

	state := h.State()
	if state.Fixture == nil || state.Fixture.ID != "fx-1" {
		t.Fatalf("expected fixture section loaded, got %+v", state.Fixture)
	}
	if len(state.Insights) != 1 {
		t.Fatalf("expected insights section loaded, got %+v", state.Insights)
	}
	if state.Stats != nil || state.Errors.Stats != "The requested data was not found." {
		t.Fatalf("unexpected stats section: stats=%v err=%q", state.Stats, state.Errors.Stats)
	}
	if state.Errors.Fixture != "" || state.Errors.Insights != "" {
		t.Fatalf("unexpected errors on healthy sections: %+v", state.Errors)
	}
	if state.Loading != (SectionFlags{}) {
		t.Fatalf("expected all loading flags cleared, got %+v", state.Loading)
	}
	if svc.Calls("players") != 0 {
		t.Fatalf("player stats must load lazily")
	}

	svc.stats = func(string) (usecase.Result[matchstats.MatchStats], error) {
		return usecase.Result[matchstats.MatchStats]{Data: matchstats.MatchStats{}, Success: true}, nil
	}
	h.Refetch(ctx, SectionStats)
	if state := h.State(); state.Stats == nil || state.Errors.Stats != "" {
		t.Fatalf("expected stats section recovered, got %+v", state.Errors)
	}
	if svc.Calls("fixture") != 1 {
		t.Fatalf("refetching one section must not reload others")
	}
}

func TestMatchDetail_ErrKeepsSectionCause(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := detailService(fixture.StatusScheduled)
	missing := apierr.NewAPIError(404, "NOT_FOUND", "fixture missing", nil)
	svc.fixtureByID = func(string) (usecase.Result[fixture.Fixture], error) {
		return usecase.Result[fixture.Fixture]{}, missing
	}

	h := NewMatchDetail(svc, "fx-404", MatchDetailOptions{})
	h.Load(ctx)

	if err := h.Err(SectionFixture); !errors.Is(err, missing) {
		t.Fatalf("expected fixture cause kept, got %v", err)
	}
	if err := h.Err(SectionStats); err != nil {
		t.Fatalf("healthy section reported %v", err)
	}

	svc.fixtureByID = func(id string) (usecase.Result[fixture.Fixture], error) {
		return usecase.Result[fixture.Fixture]{Data: makeFixture(id, fixture.StatusScheduled, "arsenal", "chelsea"), Success: true}, nil
	}
	h.Refetch(ctx, SectionFixture)
	if err := h.Err(SectionFixture); err != nil {
		t.Fatalf("expected cause cleared after a good refetch, got %v", err)
	}
}

func TestMatchDetail_PlayerStatsLoadOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := detailService(fixture.StatusFinished)
	h := NewMatchDetail(svc, "fx-1", MatchDetailOptions{})

	h.RefetchAll(ctx)
	if svc.Calls("players") != 0 {
		t.Fatalf("refetch all must skip players that were never loaded")
	}

	h.LoadPlayerStats(ctx)
	h.LoadPlayerStats(ctx)
	if svc.Calls("players") != 1 {
		t.Fatalf("expected a single player stats fetch, got %d", svc.Calls("players"))
	}

	h.RefetchAll(ctx)
	if svc.Calls("players") != 2 || svc.Calls("fixture") != 2 {
		t.Fatalf("expected refetch all to include loaded players, players=%d fixture=%d", svc.Calls("players"), svc.Calls("fixture"))
	}
}

func TestMatchDetail_SectionsLoadConcurrently(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	gate := make(chan struct{})
	track := func() {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		if n == 3 {
			close(gate)
		}
		<-gate
		inFlight.Add(-1)
	}

	svc := detailService(fixture.StatusScheduled)
	byID, stats, insights := svc.fixtureByID, svc.stats, svc.insights
	svc.fixtureByID = func(id string) (usecase.Result[fixture.Fixture], error) { track(); return byID(id) }
	svc.stats = func(id string) (usecase.Result[matchstats.MatchStats], error) { track(); return stats(id) }
	svc.insights = func(id string) (usecase.Result[[]insight.Insight], error) { track(); return insights(id) }

	NewMatchDetail(svc, "fx-1", MatchDetailOptions{}).Load(context.Background())
	if peak.Load() != 3 {
		t.Fatalf("expected three sections in flight together, peak=%d", peak.Load())
	}
}

func TestMatchDetail_LiveFixtureSubscribesAndMerges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	feed := newFakeLive()
	svc := detailService(fixture.StatusLive)

	h := NewMatchDetail(svc, "fx-1", MatchDetailOptions{Live: feed})
	h.Load(ctx)
	if got := feed.Subscribed(); len(got) != 1 || got[0] != "fx-1" {
		t.Fatalf("expected live fixture subscription, got %v", got)
	}

	feed.Publish(live.Record{FixtureID: "fx-1", Status: fixture.StatusLive, HomeScore: intPtr(2), AwayScore: intPtr(2), Minute: intPtr(88)})
	state := h.State()
	if *state.Fixture.HomeScore != 2 || *state.Fixture.Minute != 88 {
		t.Fatalf("expected live data merged, got %+v", state.Fixture)
	}

	h.Close()
	if len(feed.Subscribed()) != 0 || feed.Observers() != 0 {
		t.Fatalf("expected close to release the live feed")
	}
}
