package viewstate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/team"
	"github.com/riskibarqy/matchcenter/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchcenter/internal/usecase"
)

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

type searchRecorder struct {
	mu      sync.Mutex
	queries []string
}

func (r *searchRecorder) record(q string) {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	r.mu.Unlock()
}

func (r *searchRecorder) Queries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

func searchService(rec *searchRecorder) *fakeService {
	svc := newFakeService()
	svc.search = func(_ context.Context, q string) (usecase.Result[[]team.Team], error) {
		rec.record(q)
		return usecase.Result[[]team.Team]{Data: []team.Team{{ID: strings.ToLower(q), Name: q}}, Success: true}, nil
	}
	return svc
}

func TestTeamSearch_DebounceCollapsesBurst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := &searchRecorder{}
	h := NewTeamSearch(ctx, searchService(rec), TeamSearchOptions{Debounce: 20 * time.Millisecond})
	defer h.Close()

	h.Search("ars")
	h.Search("arse")
	h.Search("  arsenal ")

	eventually(t, "search results", func() bool { return len(h.State().Results) == 1 })

	if got := rec.Queries(); len(got) != 1 || got[0] != "arsenal" {
		t.Fatalf("expected a single trimmed query, got %v", got)
	}
	state := h.State()
	if state.Query != "  arsenal " || state.Loading {
		t.Fatalf("unexpected state: %+v", state)
	}
	if len(state.History) != 1 || state.History[0] != "arsenal" {
		t.Fatalf("unexpected history: %v", state.History)
	}
}

func TestTeamSearch_BlankQueryClearsImmediately(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := &searchRecorder{}
	h := NewTeamSearch(ctx, searchService(rec), TeamSearchOptions{Debounce: 10 * time.Millisecond})
	defer h.Close()

	h.Search("chelsea")
	eventually(t, "search results", func() bool { return len(h.State().Results) == 1 })

	h.Search("   ")
	if state := h.State(); len(state.Results) != 0 || state.Loading {
		t.Fatalf("expected blank query to clear results, got %+v", state)
	}
	time.Sleep(30 * time.Millisecond)
	if got := rec.Queries(); len(got) != 1 {
		t.Fatalf("blank query must not hit the service, got %v", got)
	}
}

func TestTeamSearch_NewQueryCancelsInFlightRequest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	started := make(chan struct{}, 1)
	canceled := make(chan struct{}, 1)

	svc := newFakeService()
	svc.search = func(ctx context.Context, q string) (usecase.Result[[]team.Team], error) {
		if q == "slow" {
			started <- struct{}{}
			<-ctx.Done()
			canceled <- struct{}{}
			return usecase.Result[[]team.Team]{}, ctx.Err()
		}
		return usecase.Result[[]team.Team]{Data: []team.Team{{ID: q}}, Success: true}, nil
	}

	h := NewTeamSearch(ctx, svc, TeamSearchOptions{Debounce: time.Millisecond})
	defer h.Close()

	h.Search("slow")
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("slow search never started")
	}

	h.Search("fast")
	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatalf("in-flight search was not canceled")
	}

	eventually(t, "fast results", func() bool {
		s := h.State()
		return len(s.Results) == 1 && s.Results[0].ID == "fast"
	})
	if got := h.State().Error; got != "" {
		t.Fatalf("superseded search must not leave an error, got %q", got)
	}
}

func TestTeamSearch_SelectionIsDedupedAndPersisted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewPreferenceStore()
	svc := searchService(&searchRecorder{})

	h := NewTeamSearch(ctx, svc, TeamSearchOptions{Store: store})
	defer h.Close()

	h.SelectTeam(ctx, team.Team{ID: "ars", Name: "Arsenal"})
	h.SelectTeam(ctx, team.Team{ID: "ars", Name: "Arsenal"})
	h.SelectTeam(ctx, team.Team{ID: "che", Name: "Chelsea"})
	h.RemoveSelectedTeam(ctx, "ars")

	restored := NewTeamSearch(ctx, svc, TeamSearchOptions{Store: store})
	defer restored.Close()
	if got := restored.State().Selected; len(got) != 1 || got[0].ID != "che" {
		t.Fatalf("unexpected restored selection: %+v", got)
	}

	restored.ClearSelected(ctx)
	if got := restored.State().Selected; len(got) != 0 {
		t.Fatalf("expected empty selection, got %+v", got)
	}
}

func TestPushHistory(t *testing.T) {
	t.Parallel()

	var history []string
	for i := range 12 {
		history = pushHistory(history, fmt.Sprintf("q%d", i))
	}
	if len(history) != maxSearchHistory || history[0] != "q11" || history[9] != "q2" {
		t.Fatalf("unexpected capped history: %v", history)
	}

	history = pushHistory(history, "q5")
	if history[0] != "q5" || len(history) != maxSearchHistory {
		t.Fatalf("expected repeat to move to front, got %v", history)
	}
	for _, item := range history[1:] {
		if item == "q5" {
			t.Fatalf("duplicate left in history: %v", history)
		}
	}
}
