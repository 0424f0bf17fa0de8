package viewstate

import (
	"context"
	"testing"

	"github.com/riskibarqy/matchcenter/internal/domain/insight"
	"github.com/riskibarqy/matchcenter/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
	"github.com/riskibarqy/matchcenter/internal/usecase"
)

func insightService() *fakeService {
	svc := newFakeService()
	svc.insights = func(id string) (usecase.Result[[]insight.Insight], error) {
		switch id {
		case "f1":
			return usecase.Result[[]insight.Insight]{Success: true, Data: []insight.Insight{
				{ID: "f1-a", Confidence: insight.ConfidenceHigh, Market: "Match Result", SupportingData: []string{"Arsenal unbeaten at home"}},
				{ID: "f1-b", Confidence: insight.ConfidenceLow, Market: "Both Teams to Score"},
			}}, nil
		case "f2":
			return usecase.Result[[]insight.Insight]{Success: true, Data: []insight.Insight{
				{ID: "f2-a", Confidence: "Medium", Market: "match result", SupportingData: []string{"Chelsea scored in 9 straight"}},
			}}, nil
		default:
			return usecase.Result[[]insight.Insight]{}, apierr.NewAPIError(500, "", "", nil)
		}
	}
	return svc
}

func TestInsights_LoadGathersAllFixtures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h, err := NewInsights(ctx, insightService(), InsightsOptions{Workers: 2})
	if err != nil {
		t.Fatalf("new insights: %v", err)
	}
	defer h.Close()

	h.Load(ctx, []string{"f1", "broken", "f2"})

	state := h.State()
	if state.Loading || state.Error != "" {
		t.Fatalf("unexpected state: %+v", state)
	}
	if got, ok := state.ByFixture["broken"]; !ok || len(got) != 0 {
		t.Fatalf("expected failed fixture to get an empty list, got %v (present=%v)", got, ok)
	}
	if h.Total() != 3 {
		t.Fatalf("expected 3 insights, got %d", h.Total())
	}

	all := h.Filtered()
	if all[0].ID != "f1-a" || all[2].ID != "f2-a" {
		t.Fatalf("expected load order to be kept, got %+v", all)
	}

	stats := h.ConfidenceStats()
	if stats != (ConfidenceStats{High: 1, Medium: 1, Low: 1}) {
		t.Fatalf("unexpected confidence stats: %+v", stats)
	}
	if got := h.ByMarket("Match Result"); len(got) != 2 {
		t.Fatalf("expected market match to ignore case, got %d", len(got))
	}
	if got := h.ByConfidence(insight.ConfidenceHigh); len(got) != 1 || got[0].ID != "f1-a" {
		t.Fatalf("unexpected high confidence insights: %+v", got)
	}
}

func TestInsights_FiltersArePersisted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewPreferenceStore()
	svc := insightService()

	h, err := NewInsights(ctx, svc, InsightsOptions{Store: store})
	if err != nil {
		t.Fatalf("new insights: %v", err)
	}
	defer h.Close()
	h.Load(ctx, []string{"f1", "f2"})

	h.SetFilters(ctx, InsightFilters{Market: "match result"})
	h.SetFilters(ctx, InsightFilters{Team: "chelsea"})
	if got := h.Filtered(); len(got) != 1 || got[0].ID != "f2-a" {
		t.Fatalf("unexpected filtered insights: %+v", got)
	}

	restored, err := NewInsights(ctx, svc, InsightsOptions{Store: store})
	if err != nil {
		t.Fatalf("new insights: %v", err)
	}
	defer restored.Close()
	if got := restored.State().Filters; got != (InsightFilters{Market: "match result", Team: "chelsea"}) {
		t.Fatalf("unexpected restored filters: %+v", got)
	}

	h.ClearFilters(ctx)
	if got := h.Filtered(); len(got) != 3 {
		t.Fatalf("expected all insights after clearing filters, got %d", len(got))
	}
}
