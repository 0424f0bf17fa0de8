package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/matchcenter/internal/domain/insight"
	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
	"github.com/riskibarqy/matchcenter/internal/viewstate"
)

const insightWorkers = 4

type insightsDTO struct {
	Items     []insight.Insight            `json:"items"`
	Total     int                          `json:"total"`
	Stats     viewstate.ConfidenceStats    `json:"stats"`
	ByFixture map[string][]insight.Insight `json:"byFixture"`
	Filters   viewstate.InsightFilters     `json:"filters"`
}

type insightsQuery struct {
	FixtureIDs []string `validate:"required,min=1,max=50,dive,required"`
	Confidence string   `validate:"omitempty,oneof=high medium low"`
}

func splitIDs(raw string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ListInsights gathers the insights of several fixtures in one call. A fixture whose
// insights fail to load contributes an empty list.
func (h *Handler) ListInsights(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListInsights")
	defer span.End()

	q := r.URL.Query()
	query := insightsQuery{
		FixtureIDs: splitIDs(q.Get("fixtures")),
		Confidence: strings.ToLower(strings.TrimSpace(q.Get("confidence"))),
	}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	insights, err := viewstate.NewInsights(ctx, h.football, viewstate.InsightsOptions{
		Logger:  h.logger,
		Workers: insightWorkers,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "create insights loader failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	defer insights.Close()

	insights.Load(ctx, query.FixtureIDs)
	insights.SetFilters(ctx, viewstate.InsightFilters{
		Confidence: query.Confidence,
		Market:     strings.TrimSpace(q.Get("market")),
		Team:       strings.TrimSpace(q.Get("team")),
	})

	if ctx.Err() != nil {
		writeError(ctx, w, apierr.FromContext(ctx, 0))
		return
	}
	state := insights.State()
	items := insights.Filtered()
	writeSuccess(ctx, w, http.StatusOK, insightsDTO{
		Items:     items,
		Total:     insights.Total(),
		Stats:     insights.ConfidenceStats(),
		ByFixture: state.ByFixture,
		Filters:   state.Filters,
	})
}
