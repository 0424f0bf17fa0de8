package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/usecase"
	"github.com/riskibarqy/matchcenter/internal/viewstate"
)

type fixtureListDTO struct {
	Items      []fixture.Fixture  `json:"items"`
	Pagination usecase.Pagination `json:"pagination"`
	Timestamp  time.Time          `json:"timestamp"`
}

// parseFixtureFilters reads page, limit, sortBy, sortOrder, status, competition, team,
// dateFrom and dateTo from the query string. Dates are RFC 3339 or YYYY-MM-DD.
func parseFixtureFilters(r *http.Request) (fixture.Filters, error) {
	q := r.URL.Query()
	var (
		filters fixture.Filters
		err     error
	)
	if filters.Page, err = parsePositiveInt(q.Get("page"), "page"); err != nil {
		return fixture.Filters{}, err
	}
	if filters.Limit, err = parsePositiveInt(q.Get("limit"), "limit"); err != nil {
		return fixture.Filters{}, err
	}
	if filters.DateFrom, err = parseDate(q.Get("dateFrom"), "dateFrom", false); err != nil {
		return fixture.Filters{}, err
	}
	if filters.DateTo, err = parseDate(q.Get("dateTo"), "dateTo", true); err != nil {
		return fixture.Filters{}, err
	}
	filters.SortBy = strings.TrimSpace(q.Get("sortBy"))
	filters.SortOrder = strings.ToLower(strings.TrimSpace(q.Get("sortOrder")))
	filters.Status = strings.ToLower(strings.TrimSpace(q.Get("status")))
	filters.Competition = strings.TrimSpace(q.Get("competition"))
	filters.Team = strings.TrimSpace(q.Get("team"))
	return filters, nil
}

func parsePositiveInt(raw, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive integer", usecase.ErrInvalidInput, field)
	}
	return v, nil
}

// parseDate accepts a bare day; endOfDay moves it to the last second of that day.
func parseDate(raw, field string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC 3339 or YYYY-MM-DD", usecase.ErrInvalidInput, field)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	filters, err := parseFixtureFilters(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, filters); err != nil {
		writeError(ctx, w, err)
		return
	}
	if parseBool(r.URL.Query().Get("refresh")) {
		dropped := h.football.InvalidateFixtures()
		h.logger.DebugContext(ctx, "fixture cache invalidated", "entries", dropped)
	}

	res, err := h.football.GetFixtures(ctx, filters)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures failed", "filters", filters.Params(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureListDTO{
		Items:      h.withLiveScores(res.Data),
		Pagination: res.Pagination,
		Timestamp:  res.Timestamp,
	})
}

func (h *Handler) GetFixture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFixture")
	defer span.End()

	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))
	res, err := h.football.GetFixtureByID(ctx, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "get fixture failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := h.withLiveScores([]fixture.Fixture{res.Data})
	writeSuccess(ctx, w, http.StatusOK, items[0])
}

func (h *Handler) GetFixtureStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFixtureStats")
	defer span.End()

	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))
	res, err := h.football.GetMatchStats(ctx, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match stats failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, res.Data)
}

func (h *Handler) GetFixtureInsights(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFixtureInsights")
	defer span.End()

	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))
	res, err := h.football.GetAIInsights(ctx, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "get insights failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, res.Data)
}

func (h *Handler) GetFixturePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFixturePlayers")
	defer span.End()

	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))
	res, err := h.football.GetPlayerStats(ctx, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player stats failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, res.Data)
}

// GetFixtureDetail loads every section of a match in one call. Without the fixture itself
// the call fails; a failing stats, insights or players section is reported in errors while
// the others are still returned.
func (h *Handler) GetFixtureDetail(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFixtureDetail")
	defer span.End()

	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))
	if fixtureID == "" {
		writeError(ctx, w, fmt.Errorf("%w: fixture id is required", usecase.ErrInvalidInput))
		return
	}

	detail := viewstate.NewMatchDetail(h.football, fixtureID, viewstate.MatchDetailOptions{Logger: h.logger})
	defer detail.Close()

	detail.Load(ctx)
	if parseBool(r.URL.Query().Get("players")) {
		detail.LoadPlayerStats(ctx)
	}

	state := detail.State()
	if state.Fixture == nil {
		err := detail.Err(viewstate.SectionFixture)
		if err == nil {
			err = fmt.Errorf("%w: fixture=%s", usecase.ErrNotFound, fixtureID)
		}
		h.logger.WarnContext(ctx, "get fixture detail failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}
	merged := h.withLiveScores([]fixture.Fixture{*state.Fixture})
	state.Fixture = &merged[0]
	writeSuccess(ctx, w, http.StatusOK, state)
}

// withLiveScores overlays the latest polled record onto each fixture.
func (h *Handler) withLiveScores(items []fixture.Fixture) []fixture.Fixture {
	out := make([]fixture.Fixture, len(items))
	copy(out, items)
	if h.live == nil {
		return out
	}
	records := h.live.Snapshot()
	if len(records) == 0 {
		return out
	}
	for i, f := range out {
		if rec, ok := records[f.ID]; ok {
			out[i] = rec.Apply(f)
		}
	}
	return out
}
