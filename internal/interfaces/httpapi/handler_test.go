package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/matchcenter/internal/config"
	"github.com/riskibarqy/matchcenter/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchcenter/internal/platform/cache"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
	"github.com/riskibarqy/matchcenter/internal/usecase"
	"github.com/riskibarqy/matchcenter/internal/viewstate"
)

var handlerNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

const testAdminToken = "s3cret"

type envelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       json.RawMessage  `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) (http.Handler, *memory.PreferenceStore) {
	t.Helper()

	now := func() time.Time { return handlerNow }
	source := memory.NewMockSource(memory.MockSourceOptions{Seed: 1, Now: now})
	football := usecase.NewFootballService(nil, source, usecase.FootballServiceOptions{
		UseMockData: true,
		Now:         now,
		Logger:      logging.NewNop(),
	})
	prefs := memory.NewPreferenceStore()
	favorites := viewstate.NewFavorites(context.Background(), prefs, logging.NewNop())

	h := NewHandler(football, nil, nil, nil, cache.NewManager(time.Minute), prefs, favorites,
		config.Defaults(config.EnvDev), logging.NewNop())
	h.now = now

	return NewRouter(h, logging.NewNop(), "matchcenter-test", false, []string{"*"}, testAdminToken), prefs
}

func do(t *testing.T, router http.Handler, method, target, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, target, err, rec.Body.String())
		}
	}
	return rec, env
}

func TestRouter_HealthzAndRequestID(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec, env := do(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || env.APIVersion != googleAPIVersion {
		t.Fatalf("unexpected healthz response: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Fatalf("expected generated request id")
	}

	rec, _ = do(t, router, http.MethodGet, "/healthz", "", headerRequestID, "req-42")
	if got := rec.Header().Get(headerRequestID); got != "req-42" {
		t.Fatalf("expected incoming request id to be echoed, got %q", got)
	}
}

func TestRouter_ListFixturesRejectsBadFilters(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	for _, target := range []string{
		"/v1/fixtures?status=bogus",
		"/v1/fixtures?page=0",
		"/v1/fixtures?dateFrom=yesterday",
	} {
		rec, env := do(t, router, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
		if env.Error == nil || env.Error.Status != "INVALID_ARGUMENT" {
			t.Fatalf("%s: unexpected error body %+v", target, env.Error)
		}
	}
}

func TestRouter_ListFixturesPaginates(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec, env := do(t, router, http.MethodGet, "/v1/fixtures?limit=3&page=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got fixtureListDTO
	if err := sonic.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode fixtures: %v", err)
	}
	if len(got.Items) != 3 || got.Pagination.Limit != 3 || got.Pagination.Page != 1 {
		t.Fatalf("unexpected page: %d items, %+v", len(got.Items), got.Pagination)
	}
}

func TestRouter_TeamNotFound(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec, _ := do(t, router, http.MethodGet, "/v1/teams/arsenal", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a known team, got %d", rec.Code)
	}
	rec, env := do(t, router, http.MethodGet, "/v1/teams/unknown-fc", "")
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Status != "NOT_FOUND" {
		t.Fatalf("expected 404, got %d %+v", rec.Code, env.Error)
	}
}

func TestRouter_PreferenceLifecycle(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	target := "/v1/preferences/fixtures-filters"

	rec, _ := do(t, router, http.MethodPut, target, `{"page":2`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected invalid JSON to be rejected, got %d", rec.Code)
	}

	rec, _ = do(t, router, http.MethodPut, target, `{"page":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put: %d %s", rec.Code, rec.Body.String())
	}

	rec, env := do(t, router, http.MethodGet, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
	var pref struct {
		Key   string         `json:"key"`
		Value map[string]int `json:"value"`
	}
	if err := sonic.Unmarshal(env.Data, &pref); err != nil {
		t.Fatalf("decode preference: %v", err)
	}
	if pref.Key != "fixtures-filters" || pref.Value["page"] != 2 {
		t.Fatalf("unexpected preference: %+v", pref)
	}

	rec, env = do(t, router, http.MethodGet, "/v1/preferences?prefix=fixtures", "")
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), "fixtures-filters") {
		t.Fatalf("list: %d %s", rec.Code, env.Data)
	}

	rec, _ = do(t, router, http.MethodDelete, target, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec, _ = do(t, router, http.MethodGet, target, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestRouter_PreferenceKeyValidated(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec, _ := do(t, router, http.MethodPut, "/v1/preferences/bad%20key", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRouter_ToggleFavoritePersists(t *testing.T) {
	t.Parallel()

	router, prefs := newTestRouter(t)

	rec, env := do(t, router, http.MethodPost, "/v1/favorites/arsenal/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: %d %s", rec.Code, rec.Body.String())
	}
	var toggled favoriteToggleDTO
	if err := sonic.Unmarshal(env.Data, &toggled); err != nil {
		t.Fatalf("decode toggle: %v", err)
	}
	if !toggled.Favorite || len(toggled.TeamIDs) != 1 || toggled.TeamIDs[0] != "arsenal" {
		t.Fatalf("unexpected toggle result: %+v", toggled)
	}

	raw, err := prefs.Get(context.Background(), "favorite-teams")
	if err != nil || string(raw) != `["arsenal"]` {
		t.Fatalf("expected persisted favourites, got %s %v", raw, err)
	}

	_, env = do(t, router, http.MethodPost, "/v1/favorites/arsenal/toggle", "")
	if err := sonic.Unmarshal(env.Data, &toggled); err != nil {
		t.Fatalf("decode toggle: %v", err)
	}
	if toggled.Favorite || len(toggled.TeamIDs) != 0 {
		t.Fatalf("expected arsenal removed, got %+v", toggled)
	}
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec, env := do(t, router, http.MethodGet, "/v1/cache/stats", "")
	if rec.Code != http.StatusUnauthorized || env.Error == nil {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	rec, _ = do(t, router, http.MethodGet, "/v1/cache/stats", "", headerAdminToken, "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}
	rec, _ = do(t, router, http.MethodGet, "/v1/cache/stats", "", headerAdminToken, testAdminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	rec, _ = do(t, router, http.MethodDelete, "/v1/cache/expired", "", headerAdminToken, testAdminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 clearing expired entries, got %d", rec.Code)
	}
}

func TestRouter_LiveUnavailableWithoutPoller(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec, env := do(t, router, http.MethodGet, "/v1/live", "")
	if rec.Code != http.StatusServiceUnavailable || env.Error == nil {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRouter_UpstreamHealthInMockMode(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec, env := do(t, router, http.MethodGet, "/v1/upstream/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got upstreamHealthDTO
	if err := sonic.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if !got.MockData || !got.Healthy {
		t.Fatalf("unexpected health: %+v", got)
	}
}

func TestRequireAdminToken_EmptyTokenLeavesRouteOpen(t *testing.T) {
	t.Parallel()

	called := false
	handler := RequireAdminToken("  ", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cache/stats", nil))
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected open route, got %d", rec.Code)
	}
}

func TestRequestID_ReplacesOversizedHeader(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, strings.Repeat("x", maxRequestIDLen+1))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen == "" || len(seen) > maxRequestIDLen || rec.Header().Get(headerRequestID) != seen {
		t.Fatalf("unexpected request id %q", seen)
	}
}

func TestSwaggerRoutesServeDocument(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil, nil, nil, nil, nil, nil, nil, config.Defaults(config.EnvDev), logging.NewNop())
	mux := NewRouter(h, logging.NewNop(), "matchcenter-test", true, nil, "")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "openapi: 3.0.3") {
		t.Fatalf("openapi: status=%d body prefix=%q", rec.Code, firstLine(rec.Body.String()))
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "url: '/openapi.yaml'") {
		t.Fatalf("docs: status=%d", rec.Code)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func TestRouter_FixtureDetailFailsWithoutFixture(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec, env := do(t, router, http.MethodGet, "/v1/fixtures/fixture-1/detail", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a known fixture, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(string(env.Data), `"fixtureId":"fixture-1"`) {
		t.Fatalf("unexpected detail payload: %s", env.Data)
	}

	rec, env = do(t, router, http.MethodGet, "/v1/fixtures/no-such-fixture/detail", "")
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Status != "NOT_FOUND" {
		t.Fatalf("expected 404 envelope, got %d %s", rec.Code, rec.Body.String())
	}
}
