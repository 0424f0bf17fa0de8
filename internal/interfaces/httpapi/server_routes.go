package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/config", handler.GetRuntimeConfig)
	mux.HandleFunc("GET /v1/upstream/health", handler.GetUpstreamHealth)
	mux.HandleFunc("GET /v1/upstream/ratelimit", handler.GetUpstreamRateLimit)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET "+openAPIPath, handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerFixtureRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/fixtures", handler.ListFixtures)
	mux.HandleFunc("GET /v1/fixtures/{fixtureID}", handler.GetFixture)
	mux.HandleFunc("GET /v1/fixtures/{fixtureID}/stats", handler.GetFixtureStats)
	mux.HandleFunc("GET /v1/fixtures/{fixtureID}/insights", handler.GetFixtureInsights)
	mux.HandleFunc("GET /v1/fixtures/{fixtureID}/players", handler.GetFixturePlayers)
	mux.HandleFunc("GET /v1/fixtures/{fixtureID}/detail", handler.GetFixtureDetail)
	mux.HandleFunc("GET /v1/insights", handler.ListInsights)
}

func registerTeamRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("GET /v1/teams/{teamID}/record", handler.GetTeamRecord)
	mux.HandleFunc("GET /v1/search/teams", handler.SearchTeams)
	mux.HandleFunc("GET /v1/competitions", handler.ListCompetitions)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/standings", handler.ListStandings)
}

func registerLiveRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/live", handler.GetLive)
	mux.HandleFunc("POST /v1/live/subscriptions", handler.SubscribeLive)
	mux.HandleFunc("DELETE /v1/live/subscriptions", handler.UnsubscribeAllLive)
	mux.HandleFunc("DELETE /v1/live/subscriptions/{fixtureID}", handler.UnsubscribeLive)
	mux.HandleFunc("PUT /v1/live/visibility", handler.SetLiveVisibility)
}

func registerPreferenceRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/preferences", handler.ListPreferences)
	mux.HandleFunc("GET /v1/preferences/{key}", handler.GetPreference)
	mux.HandleFunc("PUT /v1/preferences/{key}", handler.PutPreference)
	mux.HandleFunc("DELETE /v1/preferences/{key}", handler.DeletePreference)
	mux.HandleFunc("GET /v1/favorites", handler.ListFavorites)
	mux.HandleFunc("GET /v1/favorites/fixtures", handler.ListFavoriteFixtures)
	mux.HandleFunc("POST /v1/favorites/{teamID}/toggle", handler.ToggleFavorite)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("GET /v1/cache/stats", RequireAdminToken(adminToken, http.HandlerFunc(handler.GetCacheStats)))
	mux.Handle("DELETE /v1/cache", RequireAdminToken(adminToken, http.HandlerFunc(handler.ClearCache)))
	mux.Handle("DELETE /v1/cache/expired", RequireAdminToken(adminToken, http.HandlerFunc(handler.ClearExpiredCache)))
}
