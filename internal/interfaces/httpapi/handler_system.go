package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/matchcenter/internal/config"
	"github.com/riskibarqy/matchcenter/internal/platform/apiclient"
	"github.com/riskibarqy/matchcenter/internal/platform/cache"
	"github.com/riskibarqy/matchcenter/internal/platform/resilience"
	"github.com/riskibarqy/matchcenter/internal/usecase"
)

type cacheStatsDTO struct {
	cache.Stats
	Keys []string `json:"keys"`
}

type upstreamHealthDTO struct {
	Healthy  bool                        `json:"healthy"`
	Circuit  *resilience.CircuitSnapshot `json:"circuit,omitempty"`
	MockData bool                        `json:"mockData"`
}

type rateLimitDTO struct {
	Known bool                    `json:"known"`
	Info  apiclient.RateLimitInfo `json:"info"`
}

type runtimeConfigDTO struct {
	Environment string            `json:"environment"`
	MockData    bool              `json:"mockData"`
	Features    map[string]bool   `json:"features"`
	CacheTTLs   map[string]string `json:"cacheTtls"`
}

func (h *Handler) requireCache(w http.ResponseWriter, r *http.Request) bool {
	if h.cache == nil {
		writeError(r.Context(), w, fmt.Errorf("%w: response cache is not configured", usecase.ErrDependencyUnavailable))
		return false
	}
	return true
}

func (h *Handler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCacheStats")
	defer span.End()

	if !h.requireCache(w, r) {
		return
	}
	writeSuccess(ctx, w, http.StatusOK, cacheStatsDTO{Stats: h.cache.Stats(), Keys: h.cache.Keys()})
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearCache")
	defer span.End()

	if !h.requireCache(w, r) {
		return
	}
	h.cache.ClearAll()
	h.logger.InfoContext(ctx, "response cache cleared")

	writeSuccess(ctx, w, http.StatusOK, h.cache.Stats())
}

func (h *Handler) ClearExpiredCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearExpiredCache")
	defer span.End()

	if !h.requireCache(w, r) {
		return
	}
	removed := h.cache.ClearExpired()

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *Handler) GetUpstreamHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUpstreamHealth")
	defer span.End()

	dto := upstreamHealthDTO{MockData: h.football.UsesMockData(), Healthy: true}
	if h.upstream != nil && !dto.MockData {
		dto.Healthy = h.upstream.HealthCheck(ctx)
		circuit := h.upstream.Circuit()
		dto.Circuit = &circuit
	}

	status := http.StatusOK
	if !dto.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeSuccess(ctx, w, status, dto)
}

func (h *Handler) GetUpstreamRateLimit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUpstreamRateLimit")
	defer span.End()

	var dto rateLimitDTO
	if h.upstream != nil {
		dto.Info, dto.Known = h.upstream.RateLimit()
	}
	writeSuccess(ctx, w, http.StatusOK, dto)
}

func (h *Handler) GetRuntimeConfig(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRuntimeConfig")
	defer span.End()

	features := []config.Feature{
		config.FeatureRealTimeUpdates,
		config.FeatureOfflineMode,
		config.FeatureErrorReporting,
		config.FeaturePerformanceLogging,
	}
	resources := []config.Resource{
		config.ResourceFixtures,
		config.ResourceLiveFixtures,
		config.ResourceTeams,
		config.ResourceLeagueTable,
		config.ResourceAIInsights,
		config.ResourceMatchStats,
	}

	dto := runtimeConfigDTO{
		Environment: h.cfg.AppEnv,
		MockData:    h.football.UsesMockData(),
		Features:    make(map[string]bool, len(features)),
		CacheTTLs:   make(map[string]string, len(resources)),
	}
	for _, f := range features {
		dto.Features[string(f)] = h.cfg.FeatureEnabled(f)
	}
	for _, res := range resources {
		dto.CacheTTLs[string(res)] = h.cfg.TTLFor(res).Round(time.Second).String()
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}
