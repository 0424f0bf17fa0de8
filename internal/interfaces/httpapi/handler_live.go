package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/matchcenter/internal/config"
	"github.com/riskibarqy/matchcenter/internal/live"
	"github.com/riskibarqy/matchcenter/internal/usecase"
)

type liveStatusDTO struct {
	State         live.State             `json:"state"`
	Enabled       bool                   `json:"enabled"`
	Visible       bool                   `json:"visible"`
	Connected     bool                   `json:"connected"`
	LastError     string                 `json:"lastError,omitempty"`
	Subscriptions []string               `json:"subscriptions"`
	Records       map[string]live.Record `json:"records"`
}

type liveSubscribeRequest struct {
	FixtureIDs []string `json:"fixtureIds" validate:"required,min=1,max=100,dive,required"`
}

type liveVisibilityRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

func (h *Handler) liveStatus() liveStatusDTO {
	dto := liveStatusDTO{
		State:         h.live.State(),
		Enabled:       h.cfg.FeatureEnabled(config.FeatureRealTimeUpdates),
		Visible:       true,
		Connected:     h.live.IsConnected(),
		LastError:     h.live.LastError(),
		Subscriptions: h.live.Subscriptions(),
		Records:       h.live.Snapshot(),
	}
	if h.visibility != nil {
		dto.Visible = h.visibility.Visible()
	}
	return dto
}

func (h *Handler) GetLive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLive")
	defer span.End()

	if !h.requireLive(ctx, w) {
		return
	}
	writeSuccess(ctx, w, http.StatusOK, h.liveStatus())
}

func (h *Handler) SubscribeLive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubscribeLive")
	defer span.End()

	if !h.requireLive(ctx, w) {
		return
	}

	var req liveSubscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	ids := make([]string, 0, len(req.FixtureIDs))
	for _, id := range req.FixtureIDs {
		ids = append(ids, strings.TrimSpace(id))
	}
	h.live.SubscribeToAll(ids)
	h.logger.InfoContext(ctx, "live subscriptions added", "fixture_ids", ids)

	writeSuccess(ctx, w, http.StatusOK, h.liveStatus())
}

func (h *Handler) UnsubscribeLive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnsubscribeLive")
	defer span.End()

	if !h.requireLive(ctx, w) {
		return
	}

	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))
	if fixtureID == "" {
		writeError(ctx, w, fmt.Errorf("%w: fixture id is required", usecase.ErrInvalidInput))
		return
	}
	h.live.Unsubscribe(fixtureID)

	writeSuccess(ctx, w, http.StatusOK, h.liveStatus())
}

func (h *Handler) UnsubscribeAllLive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnsubscribeAllLive")
	defer span.End()

	if !h.requireLive(ctx, w) {
		return
	}
	h.live.UnsubscribeAll()

	writeSuccess(ctx, w, http.StatusOK, h.liveStatus())
}

// SetLiveVisibility pauses polling while no viewer is watching and resumes it afterwards.
func (h *Handler) SetLiveVisibility(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetLiveVisibility")
	defer span.End()

	if !h.requireLive(ctx, w) {
		return
	}
	if h.visibility == nil {
		writeError(ctx, w, fmt.Errorf("%w: visibility control is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req liveVisibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	h.visibility.Set(*req.Visible)

	writeSuccess(ctx, w, http.StatusOK, h.liveStatus())
}
