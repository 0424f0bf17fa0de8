package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/domain/preference"
	"github.com/riskibarqy/matchcenter/internal/usecase"
)

const (
	maxPreferenceBytes    = 64 << 10
	defaultUpcomingDays   = 7
	upcomingFixturesLimit = 100
)

// rawJSON embeds an already validated JSON document without re-encoding it.
type rawJSON []byte

func (r rawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

type preferenceDTO struct {
	Key   string  `json:"key"`
	Value rawJSON `json:"value"`
}

type favoritesDTO struct {
	TeamIDs []string `json:"teamIds"`
}

type favoriteToggleDTO struct {
	TeamID   string   `json:"teamId"`
	Favorite bool     `json:"favorite"`
	TeamIDs  []string `json:"teamIds"`
}

func preferenceKey(r *http.Request) (string, error) {
	key := strings.TrimSpace(r.PathValue("key"))
	if !preference.ValidKey(key) {
		return "", fmt.Errorf("%w: invalid preference key %q", usecase.ErrInvalidInput, key)
	}
	return key, nil
}

// ListPreferences returns the stored keys, optionally narrowed by ?prefix=.
func (h *Handler) ListPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPreferences")
	defer span.End()

	if !h.requirePreferences(ctx, w) {
		return
	}
	lister, ok := h.preferences.(preference.Lister)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: preference store cannot list keys", usecase.ErrDependencyUnavailable))
		return
	}

	prefix := strings.TrimSpace(r.URL.Query().Get("prefix"))
	keys, err := lister.Keys(ctx, prefix)
	if err != nil {
		h.logger.WarnContext(ctx, "list preferences failed", "prefix", prefix, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, keys)
}

func (h *Handler) GetPreference(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPreference")
	defer span.End()

	if !h.requirePreferences(ctx, w) {
		return
	}
	key, err := preferenceKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	raw, err := h.preferences.Get(ctx, key)
	if err != nil {
		if errors.Is(err, preference.ErrNotFound) {
			err = fmt.Errorf("%w: preference=%s", usecase.ErrNotFound, key)
		} else {
			h.logger.WarnContext(ctx, "get preference failed", "key", key, "error", err)
		}
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, preferenceDTO{Key: key, Value: rawJSON(raw)})
}

// PutPreference stores the request body as-is. It must be a JSON document.
func (h *Handler) PutPreference(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PutPreference")
	defer span.End()

	if !h.requirePreferences(ctx, w) {
		return
	}
	key, err := preferenceKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxPreferenceBytes+1))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if len(raw) > maxPreferenceBytes {
		writeError(ctx, w, fmt.Errorf("%w: preference value exceeds %d bytes", usecase.ErrInvalidInput, maxPreferenceBytes))
		return
	}
	if !sonic.Valid(raw) {
		writeError(ctx, w, fmt.Errorf("%w: preference value must be valid JSON", usecase.ErrInvalidInput))
		return
	}

	if err := h.preferences.Put(ctx, key, raw); err != nil {
		h.logger.WarnContext(ctx, "put preference failed", "key", key, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, preferenceDTO{Key: key, Value: rawJSON(raw)})
}

func (h *Handler) DeletePreference(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePreference")
	defer span.End()

	if !h.requirePreferences(ctx, w) {
		return
	}
	key, err := preferenceKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.preferences.Delete(ctx, key); err != nil {
		h.logger.WarnContext(ctx, "delete preference failed", "key", key, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireFavorites(w http.ResponseWriter, r *http.Request) bool {
	if h.favorites == nil {
		writeError(r.Context(), w, fmt.Errorf("%w: favourites are not configured", usecase.ErrDependencyUnavailable))
		return false
	}
	return true
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFavorites")
	defer span.End()

	if !h.requireFavorites(w, r) {
		return
	}
	writeSuccess(ctx, w, http.StatusOK, favoritesDTO{TeamIDs: h.favorites.IDs()})
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToggleFavorite")
	defer span.End()

	if !h.requireFavorites(w, r) {
		return
	}
	teamID := strings.TrimSpace(r.PathValue("teamID"))
	if teamID == "" {
		writeError(ctx, w, fmt.Errorf("%w: team id is required", usecase.ErrInvalidInput))
		return
	}

	favorite := h.favorites.Toggle(ctx, teamID)
	writeSuccess(ctx, w, http.StatusOK, favoriteToggleDTO{
		TeamID:   teamID,
		Favorite: favorite,
		TeamIDs:  h.favorites.IDs(),
	})
}

// ListFavoriteFixtures returns scheduled fixtures of favourite teams within ?days= (default 7).
func (h *Handler) ListFavoriteFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFavoriteFixtures")
	defer span.End()

	if !h.requireFavorites(w, r) {
		return
	}
	days := defaultUpcomingDays
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > 60 {
			writeError(ctx, w, fmt.Errorf("%w: days must be between 1 and 60", usecase.ErrInvalidInput))
			return
		}
		days = v
	}

	res, err := h.football.GetFixtures(ctx, fixture.Filters{
		Status: fixture.StatusScheduled,
		Limit:  upcomingFixturesLimit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures for favourites failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.favorites.Upcoming(res.Data, h.now(), days))
}
