package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/matchcenter/internal/config"
	"github.com/riskibarqy/matchcenter/internal/domain/competition"
	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchcenter/internal/usecase"
	"github.com/riskibarqy/matchcenter/internal/viewstate"
)

// recordFixtureLimit bounds the finished fixtures a team record is computed over.
const recordFixtureLimit = 100

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	params := make(map[string]string)
	for _, key := range []string{"competition", "country", "search"} {
		if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
			params[key] = v
		}
	}

	res, err := h.football.GetTeams(ctx, params)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "params", params, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, res.Data)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	res, err := h.football.GetTeamByID(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, res.Data)
}

// GetTeamRecord summarises wins, draws and losses over the team's finished fixtures.
func (h *Handler) GetTeamRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamRecord")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	if teamID == "" {
		writeError(ctx, w, fmt.Errorf("%w: team id is required", usecase.ErrInvalidInput))
		return
	}

	res, err := h.football.GetFixtures(ctx, fixture.Filters{
		Team:   teamID,
		Status: fixture.StatusFinished,
		Limit:  recordFixtureLimit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list team fixtures failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, viewstate.RecordFor(res.Data, teamID))
}

func (h *Handler) SearchTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchTeams")
	defer span.End()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	res, err := h.football.SearchTeams(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "search teams failed", "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, res.Data)
}

func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitions")
	defer span.End()

	res, err := h.football.GetCompetitions(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list competitions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, res.Data)
}

// ListStandings serves the league table. With offline mode on, the last good table is
// kept in the preference store and returned, flagged fromCache, when the upstream fails.
func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	competitionID := strings.TrimSpace(r.PathValue("competitionID"))
	if competitionID == "" {
		competitionID = competition.DefaultID
	}
	if parseBool(r.URL.Query().Get("refresh")) {
		h.football.InvalidateLeagueTable(competitionID)
	}

	snapshot := viewstate.NewOfflineSnapshot(h.preferences, "standings_"+competitionID,
		func(ctx context.Context) ([]leaguestanding.Standing, error) {
			res, err := h.football.GetLeagueTable(ctx, competitionID)
			if err != nil {
				return nil, err
			}
			return res.Data, nil
		},
		viewstate.OfflineOptions{
			Enabled: func() bool { return h.cfg.FeatureEnabled(config.FeatureOfflineMode) },
			Now:     h.now,
			Logger:  h.logger,
		},
	)

	res, err := snapshot.Fetch(ctx, true)
	if err != nil {
		h.logger.WarnContext(ctx, "get league table failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, res)
}
