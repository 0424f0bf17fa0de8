package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/matchcenter/internal/config"
	"github.com/riskibarqy/matchcenter/internal/domain/competition"
	"github.com/riskibarqy/matchcenter/internal/domain/preference"
	"github.com/riskibarqy/matchcenter/internal/domain/team"
	"github.com/riskibarqy/matchcenter/internal/live"
	"github.com/riskibarqy/matchcenter/internal/platform/apiclient"
	"github.com/riskibarqy/matchcenter/internal/platform/cache"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
	"github.com/riskibarqy/matchcenter/internal/platform/resilience"
	"github.com/riskibarqy/matchcenter/internal/usecase"
	"github.com/riskibarqy/matchcenter/internal/viewstate"
)

// FootballService is the data facade the handlers read through.
type FootballService interface {
	viewstate.FixturesService
	viewstate.MatchDetailService
	viewstate.LeagueTableService
	viewstate.TeamSearchService
	GetTeams(ctx context.Context, params map[string]string) (usecase.Result[[]team.Team], error)
	GetTeamByID(ctx context.Context, id string) (usecase.Result[team.Team], error)
	GetCompetitions(ctx context.Context) (usecase.Result[[]competition.Competition], error)
	UsesMockData() bool
}

// LiveService is the live.Poller surface exposed over HTTP.
type LiveService interface {
	SubscribeToAll(ids []string)
	Unsubscribe(id string)
	UnsubscribeAll()
	Subscriptions() []string
	Snapshot() map[string]live.Record
	IsConnected() bool
	LastError() string
	State() live.State
}

// Visibility toggles whether live polling may run.
type Visibility interface {
	Visible() bool
	Set(visible bool)
}

// Upstream reports on the data API client.
type Upstream interface {
	HealthCheck(ctx context.Context) bool
	RateLimit() (apiclient.RateLimitInfo, bool)
	Circuit() resilience.CircuitSnapshot
}

// ResponseCache is the shared response cache behind the client.
type ResponseCache interface {
	Stats() cache.Stats
	Keys() []string
	ClearAll()
	ClearExpired() int
}

type Handler struct {
	football    FootballService
	live        LiveService
	visibility  Visibility
	upstream    Upstream
	cache       ResponseCache
	preferences preference.Store
	favorites   *viewstate.Favorites
	cfg         config.Config
	now         func() time.Time
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(
	football FootballService,
	liveService LiveService,
	visibility Visibility,
	upstream Upstream,
	responseCache ResponseCache,
	preferences preference.Store,
	favorites *viewstate.Favorites,
	cfg config.Config,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		football:    football,
		live:        liveService,
		visibility:  visibility,
		upstream:    upstream,
		cache:       responseCache,
		preferences: preferences,
		favorites:   favorites,
		cfg:         cfg,
		now:         time.Now,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) requireLive(ctx context.Context, w http.ResponseWriter) bool {
	if h.live == nil {
		writeError(ctx, w, fmt.Errorf("%w: live updates are not configured", usecase.ErrDependencyUnavailable))
		return false
	}
	return true
}

func (h *Handler) requirePreferences(ctx context.Context, w http.ResponseWriter) bool {
	if h.preferences == nil {
		writeError(ctx, w, fmt.Errorf("%w: preference store is not configured", usecase.ErrDependencyUnavailable))
		return false
	}
	return true
}
