package viewstate

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/preference"
	"github.com/riskibarqy/matchcenter/internal/domain/team"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
)

const (
	DefaultSearchDebounce = 300 * time.Millisecond
	maxSearchHistory      = 10
)

type TeamSearchState struct {
	Query    string      `json:"query"`
	Results  []team.Team `json:"results"`
	Loading  bool        `json:"loading"`
	Error    string      `json:"error,omitempty"`
	History  []string    `json:"history"`
	Selected []team.Team `json:"selected"`
}

type TeamSearchOptions struct {
	Store    preference.Store
	Logger   *logging.Logger
	Debounce time.Duration
}

// TeamSearch debounces queries; a new query cancels both the pending timer and
// any request still in flight for the previous one.
type TeamSearch struct {
	svc      TeamSearchService
	store    preference.Store
	logger   *logging.Logger
	debounce time.Duration

	baseCtx context.Context
	stop    context.CancelFunc

	mu      sync.Mutex
	state   TeamSearchState
	timer   *time.Timer
	cancel  context.CancelFunc
	pending uint64
}

func NewTeamSearch(ctx context.Context, svc TeamSearchService, opts TeamSearchOptions) *TeamSearch {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultSearchDebounce
	}
	baseCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	h := &TeamSearch{
		svc:      svc,
		store:    opts.Store,
		logger:   orDefault(opts.Logger),
		debounce: opts.Debounce,
		baseCtx:  baseCtx,
		stop:     stop,
	}
	loadPreference(ctx, h.store, h.logger, preference.KeySearchHistory, &h.state.History)
	loadPreference(ctx, h.store, h.logger, preference.KeySelectedTeams, &h.state.Selected)
	return h
}

func (h *TeamSearch) State() TeamSearchState {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.state
	out.Results = append([]team.Team(nil), h.state.Results...)
	out.History = append([]string(nil), h.state.History...)
	out.Selected = append([]team.Team(nil), h.state.Selected...)
	return out
}

// Search schedules query after the debounce delay. A blank query clears the results at once.
func (h *TeamSearch) Search(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cancelPendingLocked()
	h.state.Query = query
	h.pending++
	seq := h.pending

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		h.state.Results = nil
		h.state.Loading = false
		h.state.Error = ""
		return
	}

	ctx, cancel := context.WithCancel(h.baseCtx)
	h.cancel = cancel
	h.timer = time.AfterFunc(h.debounce, func() { h.run(ctx, seq, trimmed) })
}

func (h *TeamSearch) run(ctx context.Context, seq uint64, query string) {
	h.mu.Lock()
	if seq != h.pending {
		h.mu.Unlock()
		return
	}
	h.state.Loading = true
	h.state.Error = ""
	h.mu.Unlock()

	res, err := h.svc.SearchTeams(ctx, query)

	h.mu.Lock()
	if seq != h.pending {
		h.mu.Unlock()
		return
	}
	h.state.Loading = false
	if err != nil {
		h.state.Error = errorMessage(err)
		h.mu.Unlock()
		return
	}
	h.state.Results = append([]team.Team(nil), res.Data...)
	h.state.History = pushHistory(h.state.History, query)
	history := append([]string(nil), h.state.History...)
	h.mu.Unlock()

	savePreference(h.baseCtx, h.store, h.logger, preference.KeySearchHistory, history)
}

func (h *TeamSearch) ClearHistory(ctx context.Context) {
	h.mu.Lock()
	h.state.History = nil
	h.mu.Unlock()

	savePreference(ctx, h.store, h.logger, preference.KeySearchHistory, []string{})
}

// SelectTeam adds t to the selection unless a team with the same ID is already there.
func (h *TeamSearch) SelectTeam(ctx context.Context, t team.Team) {
	h.mu.Lock()
	for _, existing := range h.state.Selected {
		if existing.ID == t.ID {
			h.mu.Unlock()
			return
		}
	}
	h.state.Selected = append(h.state.Selected, t)
	selected := append([]team.Team(nil), h.state.Selected...)
	h.mu.Unlock()

	savePreference(ctx, h.store, h.logger, preference.KeySelectedTeams, selected)
}

func (h *TeamSearch) RemoveSelectedTeam(ctx context.Context, teamID string) {
	h.mu.Lock()
	kept := h.state.Selected[:0:0]
	for _, existing := range h.state.Selected {
		if existing.ID != teamID {
			kept = append(kept, existing)
		}
	}
	h.state.Selected = kept
	selected := append([]team.Team(nil), kept...)
	h.mu.Unlock()

	savePreference(ctx, h.store, h.logger, preference.KeySelectedTeams, selected)
}

func (h *TeamSearch) ClearSelected(ctx context.Context) {
	h.mu.Lock()
	h.state.Selected = nil
	h.mu.Unlock()

	savePreference(ctx, h.store, h.logger, preference.KeySelectedTeams, []team.Team{})
}

// Clear resets query, results and error and drops any pending search.
func (h *TeamSearch) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelPendingLocked()
	h.pending++
	h.state.Query = ""
	h.state.Results = nil
	h.state.Error = ""
	h.state.Loading = false
}

func (h *TeamSearch) Close() {
	h.Clear()
	h.stop()
}

func (h *TeamSearch) cancelPendingLocked() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// pushHistory puts query first, removes an older copy and caps the list.
func pushHistory(history []string, query string) []string {
	out := make([]string, 0, maxSearchHistory)
	out = append(out, query)
	for _, item := range history {
		if item == query {
			continue
		}
		if len(out) == maxSearchHistory {
			break
		}
		out = append(out, item)
	}
	return out
}
