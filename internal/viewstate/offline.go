package viewstate

import (
	"context"
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/preference"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
)

const DefaultOfflineMaxAge = 24 * time.Hour

type offlineEnvelope[T any] struct {
	Data    T         `json:"data"`
	SavedAt time.Time `json:"savedAt"`
}

type OfflineResult[T any] struct {
	Data      T         `json:"data"`
	FromCache bool      `json:"fromCache"`
	Stale     bool      `json:"stale"`
	SavedAt   time.Time `json:"savedAt"`
	Error     string    `json:"error,omitempty"`
}

type OfflineOptions struct {
	MaxAge time.Duration
	// Enabled gates persistence, e.g. on the offline-mode feature flag. Nil means on.
	Enabled func() bool
	Now     func() time.Time
	Logger  *logging.Logger
}

// OfflineSnapshot keeps the last good payload of fetch in the preference store and
// serves it when a later fetch fails.
type OfflineSnapshot[T any] struct {
	store   preference.Store
	key     string
	fetch   func(ctx context.Context) (T, error)
	maxAge  time.Duration
	enabled func() bool
	now     func() time.Time
	logger  *logging.Logger
}

func NewOfflineSnapshot[T any](store preference.Store, name string, fetch func(ctx context.Context) (T, error), opts OfflineOptions) *OfflineSnapshot[T] {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultOfflineMaxAge
	}
	if opts.Enabled == nil {
		opts.Enabled = func() bool { return true }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &OfflineSnapshot[T]{
		store:   store,
		key:     preference.OfflinePrefix + name,
		fetch:   fetch,
		maxAge:  opts.MaxAge,
		enabled: opts.Enabled,
		now:     opts.Now,
		logger:  orDefault(opts.Logger),
	}
}

// Fetch serves a fresh snapshot without touching the network unless force is set.
// Otherwise it fetches, persists a success, and on failure falls back to the snapshot.
// The error is returned only when there is nothing to fall back to.
func (o *OfflineSnapshot[T]) Fetch(ctx context.Context, force bool) (OfflineResult[T], error) {
	if !o.enabled() || o.store == nil {
		data, err := o.fetch(ctx)
		if err != nil {
			return OfflineResult[T]{}, err
		}
		return OfflineResult[T]{Data: data, SavedAt: o.now().UTC()}, nil
	}

	var snapshot offlineEnvelope[T]
	hasSnapshot := loadPreference(ctx, o.store, o.logger, o.key, &snapshot)
	if hasSnapshot && !force && !o.stale(snapshot.SavedAt) {
		return OfflineResult[T]{Data: snapshot.Data, FromCache: true, SavedAt: snapshot.SavedAt}, nil
	}

	data, err := o.fetch(ctx)
	if err == nil {
		savedAt := o.now().UTC()
		savePreference(ctx, o.store, o.logger, o.key, offlineEnvelope[T]{Data: data, SavedAt: savedAt})
		return OfflineResult[T]{Data: data, SavedAt: savedAt}, nil
	}
	if !hasSnapshot {
		return OfflineResult[T]{}, err
	}

	o.logger.WarnContext(ctx, "serving offline snapshot", "key", o.key, "saved_at", snapshot.SavedAt, "error", err)
	return OfflineResult[T]{
		Data:      snapshot.Data,
		FromCache: true,
		Stale:     o.stale(snapshot.SavedAt),
		SavedAt:   snapshot.SavedAt,
		Error:     errorMessage(err),
	}, nil
}

// Clear removes the persisted snapshot.
func (o *OfflineSnapshot[T]) Clear(ctx context.Context) error {
	if o.store == nil {
		return nil
	}
	return o.store.Delete(ctx, o.key)
}

func (o *OfflineSnapshot[T]) stale(savedAt time.Time) bool {
	return o.now().Sub(savedAt) > o.maxAge
}
