package cache

import (
	"context"
	"errors"
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/preference"
	basecache "github.com/riskibarqy/matchcenter/internal/platform/cache"
)

const preferenceKeyPrefix = "preference:"

// PreferenceRepository is a read-through cache in front of a slower preference store.
// Misses are cached too so repeated lookups of an unset key stay local.
type PreferenceRepository struct {
	next  preference.Store
	cache *basecache.Manager
	ttl   time.Duration
}

func NewPreferenceRepository(next preference.Store, cache *basecache.Manager, ttl time.Duration) *PreferenceRepository {
	return &PreferenceRepository{next: next, cache: cache, ttl: ttl}
}

func (r *PreferenceRepository) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.cache.GetOrLoad(ctx, preferenceKeyPrefix+key, r.ttl, func(ctx context.Context) (any, error) {
		value, err := r.next.Get(ctx, key)
		if errors.Is(err, preference.ErrNotFound) {
			return cachedPreference{}, nil
		}
		if err != nil {
			return nil, err
		}
		return cachedPreference{value: append([]byte(nil), value...), exists: true}, nil
	})
	if err != nil {
		return nil, err
	}

	cached, _ := v.(cachedPreference)
	if !cached.exists {
		return nil, preference.ErrNotFound
	}
	return append([]byte(nil), cached.value...), nil
}

func (r *PreferenceRepository) Put(ctx context.Context, key string, value []byte) error {
	if err := r.next.Put(ctx, key, value); err != nil {
		return err
	}
	r.cache.Clear(preferenceKeyPrefix + key)
	return nil
}

func (r *PreferenceRepository) Delete(ctx context.Context, key string) error {
	if err := r.next.Delete(ctx, key); err != nil {
		return err
	}
	r.cache.Clear(preferenceKeyPrefix + key)
	return nil
}

// Keys is never cached; it goes straight to the backing store when that store can list.
func (r *PreferenceRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	lister, ok := r.next.(preference.Lister)
	if !ok {
		return []string{}, nil
	}
	return lister.Keys(ctx, prefix)
}

type cachedPreference struct {
	value  []byte
	exists bool
}
