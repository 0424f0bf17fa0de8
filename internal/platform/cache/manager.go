package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchcenter/internal/platform/resilience"
)

const DefaultTTL = 5 * time.Minute

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) validAt(now time.Time) bool {
	return now.Sub(e.storedAt) <= e.ttl
}

type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// Manager is an in-memory key/value store with a TTL per entry.
// Stored values are handed back as-is, so callers must treat them as immutable.
type Manager struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration
	hits       uint64
	misses     uint64
	now        func() time.Time
	flight     resilience.SingleFlight
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(defaultTTL time.Duration, opts ...Option) *Manager {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	m := &Manager{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the value for key when it has not outlived its TTL.
// Expired entries are removed. Every call counts as a hit or a miss.
func (m *Manager) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		m.misses++
		return nil, false
	}
	if !e.validAt(m.now()) {
		delete(m.entries, key)
		m.misses++
		return nil, false
	}

	m.hits++
	return e.value, true
}

// Set stores value under key, replacing any existing entry. ttl <= 0 uses the default.
func (m *Manager) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.mu.Lock()
	m.entries[key] = entry{
		value:    value,
		storedAt: m.now(),
		ttl:      ttl,
	}
	m.mu.Unlock()
}

// Has reports whether Get would return a value. It updates the counters like Get.
func (m *Manager) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Manager) Clear(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok
}

func (m *Manager) ClearAll() {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

// ClearPrefix removes every entry whose key starts with prefix and returns the count.
func (m *Manager) ClearPrefix(prefix string) int {
	if prefix == "" {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// ClearExpired sweeps entries past their TTL and returns how many were removed.
func (m *Manager) ClearExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, e := range m.entries {
		if !e.validAt(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Keys lists unexpired keys in sorted order without touching the counters.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := make([]string, 0, len(m.entries))
	for key, e := range m.entries {
		if e.validAt(now) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Stats{
		Hits:   m.hits,
		Misses: m.misses,
		Size:   len(m.entries),
	}
	if total := m.hits + m.misses; total > 0 {
		stats.HitRate = float64(m.hits) / float64(total)
	}
	return stats
}

// GetOrLoad returns the cached value or runs loader once per key across concurrent callers.
func (m *Manager) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := m.Get(key); ok {
		return value, nil
	}

	value, err, _ := m.flight.Do(key, func() (any, error) {
		m.mu.Lock()
		e, ok := m.entries[key]
		fresh := ok && e.validAt(m.now())
		m.mu.Unlock()
		if fresh {
			return e.value, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		m.Set(key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// StartJanitor sweeps expired entries every interval until ctx is done.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.ClearExpired()
			}
		}
	}()
}
