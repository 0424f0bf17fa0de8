package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/matchcenter/internal/domain/preference"
)

type PreferenceStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{values: make(map[string][]byte)}
}

func (s *PreferenceStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, preference.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *PreferenceStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *PreferenceStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *PreferenceStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for key := range s.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
