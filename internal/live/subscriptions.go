package live

import "sort"

// SubscriptionSet holds the fixture IDs a poller refreshes.
// It is not safe for concurrent use; the Poller guards it.
type SubscriptionSet struct {
	ids map[string]struct{}
}

func NewSubscriptionSet() *SubscriptionSet {
	return &SubscriptionSet{ids: make(map[string]struct{})}
}

// Add reports whether id was newly added.
func (s *SubscriptionSet) Add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Remove reports whether id was present.
func (s *SubscriptionSet) Remove(id string) bool {
	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	return true
}

// Clear empties the set and returns how many IDs it held.
func (s *SubscriptionSet) Clear() int {
	n := len(s.ids)
	clear(s.ids)
	return n
}

func (s *SubscriptionSet) Len() int {
	return len(s.ids)
}

func (s *SubscriptionSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the members in sorted order.
func (s *SubscriptionSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
