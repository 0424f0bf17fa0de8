package live

import "sync"

// VisibilitySignal reports whether the consumer is currently looking at live data.
// Subscribe returns a function that removes the listener.
type VisibilitySignal interface {
	Visible() bool
	Subscribe(fn func(visible bool)) (unsubscribe func())
}

// ManualSignal is a VisibilitySignal driven by explicit Set calls.
type ManualSignal struct {
	mu        sync.Mutex
	visible   bool
	nextID    int
	listeners map[int]func(bool)
}

func NewManualSignal(visible bool) *ManualSignal {
	return &ManualSignal{visible: visible, listeners: make(map[int]func(bool))}
}

func (s *ManualSignal) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *ManualSignal) Subscribe(fn func(bool)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Set changes the visibility and notifies listeners when it actually flips.
func (s *ManualSignal) Set(visible bool) {
	s.mu.Lock()
	if s.visible == visible {
		s.mu.Unlock()
		return
	}
	s.visible = visible
	listeners := make([]func(bool), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(visible)
	}
}
