package apiclient

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
)

const (
	headerRateLimit     = "X-Ratelimit-Limit"
	headerRateRemaining = "X-Ratelimit-Remaining"
	headerRateReset     = "X-Ratelimit-Reset"
	headerRetryAfter    = "Retry-After"
)

// RateLimitInfo is the upstream quota from the most recent response.
type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
	// RetryAfter is in seconds and only set when the header was present.
	RetryAfter *int `json:"retryAfter,omitempty"`
}

// parseRateLimit returns false when the limit header is missing.
func parseRateLimit(h http.Header) (RateLimitInfo, bool) {
	rawLimit := strings.TrimSpace(h.Get(headerRateLimit))
	if rawLimit == "" {
		return RateLimitInfo{}, false
	}

	info := RateLimitInfo{
		Limit:     atoiOrZero(rawLimit),
		Remaining: atoiOrZero(h.Get(headerRateRemaining)),
	}
	if reset, err := strconv.ParseInt(strings.TrimSpace(h.Get(headerRateReset)), 10, 64); err == nil {
		info.Reset = reset
	}
	if raw := strings.TrimSpace(h.Get(headerRetryAfter)); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil {
			info.RetryAfter = &secs
		}
	}
	return info, true
}

func atoiOrZero(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return v
}

// rateLimitState keeps only the latest snapshot.
type rateLimitState struct {
	mu   sync.RWMutex
	info RateLimitInfo
	set  bool
}

func (s *rateLimitState) update(h http.Header) {
	info, ok := parseRateLimit(h)
	if !ok {
		return
	}
	s.mu.Lock()
	s.info = info
	s.set = true
	s.mu.Unlock()
}

func (s *rateLimitState) get() (RateLimitInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := s.info
	if info.RetryAfter != nil {
		v := *info.RetryAfter
		info.RetryAfter = &v
	}
	return info, s.set
}
