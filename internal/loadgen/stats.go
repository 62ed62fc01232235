package loadgen

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// RequestStats aggregates the outcomes of one named request.
type RequestStats struct {
	Name     string
	Count    int
	Failures int
	Total    time.Duration
}

func (s RequestStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Stats is safe for concurrent use by all virtual users.
type Stats struct {
	mu      sync.Mutex
	entries map[string]*RequestStats
}

func NewStats() *Stats {
	return &Stats{entries: make(map[string]*RequestStats)}
}

func (s *Stats) Record(name string, elapsed time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[name]
	if !ok {
		entry = &RequestStats{Name: name}
		s.entries[name] = entry
	}
	entry.Count++
	entry.Total += elapsed
	if err != nil {
		entry.Failures++
	}
}

// Snapshot returns a copy of all entries sorted by name.
func (s *Stats) Snapshot() []RequestStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RequestStats, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, *entry)
	}
	slices.SortFunc(out, func(a, b RequestStats) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out
}

func (s *Stats) Log(logger *slog.Logger) {
	var requests, failures int
	for _, entry := range s.Snapshot() {
		requests += entry.Count
		failures += entry.Failures
		logger.Info("request stats",
			"name", entry.Name,
			"count", entry.Count,
			"failures", entry.Failures,
			"mean_ms", float64(entry.Mean().Microseconds())/1000,
		)
	}
	logger.Info("load run finished", "requests", requests, "failures", failures)
}
