package stats

import (
	"context"
	"sync"
)

// Memory implements Store with an in-process counter map.
type Memory struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{counts: make(map[string]int64)}
}

// RecordMessage increments the count for username.
func (m *Memory) RecordMessage(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[username]++
	return nil
}

// Summary renders the current counters.
func (m *Memory) Summary(_ context.Context) (string, error) {
	m.mu.Lock()
	counts := make([]UserCount, 0, len(m.counts))
	for username, n := range m.counts {
		counts = append(counts, UserCount{Username: username, Messages: n})
	}
	m.mu.Unlock()

	return RenderSummary(counts), nil
}
