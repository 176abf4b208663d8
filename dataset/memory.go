// memory.go - In-memory provider (for demos and tests)
package dataset

import (
	"context"
	"fmt"
	"sync"
)

// Memory is a Provider backed by an in-process map. The demo scenarios
// seed it; tests use it as a deterministic upstream.
type Memory struct {
	mu       sync.RWMutex
	datasets map[string][]Row
}

// NewMemory creates an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{datasets: make(map[string][]Row)}
}

// Load replaces the rows of a dataset wholesale.
func (m *Memory) Load(datasetID string, rows []Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[datasetID] = rows
}

// Fetch returns a copy of the dataset's row slice (the rows themselves
// are shared and treated as immutable-at-read).
func (m *Memory) Fetch(_ context.Context, datasetID string, limit int) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, ok := m.datasets[datasetID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, datasetID)
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	out := make([]Row, len(rows))
	copy(out, rows)
	return out, nil
}
