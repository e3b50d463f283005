package checkpoint

import (
	"context"
	"sync"

	"github.com/ppiankov/factcheck/internal/model"
)

// MemoryStore keeps encoded snapshots in a map. Loaded states never alias
// saved ones.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

// Save implements Store
func (m *MemoryStore) Save(ctx context.Context, runID string, state *model.WorkflowState) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[runID] = data
	return nil
}

// Load implements Store
func (m *MemoryStore) Load(ctx context.Context, runID string) (*model.WorkflowState, bool, error) {
	m.mu.RLock()
	data, ok := m.items[runID]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	state, err := decode(runID, data)
	if err != nil {
		return nil, false, err
	}
	return state, true, nil
}

// Len returns the number of stored snapshots
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
