package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store implementation for tests and development.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[int64]*ConversationState
	panels map[int64]*PanelConfig
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[int64]*ConversationState),
		panels: make(map[int64]*PanelConfig),
	}
}

// State returns the conversation state of a user, or nil when no flow is active.
func (m *MemoryStore) State(_ context.Context, userID int64) (*ConversationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.states[userID]
	if !ok {
		return nil, nil
	}
	return &ConversationState{Step: st.Step, Data: MergeData(st.Data, nil)}, nil
}

// SetState merges data into the existing record and replaces the step.
func (m *MemoryStore) SetState(_ context.Context, userID int64, step string, data map[string]any) (*ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var oldData map[string]any
	if st, ok := m.states[userID]; ok {
		oldData = st.Data
	}
	merged := MergeData(oldData, data)
	m.states[userID] = &ConversationState{Step: step, Data: merged}
	return &ConversationState{Step: step, Data: MergeData(merged, nil)}, nil
}

// ClearState removes the conversation record; clearing twice is fine.
func (m *MemoryStore) ClearState(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, userID)
	return nil
}

// PanelConfig returns the stored panel credentials, or nil if absent.
func (m *MemoryStore) PanelConfig(_ context.Context, userID int64) (*PanelConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.panels[userID]
	if !ok {
		return nil, nil
	}
	clone := *cfg
	return &clone, nil
}

// SetPanelConfig overwrites the panel credentials of a user.
func (m *MemoryStore) SetPanelConfig(_ context.Context, userID int64, cfg PanelConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.panels[userID] = &cfg
	return nil
}
