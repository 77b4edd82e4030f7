package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu         sync.RWMutex
	gamestates map[uuid.UUID]*state.GameState
	rolls      map[uuid.UUID][]state.RollRecord
	sheets     map[string]*actor.SheetSpec
	pingError  error
	saveError  error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		gamestates: make(map[uuid.UUID]*state.GameState),
		rolls:      make(map[uuid.UUID][]state.RollRecord),
		sheets:     make(map[string]*actor.SheetSpec),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on SaveGameState
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// AddSheet registers a character sheet spec for GetSheetSpec
func (m *MockStorage) AddSheet(spec *actor.SheetSpec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[spec.ID] = spec
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	if gs == nil {
		return errors.New("gamestate cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.gamestates[id] = gs
	return nil
}

func (m *MockStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gamestates[id], nil
}

func (m *MockStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.gamestates, id)
	delete(m.rolls, id)
	return nil
}

func (m *MockStorage) AppendRoll(ctx context.Context, id uuid.UUID, record state.RollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls[id] = append(m.rolls[id], record)
	return nil
}

func (m *MockStorage) ListRolls(ctx context.Context, id uuid.UUID) ([]state.RollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]state.RollRecord, len(m.rolls[id]))
	copy(out, m.rolls[id])
	return out, nil
}

func (m *MockStorage) GetSheetSpec(ctx context.Context, id string) (*actor.SheetSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	spec, ok := m.sheets[id]
	if !ok {
		return nil, fmt.Errorf("character sheet not found: %s", id)
	}
	return spec, nil
}

func (m *MockStorage) ListSheets(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sheets))
	for id := range m.sheets {
		ids = append(ids, id)
	}
	return ids, nil
}
