package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for session persistence
type Storage interface {
	HealthChecker
	Closer

	// SaveGameState saves a gamestate under its session UUID
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error

	// LoadGameState retrieves a gamestate by session UUID.
	// Returns nil if the gamestate doesn't exist.
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)

	// DeleteGameState removes a gamestate by session UUID
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// AppendRoll appends a roll record to the session's audit trail.
	// The trail is append-only and survives gamestate overwrites.
	AppendRoll(ctx context.Context, id uuid.UUID, record state.RollRecord) error

	// ListRolls returns the session's roll audit trail in append order
	ListRolls(ctx context.Context, id uuid.UUID) ([]state.RollRecord, error)

	// GetSheetSpec loads a character sheet spec from the data directory
	GetSheetSpec(ctx context.Context, id string) (*actor.SheetSpec, error)

	// ListSheets returns available character sheet ids
	ListSheets(ctx context.Context) ([]string, error)
}
