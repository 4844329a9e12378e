package maps

import (
	"context"

	"github.com/kyragit/Auto-DND/internal/domain/game/world"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=mockmaps -source=repository.go

// Repository persists maps as whole units: a save replaces the entire map
// record atomically, fights and all.
type Repository interface {
	// Load returns the map with the given ID, or a NotFound error
	Load(ctx context.Context, mapID string) (*world.Map, error)

	// Save persists the map atomically and bumps its version. Saving a
	// map whose version no longer matches the stored one returns a
	// ConcurrencyConflict error and writes nothing.
	Save(ctx context.Context, m *world.Map) error

	// ListIDs returns the IDs of all stored maps
	ListIDs(ctx context.Context) ([]string, error)
}
