package maps

import (
	"context"
	"sync"

	"github.com/kyragit/Auto-DND/internal/domain/game/world"
	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
)

type inMemoryRepository struct {
	mu   sync.RWMutex
	maps map[string]*world.Map
}

// NewInMemoryRepository creates a new in-memory map repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		maps: make(map[string]*world.Map),
	}
}

// Load retrieves a map by ID
func (r *inMemoryRepository) Load(ctx context.Context, mapID string) (*world.Map, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.maps[mapID]
	if !exists {
		return nil, internalerrors.NotFoundf("map not found: %s", mapID)
	}

	return m.Clone(), nil
}

// Save persists the map with a version check and bump
func (r *inMemoryRepository) Save(ctx context.Context, m *world.Map) error {
	if m == nil {
		return internalerrors.Validationf("map cannot be nil")
	}
	if m.ID == "" {
		return internalerrors.Validationf("map ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, exists := r.maps[m.ID]; exists && stored.Version != m.Version {
		return internalerrors.ConcurrencyConflictf(
			"map %s version %d is stale (stored %d)", m.ID, m.Version, stored.Version)
	}

	m.Version++
	r.maps[m.ID] = m.Clone()
	return nil
}

// ListIDs returns all stored map IDs
func (r *inMemoryRepository) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.maps))
	for id := range r.maps {
		ids = append(ids, id)
	}
	return ids, nil
}
