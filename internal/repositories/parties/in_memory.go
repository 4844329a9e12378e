package parties

import (
	"context"
	"sync"

	"github.com/kyragit/Auto-DND/internal/domain/game/party"
	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
)

type inMemoryRepository struct {
	mu      sync.RWMutex
	parties map[string]*party.Party
}

// NewInMemoryRepository creates a new in-memory party repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		parties: make(map[string]*party.Party),
	}
}

// Get retrieves a party by ID
func (r *inMemoryRepository) Get(ctx context.Context, partyID string) (*party.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.parties[partyID]
	if !exists {
		return nil, internalerrors.NotFoundf("party not found: %s", partyID)
	}

	return p.Clone(), nil
}

// Save persists the party
func (r *inMemoryRepository) Save(ctx context.Context, p *party.Party) error {
	if p == nil {
		return internalerrors.Validationf("party cannot be nil")
	}
	if p.ID == "" {
		return internalerrors.Validationf("party ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.parties[p.ID] = p.Clone()
	return nil
}

// ListIDs returns all stored party IDs
func (r *inMemoryRepository) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.parties))
	for id := range r.parties {
		ids = append(ids, id)
	}
	return ids, nil
}
