package characters

import (
	"context"
	"sync"

	"github.com/kyragit/Auto-DND/internal/domain/character"
	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
)

type inMemoryStore struct {
	mu         sync.RWMutex
	characters map[string]*character.Character
}

// NewInMemoryStore creates a new in-memory character store
func NewInMemoryStore() Store {
	return &inMemoryStore{
		characters: make(map[string]*character.Character),
	}
}

// Get retrieves a character by ID
func (s *inMemoryStore) Get(ctx context.Context, characterID string) (*character.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.characters[characterID]
	if !exists {
		return nil, internalerrors.NotFoundf("character not found: %s", characterID)
	}

	clone := *c
	return &clone, nil
}

// Update applies the mutation to the stored record
func (s *inMemoryStore) Update(ctx context.Context, characterID string, mutation func(*character.Character) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.characters[characterID]
	if !exists {
		return internalerrors.NotFoundf("character not found: %s", characterID)
	}

	// Mutate a copy so a failed mutation leaves the record untouched
	clone := *c
	if err := mutation(&clone); err != nil {
		return err
	}

	s.characters[characterID] = &clone
	return nil
}

// Save persists the character
func (s *inMemoryStore) Save(ctx context.Context, c *character.Character) error {
	if c == nil {
		return internalerrors.Validationf("character cannot be nil")
	}
	if c.ID == "" {
		return internalerrors.Validationf("character ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *c
	s.characters[c.ID] = &clone
	return nil
}
