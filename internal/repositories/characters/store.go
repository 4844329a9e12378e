package characters

import (
	"context"

	"github.com/kyragit/Auto-DND/internal/domain/character"
)

//go:generate mockgen -destination=mock/mock_store.go -package=mockcharacters -source=store.go

// Store is the character sheet store. Combat and ledger code never replaces
// a character record wholesale: all writes go through Update so the store
// can apply the mutation to the current record.
type Store interface {
	// Get returns the character with the given ID, or a NotFound error
	Get(ctx context.Context, characterID string) (*character.Character, error)

	// Update loads the character, applies the mutation and persists the
	// result. An error from the mutation aborts the update and is
	// returned unchanged.
	Update(ctx context.Context, characterID string, mutation func(*character.Character) error) error

	// Save persists a character, creating it if necessary
	Save(ctx context.Context, c *character.Character) error
}
