package parties

import (
	"context"

	"github.com/kyragit/Auto-DND/internal/domain/game/party"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=mockparties -source=repository.go

// Repository persists parties. A party is one record; saves replace it
// wholesale.
type Repository interface {
	// Get returns the party with the given ID, or a NotFound error
	Get(ctx context.Context, partyID string) (*party.Party, error)

	// Save persists the party, creating it if necessary
	Save(ctx context.Context, p *party.Party) error

	// ListIDs returns the IDs of all stored parties
	ListIDs(ctx context.Context) ([]string, error)
}
