package party

import (
	"context"
	"log"

	"github.com/kyragit/Auto-DND/internal/domain/character"
	gameparty "github.com/kyragit/Auto-DND/internal/domain/game/party"
	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
	"github.com/kyragit/Auto-DND/internal/repositories/characters"
	"github.com/kyragit/Auto-DND/internal/repositories/parties"
	"github.com/kyragit/Auto-DND/internal/uuid"
)

// DefaultHenchmanShare is the fraction of a full share a henchman receives
// during allocation.
const DefaultHenchmanShare = 0.5

// Service is the party ledger. Experience earned from fights accumulates
// in a party's pending pool; it moves to the members' banked XP only
// through an explicit allocation. Callers are responsible for restricting
// Allocate to the DM.
type Service interface {
	// CreateParty creates an empty party
	CreateParty(ctx context.Context, name string) (*gameparty.Party, error)

	// GetParty returns the party with the given ID
	GetParty(ctx context.Context, partyID string) (*gameparty.Party, error)

	// AddMember adds or replaces a party member
	AddMember(ctx context.Context, partyID string, member gameparty.Member) error

	// TrackPendingXP adds earned experience to the party's pending pool.
	// The pool only ever grows between allocations.
	TrackPendingXP(ctx context.Context, partyID string, amount int) error

	// Allocate moves pending XP to the members' banked XP. With a nil
	// distribution the pool is split evenly, henchmen receiving the
	// configured fraction of a full share. The allocation is atomic:
	// either every listed member's XP increases and the pool shrinks by
	// the total, or nothing changes.
	Allocate(ctx context.Context, partyID string, distribution map[string]int) (*AllocationResult, error)
}

// AllocationResult reports what an allocation did
type AllocationResult struct {
	PartyID   string         `json:"party_id"`
	Shares    map[string]int `json:"shares"`
	Total     int            `json:"total"`
	Remaining int            `json:"remaining"`
}

// ServiceConfig holds the service's dependencies
type ServiceConfig struct {
	Repository    parties.Repository
	Characters    characters.Store
	UUIDGenerator uuid.Generator

	// HenchmanShare defaults to DefaultHenchmanShare when zero
	HenchmanShare float64
}

type service struct {
	repo          parties.Repository
	characters    characters.Store
	uuidGenerator uuid.Generator
	henchmanShare float64
}

// NewService creates a new party ledger service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("party repository is required")
	}
	if cfg.Characters == nil {
		panic("character store is required")
	}
	if cfg.UUIDGenerator == nil {
		panic("uuid generator is required")
	}

	share := cfg.HenchmanShare
	if share == 0 {
		share = DefaultHenchmanShare
	}

	return &service{
		repo:          cfg.Repository,
		characters:    cfg.Characters,
		uuidGenerator: cfg.UUIDGenerator,
		henchmanShare: share,
	}
}

func (s *service) CreateParty(ctx context.Context, name string) (*gameparty.Party, error) {
	if name == "" {
		return nil, internalerrors.Validationf("party name cannot be empty")
	}

	p := gameparty.NewParty(s.uuidGenerator.New(), name)
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetParty(ctx context.Context, partyID string) (*gameparty.Party, error) {
	return s.repo.Get(ctx, partyID)
}

func (s *service) AddMember(ctx context.Context, partyID string, member gameparty.Member) error {
	if member.CharacterID == "" {
		return internalerrors.Validationf("member character ID cannot be empty")
	}

	// The character must exist in the sheet store
	if _, err := s.characters.Get(ctx, member.CharacterID); err != nil {
		return err
	}

	p, err := s.repo.Get(ctx, partyID)
	if err != nil {
		return err
	}

	p.AddMember(member)
	return s.repo.Save(ctx, p)
}

func (s *service) TrackPendingXP(ctx context.Context, partyID string, amount int) error {
	if amount < 0 {
		return internalerrors.Validationf("pending XP amount cannot be negative")
	}
	if amount == 0 {
		return nil
	}

	p, err := s.repo.Get(ctx, partyID)
	if err != nil {
		return err
	}

	p.PendingXP += amount
	if err := s.repo.Save(ctx, p); err != nil {
		return err
	}

	log.Printf("Tracked %d pending XP for party %s (pool now %d)", amount, partyID, p.PendingXP)
	return nil
}

func (s *service) Allocate(ctx context.Context, partyID string, distribution map[string]int) (*AllocationResult, error) {
	p, err := s.repo.Get(ctx, partyID)
	if err != nil {
		return nil, err
	}

	shares := distribution
	if len(shares) == 0 {
		shares = p.Shares(p.PendingXP, s.henchmanShare)
	}

	total := 0
	for characterID, share := range shares {
		if share < 0 {
			return nil, internalerrors.Validationf("share for %s cannot be negative", characterID)
		}
		if p.Member(characterID) == nil {
			return nil, internalerrors.Validationf("%s is not a member of party %s", characterID, partyID)
		}
		total += share
	}
	if total > p.PendingXP {
		return nil, internalerrors.Validationf(
			"allocation of %d exceeds pending pool of %d", total, p.PendingXP)
	}

	// Apply the character updates, unwinding on the first failure so a
	// partial allocation never sticks
	applied := make(map[string]int, len(shares))
	for characterID, share := range shares {
		if share == 0 {
			continue
		}

		err := s.characters.Update(ctx, characterID, func(c *character.Character) error {
			c.XP += share
			return nil
		})
		if err != nil {
			s.unwind(ctx, applied)
			return nil, internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure,
				"failed to credit XP to "+characterID)
		}
		applied[characterID] = share
	}

	p.PendingXP -= total
	if err := s.repo.Save(ctx, p); err != nil {
		s.unwind(ctx, applied)
		return nil, err
	}

	log.Printf("Allocated %d XP from party %s pool (%d remaining)", total, partyID, p.PendingXP)
	return &AllocationResult{
		PartyID:   partyID,
		Shares:    shares,
		Total:     total,
		Remaining: p.PendingXP,
	}, nil
}

// unwind reverses already-applied XP credits after a mid-allocation failure
func (s *service) unwind(ctx context.Context, applied map[string]int) {
	for characterID, share := range applied {
		err := s.characters.Update(ctx, characterID, func(c *character.Character) error {
			c.XP -= share
			return nil
		})
		if err != nil {
			log.Printf("Failed to unwind %d XP from character %s: %v", share, characterID, err)
		}
	}
}
