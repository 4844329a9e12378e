package parties

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/kyragit/Auto-DND/internal/domain/game/party"
	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
)

const (
	// Key patterns
	partyKeyPrefix = "party:"
	partyIndexKey  = "parties"
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
}

// redisRepository implements Repository using Redis
type redisRepository struct {
	client redis.UniversalClient
}

// NewRedisRepository creates a new Redis-backed party repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	return &redisRepository{
		client: cfg.Client,
	}
}

// Get retrieves a party by ID
func (r *redisRepository) Get(ctx context.Context, partyID string) (*party.Party, error) {
	data, err := r.client.Get(ctx, partyKeyPrefix+partyID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, internalerrors.NotFoundf("party not found: %s", partyID)
		}
		return nil, internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to get party")
	}

	var p party.Party
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to deserialize party")
	}

	return &p, nil
}

// Save persists the party
func (r *redisRepository) Save(ctx context.Context, p *party.Party) error {
	if p == nil {
		return internalerrors.Validationf("party cannot be nil")
	}
	if p.ID == "" {
		return internalerrors.Validationf("party ID cannot be empty")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to serialize party")
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, partyKeyPrefix+p.ID, string(data), 0)
	pipe.SAdd(ctx, partyIndexKey, p.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to save party")
	}

	return nil
}

// ListIDs returns all stored party IDs
func (r *redisRepository) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, partyIndexKey).Result()
	if err != nil {
		return nil, internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to list parties")
	}
	return ids, nil
}
