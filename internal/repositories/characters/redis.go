package characters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kyragit/Auto-DND/internal/domain/character"
	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
)

const (
	// Key patterns
	characterKeyPrefix = "character:"
	ownerCharactersKey = "owner:%s:characters"
)

// RedisStoreConfig holds configuration for the Redis store
type RedisStoreConfig struct {
	Client redis.UniversalClient
}

// redisStore implements Store using Redis
type redisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a new Redis-backed character store
func NewRedisStore(cfg *RedisStoreConfig) Store {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	return &redisStore{
		client: cfg.Client,
	}
}

// Get retrieves a character by ID
func (s *redisStore) Get(ctx context.Context, characterID string) (*character.Character, error) {
	data, err := s.client.Get(ctx, characterKeyPrefix+characterID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, internalerrors.NotFoundf("character not found: %s", characterID)
		}
		return nil, internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to get character")
	}

	var c character.Character
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to deserialize character")
	}

	return &c, nil
}

// Update applies the mutation to the stored record and persists it
func (s *redisStore) Update(ctx context.Context, characterID string, mutation func(*character.Character) error) error {
	c, err := s.Get(ctx, characterID)
	if err != nil {
		return err
	}

	if err := mutation(c); err != nil {
		return err
	}

	return s.Save(ctx, c)
}

// Save persists the character
func (s *redisStore) Save(ctx context.Context, c *character.Character) error {
	if c == nil {
		return internalerrors.Validationf("character cannot be nil")
	}
	if c.ID == "" {
		return internalerrors.Validationf("character ID cannot be empty")
	}

	data, err := json.Marshal(c)
	if err != nil {
		return internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to serialize character")
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, characterKeyPrefix+c.ID, string(data), 0)
	if c.OwnerID != "" {
		pipe.SAdd(ctx, fmt.Sprintf(ownerCharactersKey, c.OwnerID), c.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to save character")
	}

	return nil
}
