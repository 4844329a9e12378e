package maps

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/kyragit/Auto-DND/internal/domain/game/world"
	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
)

const (
	// Key patterns
	mapKeyPrefix = "map:"
	mapIndexKey  = "maps"
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
}

// redisRepository implements Repository using Redis. Each map is one JSON
// record, so a SET is an atomic replace of the whole map.
type redisRepository struct {
	client redis.UniversalClient
}

// NewRedisRepository creates a new Redis-backed map repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	return &redisRepository{
		client: cfg.Client,
	}
}

// Load retrieves a map by ID
func (r *redisRepository) Load(ctx context.Context, mapID string) (*world.Map, error) {
	data, err := r.client.Get(ctx, mapKeyPrefix+mapID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, internalerrors.NotFoundf("map not found: %s", mapID)
		}
		return nil, internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to load map")
	}

	var m world.Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to deserialize map")
	}

	return &m, nil
}

// Save persists the map with a version check and bump
func (r *redisRepository) Save(ctx context.Context, m *world.Map) error {
	if m == nil {
		return internalerrors.Validationf("map cannot be nil")
	}
	if m.ID == "" {
		return internalerrors.Validationf("map ID cannot be empty")
	}

	// Compare against the stored version so a stale writer cannot
	// silently clobber a newer save
	stored, err := r.Load(ctx, m.ID)
	if err != nil && !internalerrors.IsNotFound(err) {
		return err
	}
	if stored != nil && stored.Version != m.Version {
		return internalerrors.ConcurrencyConflictf(
			"map %s version %d is stale (stored %d)", m.ID, m.Version, stored.Version)
	}

	m.Version++

	data, err := json.Marshal(m)
	if err != nil {
		m.Version--
		return internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to serialize map")
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, mapKeyPrefix+m.ID, string(data), 0)
	pipe.SAdd(ctx, mapIndexKey, m.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		m.Version--
		return internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to save map")
	}

	return nil
}

// ListIDs returns all stored map IDs
func (r *redisRepository) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, mapIndexKey).Result()
	if err != nil {
		return nil, internalerrors.WrapWithCode(err, internalerrors.CodePersistenceFailure, "failed to list maps")
	}
	return ids, nil
}
