package maps

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient *redis.Client
	mock       redismock.ClientMock
	repo       Repository
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.repo = NewRedisRepository(&RedisRepoConfig{Client: s.mockClient})
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) TestLoad() {
	ctx := context.Background()
	m := newTestMap()
	m.Version = 3
	data, err := json.Marshal(m)
	s.Require().NoError(err)

	s.mock.ExpectGet("map:map-1").SetVal(string(data))

	loaded, err := s.repo.Load(ctx, "map-1")
	s.Require().NoError(err)
	s.Equal(m, loaded)
}

func (s *RedisRepoTestSuite) TestLoadNotFound() {
	s.mock.ExpectGet("map:map-9").RedisNil()

	_, err := s.repo.Load(context.Background(), "map-9")
	s.Require().Error(err)
	s.True(internalerrors.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestLoadDependencyError() {
	s.mock.ExpectGet("map:map-1").SetErr(errors.New("redis error"))

	_, err := s.repo.Load(context.Background(), "map-1")
	s.Require().Error(err)
	s.True(internalerrors.IsPersistenceFailure(err))
}

func (s *RedisRepoTestSuite) TestSaveNewMap() {
	ctx := context.Background()
	m := newTestMap()

	saved := m.Clone()
	saved.Version = 1
	data, err := json.Marshal(saved)
	s.Require().NoError(err)

	s.mock.ExpectGet("map:map-1").RedisNil()
	s.mock.ExpectSet("map:map-1", string(data), 0).SetVal("OK")
	s.mock.ExpectSAdd("maps", "map-1").SetVal(1)

	s.Require().NoError(s.repo.Save(ctx, m))
	s.Equal(int64(1), m.Version)
}

func (s *RedisRepoTestSuite) TestSaveExistingMap() {
	ctx := context.Background()
	m := newTestMap()
	m.Version = 3

	stored := m.Clone()
	storedData, err := json.Marshal(stored)
	s.Require().NoError(err)

	saved := m.Clone()
	saved.Version = 4
	savedData, err := json.Marshal(saved)
	s.Require().NoError(err)

	s.mock.ExpectGet("map:map-1").SetVal(string(storedData))
	s.mock.ExpectSet("map:map-1", string(savedData), 0).SetVal("OK")
	s.mock.ExpectSAdd("maps", "map-1").SetVal(1)

	s.Require().NoError(s.repo.Save(ctx, m))
	s.Equal(int64(4), m.Version)
}

func (s *RedisRepoTestSuite) TestSaveStaleVersionConflicts() {
	ctx := context.Background()
	m := newTestMap()
	m.Version = 1

	stored := m.Clone()
	stored.Version = 3
	storedData, err := json.Marshal(stored)
	s.Require().NoError(err)

	s.mock.ExpectGet("map:map-1").SetVal(string(storedData))

	err = s.repo.Save(ctx, m)
	s.Require().Error(err)
	s.True(internalerrors.IsConcurrencyConflict(err))
	s.Equal(int64(1), m.Version, "a rejected save leaves the caller's version unchanged")
}

func (s *RedisRepoTestSuite) TestSaveWriteFailureRestoresVersion() {
	ctx := context.Background()
	m := newTestMap()

	saved := m.Clone()
	saved.Version = 1
	data, err := json.Marshal(saved)
	s.Require().NoError(err)

	s.mock.ExpectGet("map:map-1").RedisNil()
	s.mock.ExpectSet("map:map-1", string(data), 0).SetErr(errors.New("redis error"))

	err = s.repo.Save(ctx, m)
	s.Require().Error(err)
	s.True(internalerrors.IsPersistenceFailure(err))
	s.Equal(int64(0), m.Version)
}

func (s *RedisRepoTestSuite) TestListIDs() {
	s.mock.ExpectSMembers("maps").SetVal([]string{"map-1", "map-2"})

	ids, err := s.repo.ListIDs(context.Background())
	s.Require().NoError(err)
	s.ElementsMatch([]string{"map-1", "map-2"}, ids)
}
