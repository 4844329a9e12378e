package parties

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/kyragit/Auto-DND/internal/domain/game/party"
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

func newTestParty() *party.Party {
	p := party.NewParty("party-1", "The Bold")
	p.AddMember(party.Member{CharacterID: "char-1", Name: "Brannic"})
	p.AddMember(party.Member{CharacterID: "hench-1", Name: "Wren", Henchman: true})
	p.PendingXP = 30
	return p
}

func (s *RedisRepoTestSuite) TestGet() {
	p := newTestParty()
	data, err := json.Marshal(p)
	s.Require().NoError(err)

	s.mock.ExpectGet("party:party-1").SetVal(string(data))

	loaded, err := s.repo.Get(context.Background(), "party-1")
	s.Require().NoError(err)
	s.Equal(p, loaded)
}

func (s *RedisRepoTestSuite) TestGetNotFound() {
	s.mock.ExpectGet("party:party-9").RedisNil()

	_, err := s.repo.Get(context.Background(), "party-9")
	s.Require().Error(err)
	s.True(internalerrors.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestSave() {
	p := newTestParty()
	data, err := json.Marshal(p)
	s.Require().NoError(err)

	s.mock.ExpectSet("party:party-1", string(data), 0).SetVal("OK")
	s.mock.ExpectSAdd("parties", "party-1").SetVal(1)

	s.NoError(s.repo.Save(context.Background(), p))
}

func (s *RedisRepoTestSuite) TestSaveDependencyError() {
	p := newTestParty()
	data, err := json.Marshal(p)
	s.Require().NoError(err)

	s.mock.ExpectSet("party:party-1", string(data), 0).SetErr(errors.New("redis error"))

	err = s.repo.Save(context.Background(), p)
	s.Require().Error(err)
	s.True(internalerrors.IsPersistenceFailure(err))
}

func (s *RedisRepoTestSuite) TestSaveValidation() {
	s.True(internalerrors.IsValidation(s.repo.Save(context.Background(), nil)))
	s.True(internalerrors.IsValidation(s.repo.Save(context.Background(), &party.Party{})))
}

func (s *RedisRepoTestSuite) TestListIDs() {
	s.mock.ExpectSMembers("parties").SetVal([]string{"party-1"})

	ids, err := s.repo.ListIDs(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{"party-1"}, ids)
}
