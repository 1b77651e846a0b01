package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/openarcade/lobby/internal/model"
)

type StoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func (s *StoreSuite) TestLoadBeforeSaveReturnsInitializedTables() {
	accounts, err := s.store.LoadAccounts(s.ctx)
	s.Require().NoError(err)
	s.NotNil(accounts[model.RolePlayer])
	s.NotNil(accounts[model.RoleDeveloper])

	games, err := s.store.LoadGames(s.ctx)
	s.Require().NoError(err)
	s.Empty(games)

	rooms, err := s.store.LoadRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StoreSuite) TestRoomRoundTrip() {
	table := model.RoomTable{
		1: {ID: 1, Host: "alice", GameName: "chess", Players: []string{"alice"},
			Status: model.RoomStatusWaiting, MinPlayers: 2, MaxPlayers: 2,
			Version: "1.0", ReadyPlayers: []string{"alice"}},
	}
	s.Require().NoError(s.store.SaveRooms(s.ctx, table))

	got, err := s.store.LoadRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(table, got)
}

func (s *StoreSuite) TestLoadedTablesAreIsolated() {
	s.Require().NoError(s.store.SaveGames(s.ctx, model.GameTable{
		"chess": {Developer: "dev1", Version: "1.0"},
	}))

	first, err := s.store.LoadGames(s.ctx)
	s.Require().NoError(err)

	// Mutating one loaded copy must not leak into the next load.
	first["chess"] = model.Game{Developer: "evil"}
	first["extra"] = model.Game{}

	second, err := s.store.LoadGames(s.ctx)
	s.Require().NoError(err)
	s.Equal("dev1", second["chess"].Developer)
	s.NotContains(second, "extra")
}

func (s *StoreSuite) TestDomainsAreIndependent() {
	s.Require().NoError(s.store.SaveGames(s.ctx, model.GameTable{"chess": {}}))
	s.Require().NoError(s.store.SaveHistory(s.ctx, model.HistoryTable{"alice": {"chess": 3}}))

	games, err := s.store.LoadGames(s.ctx)
	s.Require().NoError(err)
	s.Len(games, 1)

	history, err := s.store.LoadHistory(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, history["alice"]["chess"])
}
