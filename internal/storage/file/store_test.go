package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/openarcade/lobby/internal/model"
)

type StoreSuite struct {
	suite.Suite
	dir   string
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.dir = s.T().TempDir()
	store, err := New(s.dir)
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
}

func (s *StoreSuite) TestNewCreatesDataDir() {
	nested := filepath.Join(s.T().TempDir(), "a", "b")
	_, err := New(nested)
	s.Require().NoError(err)
	s.DirExists(nested)
}

func (s *StoreSuite) TestLoadMissingFilesReturnsInitializedTables() {
	accounts, err := s.store.LoadAccounts(s.ctx)
	s.Require().NoError(err)
	s.NotNil(accounts[model.RolePlayer])
	s.NotNil(accounts[model.RoleDeveloper])

	ratings, err := s.store.LoadRatings(s.ctx)
	s.Require().NoError(err)
	s.Empty(ratings)
}

func (s *StoreSuite) TestAccountsRoundTrip() {
	table := model.NewAccountTable()
	table[model.RolePlayer]["alice"] = model.Account{
		Role:         model.RolePlayer,
		Username:     "alice",
		PasswordHash: "$2a$10$abcdef",
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.SaveAccounts(s.ctx, table))

	got, err := s.store.LoadAccounts(s.ctx)
	s.Require().NoError(err)
	s.Equal(table, got)
	s.FileExists(filepath.Join(s.dir, "accounts.json"))
}

func (s *StoreSuite) TestSaveLeavesNoTempFile() {
	s.Require().NoError(s.store.SaveGames(s.ctx, model.GameTable{"chess": {}}))
	s.NoFileExists(filepath.Join(s.dir, "games.json.tmp"))
}

func (s *StoreSuite) TestSnapshotsSurviveReopen() {
	s.Require().NoError(s.store.SaveRooms(s.ctx, model.RoomTable{
		2: {ID: 2, Host: "bob", GameName: "chess", Players: []string{"bob"}},
	}))

	reopened, err := New(s.dir)
	s.Require().NoError(err)

	rooms, err := reopened.LoadRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal("bob", rooms[2].Host)
}

func (s *StoreSuite) TestCorruptFileSurfacesError() {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "games.json"), []byte("{not json"), 0o644))

	_, err := s.store.LoadGames(s.ctx)
	s.Error(err)
}
