package factory

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/services/catalog"
)

// IntegrationSuite drives a full lobby life-cycle through the wired services:
// publish, register, room flow, play history, rating.
type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp(s.T())
	s.ctx = context.Background()
}

func (s *IntegrationSuite) archive() *bytes.Reader {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("game_server.sh")
	s.Require().NoError(err)
	_, err = w.Write([]byte("#!/bin/bash\nexit 0\n"))
	s.Require().NoError(err)
	s.Require().NoError(zw.Close())
	return bytes.NewReader(buf.Bytes())
}

func (s *IntegrationSuite) TestFullLobbyFlow() {
	// Developer side: account plus a published game.
	s.Require().NoError(s.app.Accounts.Register(s.ctx, model.RoleDeveloper, "dev1", "pw"))
	s.Require().NoError(s.app.Accounts.Login(s.ctx, model.RoleDeveloper, "dev1", "pw"))

	game, err := s.app.Catalog.Publish(s.ctx, "dev1", catalog.Upload{
		Name:       "chess",
		Version:    "1.0",
		Type:       model.GameTypeCLI,
		MinPlayers: 2,
		MaxPlayers: 2,
	}, s.archive())
	s.Require().NoError(err)
	s.Equal("dev1", game.Developer)

	// Players come online.
	s.Require().NoError(s.app.Accounts.Register(s.ctx, model.RolePlayer, "alice", "pw"))
	s.Require().NoError(s.app.Accounts.Register(s.ctx, model.RolePlayer, "bob", "pw"))
	s.Require().NoError(s.app.Accounts.Login(s.ctx, model.RolePlayer, "alice", "pw"))
	s.Require().NoError(s.app.Accounts.Login(s.ctx, model.RolePlayer, "bob", "pw"))

	players, developers := s.app.Accounts.OnlineUsers()
	s.Equal([]string{"alice", "bob"}, players)
	s.Equal([]string{"dev1"}, developers)

	// Room flow: create, join, ready, start.
	room, err := s.app.Rooms.Create(s.ctx, "alice", "chess")
	s.Require().NoError(err)
	s.Require().NoError(s.app.Rooms.Join(s.ctx, "bob", room.ID))
	s.Require().NoError(s.app.Rooms.MarkReady(s.ctx, "bob", room.ID))

	result, err := s.app.Rooms.Start(s.ctx, "alice", room.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"alice", "bob"}, result.Players)
	s.Equal("1.0", result.Version)

	info, err := s.app.Rooms.Info(room.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusPlaying, info.Status)

	// The play lands in both histories, unlocking ratings.
	s.Equal(1, s.app.Ratings.PlayerHistory("alice")["chess"])
	s.Equal(1, s.app.Ratings.PlayerHistory("bob")["chess"])

	s.Require().NoError(s.app.Ratings.AddRating(s.ctx, "alice", "chess", 5, "great"))
	summary := s.app.Ratings.GameRatings("chess")
	s.Equal(1, summary.Count)
	s.Require().NotNil(summary.AvgScore)
	s.InDelta(5.0, *summary.AvgScore, 0.001)

	// A player who never played cannot rate.
	s.Require().ErrorIs(s.app.Ratings.AddRating(s.ctx, "dev1", "chess", 4, ""),
		model.ErrGameNotPlayed)
}

func (s *IntegrationSuite) TestDownloadMatchesPublishedArchive() {
	s.Require().NoError(s.app.Accounts.Register(s.ctx, model.RoleDeveloper, "dev1", "pw"))

	archive := s.archive()
	size := archive.Size()
	_, err := s.app.Catalog.Publish(s.ctx, "dev1", catalog.Upload{
		Name:    "chess",
		Version: "1.0",
		Type:    model.GameTypeCLI,
	}, archive)
	s.Require().NoError(err)

	info, err := s.app.Catalog.Download("chess")
	s.Require().NoError(err)
	s.Equal(size, info.Size)
	s.Equal("1.0", info.Version)
}
