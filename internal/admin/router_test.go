package admin_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/openarcade/lobby/internal/admin"
	"github.com/openarcade/lobby/internal/factory"
	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/services/catalog"
	"github.com/openarcade/lobby/internal/testutil"
)

type RouterSuite struct {
	suite.Suite
	app *factory.TestApp
	ts  *httptest.Server
	ctx context.Context
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.app = factory.NewTestApp(s.T())
	s.ctx = context.Background()

	router := admin.NewRouter(admin.RouterConfig{
		Logger:   testutil.NopLogger(),
		Accounts: s.app.Accounts,
		Rooms:    s.app.Rooms,
		Catalog:  s.app.Catalog,
	})
	s.ts = httptest.NewServer(router)
	s.T().Cleanup(s.ts.Close)
}

// get fetches a path and decodes the JSON body.
func (s *RouterSuite) get(path string, out any) *http.Response {
	resp, err := http.Get(s.ts.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()
	if out != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (s *RouterSuite) publishGame(name string, minPlayers, maxPlayers int) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("game_server.sh")
	s.Require().NoError(err)
	_, err = w.Write([]byte("#!/bin/bash\nexit 0\n"))
	s.Require().NoError(err)
	s.Require().NoError(zw.Close())

	_, err = s.app.Catalog.Publish(s.ctx, "dev1", catalog.Upload{
		Name:       name,
		Version:    "1.0",
		Type:       model.GameTypeCLI,
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
	}, &buf)
	s.Require().NoError(err)
}

func (s *RouterSuite) TestHealthz() {
	var body map[string]string
	resp := s.get("/healthz", &body)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("ok", body["status"])
}

func (s *RouterSuite) TestListGames() {
	s.publishGame("chess", 2, 2)

	var body struct {
		Games model.GameTable `json:"games"`
	}
	resp := s.get("/api/v1/games", &body)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Require().Contains(body.Games, "chess")
	s.Equal("dev1", body.Games["chess"].Developer)
}

func (s *RouterSuite) TestListRoomsWithFilter() {
	s.publishGame("chess", 2, 2)
	s.publishGame("party", 2, 4)

	_, err := s.app.Rooms.Create(s.ctx, "alice", "chess")
	s.Require().NoError(err)
	_, err = s.app.Rooms.Create(s.ctx, "bob", "party")
	s.Require().NoError(err)

	var body struct {
		Rooms []model.Room `json:"rooms"`
	}
	s.get("/api/v1/rooms", &body)
	s.Len(body.Rooms, 2)

	body.Rooms = nil
	s.get("/api/v1/rooms?game=chess", &body)
	s.Require().Len(body.Rooms, 1)
	s.Equal("alice", body.Rooms[0].Host)
}

func (s *RouterSuite) TestListOnline() {
	s.Require().NoError(s.app.Accounts.Register(s.ctx, model.RolePlayer, "alice", "pw"))
	s.Require().NoError(s.app.Accounts.Register(s.ctx, model.RoleDeveloper, "dev1", "pw"))
	s.Require().NoError(s.app.Accounts.Login(s.ctx, model.RolePlayer, "alice", "pw"))
	s.Require().NoError(s.app.Accounts.Login(s.ctx, model.RoleDeveloper, "dev1", "pw"))

	var body struct {
		Players    []string `json:"players"`
		Developers []string `json:"developers"`
	}
	s.get("/api/v1/online", &body)
	s.Equal([]string{"alice"}, body.Players)
	s.Equal([]string{"dev1"}, body.Developers)
}

func (s *RouterSuite) TestUnknownRouteIs404() {
	resp := s.get("/api/v1/nope", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}
