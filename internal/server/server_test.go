package server_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/openarcade/lobby/internal/factory"
	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/protocol"
	"github.com/openarcade/lobby/internal/server"
	"github.com/openarcade/lobby/internal/services/catalog"
	"github.com/openarcade/lobby/internal/testutil"
)

// client is a raw wire-level lobby client for exercising the server over a
// real TCP connection.
type client struct {
	nc    net.Conn
	codec *protocol.Codec
}

func (c *client) close() {
	if c.nc != nil {
		_ = c.nc.Close()
	}
}

func (c *client) request(role protocol.Role, action protocol.Action, payload any) protocol.Request {
	req := protocol.Request{Role: role, Action: action}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			panic(err)
		}
		req.Payload = data
	}
	return req
}

type ServerSuite struct {
	suite.Suite
	app    *factory.TestApp
	srv    *server.Server
	cancel context.CancelFunc
	ctx    context.Context
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.app = factory.NewTestApp(s.T())
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.srv = server.New(s.app.ServerDeps(), server.Config{Host: "127.0.0.1", Port: 0}, testutil.NopLogger())
	s.Require().NoError(s.srv.Listen())
	go func() { _ = s.srv.Serve(s.ctx) }()
}

func (s *ServerSuite) TearDownTest() {
	s.cancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.srv.Shutdown(shutdownCtx)
}

func (s *ServerSuite) dial() *client {
	nc, err := net.Dial("tcp", s.srv.Addr())
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = nc.Close() })
	return &client{nc: nc, codec: protocol.NewCodec(nc)}
}

// call sends one request and decodes the response into out.
func (s *ServerSuite) call(c *client, role protocol.Role, action protocol.Action, payload, out any) {
	s.Require().NoError(c.codec.WriteMessage(c.request(role, action, payload)))
	s.Require().NoError(c.codec.ReadMessage(out))
}

func (s *ServerSuite) register(c *client, role model.Role, user, pass string) {
	var resp protocol.Header
	s.call(c, protocol.RoleSystem, protocol.ActionRegister,
		protocol.RegisterRequest{Role: role, Username: user, Password: pass}, &resp)
	s.Require().True(resp.IsOK(), resp.Message)
}

func (s *ServerSuite) login(c *client, role model.Role, user, pass string) {
	var resp protocol.LoginResponse
	s.call(c, protocol.RoleSystem, protocol.ActionLogin,
		protocol.LoginRequest{Role: role, Username: user, Password: pass}, &resp)
	s.Require().True(resp.IsOK(), resp.Message)
}

// playerConn registers and logs a player in on a fresh connection.
func (s *ServerSuite) playerConn(user string) *client {
	c := s.dial()
	s.register(c, model.RolePlayer, user, "pw")
	s.login(c, model.RolePlayer, user, "pw")
	return c
}

func makeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// publishGame seeds the catalog directly, bypassing the wire upload.
func (s *ServerSuite) publishGame(name string, minPlayers, maxPlayers int) {
	archive := makeZip(s.T(), map[string]string{
		"game_server.sh": "#!/bin/bash\nexit 0\n",
	})
	_, err := s.app.Catalog.Publish(context.Background(), "dev1", catalog.Upload{
		Name:       name,
		Version:    "1.0",
		Type:       model.GameTypeCLI,
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
	}, bytes.NewReader(archive))
	s.Require().NoError(err)
}

func (s *ServerSuite) TestRegisterLoginLogout() {
	c := s.dial()
	s.register(c, model.RolePlayer, "alice", "pw")

	var dup protocol.Header
	s.call(c, protocol.RoleSystem, protocol.ActionRegister,
		protocol.RegisterRequest{Role: model.RolePlayer, Username: "alice", Password: "other"}, &dup)
	s.Equal(protocol.CodeUsernameExists, dup.Code)

	s.login(c, model.RolePlayer, "alice", "pw")

	var out protocol.Header
	s.call(c, protocol.RoleSystem, protocol.ActionLogout, nil, &out)
	s.Require().True(out.IsOK())

	// The session is gone; the same connection can log in again.
	s.login(c, model.RolePlayer, "alice", "pw")
}

func (s *ServerSuite) TestActionsRequireLogin() {
	c := s.dial()

	var resp protocol.Header
	s.call(c, protocol.RolePlayer, protocol.ActionListGames, nil, &resp)
	s.Equal(protocol.CodeAuthRequired, resp.Code)
}

func (s *ServerSuite) TestSecondLoginRejectedWhileSessionLive() {
	first := s.playerConn("alice")
	defer first.close()

	second := s.dial()
	var resp protocol.LoginResponse
	s.call(second, protocol.RoleSystem, protocol.ActionLogin,
		protocol.LoginRequest{Role: model.RolePlayer, Username: "alice", Password: "pw"}, &resp)
	s.Equal(protocol.CodeAlreadyLoggedIn, resp.Code)
}

func (s *ServerSuite) TestMalformedLineIsRecoverable() {
	c := s.dial()

	_, err := c.nc.Write([]byte("{this is not json\n"))
	s.Require().NoError(err)

	var resp protocol.Header
	s.Require().NoError(c.codec.ReadMessage(&resp))
	s.Equal(protocol.CodeProtocolError, resp.Code)

	// The stream stays framed after the bad line.
	s.register(c, model.RolePlayer, "alice", "pw")
}

func (s *ServerSuite) TestRoleMismatchRejected() {
	c := s.playerConn("alice")

	var resp protocol.Header
	s.call(c, protocol.RoleDeveloper, protocol.ActionListMyGames, nil, &resp)
	s.Equal(protocol.CodeInvalidRequest, resp.Code)
}

func (s *ServerSuite) TestRoomFlowThroughStart() {
	s.publishGame("chess", 2, 2)

	alice := s.playerConn("alice")
	bob := s.playerConn("bob")

	var created protocol.CreateRoomResponse
	s.call(alice, protocol.RolePlayer, protocol.ActionCreateRoom,
		protocol.CreateRoomRequest{GameName: "chess"}, &created)
	s.Require().True(created.IsOK(), created.Message)

	var joined protocol.RoomIDResponse
	s.call(bob, protocol.RolePlayer, protocol.ActionJoinRoom,
		protocol.RoomRequest{RoomID: created.RoomID}, &joined)
	s.Require().True(joined.IsOK(), joined.Message)

	// bob blocks in wait_start; the response arrives once alice starts.
	bobStarted := make(chan protocol.StartGameResponse, 1)
	s.Require().NoError(bob.codec.WriteMessage(
		bob.request(protocol.RolePlayer, protocol.ActionWaitStart, protocol.RoomRequest{RoomID: created.RoomID})))
	go func() {
		var resp protocol.StartGameResponse
		if err := bob.codec.ReadMessage(&resp); err == nil {
			bobStarted <- resp
		}
	}()

	s.Require().Eventually(func() bool {
		room, err := s.app.Rooms.Info(created.RoomID)
		return err == nil && room.IsReady("bob")
	}, 2*time.Second, 20*time.Millisecond)

	var started protocol.StartGameResponse
	s.call(alice, protocol.RolePlayer, protocol.ActionStartGame,
		protocol.RoomRequest{RoomID: created.RoomID}, &started)
	s.Require().True(started.IsOK(), started.Message)
	s.ElementsMatch([]string{"alice", "bob"}, started.Players)
	s.Equal("chess", started.GameName)

	select {
	case resp := <-bobStarted:
		s.Require().True(resp.IsOK(), resp.Message)
		s.ElementsMatch([]string{"alice", "bob"}, resp.Players)
	case <-time.After(2 * time.Second):
		s.FailNow("wait_start never unblocked")
	}

	var history protocol.HistoryResponse
	s.call(alice, protocol.RolePlayer, protocol.ActionMyHistory, nil, &history)
	s.Require().True(history.IsOK())
	s.Equal(1, history.History["chess"])
}

func (s *ServerSuite) TestStartRequiresEveryoneReady() {
	s.publishGame("chess", 2, 2)

	alice := s.playerConn("alice")
	bob := s.playerConn("bob")

	var created protocol.CreateRoomResponse
	s.call(alice, protocol.RolePlayer, protocol.ActionCreateRoom,
		protocol.CreateRoomRequest{GameName: "chess"}, &created)
	s.Require().True(created.IsOK())

	var joined protocol.RoomIDResponse
	s.call(bob, protocol.RolePlayer, protocol.ActionJoinRoom,
		protocol.RoomRequest{RoomID: created.RoomID}, &joined)
	s.Require().True(joined.IsOK())

	var resp protocol.Header
	s.call(alice, protocol.RolePlayer, protocol.ActionStartGame,
		protocol.RoomRequest{RoomID: created.RoomID}, &resp)
	s.Equal(protocol.CodePlayersNotReady, resp.Code)
	s.Contains(resp.Message, "bob")
}

func (s *ServerSuite) TestHostDisconnectEvictsAndReassigns() {
	s.publishGame("party", 2, 4)

	alice := s.playerConn("alice")
	bob := s.playerConn("bob")

	var created protocol.CreateRoomResponse
	s.call(alice, protocol.RolePlayer, protocol.ActionCreateRoom,
		protocol.CreateRoomRequest{GameName: "party"}, &created)
	s.Require().True(created.IsOK())

	var joined protocol.RoomIDResponse
	s.call(bob, protocol.RolePlayer, protocol.ActionJoinRoom,
		protocol.RoomRequest{RoomID: created.RoomID}, &joined)
	s.Require().True(joined.IsOK())

	alice.close()

	s.Require().Eventually(func() bool {
		room, err := s.app.Rooms.Info(created.RoomID)
		return err == nil && room.Host == "bob" && len(room.Players) == 1
	}, 2*time.Second, 20*time.Millisecond)

	// alice's online slot is released too, so she can log back in.
	s.Require().Eventually(func() bool {
		return !s.app.Accounts.IsOnline(model.RolePlayer, "alice")
	}, 2*time.Second, 20*time.Millisecond)
	s.login(s.dial(), model.RolePlayer, "alice", "pw")
}

func (s *ServerSuite) TestUploadDownloadRoundTrip() {
	archive := makeZip(s.T(), map[string]string{
		"game_server.sh": "#!/bin/bash\nexit 0\n",
		"README.txt":     "a tiny game",
	})

	dev := s.dial()
	s.register(dev, model.RoleDeveloper, "dev1", "pw")
	s.login(dev, model.RoleDeveloper, "dev1", "pw")

	s.Require().NoError(dev.codec.WriteMessage(dev.request(protocol.RoleDeveloper, protocol.ActionUploadGame,
		protocol.UploadRequest{
			GameName:    "chess",
			Version:     "1.0",
			Type:        model.GameTypeCLI,
			MinPlayers:  2,
			MaxPlayers:  2,
			ArchiveSize: int64(len(archive)),
		})))
	_, err := dev.codec.WriteRaw(bytes.NewReader(archive))
	s.Require().NoError(err)

	var uploaded protocol.UploadResponse
	s.Require().NoError(dev.codec.ReadMessage(&uploaded))
	s.Require().True(uploaded.IsOK(), uploaded.Message)
	s.Equal("chess", uploaded.GameName)

	player := s.playerConn("alice")
	var download protocol.DownloadResponse
	s.call(player, protocol.RolePlayer, protocol.ActionDownloadGame,
		protocol.GameRequest{GameName: "chess"}, &download)
	s.Require().True(download.IsOK(), download.Message)
	s.Require().Equal(int64(len(archive)), download.ArchiveSize)

	got, err := player.codec.ReadFull(download.ArchiveSize)
	s.Require().NoError(err)
	s.Equal(archive, got)

	// The connection stays framed after the raw phase.
	var games protocol.GameListResponse
	s.call(player, protocol.RolePlayer, protocol.ActionListGames, nil, &games)
	s.Require().True(games.IsOK())
	s.Contains(games.Games, "chess")
}

func (s *ServerSuite) TestRejectedUploadKeepsConnection() {
	dev := s.dial()
	s.register(dev, model.RoleDeveloper, "dev1", "pw")
	s.login(dev, model.RoleDeveloper, "dev1", "pw")

	payload := []byte("not a zip at all")
	s.Require().NoError(dev.codec.WriteMessage(dev.request(protocol.RoleDeveloper, protocol.ActionUploadGame,
		protocol.UploadRequest{
			GameName:    "chess",
			Version:     "1.0",
			ArchiveSize: int64(len(payload)),
		})))
	_, err := dev.codec.WriteRaw(bytes.NewReader(payload))
	s.Require().NoError(err)

	var resp protocol.UploadResponse
	s.Require().NoError(dev.codec.ReadMessage(&resp))
	s.False(resp.IsOK())

	// The payload was consumed whole, so the next request parses cleanly.
	var games protocol.GameListResponse
	s.call(dev, protocol.RoleDeveloper, protocol.ActionListMyGames, nil, &games)
	s.Require().True(games.IsOK())
	s.Empty(games.Games)
}
