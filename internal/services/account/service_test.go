package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/openarcade/lobby/internal/dependencies/mocks"
	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/storage/memory"
	"github.com/openarcade/lobby/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store   *memory.Store
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ctx = context.Background()

	service, err := New(s.ctx, s.store, s.clock, testutil.NopLogger())
	s.Require().NoError(err)
	s.service = service
}

func (s *ServiceSuite) TestRegisterAndLogin() {
	s.Require().NoError(s.service.Register(s.ctx, model.RolePlayer, "alice", "secret"))
	s.Require().NoError(s.service.Login(s.ctx, model.RolePlayer, "alice", "secret"))
	s.True(s.service.IsOnline(model.RolePlayer, "alice"))
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	s.Require().NoError(s.service.Register(s.ctx, model.RolePlayer, "alice", "secret"))

	err := s.service.Register(s.ctx, model.RolePlayer, "alice", "other")
	s.ErrorIs(err, model.ErrUsernameExists)
}

func (s *ServiceSuite) TestSameUsernameAcrossRoles() {
	// Player and developer namespaces are independent.
	s.Require().NoError(s.service.Register(s.ctx, model.RolePlayer, "alice", "secret"))
	s.Require().NoError(s.service.Register(s.ctx, model.RoleDeveloper, "alice", "secret"))
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	s.Require().NoError(s.service.Register(s.ctx, model.RolePlayer, "alice", "secret"))

	err := s.service.Login(s.ctx, model.RolePlayer, "alice", "wrong")
	s.ErrorIs(err, model.ErrInvalidCredentials)
	s.False(s.service.IsOnline(model.RolePlayer, "alice"))
}

func (s *ServiceSuite) TestLoginUnknownUser() {
	err := s.service.Login(s.ctx, model.RolePlayer, "ghost", "secret")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginWrongRole() {
	s.Require().NoError(s.service.Register(s.ctx, model.RolePlayer, "alice", "secret"))

	err := s.service.Login(s.ctx, model.RoleDeveloper, "alice", "secret")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestSecondConcurrentLoginRejected() {
	s.Require().NoError(s.service.Register(s.ctx, model.RolePlayer, "alice", "secret"))
	s.Require().NoError(s.service.Login(s.ctx, model.RolePlayer, "alice", "secret"))

	err := s.service.Login(s.ctx, model.RolePlayer, "alice", "secret")
	s.ErrorIs(err, model.ErrAlreadyLoggedIn)
}

func (s *ServiceSuite) TestLogoutFreesSession() {
	s.Require().NoError(s.service.Register(s.ctx, model.RolePlayer, "alice", "secret"))
	s.Require().NoError(s.service.Login(s.ctx, model.RolePlayer, "alice", "secret"))

	s.service.Logout(model.RolePlayer, "alice")
	s.False(s.service.IsOnline(model.RolePlayer, "alice"))

	s.Require().NoError(s.service.Login(s.ctx, model.RolePlayer, "alice", "secret"))
}

func (s *ServiceSuite) TestLogoutWhenOfflineIsNoOp() {
	s.service.Logout(model.RolePlayer, "nobody")
}

func (s *ServiceSuite) TestOnlineUsersSorted() {
	for _, name := range []string{"carol", "alice", "bob"} {
		s.Require().NoError(s.service.Register(s.ctx, model.RolePlayer, name, "pw"))
		s.Require().NoError(s.service.Login(s.ctx, model.RolePlayer, name, "pw"))
	}
	s.Require().NoError(s.service.Register(s.ctx, model.RoleDeveloper, "dave", "pw"))
	s.Require().NoError(s.service.Login(s.ctx, model.RoleDeveloper, "dave", "pw"))

	players, developers := s.service.OnlineUsers()
	s.Equal([]string{"alice", "bob", "carol"}, players)
	s.Equal([]string{"dave"}, developers)
}

func (s *ServiceSuite) TestAccountsSurviveRestart() {
	s.Require().NoError(s.service.Register(s.ctx, model.RolePlayer, "alice", "secret"))

	reloaded, err := New(s.ctx, s.store, s.clock, testutil.NopLogger())
	s.Require().NoError(err)

	s.Require().NoError(reloaded.Login(s.ctx, model.RolePlayer, "alice", "secret"))
	// Presence is ephemeral: nobody is online right after a restart.
	s.False(reloaded.IsOnline(model.RolePlayer, "bob"))
}

func (s *ServiceSuite) TestPasswordsStoredHashed() {
	s.Require().NoError(s.service.Register(s.ctx, model.RolePlayer, "alice", "secret"))

	table, err := s.store.LoadAccounts(s.ctx)
	s.Require().NoError(err)
	acct := table[model.RolePlayer]["alice"]
	s.NotEmpty(acct.PasswordHash)
	s.NotEqual("secret", acct.PasswordHash)
}
