package account

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/openarcade/lobby/internal/dependencies/clock"
	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/storage"
)

// Service owns the account table and the per-role online sets. Accounts are
// durable; the online sets are ephemeral session state and rebuilt empty on
// startup. The two live under separate locks: credential checks never block
// presence queries.
type Service struct {
	store  storage.Store
	clock  clock.Clock
	logger *slog.Logger

	mu       sync.Mutex
	accounts model.AccountTable

	onlineMu sync.Mutex
	online   map[model.Role]map[string]struct{}
}

// New creates the account service, loading the persisted account table.
func New(ctx context.Context, store storage.Store, clk clock.Clock, logger *slog.Logger) (*Service, error) {
	accounts, err := store.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return &Service{
		store:    store,
		clock:    clk,
		logger:   logger,
		accounts: accounts,
		online: map[model.Role]map[string]struct{}{
			model.RolePlayer:    {},
			model.RoleDeveloper: {},
		},
	}, nil
}

// Register creates an account. Usernames are unique per role; the account is
// immutable once created.
func (s *Service) Register(ctx context.Context, role model.Role, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	group := s.accounts.Group(role)
	if _, exists := group[username]; exists {
		return model.ErrUsernameExists
	}
	group[username] = model.Account{
		Role:         role,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	if err := s.store.SaveAccounts(ctx, s.accounts); err != nil {
		delete(group, username)
		return fmt.Errorf("save accounts: %w", err)
	}

	s.logger.Info("account registered",
		slog.String("role", string(role)),
		slog.String("username", username))
	return nil
}

// Login validates credentials and marks the user online. A second concurrent
// login for the same (role, username) fails until the first logs out.
func (s *Service) Login(ctx context.Context, role model.Role, username, password string) error {
	s.mu.Lock()
	acct, exists := s.accounts.Group(role)[username]
	s.mu.Unlock()

	if !exists {
		return model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return model.ErrInvalidCredentials
	}

	s.onlineMu.Lock()
	defer s.onlineMu.Unlock()

	set := s.online[role]
	if _, active := set[username]; active {
		return model.ErrAlreadyLoggedIn
	}
	set[username] = struct{}{}

	s.logger.Info("user logged in",
		slog.String("role", string(role)),
		slog.String("username", username))
	return nil
}

// Logout removes the user from its role's online set. Safe to call for a
// user that is already offline.
func (s *Service) Logout(role model.Role, username string) {
	s.onlineMu.Lock()
	delete(s.online[role], username)
	s.onlineMu.Unlock()

	s.logger.Info("user logged out",
		slog.String("role", string(role)),
		slog.String("username", username))
}

// IsOnline reports whether the user currently has a session.
func (s *Service) IsOnline(role model.Role, username string) bool {
	s.onlineMu.Lock()
	defer s.onlineMu.Unlock()
	_, active := s.online[role][username]
	return active
}

// OnlineUsers returns the sorted online player and developer names.
func (s *Service) OnlineUsers() (players, developers []string) {
	s.onlineMu.Lock()
	defer s.onlineMu.Unlock()

	for name := range s.online[model.RolePlayer] {
		players = append(players, name)
	}
	for name := range s.online[model.RoleDeveloper] {
		developers = append(developers, name)
	}
	sort.Strings(players)
	sort.Strings(developers)
	return players, developers
}
