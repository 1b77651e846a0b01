package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/storage"
)

// Store is an in-memory implementation of the storage interface. Snapshots
// are kept as serialized bytes per domain, so callers never share table
// memory with the store. Intended for tests and throwaway servers.
type Store struct {
	accounts domain
	games    domain
	rooms    domain
	ratings  domain
	history  domain
}

// One lock per domain.
type domain struct {
	mu   sync.Mutex
	data []byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{}
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

func (d *domain) save(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	d.mu.Lock()
	d.data = data
	d.mu.Unlock()
	return nil
}

func (d *domain) load(v any) (bool, error) {
	d.mu.Lock()
	data := d.data
	d.mu.Unlock()
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode snapshot: %w", err)
	}
	return true, nil
}

func (s *Store) LoadAccounts(ctx context.Context) (model.AccountTable, error) {
	accounts := model.NewAccountTable()
	if _, err := s.accounts.load(&accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *Store) SaveAccounts(ctx context.Context, accounts model.AccountTable) error {
	return s.accounts.save(accounts)
}

func (s *Store) LoadGames(ctx context.Context) (model.GameTable, error) {
	games := model.GameTable{}
	if _, err := s.games.load(&games); err != nil {
		return nil, err
	}
	return games, nil
}

func (s *Store) SaveGames(ctx context.Context, games model.GameTable) error {
	return s.games.save(games)
}

func (s *Store) LoadRooms(ctx context.Context) (model.RoomTable, error) {
	rooms := model.RoomTable{}
	if _, err := s.rooms.load(&rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *Store) SaveRooms(ctx context.Context, rooms model.RoomTable) error {
	return s.rooms.save(rooms)
}

func (s *Store) LoadRatings(ctx context.Context) (model.RatingTable, error) {
	ratings := model.RatingTable{}
	if _, err := s.ratings.load(&ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (s *Store) SaveRatings(ctx context.Context, ratings model.RatingTable) error {
	return s.ratings.save(ratings)
}

func (s *Store) LoadHistory(ctx context.Context) (model.HistoryTable, error) {
	history := model.HistoryTable{}
	if _, err := s.history.load(&history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Store) SaveHistory(ctx context.Context, history model.HistoryTable) error {
	return s.history.save(history)
}
