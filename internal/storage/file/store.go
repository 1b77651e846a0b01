package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/storage"
)

// Store is a flat-file implementation of the storage interface. Each domain
// lives in its own JSON file under the data directory and owns its own lock;
// saves overwrite the file via a temp-file rename so a crash mid-write never
// leaves a truncated snapshot.
type Store struct {
	dir string

	accounts domain
	games    domain
	rooms    domain
	ratings  domain
	history  domain
}

type domain struct {
	mu   sync.Mutex
	path string
}

// New creates a file store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{dir: dir}
	s.accounts.path = filepath.Join(dir, "accounts.json")
	s.games.path = filepath.Join(dir, "games.json")
	s.rooms.path = filepath.Join(dir, "rooms.json")
	s.ratings.path = filepath.Join(dir, "ratings.json")
	s.history.path = filepath.Join(dir, "history.json")
	return s, nil
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

func (d *domain) save(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(d.path), err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(d.path), err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(d.path), err)
	}
	return nil
}

// load decodes the domain file into v, reporting whether the file existed.
func (d *domain) load(v any) (bool, error) {
	d.mu.Lock()
	data, err := os.ReadFile(d.path)
	d.mu.Unlock()

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", filepath.Base(d.path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(d.path), err)
	}
	return true, nil
}

func (s *Store) LoadAccounts(ctx context.Context) (model.AccountTable, error) {
	accounts := model.NewAccountTable()
	if _, err := s.accounts.load(&accounts); err != nil {
		return nil, err
	}
	// Older snapshots may predate one of the role groups.
	accounts.Group(model.RolePlayer)
	accounts.Group(model.RoleDeveloper)
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
