package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/storage"
)

// Store is a Redis-backed implementation of the storage interface. Each
// domain snapshot is one JSON value under its own key; Redis serializes the
// per-key writes, giving the same one-lock-per-domain behavior as the file
// store.
type Store struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis store instance
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	return &Store{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

func (s *Store) key(domain string) string {
	return s.cfg.KeyPrefix + ":" + domain
}

func (s *Store) save(ctx context.Context, domain string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", domain, err)
	}
	return s.client.Set(ctx, s.key(domain), data, 0).Err()
}

// load decodes the domain key into v, reporting whether the key existed.
func (s *Store) load(ctx context.Context, domain string, v any) (bool, error) {
	data, err := s.client.Get(ctx, s.key(domain)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", domain, err)
	}
	return true, nil
}

func (s *Store) LoadAccounts(ctx context.Context) (model.AccountTable, error) {
	accounts := model.NewAccountTable()
	if _, err := s.load(ctx, "accounts", &accounts); err != nil {
		return nil, err
	}
	accounts.Group(model.RolePlayer)
	accounts.Group(model.RoleDeveloper)
	return accounts, nil
}

func (s *Store) SaveAccounts(ctx context.Context, accounts model.AccountTable) error {
	return s.save(ctx, "accounts", accounts)
}

func (s *Store) LoadGames(ctx context.Context) (model.GameTable, error) {
	games := model.GameTable{}
	if _, err := s.load(ctx, "games", &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (s *Store) SaveGames(ctx context.Context, games model.GameTable) error {
	return s.save(ctx, "games", games)
}

func (s *Store) LoadRooms(ctx context.Context) (model.RoomTable, error) {
	rooms := model.RoomTable{}
	if _, err := s.load(ctx, "rooms", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *Store) SaveRooms(ctx context.Context, rooms model.RoomTable) error {
	return s.save(ctx, "rooms", rooms)
}

func (s *Store) LoadRatings(ctx context.Context) (model.RatingTable, error) {
	ratings := model.RatingTable{}
	if _, err := s.load(ctx, "ratings", &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (s *Store) SaveRatings(ctx context.Context, ratings model.RatingTable) error {
	return s.save(ctx, "ratings", ratings)
}

func (s *Store) LoadHistory(ctx context.Context) (model.HistoryTable, error) {
	history := model.HistoryTable{}
	if _, err := s.load(ctx, "history", &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Store) SaveHistory(ctx context.Context, history model.HistoryTable) error {
	return s.save(ctx, "history", history)
}
