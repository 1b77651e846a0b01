package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/openarcade/lobby/internal/dependencies/clock"
	"github.com/openarcade/lobby/internal/launcher"
	"github.com/openarcade/lobby/internal/server"
	"github.com/openarcade/lobby/internal/services/account"
	"github.com/openarcade/lobby/internal/services/catalog"
	"github.com/openarcade/lobby/internal/services/rating"
	"github.com/openarcade/lobby/internal/services/room"
	"github.com/openarcade/lobby/internal/storage"
	filestorage "github.com/openarcade/lobby/internal/storage/file"
	"github.com/openarcade/lobby/internal/storage/memory"
	redisstorage "github.com/openarcade/lobby/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Storage storage.Store
	Clock   clock.Clock

	Accounts *account.Service
	Catalog  *catalog.Service
	Ratings  *rating.Service
	Rooms    *room.Manager
	Launcher *launcher.Launcher
}

// Config holds configuration for the application factory
type Config struct {
	// BundleDir is where uploaded game archives are stored and unpacked
	BundleDir string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "file" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// DataDir is the directory for the file backend (required if
	// StorageType is "file")
	DataDir string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeFile:
		if cfg.DataDir == "" {
			return nil, errors.New("DataDir required when StorageType is file")
		}
		fileStore, err := filestorage.New(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		store = fileStore
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'file' or 'redis'")
	}

	return newWithDependencies(ctx, store, clock.New(), cfg.BundleDir, logger)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(ctx context.Context, store storage.Store, clk clock.Clock, bundleDir string, logger *slog.Logger) (*App, error) {
	accounts, err := account.New(ctx, store, clk, logger)
	if err != nil {
		return nil, err
	}
	catalogService, err := catalog.New(ctx, store, bundleDir, logger)
	if err != nil {
		return nil, err
	}
	ratings, err := rating.New(ctx, store, clk, logger)
	if err != nil {
		return nil, err
	}
	gameLauncher := launcher.New(bundleDir, logger)
	rooms, err := room.New(ctx, store, catalogService, ratings, gameLauncher, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Storage:  store,
		Clock:    clk,
		Accounts: accounts,
		Catalog:  catalogService,
		Ratings:  ratings,
		Rooms:    rooms,
		Launcher: gameLauncher,
	}, nil
}

// ServerDeps bundles the app services the lobby server dispatches into.
func (a *App) ServerDeps() server.Deps {
	return server.Deps{
		Accounts: a.Accounts,
		Rooms:    a.Rooms,
		Catalog:  a.Catalog,
		Ratings:  a.Ratings,
	}
}
