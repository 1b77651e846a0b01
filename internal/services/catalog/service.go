package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/storage"
)

// Upload carries the metadata of an upload or update request. The archive
// bytes travel separately.
type Upload struct {
	Name        string
	Version     string
	Description string
	Type        model.GameType
	MinPlayers  int
	MaxPlayers  int
}

// Service owns the game catalog and the bundle artifacts on disk. Catalog
// mutations and their persistence run under one lock; artifact files are
// only touched from inside that critical section, so a version's zip and
// unpacked directory always match its catalog entry.
type Service struct {
	store     storage.Store
	bundleDir string
	logger    *slog.Logger

	mu    sync.Mutex
	games model.GameTable
}

// New creates the catalog service, loading the persisted game table and
// creating the bundle directory if needed.
func New(ctx context.Context, store storage.Store, bundleDir string, logger *slog.Logger) (*Service, error) {
	if err := os.MkdirAll(bundleDir, 0o755); err != nil {
		return nil, fmt.Errorf("create bundle dir: %w", err)
	}
	games, err := store.LoadGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	return &Service{
		store:     store,
		bundleDir: bundleDir,
		logger:    logger,
		games:     games,
	}, nil
}

// List returns a copy of the full catalog.
func (s *Service) List() model.GameTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(model.GameTable, len(s.games))
	for name, game := range s.games {
		out[name] = game
	}
	return out
}

// Get returns one catalog entry.
func (s *Service) Get(name string) (model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[name]
	if !ok {
		return model.Game{}, model.ErrGameNotFound
	}
	return game, nil
}

// ListByDeveloper returns the catalog entries owned by one developer.
func (s *Service) ListByDeveloper(developer string) model.GameTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := model.GameTable{}
	for name, game := range s.games {
		if game.Developer == developer {
			out[name] = game
		}
	}
	return out
}

// ZipPath returns where the archive for (name, version) lives.
func (s *Service) ZipPath(name, version string) string {
	return filepath.Join(s.bundleDir, fmt.Sprintf("%s_%s.zip", name, version))
}

// UnpackDir returns where the bundle for (name, version) is unpacked.
func (s *Service) UnpackDir(name, version string) string {
	return filepath.Join(s.bundleDir, fmt.Sprintf("%s_%s", name, version))
}

// normalize applies the player-count defaults: min defaults to 2, max
// defaults to min, and max >= min >= 1 must hold.
func normalizePlayers(minPlayers, maxPlayers int) (int, int, error) {
	if minPlayers == 0 {
		minPlayers = 2
	}
	if minPlayers < 1 {
		return 0, 0, fmt.Errorf("%w: min_players must be at least 1", model.ErrInvalidArgument)
	}
	if maxPlayers == 0 {
		maxPlayers = minPlayers
	}
	if maxPlayers < minPlayers {
		return 0, 0, fmt.Errorf("%w: max_players must be at least min_players", model.ErrInvalidArgument)
	}
	return minPlayers, maxPlayers, nil
}

func validateMeta(up Upload) error {
	if up.Name == "" || up.Version == "" {
		return fmt.Errorf("%w: game_name and version are required", model.ErrInvalidArgument)
	}
	return nil
}

// Publish creates or overwrites a catalog entry from an upload. The archive
// reader must yield exactly the announced byte count; its contents are
// written to the version's zip and unpacked, replacing any stale contents of
// that exact version.
func (s *Service) Publish(ctx context.Context, developer string, up Upload, archive io.Reader) (model.Game, error) {
	if err := validateMeta(up); err != nil {
		return model.Game{}, err
	}
	minPlayers, maxPlayers, err := normalizePlayers(up.MinPlayers, up.MaxPlayers)
	if err != nil {
		return model.Game{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storeBundle(up.Name, up.Version, archive); err != nil {
		return model.Game{}, err
	}

	game := model.Game{
		Developer:   developer,
		Version:     up.Version,
		Description: up.Description,
		Type:        up.Type,
		MinPlayers:  minPlayers,
		MaxPlayers:  maxPlayers,
	}
	s.games[up.Name] = game
	if err := s.store.SaveGames(ctx, s.games); err != nil {
		return model.Game{}, fmt.Errorf("save games: %w", err)
	}

	s.logger.Info("game published",
		slog.String("game", up.Name),
		slog.String("version", up.Version),
		slog.String("developer", developer))
	return game, nil
}

// Update replaces an existing entry's bundle and metadata. Only the owning
// developer may update; zero-valued player counts keep the previous values.
// The previous version's artifacts are removed only after the new bundle is
// fully stored.
func (s *Service) Update(ctx context.Context, developer string, up Upload, archive io.Reader) (model.Game, error) {
	if err := validateMeta(up); err != nil {
		return model.Game{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.games[up.Name]
	if !ok {
		return model.Game{}, model.ErrGameNotFound
	}
	if prev.Developer != developer {
		return model.Game{}, model.ErrNotOwner
	}

	minPlayers := up.MinPlayers
	if minPlayers == 0 {
		minPlayers = prev.MinPlayers
	}
	maxPlayers := up.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = prev.MaxPlayers
	}
	minPlayers, maxPlayers, err := normalizePlayers(minPlayers, maxPlayers)
	if err != nil {
		return model.Game{}, err
	}

	if err := s.storeBundle(up.Name, up.Version, archive); err != nil {
		return model.Game{}, err
	}
	if prev.Version != up.Version {
		s.removeArtifacts(up.Name, prev.Version)
	}

	game := prev
	game.Version = up.Version
	game.MinPlayers = minPlayers
	game.MaxPlayers = maxPlayers
	if up.Description != "" {
		game.Description = up.Description
	}
	if up.Type != "" {
		game.Type = up.Type
	}
	s.games[up.Name] = game
	if err := s.store.SaveGames(ctx, s.games); err != nil {
		return model.Game{}, fmt.Errorf("save games: %w", err)
	}

	s.logger.Info("game updated",
		slog.String("game", up.Name),
		slog.String("version", up.Version),
		slog.String("developer", developer))
	return game, nil
}

// Delete removes a catalog entry and its artifacts. Owner-only.
func (s *Service) Delete(ctx context.Context, developer, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[name]
	if !ok {
		return model.ErrGameNotFound
	}
	if game.Developer != developer {
		return model.ErrNotOwner
	}

	s.removeArtifacts(name, game.Version)
	delete(s.games, name)
	if err := s.store.SaveGames(ctx, s.games); err != nil {
		return fmt.Errorf("save games: %w", err)
	}

	s.logger.Info("game deleted",
		slog.String("game", name),
		slog.String("developer", developer))
	return nil
}

// DownloadInfo describes the archive a client should drain after the
// download header.
type DownloadInfo struct {
	Version string
	Path    string
	Size    int64
}

// Download resolves the current archive for a game.
func (s *Service) Download(name string) (DownloadInfo, error) {
	s.mu.Lock()
	game, ok := s.games[name]
	s.mu.Unlock()
	if !ok {
		return DownloadInfo{}, model.ErrGameNotFound
	}

	path := s.ZipPath(name, game.Version)
	stat, err := os.Stat(path)
	if err != nil {
		return DownloadInfo{}, model.ErrBundleNotFound
	}
	return DownloadInfo{
		Version: game.Version,
		Path:    path,
		Size:    stat.Size(),
	}, nil
}

// storeBundle writes the archive to the version zip and unpacks it.
func (s *Service) storeBundle(name, version string, archive io.Reader) error {
	zipPath := s.ZipPath(name, version)
	f, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	if _, err := io.Copy(f, archive); err != nil {
		f.Close()
		os.Remove(zipPath)
		return fmt.Errorf("receive archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := extractArchive(zipPath, s.UnpackDir(name, version)); err != nil {
		return fmt.Errorf("unpack archive: %w", err)
	}
	return nil
}

// removeArtifacts deletes a version's zip and unpacked directory, ignoring
// failures: a leftover file must not block the catalog mutation.
func (s *Service) removeArtifacts(name, version string) {
	if err := os.Remove(s.ZipPath(name, version)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove old archive",
			slog.String("game", name),
			slog.String("version", version),
			slog.String("error", err.Error()))
	}
	if err := os.RemoveAll(s.UnpackDir(name, version)); err != nil {
		s.logger.Warn("failed to remove old bundle dir",
			slog.String("game", name),
			slog.String("version", version),
			slog.String("error", err.Error()))
	}
}
