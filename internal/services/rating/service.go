package rating

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/openarcade/lobby/internal/dependencies/clock"
	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/storage"
)

// MaxCommentLength bounds rating comments.
const MaxCommentLength = 300

// LatestReturned is how many entries a ratings query returns; the average
// still covers every stored score.
const LatestReturned = 5

// Service owns game ratings and play history. The two tables are
// independent domains with independent locks; a rating submission reads
// history (a player may only rate games it has played) but never mutates it.
type Service struct {
	store  storage.Store
	clock  clock.Clock
	logger *slog.Logger

	ratingsMu sync.Mutex
	ratings   model.RatingTable

	historyMu sync.Mutex
	history   model.HistoryTable
}

// New creates the rating service, loading both persisted tables.
func New(ctx context.Context, store storage.Store, clk clock.Clock, logger *slog.Logger) (*Service, error) {
	ratings, err := store.LoadRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	history, err := store.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return &Service{
		store:   store,
		clock:   clk,
		logger:  logger,
		ratings: ratings,
		history: history,
	}, nil
}

// RecordPlays increments every listed player's count for the game by one.
// Called on each room transition to playing.
func (s *Service) RecordPlays(ctx context.Context, players []string, gameName string) error {
	if len(players) == 0 {
		return nil
	}

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	for _, p := range players {
		games, ok := s.history[p]
		if !ok {
			games = map[string]int{}
			s.history[p] = games
		}
		games[gameName]++
	}
	if err := s.store.SaveHistory(ctx, s.history); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// PlayerHistory returns a copy of one player's game-to-count map.
func (s *Service) PlayerHistory(username string) map[string]int {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	out := map[string]int{}
	for game, count := range s.history[username] {
		out[game] = count
	}
	return out
}

// playCount reads one player's count for one game.
func (s *Service) playCount(username, gameName string) int {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	return s.history[username][gameName]
}

// AddRating appends a rating. The score must be 1..5, the comment at most
// MaxCommentLength characters, and the submitter must have played the game
// at least once.
func (s *Service) AddRating(ctx context.Context, username, gameName string, score int, comment string) error {
	if score < 1 || score > 5 {
		return fmt.Errorf("%w: score must be between 1 and 5", model.ErrInvalidArgument)
	}
	if len([]rune(comment)) > MaxCommentLength {
		return fmt.Errorf("%w: comment too long (max %d characters)", model.ErrInvalidArgument, MaxCommentLength)
	}
	if s.playCount(username, gameName) < 1 {
		return model.ErrGameNotPlayed
	}

	s.ratingsMu.Lock()
	defer s.ratingsMu.Unlock()

	s.ratings[gameName] = append(s.ratings[gameName], model.Rating{
		Player:    username,
		Score:     score,
		Comment:   comment,
		Timestamp: s.clock.Now(),
	})
	if err := s.store.SaveRatings(ctx, s.ratings); err != nil {
		return fmt.Errorf("save ratings: %w", err)
	}

	s.logger.Info("rating added",
		slog.String("game", gameName),
		slog.String("player", username),
		slog.Int("score", score))
	return nil
}

// Summary is the answer to a ratings query: the average and count over all
// stored entries, plus the most recent few.
type Summary struct {
	AvgScore *float64
	Count    int
	Latest   []model.Rating
}

// GameRatings summarizes a game's ratings. The average is the mean of every
// stored score, not just the returned slice; Latest holds at most
// LatestReturned entries, most recent last.
func (s *Service) GameRatings(gameName string) Summary {
	s.ratingsMu.Lock()
	defer s.ratingsMu.Unlock()

	entries := s.ratings[gameName]
	if len(entries) == 0 {
		return Summary{Latest: []model.Rating{}}
	}

	total := 0
	for _, r := range entries {
		total += r.Score
	}
	avg := float64(total) / float64(len(entries))

	start := len(entries) - LatestReturned
	if start < 0 {
		start = 0
	}
	latest := append([]model.Rating(nil), entries[start:]...)

	return Summary{
		AvgScore: &avg,
		Count:    len(entries),
		Latest:   latest,
	}
}
