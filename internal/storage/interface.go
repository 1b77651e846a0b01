package storage

import (
	"context"

	"github.com/openarcade/lobby/internal/model"
)

// Store defines per-domain load/save snapshot pairs. Saves overwrite the
// whole domain; loads of an absent domain return an empty initialized table,
// never an error. Each domain is independently synchronized, so concurrent
// saves to different domains never contend.
type Store interface {
	// Account operations
	LoadAccounts(ctx context.Context) (model.AccountTable, error)
	SaveAccounts(ctx context.Context, accounts model.AccountTable) error

	// Catalog operations
	LoadGames(ctx context.Context) (model.GameTable, error)
	SaveGames(ctx context.Context, games model.GameTable) error

	// Room operations
	LoadRooms(ctx context.Context) (model.RoomTable, error)
	SaveRooms(ctx context.Context, rooms model.RoomTable) error

	// Rating operations
	LoadRatings(ctx context.Context) (model.RatingTable, error)
	SaveRatings(ctx context.Context, ratings model.RatingTable) error

	// Play history operations
	LoadHistory(ctx context.Context) (model.HistoryTable, error)
	SaveHistory(ctx context.Context, history model.HistoryTable) error
}
