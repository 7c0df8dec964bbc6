package storage

import (
	"context"

	"github.com/mcoot/connectfour-go/internal/model"
)

// Storage archives durable players and finished games.
// The live registries never read from it.
type Storage interface {
	// Player operations

	// SavePlayer creates the record if it does not exist yet.
	// An existing record keeps its results.
	SavePlayer(ctx context.Context, player *model.PlayerRecord) error
	GetPlayer(ctx context.Context, id model.Identity) (*model.PlayerRecord, error)
	// RecordResult increments the wins, losses or draws of a player
	RecordResult(ctx context.Context, id model.Identity, result model.GameResult) error

	// Game operations
	SaveGame(ctx context.Context, game *model.GameRecord) error
	GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error)
	// GetGamesForPlayer returns the player's games, most recent first
	GetGamesForPlayer(ctx context.Context, id model.Identity) ([]*model.GameRecord, error)

	Close() error
}
