package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players     map[model.Identity]*model.PlayerRecord
	games       map[model.GameID]*model.GameRecord
	playerGames map[model.Identity][]model.GameID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:     make(map[model.Identity]*model.PlayerRecord),
		games:       make(map[model.GameID]*model.GameRecord),
		playerGames: make(map[model.Identity][]model.GameID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.players[player.Identity()]; exists {
		return nil
	}
	stored := *player
	s.players[player.Identity()] = &stored
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.Identity) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	result := *player
	return &result, nil
}

func (s *Storage) RecordResult(ctx context.Context, id model.Identity, result model.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	switch result {
	case model.GameResultWin:
		player.Wins++
	case model.GameResultLoss:
		player.Losses++
	case model.GameResultDraw:
		player.Draws++
	}
	return nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *game
	stored.Moves = slices.Clone(game.Moves)
	if _, exists := s.games[game.ID]; !exists {
		s.playerGames[game.PlayerA] = append(s.playerGames[game.PlayerA], game.ID)
		s.playerGames[game.PlayerB] = append(s.playerGames[game.PlayerB], game.ID)
	}
	s.games[game.ID] = &stored
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	result := *game
	result.Moves = slices.Clone(game.Moves)
	return &result, nil
}

func (s *Storage) GetGamesForPlayer(ctx context.Context, id model.Identity) ([]*model.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.playerGames[id]
	games := make([]*model.GameRecord, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		game := *s.games[ids[i]]
		game.Moves = slices.Clone(game.Moves)
		games = append(games, &game)
	}
	return games, nil
}
