// Package storagetest holds behaviour shared by every storage backend's tests.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/storage"
)

// Suite exercises a storage.Storage. Backends embed it and assign Storage
// in their own SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var (
	alice = model.Identity{Username: "alice", DisplayName: "Alice"}
	bob   = model.Identity{Username: "bob", DisplayName: "Bob"}
	epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
)

func newPlayerRecord(id model.Identity) *model.PlayerRecord {
	return &model.PlayerRecord{
		Username:    id.Username,
		DisplayName: id.DisplayName,
		Rating:      model.DefaultRating,
		Kind:        model.PlayerKindHuman,
		CreatedAt:   epoch,
	}
}

func newGameRecord(id model.GameID, endedAt time.Time) *model.GameRecord {
	return &model.GameRecord{
		ID:        id,
		PlayerA:   alice,
		PlayerB:   bob,
		Winner:    model.SideA,
		Reason:    model.EndReasonConnectFour,
		Moves:     []int{0, 1, 0, 1, 0, 1, 0},
		StartedAt: endedAt.Add(-time.Minute),
		EndedAt:   endedAt,
	}
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, newPlayerRecord(alice)))

	player, err := s.Storage.GetPlayer(s.Ctx, alice)
	s.Require().NoError(err)
	s.Equal("alice", player.Username)
	s.Equal("Alice", player.DisplayName)
	s.Equal(model.DefaultRating, player.Rating)
	s.Equal(model.PlayerKindHuman, player.Kind)
	s.True(epoch.Equal(player.CreatedAt))
	s.Equal(0, player.GamesPlayed())
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, alice)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSavePlayerKeepsResults() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, newPlayerRecord(alice)))
	s.Require().NoError(s.Storage.RecordResult(s.Ctx, alice, model.GameResultWin))

	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, newPlayerRecord(alice)))

	player, err := s.Storage.GetPlayer(s.Ctx, alice)
	s.Require().NoError(err)
	s.Equal(1, player.Wins)
}

func (s *Suite) TestRecordResult() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, newPlayerRecord(alice)))

	s.Require().NoError(s.Storage.RecordResult(s.Ctx, alice, model.GameResultWin))
	s.Require().NoError(s.Storage.RecordResult(s.Ctx, alice, model.GameResultWin))
	s.Require().NoError(s.Storage.RecordResult(s.Ctx, alice, model.GameResultLoss))
	s.Require().NoError(s.Storage.RecordResult(s.Ctx, alice, model.GameResultDraw))

	player, err := s.Storage.GetPlayer(s.Ctx, alice)
	s.Require().NoError(err)
	s.Equal(2, player.Wins)
	s.Equal(1, player.Losses)
	s.Equal(1, player.Draws)
	s.Equal(4, player.GamesPlayed())
}

func (s *Suite) TestRecordResultUnknownPlayer() {
	err := s.Storage.RecordResult(s.Ctx, bob, model.GameResultLoss)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Game tests

func (s *Suite) TestSaveAndGetGame() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, newGameRecord("game-1", epoch)))

	game, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.GameID("game-1"), game.ID)
	s.Equal(alice, game.PlayerA)
	s.Equal(bob, game.PlayerB)
	s.Equal(model.SideA, game.Winner)
	s.Equal(model.EndReasonConnectFour, game.Reason)
	s.Equal([]int{0, 1, 0, 1, 0, 1, 0}, game.Moves)
	s.True(epoch.Equal(game.EndedAt))
	s.Equal(model.GameResultWin, game.ResultFor(alice))
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "game-404")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestGetGamesForPlayerMostRecentFirst() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, newGameRecord("game-1", epoch)))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, newGameRecord("game-2", epoch.Add(time.Hour))))

	games, err := s.Storage.GetGamesForPlayer(s.Ctx, bob)
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(model.GameID("game-2"), games[0].ID)
	s.Equal(model.GameID("game-1"), games[1].ID)
}

func (s *Suite) TestGetGamesForPlayerWithoutGames() {
	games, err := s.Storage.GetGamesForPlayer(s.Ctx, alice)
	s.Require().NoError(err)
	s.Empty(games)
}
