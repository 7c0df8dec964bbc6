package testutil

import (
	"github.com/mcoot/connectfour-go/internal/model"
)

// NewPlayer builds an active player with the default rating.
// The display name is the username with a "-display" suffix.
func NewPlayer(username string, conn model.ConnectionID) model.Player {
	return model.Player{
		Username:     username,
		DisplayName:  username + "-display",
		Rating:       model.DefaultRating,
		ConnectionID: conn,
		Kind:         model.PlayerKindHuman,
	}
}

// NewRatedPlayer builds an active player with the given rating
func NewRatedPlayer(username string, conn model.ConnectionID, rating int) model.Player {
	p := NewPlayer(username, conn)
	p.Rating = rating
	return p
}

// WinningSequence has side A stack four coins in column 0 while side B
// plays column 1. The last move wins for A.
func WinningSequence() []int {
	return []int{0, 1, 0, 1, 0, 1, 0}
}

// DrawSequence fills the board, alternating sides from A, without four in a
// row for either side
func DrawSequence() []int {
	var moves []int
	for _, pair := range [][2]int{{0, 1}, {2, 3}, {4, 5}} {
		for i := 0; i < 3; i++ {
			moves = append(moves, pair[0], pair[1])
		}
		for i := 0; i < 3; i++ {
			moves = append(moves, pair[1], pair[0])
		}
	}
	for i := 0; i < model.Rows; i++ {
		moves = append(moves, model.Columns-1)
	}
	return moves
}
