package model

import (
	"sync"
	"time"
)

// GameID uniquely identifies a game session
type GameID string

// GameResult is the outcome of a finished game from one participant's point of view
type GameResult string

const (
	GameResultWin  GameResult = "win"
	GameResultLoss GameResult = "loss"
	GameResultDraw GameResult = "draw"
)

// EndReason records why a game finished
type EndReason string

const (
	EndReasonConnectFour EndReason = "connect_four"
	EndReasonBoardFull   EndReason = "board_full"
	EndReasonForfeit     EndReason = "forfeit"
)

// MoveOutcome describes the effect of an accepted move
type MoveOutcome struct {
	Column    int
	Row       int
	MoverSide Side
	Mover     Player
	Opponent  Player
	Won       bool
	Draw      bool
	Available []int // columns still open after the move
}

// Finished returns true if the move ended the game
func (o MoveOutcome) Finished() bool {
	return o.Won || o.Draw
}

// GameSession is a live game between two connected players.
// Participants are fixed at creation; the board is guarded by the session's own lock.
type GameSession struct {
	ID        GameID
	A         Player // moves first
	B         Player
	CreatedAt time.Time

	mu        sync.Mutex
	board     *Board
	moves     []int
	concluded bool
}

// NewGameSession creates a session with an empty board
func NewGameSession(id GameID, a, b Player, createdAt time.Time) *GameSession {
	return &GameSession{
		ID:        id,
		A:         a,
		B:         b,
		CreatedAt: createdAt,
		board:     NewBoard(),
	}
}

// SideOf returns the side played by conn, or SideNone if conn is not a participant
func (s *GameSession) SideOf(conn ConnectionID) Side {
	switch conn {
	case s.A.ConnectionID:
		return SideA
	case s.B.ConnectionID:
		return SideB
	default:
		return SideNone
	}
}

// Participant returns the player on the given side
func (s *GameSession) Participant(side Side) Player {
	if side == SideB {
		return s.B
	}
	return s.A
}

// Opponent returns the other participant of conn
func (s *GameSession) Opponent(conn ConnectionID) (Player, bool) {
	side := s.SideOf(conn)
	if side == SideNone {
		return Player{}, false
	}
	return s.Participant(side.Other()), true
}

// Play inserts a coin for conn's side. A winning or board-filling move
// concludes the session in the same critical section.
func (s *GameSession) Play(conn ConnectionID, column int) (MoveOutcome, error) {
	side := s.SideOf(conn)
	if side == SideNone {
		return MoveOutcome{}, ErrGameNotActive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.concluded {
		return MoveOutcome{}, ErrGameNotActive
	}
	if s.board.NextSide() != side {
		return MoveOutcome{}, ErrNotYourTurn
	}

	row, err := s.board.InsertCoin(column, side)
	if err != nil {
		return MoveOutcome{}, err
	}
	s.moves = append(s.moves, column)

	outcome := MoveOutcome{
		Column:    column,
		Row:       row,
		MoverSide: side,
		Mover:     s.Participant(side),
		Opponent:  s.Participant(side.Other()),
		Won:       s.board.Winner() == side,
		Available: s.board.AvailableColumns(),
	}
	outcome.Draw = !outcome.Won && s.board.IsFull()

	if outcome.Finished() {
		s.concluded = true
	}
	return outcome, nil
}

// Conclude marks the session as finished. Only the first caller gets true.
func (s *GameSession) Conclude() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.concluded {
		return false
	}
	s.concluded = true
	return true
}

// Concluded reports whether the session has finished
func (s *GameSession) Concluded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.concluded
}

// MoveCount returns the number of coins played so far
func (s *GameSession) MoveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.MoveCount()
}

// AvailableColumns returns the open columns
func (s *GameSession) AvailableColumns() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.AvailableColumns()
}

// Record builds the archive entry for a finished session
func (s *GameSession) Record(winner Side, reason EndReason, endedAt time.Time) *GameRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	moves := make([]int, len(s.moves))
	copy(moves, s.moves)

	return &GameRecord{
		ID:        s.ID,
		PlayerA:   s.A.Identity(),
		PlayerB:   s.B.Identity(),
		Winner:    winner,
		Reason:    reason,
		Moves:     moves,
		StartedAt: s.CreatedAt,
		EndedAt:   endedAt,
	}
}

// GameRecord is the archived form of a finished game
type GameRecord struct {
	ID        GameID    `json:"id"`
	PlayerA   Identity  `json:"player_a"`
	PlayerB   Identity  `json:"player_b"`
	Winner    Side      `json:"winner"` // SideNone for a draw
	Reason    EndReason `json:"reason"`
	Moves     []int     `json:"moves"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// ResultFor returns the result of the game for the given participant
func (r *GameRecord) ResultFor(id Identity) GameResult {
	switch {
	case r.Winner == SideNone:
		return GameResultDraw
	case r.Winner == SideA && id == r.PlayerA, r.Winner == SideB && id == r.PlayerB:
		return GameResultWin
	default:
		return GameResultLoss
	}
}
