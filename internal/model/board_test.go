package model

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type BoardSuite struct {
	suite.Suite
	board *Board
}

func TestBoardSuite(t *testing.T) {
	suite.Run(t, new(BoardSuite))
}

func (s *BoardSuite) SetupTest() {
	s.board = NewBoard()
}

// play inserts coins in the given columns, alternating sides starting with A
func (s *BoardSuite) play(columns ...int) {
	side := SideA
	for _, col := range columns {
		_, err := s.board.InsertCoin(col, side)
		s.Require().NoError(err)
		side = side.Other()
	}
}

// InsertCoin tests

func (s *BoardSuite) TestInsertCoinStacksFromBottom() {
	row, err := s.board.InsertCoin(3, SideA)
	s.Require().NoError(err)
	s.Equal(0, row)

	row, err = s.board.InsertCoin(3, SideB)
	s.Require().NoError(err)
	s.Equal(1, row)

	s.Equal(SideA, s.board.Cell(3, 0))
	s.Equal(SideB, s.board.Cell(3, 1))
	s.Equal(2, s.board.Occupancy(3))
	s.Equal(2, s.board.MoveCount())
	s.Equal(BoardStatusInProgress, s.board.Status())
}

func (s *BoardSuite) TestInsertCoinColumnOutOfRange() {
	_, err := s.board.InsertCoin(-1, SideA)
	s.ErrorIs(err, ErrColumnOutOfRange)

	_, err = s.board.InsertCoin(Columns, SideA)
	s.ErrorIs(err, ErrColumnOutOfRange)

	s.Equal(0, s.board.MoveCount())
	s.Equal(BoardStatusNotStarted, s.board.Status())
}

func (s *BoardSuite) TestInsertCoinColumnFull() {
	s.play(0, 0, 0, 0, 0, 0)

	_, err := s.board.InsertCoin(0, SideA)
	s.ErrorIs(err, ErrColumnFull)
	s.Equal(Rows, s.board.Occupancy(0))
	s.Equal(Rows, s.board.MoveCount())
}

func (s *BoardSuite) TestInsertCoinInvalidSide() {
	_, err := s.board.InsertCoin(0, SideNone)
	s.ErrorIs(err, ErrInvalidSide)
}

func (s *BoardSuite) TestInsertCoinAfterFinish() {
	s.play(0, 1, 0, 1, 0, 1, 0)
	s.Require().Equal(BoardStatusFinished, s.board.Status())

	_, err := s.board.InsertCoin(2, SideB)
	s.ErrorIs(err, ErrBoardFinished)
	s.Equal(7, s.board.MoveCount())
}

// CheckWin tests

func (s *BoardSuite) TestCheckWinVertical() {
	s.play(0, 1, 0, 1, 0, 1)
	s.False(s.board.CheckWin(0))

	s.play(0)
	s.True(s.board.CheckWin(0))
	s.Equal(SideA, s.board.Winner())
	s.Equal(BoardStatusFinished, s.board.Status())
}

func (s *BoardSuite) TestCheckWinHorizontalFilledInMiddle() {
	// A: 0, 1, 3 then 2 closes the gap
	s.play(0, 0, 1, 1, 3, 3)
	s.False(s.board.CheckWin(3))

	s.play(2)
	s.True(s.board.CheckWin(2))
	s.Equal(SideA, s.board.Winner())
}

func (s *BoardSuite) TestCheckWinRisingDiagonal() {
	s.play(
		0, 1,
		1, 2,
		2, 3,
		2, 3,
		3, 6,
	)
	s.Equal(SideNone, s.board.Winner())

	s.play(3)
	s.True(s.board.CheckWin(3))
	s.Equal(SideA, s.board.Winner())
}

func (s *BoardSuite) TestCheckWinFallingDiagonal() {
	s.play(
		6, 5,
		5, 4,
		4, 3,
		4, 3,
		3, 0,
	)
	s.Equal(SideNone, s.board.Winner())

	s.play(3)
	s.True(s.board.CheckWin(3))
	s.Equal(SideA, s.board.Winner())
}

func (s *BoardSuite) TestCheckWinThreeIsNotEnough() {
	s.play(0, 6, 1, 6, 2)
	s.False(s.board.CheckWin(2))
	s.Equal(BoardStatusInProgress, s.board.Status())
}

func (s *BoardSuite) TestCheckWinInterruptedLine() {
	// A A B A on the bottom row
	s.play(0, 2, 1, 6, 3)
	s.False(s.board.CheckWin(3))
}

func (s *BoardSuite) TestCheckWinEmptyOrInvalidColumn() {
	s.False(s.board.CheckWin(0))
	s.False(s.board.CheckWin(-1))
	s.False(s.board.CheckWin(Columns))
}

// AvailableColumns tests

func (s *BoardSuite) TestAvailableColumnsAscending() {
	s.Equal([]int{0, 1, 2, 3, 4, 5, 6}, s.board.AvailableColumns())

	s.play(2, 2, 2, 2, 2, 2)
	s.Equal([]int{0, 1, 3, 4, 5, 6}, s.board.AvailableColumns())
}

// Full board

// drawSequence fills the board without four in a row for either side
func drawSequence() []int {
	var moves []int
	for _, pair := range [][2]int{{0, 1}, {2, 3}, {4, 5}} {
		for i := 0; i < 3; i++ {
			moves = append(moves, pair[0], pair[1])
		}
		for i := 0; i < 3; i++ {
			moves = append(moves, pair[1], pair[0])
		}
	}
	for i := 0; i < Rows; i++ {
		moves = append(moves, 6)
	}
	return moves
}

func (s *BoardSuite) TestFullBoardIsDraw() {
	s.play(drawSequence()...)

	s.True(s.board.IsFull())
	s.Equal(MaxMoves, s.board.MoveCount())
	s.Equal(BoardStatusFinished, s.board.Status())
	s.Equal(SideNone, s.board.Winner())
	s.Empty(s.board.AvailableColumns())
}

func (s *BoardSuite) TestMoveCountMatchesOccupancy() {
	s.play(0, 3, 3, 6, 5, 5, 5)

	total := 0
	for col := 0; col < Columns; col++ {
		total += s.board.Occupancy(col)
		s.LessOrEqual(s.board.Occupancy(col), Rows)
	}
	s.Equal(s.board.MoveCount(), total)
}

func (s *BoardSuite) TestNextSideAlternates() {
	s.Equal(SideA, s.board.NextSide())
	s.play(0)
	s.Equal(SideB, s.board.NextSide())
	s.play(0)
	s.Equal(SideA, s.board.NextSide())
}
