package model

// Board dimensions
const (
	Columns       = 7
	Rows          = 6
	WinningStreak = 4
	MaxMoves      = Columns * Rows
)

// Side identifies which participant owns a coin
type Side uint8

const (
	SideNone Side = iota
	SideA         // always moves first
	SideB
)

// Other returns the opposing side
func (s Side) Other() Side {
	switch s {
	case SideA:
		return SideB
	case SideB:
		return SideA
	default:
		return SideNone
	}
}

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return "none"
	}
}

// BoardStatus represents the lifecycle of a board
type BoardStatus string

const (
	BoardStatusNotStarted BoardStatus = "not_started"
	BoardStatusInProgress BoardStatus = "in_progress"
	BoardStatusFinished   BoardStatus = "finished"
)

// Board is a 7x6 Connect Four grid. Row 0 is the bottom row.
// Board is not safe for concurrent use; GameSession serializes access.
type Board struct {
	cells     [Columns][Rows]Side
	occupancy [Columns]int
	moveCount int
	status    BoardStatus
	winner    Side
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{status: BoardStatusNotStarted}
}

// InsertCoin drops a coin for side into column and returns the row it landed in.
// A failed insert leaves the board untouched.
func (b *Board) InsertCoin(column int, side Side) (int, error) {
	if b.status == BoardStatusFinished {
		return 0, ErrBoardFinished
	}
	if side != SideA && side != SideB {
		return 0, ErrInvalidSide
	}
	if column < 0 || column >= Columns {
		return 0, ErrColumnOutOfRange
	}
	if b.occupancy[column] >= Rows {
		return 0, ErrColumnFull
	}

	row := b.occupancy[column]
	b.cells[column][row] = side
	b.occupancy[column]++
	b.moveCount++
	b.status = BoardStatusInProgress

	if b.CheckWin(column) {
		b.status = BoardStatusFinished
		b.winner = side
	} else if b.IsFull() {
		b.status = BoardStatusFinished
	}

	return row, nil
}

// CheckWin reports whether the top coin of column completes a streak.
// Only lines through that coin are inspected.
func (b *Board) CheckWin(column int) bool {
	if column < 0 || column >= Columns || b.occupancy[column] == 0 {
		return false
	}

	row := b.occupancy[column] - 1
	side := b.cells[column][row]

	// Coins below can only ever be in one direction
	if b.count(column, row, 0, -1, side)+1 >= WinningStreak {
		return true
	}

	directions := [][2]int{
		{1, 0},  // horizontal
		{1, 1},  // rising diagonal
		{1, -1}, // falling diagonal
	}
	for _, d := range directions {
		streak := 1 + b.count(column, row, d[0], d[1], side) + b.count(column, row, -d[0], -d[1], side)
		if streak >= WinningStreak {
			return true
		}
	}
	return false
}

// count walks from (col,row) in direction (dc,dr) and counts consecutive coins of side,
// excluding the starting cell
func (b *Board) count(col, row, dc, dr int, side Side) int {
	n := 0
	for {
		col += dc
		row += dr
		if col < 0 || col >= Columns || row < 0 || row >= Rows {
			return n
		}
		if b.cells[col][row] != side {
			return n
		}
		n++
	}
}

// AvailableColumns returns the columns that still accept a coin, in ascending order
func (b *Board) AvailableColumns() []int {
	columns := make([]int, 0, Columns)
	for col := 0; col < Columns; col++ {
		if b.occupancy[col] < Rows {
			columns = append(columns, col)
		}
	}
	return columns
}

// IsFull returns true once every cell holds a coin
func (b *Board) IsFull() bool {
	return b.moveCount == MaxMoves
}

// MoveCount returns the number of coins on the board
func (b *Board) MoveCount() int {
	return b.moveCount
}

// Occupancy returns the number of coins in column
func (b *Board) Occupancy(column int) int {
	if column < 0 || column >= Columns {
		return 0
	}
	return b.occupancy[column]
}

// Cell returns the owner of the cell at (column, row)
func (b *Board) Cell(column, row int) Side {
	if column < 0 || column >= Columns || row < 0 || row >= Rows {
		return SideNone
	}
	return b.cells[column][row]
}

// Status returns the current board status
func (b *Board) Status() BoardStatus {
	return b.status
}

// Winner returns the side that connected four, or SideNone
func (b *Board) Winner() Side {
	return b.winner
}

// NextSide returns the side expected to move next
func (b *Board) NextSide() Side {
	if b.moveCount%2 == 0 {
		return SideA
	}
	return SideB
}
