package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/mcoot/connectfour-go/internal/client"
	"github.com/mcoot/connectfour-go/internal/model"
)

var (
	winColor  = color.New(color.FgGreen, color.Bold)
	lossColor = color.New(color.FgRed)
	drawColor = color.New(color.FgYellow)
	nameColor = color.New(color.FgCyan, color.Bold)
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "%s %s\n", lossColor.Sprint("Error:"), err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case StatsResult:
		o.printStats(v)
	case Player:
		o.printPlayer(v)
	case Game:
		o.printGame(v)
	case PlayerGames:
		o.printPlayerGames(v)
	case []client.Summary:
		o.printSummaries(v)
	default:
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// StatsResult response type
type StatsResult struct {
	ActivePlayers     int `json:"active_players"`
	RegisteredPlayers int `json:"registered_players"`
	ActiveGames       int `json:"active_games"`
	Connections       int `json:"connections"`
	Workers           struct {
		Capacity int `json:"capacity"`
		Running  int `json:"running"`
		Free     int `json:"free"`
	} `json:"workers"`
}

// Identity response type
type Identity struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

func (i Identity) String() string {
	return fmt.Sprintf("%s (%s)", i.DisplayName, i.Username)
}

// Player response type
type Player struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Rating      int       `json:"rating"`
	Kind        string    `json:"kind"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Draws       int       `json:"draws"`
	GamesPlayed int       `json:"games_played"`
	CreatedAt   time.Time `json:"created_at"`
}

// Game response type
type Game struct {
	ID        string    `json:"id"`
	PlayerA   Identity  `json:"player_a"`
	PlayerB   Identity  `json:"player_b"`
	Winner    *Identity `json:"winner"`
	Reason    string    `json:"reason"`
	Moves     []int     `json:"moves"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// PlayerGame response type
type PlayerGame struct {
	Game
	Result string `json:"result"`
}

// PlayerGames response type
type PlayerGames struct {
	Games []PlayerGame `json:"games"`
}

func (o *Output) printStats(s StatsResult) {
	fmt.Fprintf(o.w, "Active players:     %d\n", s.ActivePlayers)
	fmt.Fprintf(o.w, "Registered players: %d\n", s.RegisteredPlayers)
	fmt.Fprintf(o.w, "Active games:       %d\n", s.ActiveGames)
	fmt.Fprintf(o.w, "Connections:        %d\n", s.Connections)
	fmt.Fprintf(o.w, "Workers:            %d running, %d free of %d\n",
		s.Workers.Running, s.Workers.Free, s.Workers.Capacity)
}

func (o *Output) printPlayer(p Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", nameColor.Sprint(p.DisplayName), p.Username)
	fmt.Fprintf(o.w, "Kind: %s\n", p.Kind)
	fmt.Fprintf(o.w, "Rating: %d\n", p.Rating)
	fmt.Fprintf(o.w, "Record: %s / %s / %s (%d played)\n",
		winColor.Sprintf("%d W", p.Wins), lossColor.Sprintf("%d L", p.Losses), drawColor.Sprintf("%d D", p.Draws),
		p.GamesPlayed)
}

func (o *Output) printGame(g Game) {
	fmt.Fprintf(o.w, "Game: %s\n", g.ID)
	fmt.Fprintf(o.w, "Players: %s vs %s\n", g.PlayerA, g.PlayerB)
	if g.Winner != nil {
		fmt.Fprintf(o.w, "Winner: %s (%s)\n", winColor.Sprint(g.Winner.String()), g.Reason)
	} else {
		fmt.Fprintf(o.w, "Result: %s\n", drawColor.Sprint("draw"))
	}
	fmt.Fprintf(o.w, "Moves: %v\n", g.Moves)
	fmt.Fprintf(o.w, "Duration: %s\n", g.EndedAt.Sub(g.StartedAt).Round(time.Second))
	o.printBoard(g.Moves)
}

// printBoard replays the moves onto an empty board, first mover as X
func (o *Output) printBoard(moves []int) {
	board := model.NewBoard()
	side := model.SideA
	for _, col := range moves {
		if _, err := board.InsertCoin(col, side); err != nil {
			return
		}
		side = side.Other()
	}

	for row := model.Rows - 1; row >= 0; row-- {
		fmt.Fprint(o.w, " |")
		for col := 0; col < model.Columns; col++ {
			switch board.Cell(col, row) {
			case model.SideA:
				fmt.Fprint(o.w, winColor.Sprint(" X"))
			case model.SideB:
				fmt.Fprint(o.w, lossColor.Sprint(" O"))
			default:
				fmt.Fprint(o.w, " .")
			}
		}
		fmt.Fprintln(o.w, " |")
	}
	fmt.Fprint(o.w, "  ")
	for col := 0; col < model.Columns; col++ {
		fmt.Fprintf(o.w, " %d", col)
	}
	fmt.Fprintln(o.w)
}

func (o *Output) printPlayerGames(pg PlayerGames) {
	if len(pg.Games) == 0 {
		fmt.Fprintln(o.w, "No games played")
		return
	}
	for _, g := range pg.Games {
		fmt.Fprintf(o.w, "%s  %s vs %s  %s (%s)\n",
			g.ID, g.PlayerA, g.PlayerB, colorResult(g.Result), g.Reason)
	}
}

func (o *Output) printSummaries(summaries []client.Summary) {
	for _, s := range summaries {
		fmt.Fprintf(o.w, "%s: %s %s %s\n", nameColor.Sprint(s.Username),
			winColor.Sprintf("%d won", s.Wins), lossColor.Sprintf("%d lost", s.Losses), drawColor.Sprintf("%d drawn", s.Draws))
		for _, g := range s.Games {
			fmt.Fprintf(o.w, "  %s vs %s: %s (%s)\n", g.GameID, g.Opponent, colorResult(string(g.Result)), g.Reason)
		}
	}
}

func colorResult(result string) string {
	switch model.GameResult(result) {
	case model.GameResultWin:
		return winColor.Sprint(result)
	case model.GameResultLoss:
		return lossColor.Sprint(result)
	default:
		return drawColor.Sprint(result)
	}
}
