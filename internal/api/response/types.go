package response

import (
	"time"

	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/services/dispatch"
	"github.com/mcoot/connectfour-go/internal/worker"
)

// Health is the response for the health check
type Health struct {
	Status string `json:"status"`
}

// Player represents an archived player in API responses
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

// PlayerFromModel converts a model.PlayerRecord to a response Player
func PlayerFromModel(p *model.PlayerRecord) Player {
	return Player{
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Rating:      p.Rating,
		Kind:        string(p.Kind),
		Wins:        p.Wins,
		Losses:      p.Losses,
		Draws:       p.Draws,
		GamesPlayed: p.GamesPlayed(),
		CreatedAt:   p.CreatedAt,
	}
}

// Identity names a participant
type Identity struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Game represents an archived game
type Game struct {
	ID        string    `json:"id"`
	PlayerA   Identity  `json:"player_a"`
	PlayerB   Identity  `json:"player_b"`
	Winner    *Identity `json:"winner"` // nil for a draw
	Reason    string    `json:"reason"`
	Moves     []int     `json:"moves"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

func identityFromModel(id model.Identity) Identity {
	return Identity{Username: id.Username, DisplayName: id.DisplayName}
}

// GameFromModel converts a model.GameRecord to a response Game
func GameFromModel(g *model.GameRecord) Game {
	resp := Game{
		ID:        string(g.ID),
		PlayerA:   identityFromModel(g.PlayerA),
		PlayerB:   identityFromModel(g.PlayerB),
		Reason:    string(g.Reason),
		Moves:     g.Moves,
		StartedAt: g.StartedAt,
		EndedAt:   g.EndedAt,
	}
	switch g.Winner {
	case model.SideA:
		w := resp.PlayerA
		resp.Winner = &w
	case model.SideB:
		w := resp.PlayerB
		resp.Winner = &w
	}
	return resp
}

// PlayerGame is one archived game from a player's point of view
type PlayerGame struct {
	Game
	Result string `json:"result"`
}

// PlayerGames lists a player's archived games, most recent first
type PlayerGames struct {
	Games []PlayerGame `json:"games"`
}

// PlayerGamesFromModel converts a player's game records
func PlayerGamesFromModel(id model.Identity, games []*model.GameRecord) PlayerGames {
	resp := PlayerGames{Games: make([]PlayerGame, 0, len(games))}
	for _, g := range games {
		resp.Games = append(resp.Games, PlayerGame{Game: GameFromModel(g), Result: string(g.ResultFor(id))})
	}
	return resp
}

// Stats reports live server usage
type Stats struct {
	ActivePlayers     int          `json:"active_players"`
	RegisteredPlayers int          `json:"registered_players"`
	ActiveGames       int          `json:"active_games"`
	Connections       int          `json:"connections"`
	Workers           worker.Stats `json:"workers"`
}

// StatsFromModel combines dispatcher, connection and worker figures
func StatsFromModel(live dispatch.Stats, connections int, workers worker.Stats) Stats {
	return Stats{
		ActivePlayers:     live.ActivePlayers,
		RegisteredPlayers: live.RegisteredPlayers,
		ActiveGames:       live.ActiveGames,
		Connections:       connections,
		Workers:           workers,
	}
}
