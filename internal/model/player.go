package model

import "time"

// DefaultRating is assigned to every newly registered player
const DefaultRating = 1500

// MaxNameLength bounds usernames and display names, counted in characters
const MaxNameLength = 50

// ConnectionID identifies one live transport connection.
// Issued at accept time and never reused.
type ConnectionID string

// Identity is the durable key of a player
type Identity struct {
	Username    string
	DisplayName string
}

// PlayerKind distinguishes human clients from automated agents
type PlayerKind string

const (
	PlayerKindHuman PlayerKind = "human"
	PlayerKindAgent PlayerKind = "agent"
)

// Player is a registered participant. Registries hand out value copies,
// so a Player never changes underneath its holder.
type Player struct {
	Username     string
	DisplayName  string
	Rating       int
	ConnectionID ConnectionID // empty when not connected
	Kind         PlayerKind
	RegisteredAt time.Time
}

// Identity returns the player's durable key
func (p Player) Identity() Identity {
	return Identity{Username: p.Username, DisplayName: p.DisplayName}
}

// PlayerRecord is the archived view of a player with lifetime results
type PlayerRecord struct {
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Rating      int        `json:"rating"`
	Kind        PlayerKind `json:"kind"`
	Wins        int        `json:"wins"`
	Losses      int        `json:"losses"`
	Draws       int        `json:"draws"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Identity returns the record's durable key
func (r *PlayerRecord) Identity() Identity {
	return Identity{Username: r.Username, DisplayName: r.DisplayName}
}

// GamesPlayed returns the total number of finished games
func (r *PlayerRecord) GamesPlayed() int {
	return r.Wins + r.Losses + r.Draws
}
