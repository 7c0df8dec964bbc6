package redis

import (
	"fmt"
	"net/url"

	"github.com/mcoot/connectfour-go/internal/model"
)

// Key prefix for all archive data
const keyPrefix = "c4"

// identityKey escapes both halves so a ':' in a name cannot collide
func identityKey(id model.Identity) string {
	return url.QueryEscape(id.Username) + ":" + url.QueryEscape(id.DisplayName)
}

// playerKey returns the Redis key for a player hash
func playerKey(id model.Identity) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, identityKey(id))
}

// gameKey returns the Redis key for an archived game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// playerGamesIndexKey returns the Redis key for the sorted set of a player's games,
// scored by end time
func playerGamesIndexKey(id model.Identity) string {
	return fmt.Sprintf("%s:idx:player_games:%s", keyPrefix, identityKey(id))
}
