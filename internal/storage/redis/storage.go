package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/storage"
)

// Player hash fields
const (
	fieldUsername    = "username"
	fieldDisplayName = "display_name"
	fieldRating      = "rating"
	fieldKind        = "kind"
	fieldCreatedAt   = "created_at"
	fieldWins        = "wins"
	fieldLosses      = "losses"
	fieldDraws       = "draws"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.PlayerRecord) error {
	key := playerKey(player.Identity())

	// HSETNX leaves fields of an existing record alone
	pipe := s.client.TxPipeline()
	pipe.HSetNX(ctx, key, fieldUsername, player.Username)
	pipe.HSetNX(ctx, key, fieldDisplayName, player.DisplayName)
	pipe.HSetNX(ctx, key, fieldRating, player.Rating)
	pipe.HSetNX(ctx, key, fieldKind, string(player.Kind))
	pipe.HSetNX(ctx, key, fieldCreatedAt, player.CreatedAt.UTC().Format(time.RFC3339Nano))
	pipe.HSetNX(ctx, key, fieldWins, player.Wins)
	pipe.HSetNX(ctx, key, fieldLosses, player.Losses)
	pipe.HSetNX(ctx, key, fieldDraws, player.Draws)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.Identity) (*model.PlayerRecord, error) {
	fields, err := s.client.HGetAll(ctx, playerKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return parsePlayer(fields)
}

func parsePlayer(fields map[string]string) (*model.PlayerRecord, error) {
	player := &model.PlayerRecord{
		Username:    fields[fieldUsername],
		DisplayName: fields[fieldDisplayName],
		Kind:        model.PlayerKind(fields[fieldKind]),
	}

	ints := []struct {
		field string
		dest  *int
	}{
		{fieldRating, &player.Rating},
		{fieldWins, &player.Wins},
		{fieldLosses, &player.Losses},
		{fieldDraws, &player.Draws},
	}
	for _, f := range ints {
		n, err := strconv.Atoi(fields[f.field])
		if err != nil {
			return nil, fmt.Errorf("parse player field %s: %w", f.field, err)
		}
		*f.dest = n
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("parse player field %s: %w", fieldCreatedAt, err)
	}
	player.CreatedAt = createdAt

	return player, nil
}

func (s *Storage) RecordResult(ctx context.Context, id model.Identity, result model.GameResult) error {
	var field string
	switch result {
	case model.GameResultWin:
		field = fieldWins
	case model.GameResultLoss:
		field = fieldLosses
	case model.GameResultDraw:
		field = fieldDraws
	default:
		return fmt.Errorf("unknown game result %q", result)
	}

	key := playerKey(id)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrPlayerNotFound
	}
	return s.client.HIncrBy(ctx, key, field, 1).Err()
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.GameRecord) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	score := float64(game.EndedAt.UnixMilli())

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(game.ID), data, s.cfg.GameTTL)
	pipe.ZAdd(ctx, playerGamesIndexKey(game.PlayerA), redis.Z{Score: score, Member: string(game.ID)})
	pipe.ZAdd(ctx, playerGamesIndexKey(game.PlayerB), redis.Z{Score: score, Member: string(game.ID)})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.GameRecord
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) GetGamesForPlayer(ctx context.Context, id model.Identity) ([]*model.GameRecord, error) {
	ids, err := s.client.ZRevRange(ctx, playerGamesIndexKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.GameRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, gameID := range ids {
		keys[i] = gameKey(model.GameID(gameID))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.GameRecord, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Game may have expired
		}
		str, ok := val.(string)
		if !ok {
			continue
		}
		var game model.GameRecord
		if err := json.Unmarshal([]byte(str), &game); err != nil {
			return nil, err
		}
		games = append(games, &game)
	}
	return games, nil
}
