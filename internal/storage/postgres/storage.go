package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/storage"
)

const gameColumns = `id, player_a_username, player_a_display_name, player_b_username, player_b_display_name,
	winner, reason, moves, started_at, ended_at`

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	pool *pgxpool.Pool
}

// New migrates the schema and opens a connection pool
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	if err := Migrate(cfg.URL, logger); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Storage{pool: pool}, nil
}

// NewWithPool creates a storage around an existing pool whose schema is already migrated
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close closes the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.PlayerRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO players (username, display_name, rating, kind, wins, losses, draws, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (username, display_name) DO NOTHING`,
		player.Username, player.DisplayName, player.Rating, string(player.Kind),
		player.Wins, player.Losses, player.Draws, player.CreatedAt,
	)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.Identity) (*model.PlayerRecord, error) {
	var player model.PlayerRecord
	var kind string
	err := s.pool.QueryRow(ctx, `
		SELECT username, display_name, rating, kind, wins, losses, draws, created_at
		FROM players
		WHERE username = $1 AND display_name = $2`,
		id.Username, id.DisplayName,
	).Scan(
		&player.Username, &player.DisplayName, &player.Rating, &kind,
		&player.Wins, &player.Losses, &player.Draws, &player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	player.Kind = model.PlayerKind(kind)
	return &player, nil
}

func (s *Storage) RecordResult(ctx context.Context, id model.Identity, result model.GameResult) error {
	var query string
	switch result {
	case model.GameResultWin:
		query = `UPDATE players SET wins = wins + 1 WHERE username = $1 AND display_name = $2`
	case model.GameResultLoss:
		query = `UPDATE players SET losses = losses + 1 WHERE username = $1 AND display_name = $2`
	case model.GameResultDraw:
		query = `UPDATE players SET draws = draws + 1 WHERE username = $1 AND display_name = $2`
	default:
		return fmt.Errorf("unknown game result %q", result)
	}

	tag, err := s.pool.Exec(ctx, query, id.Username, id.DisplayName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.GameRecord) error {
	moves := make([]int32, len(game.Moves))
	for i, col := range game.Moves {
		moves[i] = int32(col)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO games (`+gameColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			winner = EXCLUDED.winner,
			reason = EXCLUDED.reason,
			moves = EXCLUDED.moves,
			ended_at = EXCLUDED.ended_at`,
		string(game.ID),
		game.PlayerA.Username, game.PlayerA.DisplayName,
		game.PlayerB.Username, game.PlayerB.DisplayName,
		int16(game.Winner), string(game.Reason), moves,
		game.StartedAt, game.EndedAt,
	)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, string(id))

	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}

func (s *Storage) GetGamesForPlayer(ctx context.Context, id model.Identity) ([]*model.GameRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE (player_a_username = $1 AND player_a_display_name = $2)
		   OR (player_b_username = $1 AND player_b_display_name = $2)
		ORDER BY ended_at DESC`,
		id.Username, id.DisplayName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []*model.GameRecord{}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func scanGame(row pgx.Row) (*model.GameRecord, error) {
	var (
		game   model.GameRecord
		id     string
		winner int16
		reason string
		moves  []int32
	)
	err := row.Scan(
		&id,
		&game.PlayerA.Username, &game.PlayerA.DisplayName,
		&game.PlayerB.Username, &game.PlayerB.DisplayName,
		&winner, &reason, &moves,
		&game.StartedAt, &game.EndedAt,
	)
	if err != nil {
		return nil, err
	}

	game.ID = model.GameID(id)
	game.Winner = model.Side(winner)
	game.Reason = model.EndReason(reason)
	game.Moves = make([]int, len(moves))
	for i, col := range moves {
		game.Moves[i] = int(col)
	}
	return &game, nil
}
