package matchmaking

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"github.com/mcoot/connectfour-go/internal/dependencies/random"
	"github.com/mcoot/connectfour-go/internal/model"
)

// Pairing is the result of a successful match
type Pairing struct {
	First  model.Player // side A, moves first
	Second model.Player
}

// Engine pairs a requester with an opponent from the active pool,
// preferring opponents of similar rating
type Engine struct {
	random random.Random
	logger *slog.Logger
}

// NewEngine creates a new matchmaking Engine
func NewEngine(rnd random.Random, logger *slog.Logger) *Engine {
	return &Engine{
		random: rnd,
		logger: logger.With(slog.String("component", "matchmaking")),
	}
}

// AcceptanceProbability is the chance of accepting a candidate whose rating
// differs from the requester's by diff
func AcceptanceProbability(diff int) float64 {
	d := float64(diff)
	return 1 / (1 + d*d)
}

// SelectOpponent draws candidates uniformly from pool (excluding the requester)
// and accepts each with AcceptanceProbability of the rating gap, redrawing
// until one is accepted.
func (e *Engine) SelectOpponent(ctx context.Context, requester model.Player, pool []model.Player) (model.Player, error) {
	candidates := lo.Reject(pool, func(p model.Player, _ int) bool {
		return p.ConnectionID == requester.ConnectionID
	})
	if len(candidates) == 0 {
		return model.Player{}, model.ErrNotEnoughPlayers
	}

	draws := 0
	for {
		if err := ctx.Err(); err != nil {
			return model.Player{}, err
		}
		draws++

		candidate := candidates[e.random.Intn(len(candidates))]
		diff := requester.Rating - candidate.Rating
		if diff < 0 {
			diff = -diff
		}
		if e.random.Float64() < AcceptanceProbability(diff) {
			e.logger.Debug("opponent selected",
				slog.String("requester", requester.Username),
				slog.String("opponent", candidate.Username),
				slog.Int("rating_diff", diff),
				slog.Int("draws", draws),
			)
			return candidate, nil
		}
	}
}

// Match selects an opponent and flips a fair coin for who moves first
func (e *Engine) Match(ctx context.Context, requester model.Player, pool []model.Player) (Pairing, error) {
	opponent, err := e.SelectOpponent(ctx, requester, pool)
	if err != nil {
		return Pairing{}, err
	}

	if e.random.Intn(2) == 0 {
		return Pairing{First: requester, Second: opponent}, nil
	}
	return Pairing{First: opponent, Second: requester}, nil
}
