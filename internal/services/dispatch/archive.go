package dispatch

import (
	"context"
	"log/slog"

	"github.com/mcoot/connectfour-go/internal/model"
)

// Archive writes never fail a request; errors are logged and dropped.

func (d *Dispatcher) archiveContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
}

func (d *Dispatcher) archivePlayer(ctx context.Context, player model.Player) {
	ctx, cancel := d.archiveContext(ctx)
	defer cancel()

	record := &model.PlayerRecord{
		Username:    player.Username,
		DisplayName: player.DisplayName,
		Rating:      player.Rating,
		Kind:        player.Kind,
		CreatedAt:   player.RegisteredAt,
	}
	if err := d.archive.SavePlayer(ctx, record); err != nil {
		d.logger.Warn("failed to archive player",
			slog.String("username", player.Username),
			slog.String("error", err.Error()),
		)
	}
}

func (d *Dispatcher) archiveGame(ctx context.Context, session *model.GameSession, winner model.Side, reason model.EndReason) {
	ctx, cancel := d.archiveContext(ctx)
	defer cancel()

	record := session.Record(winner, reason, d.clock.Now())
	if err := d.archive.SaveGame(ctx, record); err != nil {
		d.logger.Warn("failed to archive game",
			slog.String("game_id", string(session.ID)),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, id := range []model.Identity{record.PlayerA, record.PlayerB} {
		if err := d.archive.RecordResult(ctx, id, record.ResultFor(id)); err != nil {
			d.logger.Warn("failed to record result",
				slog.String("game_id", string(session.ID)),
				slog.String("username", id.Username),
				slog.String("error", err.Error()),
			)
		}
	}
}
