package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/connectfour-go/internal/dependencies/clock"
	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/protocol"
	"github.com/mcoot/connectfour-go/internal/services/games"
	"github.com/mcoot/connectfour-go/internal/services/matchmaking"
	"github.com/mcoot/connectfour-go/internal/services/players"
	"github.com/mcoot/connectfour-go/internal/storage"
)

// archiveTimeout bounds each archive write, independent of the request context
const archiveTimeout = 5 * time.Second

// Sender delivers encoded responses to a connection
type Sender interface {
	Send(conn model.ConnectionID, data []byte) error
}

// Stats summarises live server state
type Stats struct {
	ActivePlayers     int `json:"active_players"`
	RegisteredPlayers int `json:"registered_players"`
	ActiveGames       int `json:"active_games"`
	OpenConnections   int `json:"open_connections"`
}

// Dispatcher turns connection events and decoded requests into registry
// operations and responses
type Dispatcher struct {
	players *players.Registry
	games   *games.Registry
	engine  *matchmaking.Engine
	codec   protocol.Codec
	sender  Sender
	archive storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new Dispatcher
func New(
	players *players.Registry,
	games *games.Registry,
	engine *matchmaking.Engine,
	codec protocol.Codec,
	sender Sender,
	archive storage.Storage,
	clock clock.Clock,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		players: players,
		games:   games,
		engine:  engine,
		codec:   codec,
		sender:  sender,
		archive: archive,
		clock:   clock,
		logger:  logger.With(slog.String("component", "dispatcher")),
	}
}

// Opened prepares state for a newly accepted connection
func (d *Dispatcher) Opened(ctx context.Context, conn model.ConnectionID) {
	d.games.Open(conn)
	d.logger.Debug("connection opened", slog.String("conn_id", string(conn)))
}

// Handle decodes and processes one inbound frame. Failures are reported to
// the sender as error responses.
func (d *Dispatcher) Handle(ctx context.Context, conn model.ConnectionID, raw []byte) {
	req, err := d.codec.DecodeRequest(raw)
	if err != nil {
		d.reject(conn, err)
		return
	}

	switch req.Kind() {
	case protocol.RequestKindRegistration:
		err = d.register(ctx, conn, req.Registration)
	case protocol.RequestKindNewGame:
		err = d.newGame(ctx, conn)
	case protocol.RequestKindMove:
		err = d.move(ctx, conn, req.Move)
	case protocol.RequestKindMessage:
		err = d.message(conn, req.Message)
	default:
		err = model.ErrDecode
	}

	if err != nil {
		d.reject(conn, err)
	}
}

// Closed forfeits every game the connection is still playing and forgets it
func (d *Dispatcher) Closed(ctx context.Context, conn model.ConnectionID) {
	player, wasActive := d.players.Deactivate(conn)
	d.games.Seal(conn)

	for _, session := range d.games.SessionsFor(conn) {
		forfeited := session.Conclude()

		// A move that finished the game first leaves removal to us as well,
		// since the connection index is about to disappear.
		if err := d.games.Remove(session.ID); err != nil && !errors.Is(err, model.ErrGameNotActive) {
			d.logger.Error("failed to remove forfeited game",
				slog.String("game_id", string(session.ID)),
				slog.String("error", err.Error()),
			)
		}
		if !forfeited {
			continue
		}

		opponent, _ := session.Opponent(conn)
		d.send(opponent.ConnectionID, protocol.GameEnded(session.ID, model.GameResultWin, model.EndReasonForfeit))
		d.logger.Info("game forfeited",
			slog.String("game_id", string(session.ID)),
			slog.String("conn_id", string(conn)),
			slog.String("winner", opponent.Username),
		)
		d.archiveGame(ctx, session, session.SideOf(opponent.ConnectionID), model.EndReasonForfeit)
	}

	d.games.RemoveConnection(conn)

	attrs := []any{slog.String("conn_id", string(conn))}
	if wasActive {
		attrs = append(attrs, slog.String("username", player.Username))
	}
	d.logger.Debug("connection closed", attrs...)
}

// Stats returns a snapshot of live state
func (d *Dispatcher) Stats() Stats {
	return Stats{
		ActivePlayers:     d.players.ActiveCount(),
		RegisteredPlayers: d.players.Count(),
		ActiveGames:       d.games.Count(),
		OpenConnections:   d.games.ConnectionCount(),
	}
}

func (d *Dispatcher) register(ctx context.Context, conn model.ConnectionID, req *protocol.RegistrationRequest) error {
	if err := ValidateCredentials(req.Username, req.DisplayName); err != nil {
		return err
	}

	kind := model.PlayerKindHuman
	if req.Agent {
		kind = model.PlayerKindAgent
	}

	player, err := d.players.Register(req.Username, req.DisplayName, conn, kind)
	if err != nil {
		return err
	}

	d.send(conn, protocol.RegistrationSucceeded())
	d.archivePlayer(ctx, player)
	return nil
}

func (d *Dispatcher) newGame(ctx context.Context, conn model.ConnectionID) error {
	requester, ok := d.players.ActivePlayer(conn)
	if !ok {
		return model.ErrNotRegistered
	}
	if d.players.ActiveCount() < 2 {
		return model.ErrNotEnoughPlayers
	}

	pairing, err := d.engine.Match(ctx, requester, d.players.ActivePlayers())
	if err != nil {
		return err
	}

	session, err := d.games.Create(pairing.First, pairing.Second)
	if err != nil {
		return err
	}

	d.send(pairing.First.ConnectionID, protocol.GameStarted(session.ID, pairing.Second, true))
	d.send(pairing.Second.ConnectionID, protocol.GameStarted(session.ID, pairing.First, false))
	return nil
}

func (d *Dispatcher) move(ctx context.Context, conn model.ConnectionID, req *protocol.MoveRequest) error {
	id := model.GameID(req.GameID)

	if !d.players.IsActive(conn) {
		return &model.GameError{GameID: id, Err: model.ErrNotRegistered}
	}
	session, ok := d.games.Lookup(conn, id)
	if !ok {
		return &model.GameError{GameID: id, Err: model.ErrGameNotActive}
	}

	outcome, err := session.Play(conn, req.Column)
	if err != nil {
		return &model.GameError{GameID: id, Err: err}
	}

	if !outcome.Finished() {
		d.send(outcome.Opponent.ConnectionID, protocol.MovesAvailable(id, outcome.Available))
		return nil
	}

	winner := model.SideNone
	reason := model.EndReasonBoardFull
	moverResult, opponentResult := model.GameResultDraw, model.GameResultDraw
	if outcome.Won {
		winner = outcome.MoverSide
		reason = model.EndReasonConnectFour
		moverResult, opponentResult = model.GameResultWin, model.GameResultLoss
	}

	d.send(outcome.Mover.ConnectionID, protocol.GameEnded(id, moverResult, reason))
	d.send(outcome.Opponent.ConnectionID, protocol.GameEnded(id, opponentResult, reason))

	if err := d.games.Remove(id); err != nil {
		if !errors.Is(err, model.ErrGameNotActive) {
			return &model.GameError{GameID: id, Err: err}
		}
		// the opponent's close path already removed it
		d.logger.Debug("finished game already removed", slog.String("game_id", string(id)))
	}

	d.logger.Info("game finished",
		slog.String("game_id", string(id)),
		slog.String("reason", string(reason)),
		slog.String("winner", winner.String()),
		slog.Int("moves", session.MoveCount()),
		slog.Duration("duration", d.clock.Since(session.CreatedAt)),
	)
	d.archiveGame(ctx, session, winner, reason)
	return nil
}

func (d *Dispatcher) message(conn model.ConnectionID, req *protocol.MessageRequest) error {
	id := model.GameID(req.GameID)

	sender, ok := d.players.ActivePlayer(conn)
	if !ok {
		return &model.GameError{GameID: id, Err: model.ErrNotRegistered}
	}
	session, ok := d.games.Lookup(conn, id)
	if !ok || session.Concluded() {
		return &model.GameError{GameID: id, Err: model.ErrGameNotActive}
	}

	receiver, _ := session.Opponent(conn)
	d.send(receiver.ConnectionID, protocol.ChatMessage(id, sender.DisplayName, req.Text))
	return nil
}

// reject reports err to conn as an error response
func (d *Dispatcher) reject(conn model.ConnectionID, err error) {
	if errors.Is(err, model.ErrInternalInconsistency) {
		d.logger.Error("request failed",
			slog.String("conn_id", string(conn)),
			slog.String("error", err.Error()),
		)
	} else {
		d.logger.Debug("request rejected",
			slog.String("conn_id", string(conn)),
			slog.String("error", err.Error()),
		)
	}
	d.send(conn, protocol.ErrorFor(err))
}

// send encodes and delivers resp. Delivery failures mean the peer has gone
// and its own close event will clean up.
func (d *Dispatcher) send(conn model.ConnectionID, resp *protocol.Response) {
	data, err := d.codec.EncodeResponse(resp)
	if err != nil {
		d.logger.Error("failed to encode response",
			slog.String("conn_id", string(conn)),
			slog.String("kind", string(resp.Kind())),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := d.sender.Send(conn, data); err != nil {
		d.logger.Warn("failed to send response",
			slog.String("conn_id", string(conn)),
			slog.String("kind", string(resp.Kind())),
			slog.String("error", err.Error()),
		)
	}
}
