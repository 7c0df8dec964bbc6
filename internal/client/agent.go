package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/protocol"
)

// DefaultRetryDelay is how long an agent waits before asking for a game
// again after the server reported too few players
const DefaultRetryDelay = 500 * time.Millisecond

// AgentConfig configures an Agent
type AgentConfig struct {
	Username    string
	DisplayName string
	Strategy    Strategy
	MaxGames    int  // stop after this many finished games; 0 means never
	Rematch     bool // request a new game after each result
	RetryDelay  time.Duration
}

// GameOutcome is one finished game from the agent's point of view
type GameOutcome struct {
	GameID   model.GameID
	Opponent string
	Result   model.GameResult
	Reason   model.EndReason
}

// Summary totals an agent's finished games
type Summary struct {
	Username string
	Wins     int
	Losses   int
	Draws    int
	Games    []GameOutcome
}

// Agent is an automated participant. It registers, asks for games and plays
// every move its strategy picks.
type Agent struct {
	cfg       AgentConfig
	transport Transport
	logger    *slog.Logger

	waiting   bool // no opponent was available; will ask again
	requested int  // distinct games asked for, not counting retries

	games    map[model.GameID]string // game id -> opponent display name
	outcomes []GameOutcome
}

// Ensure Agent implements Participant
var _ Participant = (*Agent)(nil)

// NewAgent creates an agent over transport
func NewAgent(cfg AgentConfig, transport Transport, logger *slog.Logger) *Agent {
	if cfg.DisplayName == "" {
		cfg.DisplayName = cfg.Username
	}
	if cfg.Strategy == nil {
		cfg.Strategy = LeftmostStrategy{}
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Agent{
		cfg:       cfg,
		transport: transport,
		logger:    logger.With(slog.String("agent", cfg.Username)),
		games:     make(map[model.GameID]string),
	}
}

func (a *Agent) Identity() model.Identity {
	return model.Identity{Username: a.cfg.Username, DisplayName: a.cfg.DisplayName}
}

func (a *Agent) Kind() model.PlayerKind { return model.PlayerKindAgent }
func (a *Agent) Rating() int            { return model.DefaultRating }

func (a *Agent) SendRequest(ctx context.Context, req *protocol.Request) error {
	return a.transport.Send(ctx, req)
}

// Done reports whether the agent has played all the games it wanted to
func (a *Agent) Done() bool {
	return a.cfg.MaxGames > 0 && len(a.outcomes) >= a.cfg.MaxGames && len(a.games) == 0
}

// Summary totals the finished games so far
func (a *Agent) Summary() Summary {
	summary := Summary{Username: a.cfg.Username, Games: append([]GameOutcome(nil), a.outcomes...)}
	for _, o := range a.outcomes {
		switch o.Result {
		case model.GameResultWin:
			summary.Wins++
		case model.GameResultLoss:
			summary.Losses++
		case model.GameResultDraw:
			summary.Draws++
		}
	}
	return summary
}

// Run registers and plays until Done, the transport fails or ctx ends
func (a *Agent) Run(ctx context.Context) (Summary, error) {
	stop := make(chan struct{})
	defer close(stop)

	responses := make(chan *protocol.Response)
	errs := make(chan error, 1)
	go func() {
		for {
			resp, err := a.transport.Receive(ctx)
			if err != nil {
				errs <- err
				return
			}
			select {
			case responses <- resp:
			case <-stop:
				return
			}
		}
	}()

	if err := a.SendRequest(ctx, protocol.NewRegistration(a.cfg.Username, a.cfg.DisplayName, true)); err != nil {
		return a.Summary(), err
	}

	var retry <-chan time.Time
	for !a.Done() {
		select {
		case resp := <-responses:
			for _, req := range a.handle(resp) {
				if err := a.SendRequest(ctx, req); err != nil {
					return a.Summary(), err
				}
			}
			if a.waiting && retry == nil {
				retry = time.After(a.cfg.RetryDelay)
			}

		case <-retry:
			retry = nil
			if a.waiting {
				a.waiting = false
				if err := a.SendRequest(ctx, protocol.NewGame()); err != nil {
					return a.Summary(), err
				}
			}

		case err := <-errs:
			return a.Summary(), err

		case <-ctx.Done():
			return a.Summary(), ctx.Err()
		}
	}

	a.logger.Info("agent finished", slog.Int("games", len(a.outcomes)))
	return a.Summary(), nil
}

// handle updates the agent's state for one response and returns the
// requests to send in reply
func (a *Agent) handle(resp *protocol.Response) []*protocol.Request {
	switch resp.Kind() {
	case protocol.ResponseKindRegistrationSuccess:
		return a.nextGame()

	case protocol.ResponseKindNewGame:
		g := resp.NewGame
		id := model.GameID(g.GameID)
		a.games[id] = g.OpponentDisplayName
		a.waiting = false
		a.logger.Debug("game started",
			slog.String("game_id", g.GameID),
			slog.String("opponent", g.OpponentDisplayName),
			slog.Bool("first", g.MakeFirstMove),
		)
		if g.MakeFirstMove {
			return []*protocol.Request{protocol.NewMove(id, a.cfg.Strategy.ChooseColumn(allColumns()))}
		}

	case protocol.ResponseKindAvailableMoves:
		id := model.GameID(resp.AvailableMoves.GameID)
		if _, ok := a.games[id]; ok && len(resp.AvailableMoves.Columns) > 0 {
			return []*protocol.Request{protocol.NewMove(id, a.cfg.Strategy.ChooseColumn(resp.AvailableMoves.Columns))}
		}

	case protocol.ResponseKindGameEnd:
		end := resp.GameEnd
		id := model.GameID(end.GameID)
		opponent, ok := a.games[id]
		if !ok {
			return nil
		}
		delete(a.games, id)
		a.outcomes = append(a.outcomes, GameOutcome{GameID: id, Opponent: opponent, Result: end.Result, Reason: end.Reason})
		a.logger.Debug("game ended", slog.String("game_id", end.GameID), slog.String("result", string(end.Result)))
		if a.cfg.Rematch {
			return a.nextGame()
		}

	case protocol.ResponseKindMessage:
		a.logger.Debug("chat", slog.String("from", resp.Message.SenderDisplayName), slog.String("text", resp.Message.Text))

	case protocol.ResponseKindError:
		switch resp.Error.Code {
		case protocol.CodeNotEnoughPlayers, protocol.CodeOpponentNotFound:
			a.waiting = true
			return nil
		}
		a.logger.Warn("request rejected", slog.String("code", resp.Error.Code), slog.String("message", resp.Error.Message))
	}
	return nil
}

// nextGame asks for another game unless the agent has asked for enough
func (a *Agent) nextGame() []*protocol.Request {
	if a.cfg.MaxGames > 0 && a.requested >= a.cfg.MaxGames {
		return nil
	}
	a.requested++
	return []*protocol.Request{protocol.NewGame()}
}
