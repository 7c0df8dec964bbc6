package factory

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/connectfour-go/internal/client"
	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/protocol"
	"github.com/mcoot/connectfour-go/internal/testutil"
)

// IntegrationSuite drives the wired app over real websocket connections
type IntegrationSuite struct {
	suite.Suite
	app    *TestApp
	server *httptest.Server
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	app, err := NewTestApp()
	s.Require().NoError(err)
	s.app = app
	s.server = httptest.NewServer(app.Router())
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 10*time.Second)
}

func (s *IntegrationSuite) TearDownTest() {
	s.server.Close()
	if !s.closed {
		s.NoError(s.app.Close(s.ctx))
	}
	s.cancel()
}

func (s *IntegrationSuite) dial() *client.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, err := client.Dial(s.ctx, url, s.app.Codec)
	s.Require().NoError(err)
	return conn
}

func (s *IntegrationSuite) send(conn *client.Conn, req *protocol.Request) {
	s.Require().NoError(conn.Send(s.ctx, req))
}

// expect reads responses until one of the given kind arrives
func (s *IntegrationSuite) expect(conn *client.Conn, kind protocol.ResponseKind) *protocol.Response {
	for {
		resp, err := conn.Receive(s.ctx)
		s.Require().NoError(err)
		if resp.Kind() == kind {
			return resp
		}
		s.Require().NotEqual(protocol.ResponseKindError, resp.Kind(), "unexpected error: %+v", resp.Error)
	}
}

func (s *IntegrationSuite) register(username, displayName string) *client.Conn {
	conn := s.dial()
	s.send(conn, protocol.NewRegistration(username, displayName, false))
	s.expect(conn, protocol.ResponseKindRegistrationSuccess)
	return conn
}

// startGame registers alice and bob and has alice ask for a game; with the
// default mock random alice moves first
func (s *IntegrationSuite) startGame() (alice, bob *client.Conn, id model.GameID) {
	alice = s.register("alice", "Alice")
	bob = s.register("bob", "Bob")

	s.send(alice, protocol.NewGame())
	started := s.expect(alice, protocol.ResponseKindNewGame).NewGame
	s.True(started.MakeFirstMove)
	s.Equal("Bob", started.OpponentDisplayName)

	other := s.expect(bob, protocol.ResponseKindNewGame).NewGame
	s.False(other.MakeFirstMove)
	s.Equal(started.GameID, other.GameID)

	return alice, bob, model.GameID(started.GameID)
}

func (s *IntegrationSuite) TestFullGameOverWebSocket() {
	alice, bob, id := s.startGame()
	defer alice.Close()
	defer bob.Close()

	moves := testutil.WinningSequence()
	for i, col := range moves {
		mover, waiter := alice, bob
		if i%2 == 1 {
			mover, waiter = bob, alice
		}
		s.send(mover, protocol.NewMove(id, col))
		if i < len(moves)-1 {
			avail := s.expect(waiter, protocol.ResponseKindAvailableMoves).AvailableMoves
			s.Equal(string(id), avail.GameID)
		}
	}

	won := s.expect(alice, protocol.ResponseKindGameEnd).GameEnd
	s.Equal(model.GameResultWin, won.Result)
	s.Equal(model.EndReasonConnectFour, won.Reason)
	lost := s.expect(bob, protocol.ResponseKindGameEnd).GameEnd
	s.Equal(model.GameResultLoss, lost.Result)

	s.Eventually(func() bool {
		record, err := s.app.Archive.GetGame(s.ctx, id)
		return err == nil && record.Winner == model.SideA
	}, 2*time.Second, 10*time.Millisecond)

	s.Eventually(func() bool {
		player, err := s.app.Archive.GetPlayer(s.ctx, model.Identity{Username: "bob", DisplayName: "Bob"})
		return err == nil && player.Losses == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *IntegrationSuite) TestChatIsRelayed() {
	alice, bob, id := s.startGame()
	defer alice.Close()
	defer bob.Close()

	s.send(bob, protocol.NewMessage(id, "good luck"))
	msg := s.expect(alice, protocol.ResponseKindMessage).Message
	s.Equal("good luck", msg.Text)
	s.Equal("Bob", msg.SenderDisplayName)
}

func (s *IntegrationSuite) TestDisconnectForfeitsGame() {
	alice, bob, id := s.startGame()
	defer alice.Close()

	s.Require().NoError(bob.Close())

	ended := s.expect(alice, protocol.ResponseKindGameEnd).GameEnd
	s.Equal(string(id), ended.GameID)
	s.Equal(model.GameResultWin, ended.Result)
	s.Equal(model.EndReasonForfeit, ended.Reason)

	s.Eventually(func() bool {
		return s.app.Dispatcher.Stats().ActiveGames == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *IntegrationSuite) TestErrorsAreReportedToSender() {
	alice := s.register("alice", "Alice")
	defer alice.Close()

	s.send(alice, protocol.NewGame())
	resp, err := alice.Receive(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(protocol.ResponseKindError, resp.Kind())
	s.Equal(protocol.CodeNotEnoughPlayers, resp.Error.Code)
}

func (s *IntegrationSuite) TestCloseDisconnectsClients() {
	alice := s.register("alice", "Alice")
	defer alice.Close()

	s.closed = true
	s.Require().NoError(s.app.Close(s.ctx))

	_, err := alice.Receive(s.ctx)
	s.Error(err)
}

func (s *IntegrationSuite) TestFirstMoveOffersEveryColumn() {
	nika := s.register("nika", "Nika")
	defer nika.Close()
	matic := s.register("matic", "Matic")
	defer matic.Close()

	s.send(matic, protocol.NewGame())
	fromMatic := s.expect(matic, protocol.ResponseKindNewGame).NewGame
	fromNika := s.expect(nika, protocol.ResponseKindNewGame).NewGame

	s.Equal(fromMatic.GameID, fromNika.GameID)
	s.Equal("Nika", fromMatic.OpponentDisplayName)
	s.Equal("Matic", fromNika.OpponentDisplayName)
	s.NotEqual(fromMatic.MakeFirstMove, fromNika.MakeFirstMove)

	first, second := matic, nika
	if fromNika.MakeFirstMove {
		first, second = nika, matic
	}
	id := model.GameID(fromMatic.GameID)

	s.send(first, protocol.NewMove(id, 3))
	avail := s.expect(second, protocol.ResponseKindAvailableMoves).AvailableMoves
	s.Equal(string(id), avail.GameID)
	s.Equal([]int{0, 1, 2, 3, 4, 5, 6}, avail.Columns)
}
