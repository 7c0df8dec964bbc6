package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/testutil"
	"github.com/mcoot/connectfour-go/internal/worker"
)

// echoEvents records lifecycle calls and echoes every frame back
type echoEvents struct {
	hub *Hub

	mu       sync.Mutex
	opened   []model.ConnectionID
	closed   chan model.ConnectionID
	handled  map[model.ConnectionID]int
	inFlight map[model.ConnectionID]int
	overlap  bool
}

func newEchoEvents() *echoEvents {
	return &echoEvents{
		closed:   make(chan model.ConnectionID, 16),
		handled:  make(map[model.ConnectionID]int),
		inFlight: make(map[model.ConnectionID]int),
	}
}

func (e *echoEvents) Opened(_ context.Context, conn model.ConnectionID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opened = append(e.opened, conn)
}

func (e *echoEvents) Handle(_ context.Context, conn model.ConnectionID, raw []byte) {
	e.mu.Lock()
	e.inFlight[conn]++
	if e.inFlight[conn] > 1 {
		e.overlap = true
	}
	e.mu.Unlock()

	time.Sleep(time.Millisecond)
	_ = e.hub.Send(conn, raw)

	e.mu.Lock()
	e.inFlight[conn]--
	e.handled[conn]++
	e.mu.Unlock()
}

func (e *echoEvents) Closed(_ context.Context, conn model.ConnectionID) {
	e.closed <- conn
}

func (e *echoEvents) openedConns() []model.ConnectionID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.ConnectionID(nil), e.opened...)
}

type HandlerSuite struct {
	suite.Suite
	hub    *Hub
	events *echoEvents
	pool   *worker.Pool
	server *httptest.Server
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := testutil.NopLogger()
	pool, err := worker.New(8, logger)
	s.Require().NoError(err)
	s.pool = pool

	s.hub = NewHub(logger)
	s.events = newEchoEvents()
	s.events.hub = s.hub
	s.server = httptest.NewServer(NewHandler(s.hub, s.events, s.pool, logger))
}

func (s *HandlerSuite) TearDownTest() {
	s.hub.CloseAll()
	s.server.Close()
	_ = s.pool.Release(time.Second)
}

func (s *HandlerSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	return client
}

func (s *HandlerSuite) waitForConnections(n int) {
	s.Require().Eventually(func() bool {
		return s.hub.Count() == n && len(s.events.openedConns()) >= n
	}, 2*time.Second, 5*time.Millisecond)
}

func (s *HandlerSuite) waitClosed() model.ConnectionID {
	select {
	case id := <-s.events.closed:
		return id
	case <-time.After(2 * time.Second):
		s.FailNow("connection was not reported closed")
		return ""
	}
}

func (s *HandlerSuite) TestConnectionIsOpened() {
	client := s.dial()
	defer client.Close()

	s.waitForConnections(1)
	s.NotEmpty(s.events.openedConns()[0])
}

func (s *HandlerSuite) TestConnectionsGetDistinctIDs() {
	a := s.dial()
	defer a.Close()
	b := s.dial()
	defer b.Close()

	s.waitForConnections(2)
	opened := s.events.openedConns()
	s.NotEqual(opened[0], opened[1])
}

func (s *HandlerSuite) TestFramesAreHandledAndRepliesDelivered() {
	client := s.dial()
	defer client.Close()
	s.waitForConnections(1)

	s.Require().NoError(client.WriteMessage(websocket.BinaryMessage, []byte("hello")))

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, data, err := client.ReadMessage()
	s.Require().NoError(err)
	s.Equal(websocket.BinaryMessage, messageType)
	s.Equal([]byte("hello"), data)
}

func (s *HandlerSuite) TestFramesFromOneConnectionAreHandledInOrder() {
	client := s.dial()
	defer client.Close()
	s.waitForConnections(1)

	const frames = 20
	for i := 0; i < frames; i++ {
		s.Require().NoError(client.WriteMessage(websocket.BinaryMessage, []byte{byte(i)}))
	}

	_ = client.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 0; i < frames; i++ {
		_, data, err := client.ReadMessage()
		s.Require().NoError(err)
		s.Equal([]byte{byte(i)}, data)
	}

	s.events.mu.Lock()
	defer s.events.mu.Unlock()
	s.False(s.events.overlap)
}

func (s *HandlerSuite) TestClientCloseIsReported() {
	client := s.dial()
	s.waitForConnections(1)
	opened := s.events.openedConns()[0]

	_ = client.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = client.Close()

	s.Equal(opened, s.waitClosed())
	s.Eventually(func() bool { return s.hub.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func (s *HandlerSuite) TestCloseAllDisconnectsClients() {
	client := s.dial()
	defer client.Close()
	s.waitForConnections(1)

	s.hub.CloseAll()

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := client.ReadMessage()
	s.True(websocket.IsCloseError(err, websocket.CloseNormalClosure))
	s.waitClosed()
}

func (s *HandlerSuite) TestSendToUnknownConnection() {
	s.ErrorIs(s.hub.Send("conn-404", []byte("x")), ErrConnectionNotFound)
}

func (s *HandlerSuite) TestPlainHTTPRequestIsRejected() {
	resp, err := s.server.Client().Get(s.server.URL)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(400, resp.StatusCode)
	s.Equal(0, s.hub.Count())
}

func (s *HandlerSuite) TestWaitReturnsAfterConnectionsClose() {
	client := s.dial()
	defer client.Close()
	s.waitForConnections(1)

	s.hub.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	handler := s.server.Config.Handler.(*Handler)
	s.NoError(handler.Wait(ctx))
	s.Equal(0, s.hub.Count())
}

func (s *HandlerSuite) TestConnectionsAfterCloseAllAreRejected() {
	s.hub.CloseAll()

	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().ErrorIs(err, websocket.ErrBadHandshake)
	s.Require().NotNil(resp)
	defer resp.Body.Close()
	s.Equal(503, resp.StatusCode)
	s.Equal(0, s.hub.Count())
	s.Empty(s.events.openedConns())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.NoError(s.hub.Wait(ctx))
}

func (s *HandlerSuite) TestAdmittedConnectionIsRefusedOnceClosing() {
	s.Require().NoError(s.hub.admit())
	s.hub.CloseAll()

	s.ErrorIs(s.hub.admit(), ErrHubClosing)
	s.ErrorIs(s.hub.add(&Conn{id: "conn-late"}), ErrHubClosing)
	s.Equal(0, s.hub.Count())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	s.ErrorIs(s.hub.Wait(ctx), context.DeadlineExceeded)

	s.hub.release()
	s.NoError(s.hub.Wait(context.Background()))
}
