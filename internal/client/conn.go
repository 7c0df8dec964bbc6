package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/connectfour-go/internal/protocol"
)

// Transport carries protocol envelopes between a participant and the server
type Transport interface {
	Send(ctx context.Context, req *protocol.Request) error
	Receive(ctx context.Context) (*protocol.Response, error)
	Close() error
}

// Conn is a websocket connection to the server
type Conn struct {
	ws      *websocket.Conn
	codec   protocol.Codec
	writeMu sync.Mutex
}

// Ensure Conn implements Transport
var _ Transport = (*Conn)(nil)

// Dial connects to the server's websocket endpoint, e.g. ws://localhost:8080/ws
func Dial(ctx context.Context, url string, codec protocol.Codec) (*Conn, error) {
	socket, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Conn{ws: socket, codec: codec}, nil
}

// Send encodes and writes one request
func (c *Conn) Send(ctx context.Context, req *protocol.Request) error {
	data, err := c.codec.EncodeRequest(req)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(10 * time.Second)
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.BinaryMessage, data)
}

// Receive blocks for the next response. Only one goroutine may call it.
func (c *Conn) Receive(ctx context.Context) (*protocol.Response, error) {
	deadline, _ := ctx.Deadline()
	if err := c.ws.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	return c.codec.DecodeResponse(data)
}

// Close sends a close frame and closes the socket
func (c *Conn) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.ws.Close()
}
