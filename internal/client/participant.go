package client

import (
	"context"
	"fmt"

	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/protocol"
)

// Participant is anything that can take part in games on the server.
// Implemented by *Human and *Agent.
type Participant interface {
	Identity() model.Identity
	Kind() model.PlayerKind
	Rating() int
	SendRequest(ctx context.Context, req *protocol.Request) error
}

// Describe renders a participant for logs and CLI output
func Describe(p Participant) string {
	id := p.Identity()
	return fmt.Sprintf("%s (%s, %s, rating %d)", id.DisplayName, id.Username, p.Kind(), p.Rating())
}

// Human is a participant driven by its caller: requests are sent as-is and
// responses are exposed on a channel
type Human struct {
	identity  model.Identity
	transport Transport
	responses chan *protocol.Response
}

// Ensure Human implements Participant
var _ Participant = (*Human)(nil)

// NewHuman creates a Human over transport
func NewHuman(identity model.Identity, transport Transport) *Human {
	return &Human{
		identity:  identity,
		transport: transport,
		responses: make(chan *protocol.Response, 64),
	}
}

func (h *Human) Identity() model.Identity { return h.identity }
func (h *Human) Kind() model.PlayerKind   { return model.PlayerKindHuman }
func (h *Human) Rating() int              { return model.DefaultRating }

func (h *Human) SendRequest(ctx context.Context, req *protocol.Request) error {
	return h.transport.Send(ctx, req)
}

// Register sends the registration request for the human's identity
func (h *Human) Register(ctx context.Context) error {
	return h.SendRequest(ctx, protocol.NewRegistration(h.identity.Username, h.identity.DisplayName, false))
}

// Responses yields every response received by Listen
func (h *Human) Responses() <-chan *protocol.Response {
	return h.responses
}

// Listen receives responses until the transport fails or ctx ends, then
// closes the Responses channel
func (h *Human) Listen(ctx context.Context) error {
	defer close(h.responses)
	for {
		resp, err := h.transport.Receive(ctx)
		if err != nil {
			return err
		}
		select {
		case h.responses <- resp:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
