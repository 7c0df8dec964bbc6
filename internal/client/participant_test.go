package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/protocol"
)

func TestHumanRelaysRequestsAndResponses(t *testing.T) {
	transport := newScriptedTransport(func(req *protocol.Request) []*protocol.Response {
		if req.Registration != nil {
			return []*protocol.Response{protocol.RegistrationSucceeded()}
		}
		return nil
	})
	human := NewHuman(model.Identity{Username: "alice", DisplayName: "Alice"}, transport)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() { _ = human.Listen(ctx) }()

	require.NoError(t, human.Register(ctx))

	select {
	case resp := <-human.Responses():
		assert.Equal(t, protocol.ResponseKindRegistrationSuccess, resp.Kind())
	case <-ctx.Done():
		t.Fatal("no response relayed")
	}

	sent := transport.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice", sent[0].Registration.Username)
	assert.False(t, sent[0].Registration.Agent)
	assert.Equal(t, "Alice (alice, human, rating 1500)", Describe(human))
}
