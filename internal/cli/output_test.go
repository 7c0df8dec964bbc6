package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/connectfour-go/internal/client"
	"github.com/mcoot/connectfour-go/internal/model"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestPrintGameDrawsFinalBoard(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	NewOutput("text", &buf).Print(Game{
		ID:        "game-1",
		PlayerA:   Identity{Username: "alice", DisplayName: "Alice"},
		PlayerB:   Identity{Username: "bob", DisplayName: "Bob"},
		Winner:    &Identity{Username: "alice", DisplayName: "Alice"},
		Reason:    "connect_four",
		Moves:     []int{0, 1, 0, 1, 0, 1, 0},
		StartedAt: start,
		EndedAt:   start.Add(90 * time.Second),
	})

	out := buf.String()
	assert.Contains(t, out, "Players: Alice (alice) vs Bob (bob)")
	assert.Contains(t, out, "Winner: Alice (alice) (connect_four)")
	assert.Contains(t, out, "Duration: 1m30s")
	assert.Contains(t, out, " | X . . . . . . |")
	assert.Contains(t, out, " | X O . . . . . |")
	assert.Contains(t, out, "   0 1 2 3 4 5 6")
}

func TestPrintDraw(t *testing.T) {
	var buf bytes.Buffer

	NewOutput("text", &buf).Print(Game{ID: "game-2"})

	assert.Contains(t, buf.String(), "Result: draw")
}

func TestPrintSummaries(t *testing.T) {
	var buf bytes.Buffer

	NewOutput("text", &buf).Print([]client.Summary{{
		Username: "bot-1",
		Wins:     1,
		Games: []client.GameOutcome{
			{GameID: "game-1", Opponent: "bot-2", Result: model.GameResultWin, Reason: model.EndReasonConnectFour},
		},
	}})

	out := buf.String()
	assert.Contains(t, out, "bot-1: 1 won 0 lost 0 drawn")
	assert.Contains(t, out, "game-1 vs bot-2: win (connect_four)")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer

	NewOutput("json", &buf).Print(HealthResult{Status: "ok"})

	var got HealthResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
}

func TestPrintPlayerGamesEmpty(t *testing.T) {
	var buf bytes.Buffer

	NewOutput("text", &buf).Print(PlayerGames{})

	assert.Equal(t, "No games played\n", buf.String())
}
