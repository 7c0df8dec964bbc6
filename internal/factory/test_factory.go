package factory

import (
	"fmt"
	"time"

	"github.com/mcoot/connectfour-go/internal/dependencies/mocks"
	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/services/games"
	"github.com/mcoot/connectfour-go/internal/storage/memory"
	"github.com/mcoot/connectfour-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Archive    *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Game ids are allocated as game-1, game-2, ...
func NewTestApp() (*TestApp, error) {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	var next int
	ids := games.WithIDGenerator(func() model.GameID {
		next++
		return model.GameID(fmt.Sprintf("game-%d", next))
	})

	app, err := newWithDependencies(store, mockClock, mockRandom, 4, testutil.NopLogger(), ids)
	if err != nil {
		return nil, err
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Archive:    store,
	}, nil
}
