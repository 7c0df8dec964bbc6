package matchmaking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/connectfour-go/internal/dependencies/mocks"
	"github.com/mcoot/connectfour-go/internal/dependencies/random"
	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/testutil"
)

type EngineSuite struct {
	suite.Suite
	random *mocks.MockRandom
	engine *Engine
	ctx    context.Context

	alice model.Player
	bob   model.Player
	carol model.Player
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.engine = NewEngine(s.random, testutil.NopLogger())
	s.ctx = context.Background()

	s.alice = testutil.NewRatedPlayer("alice", "conn-a", 1500)
	s.bob = testutil.NewRatedPlayer("bob", "conn-b", 1500)
	s.carol = testutil.NewRatedPlayer("carol", "conn-c", 1501)
}

func (s *EngineSuite) TestAcceptanceProbability() {
	s.InDelta(1.0, AcceptanceProbability(0), 1e-9)
	s.InDelta(0.5, AcceptanceProbability(1), 1e-9)
	s.InDelta(0.2, AcceptanceProbability(2), 1e-9)
	s.InDelta(1.0/101, AcceptanceProbability(10), 1e-9)
}

// SelectOpponent tests

func (s *EngineSuite) TestSelectOpponentNeverReturnsRequester() {
	pool := []model.Player{s.alice, s.bob}

	for i := 0; i < 10; i++ {
		s.random.QueueIntn(i % 2)
	}
	for i := 0; i < 10; i++ {
		opponent, err := s.engine.SelectOpponent(s.ctx, s.alice, pool)
		s.Require().NoError(err)
		s.Equal("bob", opponent.Username)
	}
}

func (s *EngineSuite) TestSelectOpponentRejectsThenAccepts() {
	pool := []model.Player{s.alice, s.bob, s.carol}

	// Candidates after excluding alice are [bob, carol]
	s.random.QueueIntn(1, 0)
	s.random.QueueFloat64(0.6, 0.1) // carol has p=0.5 and is rejected

	opponent, err := s.engine.SelectOpponent(s.ctx, s.alice, pool)
	s.Require().NoError(err)
	s.Equal("bob", opponent.Username)
}

func (s *EngineSuite) TestSelectOpponentAcceptsWithinProbability() {
	pool := []model.Player{s.alice, s.carol}

	s.random.QueueIntn(0)
	s.random.QueueFloat64(0.49)

	opponent, err := s.engine.SelectOpponent(s.ctx, s.alice, pool)
	s.Require().NoError(err)
	s.Equal("carol", opponent.Username)
}

func (s *EngineSuite) TestSelectOpponentNotEnoughPlayers() {
	_, err := s.engine.SelectOpponent(s.ctx, s.alice, []model.Player{s.alice})
	s.ErrorIs(err, model.ErrNotEnoughPlayers)

	_, err = s.engine.SelectOpponent(s.ctx, s.alice, nil)
	s.ErrorIs(err, model.ErrNotEnoughPlayers)
}

func (s *EngineSuite) TestSelectOpponentObservesCancellation() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.engine.SelectOpponent(ctx, s.alice, []model.Player{s.alice, s.bob})
	s.ErrorIs(err, context.Canceled)
}

func (s *EngineSuite) TestSelectOpponentFavoursCloseRatings() {
	engine := NewEngine(random.New(), testutil.NopLogger())
	pool := []model.Player{s.alice, s.bob, s.carol}

	const trials = 3000
	bobCount := 0
	for i := 0; i < trials; i++ {
		opponent, err := engine.SelectOpponent(s.ctx, s.alice, pool)
		s.Require().NoError(err)
		if opponent.Username == "bob" {
			bobCount++
		}
	}

	// bob is accepted twice as often as carol, so expect about two thirds
	ratio := float64(bobCount) / trials
	s.InDelta(2.0/3.0, ratio, 0.06)
}

// Match tests

func (s *EngineSuite) TestMatchRequesterFirst() {
	s.random.QueueIntn(0, 0) // pick bob, then heads

	pairing, err := s.engine.Match(s.ctx, s.alice, []model.Player{s.alice, s.bob})
	s.Require().NoError(err)
	s.Equal("alice", pairing.First.Username)
	s.Equal("bob", pairing.Second.Username)
}

func (s *EngineSuite) TestMatchOpponentFirst() {
	s.random.QueueIntn(0, 1) // pick bob, then tails

	pairing, err := s.engine.Match(s.ctx, s.alice, []model.Player{s.alice, s.bob})
	s.Require().NoError(err)
	s.Equal("bob", pairing.First.Username)
	s.Equal("alice", pairing.Second.Username)
}

func (s *EngineSuite) TestMatchPropagatesError() {
	_, err := s.engine.Match(s.ctx, s.alice, []model.Player{s.alice})
	s.ErrorIs(err, model.ErrNotEnoughPlayers)
}
