package players

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/connectfour-go/internal/dependencies/mocks"
	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	clock    *mocks.MockClock
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.registry = NewRegistry(s.clock, testutil.NopLogger())
}

// Register tests

func (s *RegistrySuite) TestRegisterActivatesPlayer() {
	player, err := s.registry.Register("alice", "Alice", "conn-1", model.PlayerKindHuman)
	s.Require().NoError(err)

	s.Equal("alice", player.Username)
	s.Equal("Alice", player.DisplayName)
	s.Equal(model.DefaultRating, player.Rating)
	s.Equal(model.ConnectionID("conn-1"), player.ConnectionID)
	s.Equal(s.clock.Now(), player.RegisteredAt)

	s.True(s.registry.IsActive("conn-1"))
	s.Equal(1, s.registry.ActiveCount())
	s.Equal(1, s.registry.Count())
}

func (s *RegistrySuite) TestRegisterDuplicateIdentity() {
	_, err := s.registry.Register("alice", "Alice", "conn-1", model.PlayerKindHuman)
	s.Require().NoError(err)

	_, err = s.registry.Register("alice", "Alice", "conn-2", model.PlayerKindHuman)
	s.ErrorIs(err, model.ErrPlayerAlreadyExists)
	s.False(s.registry.IsActive("conn-2"))
	s.Equal(1, s.registry.Count())
}

func (s *RegistrySuite) TestRegisterSameUsernameDifferentDisplayName() {
	_, err := s.registry.Register("alice", "Alice", "conn-1", model.PlayerKindHuman)
	s.Require().NoError(err)

	_, err = s.registry.Register("alice", "Alice Two", "conn-2", model.PlayerKindHuman)
	s.NoError(err)
	s.Equal(2, s.registry.Count())
}

func (s *RegistrySuite) TestRegisterTwiceOnOneConnection() {
	_, err := s.registry.Register("alice", "Alice", "conn-1", model.PlayerKindHuman)
	s.Require().NoError(err)

	_, err = s.registry.Register("bob", "Bob", "conn-1", model.PlayerKindHuman)
	s.ErrorIs(err, model.ErrAlreadyRegistered)
	s.Equal(1, s.registry.Count())
}

func (s *RegistrySuite) TestRegisterSameIdentityTwiceOnOneConnection() {
	_, err := s.registry.Register("alice", "Alice", "conn-1", model.PlayerKindHuman)
	s.Require().NoError(err)

	_, err = s.registry.Register("alice", "Alice", "conn-1", model.PlayerKindHuman)
	s.ErrorIs(err, model.ErrPlayerAlreadyExists)

	player, ok := s.registry.ActivePlayer("conn-1")
	s.Require().True(ok)
	s.Equal("alice", player.Username)
}

func (s *RegistrySuite) TestConcurrentRegistrationOnOneConnection() {
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("player-%d", i)
			if _, err := s.registry.Register(name, name, "conn-1", model.PlayerKindHuman); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				s.ErrorIs(err, model.ErrAlreadyRegistered)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(1, succeeded)
	s.Equal(1, s.registry.Count())
	s.Equal(1, s.registry.ActiveCount())

	player, ok := s.registry.ActivePlayer("conn-1")
	s.Require().True(ok)
	_, durable := s.registry.Lookup(player.Username, player.DisplayName)
	s.True(durable)
}

// Lookup tests

func (s *RegistrySuite) TestLookup() {
	_, _ = s.registry.Register("alice", "Alice", "conn-1", model.PlayerKindAgent)

	player, ok := s.registry.Lookup("alice", "Alice")
	s.True(ok)
	s.Equal(model.PlayerKindAgent, player.Kind)

	_, ok = s.registry.Lookup("alice", "Someone Else")
	s.False(ok)
}

// Activation tests

func (s *RegistrySuite) TestDeactivateKeepsDurableRecord() {
	_, _ = s.registry.Register("alice", "Alice", "conn-1", model.PlayerKindHuman)

	player, ok := s.registry.Deactivate("conn-1")
	s.True(ok)
	s.Equal("alice", player.Username)

	s.False(s.registry.IsActive("conn-1"))
	s.Equal(0, s.registry.ActiveCount())

	_, ok = s.registry.Lookup("alice", "Alice")
	s.True(ok)
}

func (s *RegistrySuite) TestDeactivateUnknownConnection() {
	_, ok := s.registry.Deactivate("conn-x")
	s.False(ok)
}

func (s *RegistrySuite) TestReactivateOnNewConnection() {
	_, _ = s.registry.Register("alice", "Alice", "conn-1", model.PlayerKindHuman)
	s.registry.Deactivate("conn-1")

	err := s.registry.Activate(model.Identity{Username: "alice", DisplayName: "Alice"}, "conn-2")
	s.Require().NoError(err)

	player, ok := s.registry.ActivePlayer("conn-2")
	s.True(ok)
	s.Equal(model.ConnectionID("conn-2"), player.ConnectionID)
}

func (s *RegistrySuite) TestActivateUnknownIdentity() {
	err := s.registry.Activate(model.Identity{Username: "ghost", DisplayName: "Ghost"}, "conn-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *RegistrySuite) TestActivePlayersSnapshot() {
	_, _ = s.registry.Register("bob", "Bob", "conn-2", model.PlayerKindHuman)
	_, _ = s.registry.Register("alice", "Alice", "conn-1", model.PlayerKindHuman)

	active := s.registry.ActivePlayers()
	s.Require().Len(active, 2)
	s.Equal(model.ConnectionID("conn-1"), active[0].ConnectionID)
	s.Equal("alice", active[0].Username)
	s.Equal(model.ConnectionID("conn-2"), active[1].ConnectionID)
}

func (s *RegistrySuite) TestConcurrentRegistrationAndDeactivation() {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := model.ConnectionID(fmt.Sprintf("conn-%d", i))
			_, err := s.registry.Register(fmt.Sprintf("user-%d", i), "Player", conn, model.PlayerKindHuman)
			s.NoError(err)
			_ = s.registry.ActivePlayers()
			if i%2 == 0 {
				s.registry.Deactivate(conn)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(50, s.registry.Count())
	s.Equal(25, s.registry.ActiveCount())
}
