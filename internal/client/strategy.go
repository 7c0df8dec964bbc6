package client

import (
	"fmt"

	"github.com/mcoot/connectfour-go/internal/dependencies/random"
	"github.com/mcoot/connectfour-go/internal/model"
)

// Strategy decides which column an agent plays
type Strategy interface {
	// ChooseColumn picks one of the available columns
	ChooseColumn(available []int) int
}

// NewStrategy returns the strategy registered under name
func NewStrategy(name string, rnd random.Random) (Strategy, error) {
	switch name {
	case model.BotStrategyRandom:
		return NewRandomStrategy(rnd), nil
	case model.BotStrategyLeftmost:
		return LeftmostStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown bot strategy %q, want one of %v", name, model.ValidBotStrategies())
	}
}

// RandomStrategy picks uniformly among available columns
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

func (s *RandomStrategy) ChooseColumn(available []int) int {
	if len(available) == 0 {
		return 0
	}
	return available[s.random.Intn(len(available))]
}

// LeftmostStrategy always plays the lowest open column
type LeftmostStrategy struct{}

func (LeftmostStrategy) ChooseColumn(available []int) int {
	if len(available) == 0 {
		return 0
	}
	return available[0]
}

func allColumns() []int {
	cols := make([]int, model.Columns)
	for i := range cols {
		cols[i] = i
	}
	return cols
}
