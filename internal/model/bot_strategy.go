package model

// Agent move strategies
const (
	BotStrategyRandom   = "random"
	BotStrategyLeftmost = "leftmost"
)

// ValidBotStrategies returns all valid strategy names
func ValidBotStrategies() []string {
	return []string{BotStrategyRandom, BotStrategyLeftmost}
}
