package bot

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelFirst BotLevel = iota + 1
	BotLevelRandom
	BotLevelGreedy
)

// ParseLevel maps a config name to a level.
func ParseLevel(name string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "first":
		return BotLevelFirst, nil
	case "random":
		return BotLevelRandom, nil
	case "greedy", "":
		return BotLevelGreedy, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", name)
	}
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	switch level {
	case BotLevelFirst:
		return &FirstCardBot{}, nil
	case BotLevelRandom:
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		return &RandomBot{rng: rng}, nil
	case BotLevelGreedy:
		return &GreedyBot{Tuning: DefaultTuning}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
