package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

type GameConfig struct {
	// RevealPauseMs delays the post-reveal state so clients can animate the reveal.
	RevealPauseMs int `json:"reveal_pause_ms"`
	// RoundEndPauseMs delays the automatic game end after the final round.
	RoundEndPauseMs int `json:"round_end_pause_ms"`
	// AutoFinishGame advances from the final round end to game end without a host action.
	AutoFinishGame bool `json:"auto_finish_game"`
	// AutoPickAfterSeconds lets a bot pick for a participant who has been disconnected
	// this long while the turn waits on them. Zero disables it.
	AutoPickAfterSeconds int    `json:"auto_pick_after_seconds"`
	AutoPickLevel        string `json:"auto_pick_level"`
	CodeLength           int    `json:"code_length"`
	TokenSecret          string `json:"token_secret"`
	TokenTTLMinutes      int    `json:"token_ttl_minutes"`
	TickRate             int    `json:"tick_rate"`
}

// Defaults returns the configuration used when no file has been loaded.
func Defaults() GameConfig {
	return GameConfig{
		RevealPauseMs:   2000,
		RoundEndPauseMs: 3000,
		AutoFinishGame:  true,
		AutoPickLevel:   "greedy",
		CodeLength:      6,
		TokenTTLMinutes: 240,
		TickRate:        5,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path. Missing fields keep their defaults.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c := Defaults()
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns a copy of the global game configuration, or the defaults.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Defaults()
	}
	return *cfg
}

// ApplyEnv overrides fields from a key/value environment. Keys are the JSON
// field names with the given prefix, e.g. "sushigo_reveal_pause_ms".
// Unparseable values are ignored.
func (c *GameConfig) ApplyEnv(env map[string]string, prefix string) {
	intVar := func(key string, dst *int) {
		if v, ok := env[prefix+key]; ok {
			if i, err := strconv.Atoi(v); err == nil {
				*dst = i
			}
		}
	}
	intVar("reveal_pause_ms", &c.RevealPauseMs)
	intVar("round_end_pause_ms", &c.RoundEndPauseMs)
	intVar("auto_pick_after_seconds", &c.AutoPickAfterSeconds)
	intVar("code_length", &c.CodeLength)
	intVar("token_ttl_minutes", &c.TokenTTLMinutes)
	intVar("tick_rate", &c.TickRate)

	if v, ok := env[prefix+"auto_finish_game"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AutoFinishGame = b
		}
	}
	if v, ok := env[prefix+"auto_pick_level"]; ok && v != "" {
		c.AutoPickLevel = v
	}
	if v, ok := env[prefix+"token_secret"]; ok {
		c.TokenSecret = v
	}
}

func (c GameConfig) RevealPause() time.Duration {
	return time.Duration(c.RevealPauseMs) * time.Millisecond
}

func (c GameConfig) RoundEndPause() time.Duration {
	return time.Duration(c.RoundEndPauseMs) * time.Millisecond
}

func (c GameConfig) AutoPickAfter() time.Duration {
	return time.Duration(c.AutoPickAfterSeconds) * time.Second
}

func (c GameConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}
