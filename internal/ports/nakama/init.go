package nakama

import (
	"context"
	"database/sql"

	"sushigo/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule loads the game config, then registers the session RPCs and the
// authoritative match.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(GameConfigPath); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		cfg.ApplyEnv(env, EnvPrefix)
	}
	logger.WithFields(map[string]interface{}{
		"reveal_pause_ms":         cfg.RevealPauseMs,
		"round_end_pause_ms":      cfg.RoundEndPauseMs,
		"auto_finish_game":        cfg.AutoFinishGame,
		"auto_pick_after_seconds": cfg.AutoPickAfterSeconds,
		"tick_rate":               cfg.TickRate,
	}).Info("InitModule: effective game config")

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameSushiGo, NewMatch); err != nil {
		return err
	}

	logger.Info("SushiGo module loaded.")
	return nil
}
