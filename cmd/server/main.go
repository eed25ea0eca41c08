package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sushigo/internal/app"
	"sushigo/internal/config"
	"sushigo/internal/logging"
	"sushigo/internal/ports/nakama"
	"sushigo/internal/ports/ws"
)

const sweepInterval = time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "simulation" {
		StartSimulation(os.Args[2:])
		return
	}

	logger, err := logging.New(os.Getenv("DEBUG") != "")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfgPath := os.Getenv("GAME_CONFIG")
	if cfgPath == "" {
		cfgPath = nakama.GameConfigPath
	}
	if err := config.LoadGameConfig(cfgPath); err != nil {
		logger.Warn("Failed to load game config from %s, using defaults: %v", cfgPath, err)
	}
	cfg := config.GetGameConfig()
	cfg.ApplyEnv(environ(), nakama.EnvPrefix)

	svc := app.NewService(rand.New(rand.NewSource(time.Now().UnixNano())), cfg, logger)
	hub := ws.NewHub(logger)
	manager := app.NewManager(svc, hub, app.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL()), logger)
	server := ws.NewServer(manager, hub, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweep(ctx, manager)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	go func() {
		logger.Info("SushiGo server listening on :%s", port)
		if err := server.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown: %v", err)
	}
	manager.Close()
}

// sweep unblocks turns stalled on disconnected participants and evicts
// finished games.
func sweep(ctx context.Context, manager *app.Manager) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			manager.Sweep(now)
		}
	}
}

// environ returns the process environment with lowercased keys, matching
// the key form Nakama passes to match handlers.
func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[strings.ToLower(k)] = v
	}
	return env
}
