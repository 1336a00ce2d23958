package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dahomey-labs/matchmaking-engine/internal/config"
	"github.com/dahomey-labs/matchmaking-engine/internal/master"
)

const ConfigPath = "config/matchmakingjob.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	path := ConfigPath
	if p := os.Getenv("MATCHMAKING_CONFIG"); p != "" {
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("matchmaking job starting", "log_level", cfg.LogLevel, "regions", len(cfg.Regions), "game_modes", len(cfg.GameModes))

	m, err := master.New(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("building master: %w", err)
	}

	if err := m.Run(ctx); err != nil {
		return fmt.Errorf("master run: %w", err)
	}

	slog.Info("matchmaking job stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
