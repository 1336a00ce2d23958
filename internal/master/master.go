// Package master spawns one region.Worker per configured region and runs
// them to completion together, mirroring the source's
// MatchmakingMasterJob::initialize fan-out over a JoinSet.
package master

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dahomey-labs/matchmaking-engine/internal/config"
	"github.com/dahomey-labs/matchmaking-engine/internal/kv"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/dahomey-labs/matchmaking-engine/internal/outbox"
	"github.com/dahomey-labs/matchmaking-engine/internal/region"
)

// Master owns one region.Worker per region, each backed by its own Redis
// connection (region stores do not share keyspaces).
type Master struct {
	logger  *slog.Logger
	workers map[string]*region.Worker
}

// New builds a Master from the resolved config: one worker per region,
// every worker seeded with every configured game mode.
func New(cfg config.Config, logger *slog.Logger) (*Master, error) {
	if len(cfg.Regions) == 0 {
		return nil, fmt.Errorf("no regions configured")
	}
	if len(cfg.GameModes) == 0 {
		return nil, fmt.Errorf("no game modes configured")
	}

	resolvedModes := resolveGameModes(cfg)

	workers := make(map[string]*region.Worker, len(cfg.Regions))
	for _, r := range cfg.Regions {
		store := kv.Dial(r.RedisAddr, r.RedisDB)
		transport := outbox.NewRedisTransport(store)
		regionLogger := logger.With("region", r.Name)
		workers[r.Name] = region.New(
			r.Name,
			regionLogger,
			store,
			transport,
			resolvedModes,
			cfg.ReservedPlayerSessionTimeout,
			cfg.TickPeriod,
			cfg.CommandBatchSize,
		)
	}

	return &Master{logger: logger, workers: workers}, nil
}

func resolveGameModes(cfg config.Config) []matchmaking.GameModeConfig {
	modes := make([]matchmaking.GameModeConfig, 0, len(cfg.GameModes))
	for _, gm := range cfg.GameModes {
		modes = append(modes, gm.Resolve())
	}
	return modes
}

// Run starts every region worker and blocks until all of them return, or
// ctx is cancelled. The first worker error cancels the rest.
func (m *Master) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for name, w := range m.workers {
		name, w := name, w
		g.Go(func() error {
			m.logger.Info("starting region worker", "region", name)
			if err := w.Run(gctx); err != nil {
				return fmt.Errorf("region %s: %w", name, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("master: %w", err)
	}
	return nil
}
