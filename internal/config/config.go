// Package config loads the matchmaking job's static configuration: the
// region list, per-region store connections, and per-game-mode matching
// policy. Treated as immutable for the life of a run.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
)

// RegionConfig is one region's identity and store connection.
type RegionConfig struct {
	Name      string `yaml:"name"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
}

// GameModeConfig is the YAML-facing form of matchmaking.GameModeConfig:
// matchmaker and match-function kinds are spelled as names here and
// resolved to their enum values by Resolve.
type GameModeConfig struct {
	Name              string `yaml:"name"`
	MinPlayers        int    `yaml:"min_players"`
	MaxPlayers        int    `yaml:"max_players"`
	TeamPlayerCount   int    `yaml:"team_player_count"`
	Matchmaker        string `yaml:"matchmaker"`     // simple_list | cut_lists | multi_threaded_cut_lists
	MatchFunction     string `yaml:"match_function"` // fcfs | mmr
	MaxMMRDistance    uint32 `yaml:"max_mmr_distance"`
	WaitingTimeWeight uint32 `yaml:"waiting_time_weight"`
	MMRRange          uint32 `yaml:"mmr_range"`
}

// Resolve converts the YAML representation into the domain type the
// matchmaker and match-function constructors actually consume.
func (g GameModeConfig) Resolve() matchmaking.GameModeConfig {
	mode := matchmaking.GameModeConfig{
		Name:              g.Name,
		MinPlayers:        g.MinPlayers,
		MaxPlayers:        g.MaxPlayers,
		TeamPlayerCount:   g.TeamPlayerCount,
		MaxMMRDistance:    g.MaxMMRDistance,
		WaitingTimeWeight: g.WaitingTimeWeight,
		MMRRange:          g.MMRRange,
	}
	switch g.Matchmaker {
	case "cut_lists":
		mode.Matchmaker = matchmaking.MatchmakerCutLists
	case "multi_threaded_cut_lists":
		mode.Matchmaker = matchmaking.MatchmakerMultiThreadedCutLists
	default:
		mode.Matchmaker = matchmaking.MatchmakerSimpleList
	}
	switch g.MatchFunction {
	case "mmr":
		mode.MatchFunction = matchmaking.MatchFunctionMMR
	default:
		mode.MatchFunction = matchmaking.MatchFunctionFCFS
	}
	return mode
}

// Config is the matchmaking job's full static configuration.
type Config struct {
	Regions   []RegionConfig   `yaml:"regions"`
	GameModes []GameModeConfig `yaml:"game_modes"`

	// ReservedPlayerSessionTimeout bounds how long an Activating player may
	// sit without activating before its session membership is revoked.
	ReservedPlayerSessionTimeout int64 `yaml:"reserved_player_session_timeout"`

	// TickPeriod is the region worker's nominal loop period.
	TickPeriod time.Duration `yaml:"tick_period"`

	// CommandBatchSize bounds how many commands a single tick drains from
	// the command queue.
	CommandBatchSize int `yaml:"command_batch_size"`

	LogLevel string `yaml:"log_level"`
}

// Default returns Config with sensible defaults and no regions or game
// modes configured — a deployment must always supply at least one of
// each, so leaving them empty surfaces a clear startup error rather than
// silently running nothing.
func Default() Config {
	return Config{
		ReservedPlayerSessionTimeout: 30,
		TickPeriod:                   time.Second,
		CommandBatchSize:             1000,
		LogLevel:                     "info",
	}
}

// Load reads config from a YAML file. If the file doesn't exist, returns
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// GameModeByName returns the resolved GameModeConfig matching name.
func (c Config) GameModeByName(name string) (matchmaking.GameModeConfig, bool) {
	for _, gm := range c.GameModes {
		if gm.Name == name {
			return gm.Resolve(), true
		}
	}
	return matchmaking.GameModeConfig{}, false
}
