// Package matchfunc implements the match-function protocol: a size-bounds
// check common to every strategy, followed by a strategy-specific
// acceptance predicate (first-come-first-served, or MMR-banded).
package matchfunc

import "github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"

// Group is the player-count/MMR/wait-time summary a match-function
// consults. It is computed once per candidate pair by the matchmaker and
// passed in, rather than having the match-function reach back into the
// ticket caches.
type Group struct {
	PlayerCount     int
	AverageMMR      uint32
	AverageWaitTime int64 // seconds, since each player's creation_time
}

// MatchFunction decides whether two candidate groups should be merged
// into one session.
type MatchFunction interface {
	// IsMatch enforces size bounds first; only if they hold does it
	// consult the strategy-specific predicate.
	IsMatch(mode matchmaking.GameModeConfig, g1, g2 Group) bool
}

func isInBounds(mode matchmaking.GameModeConfig, g1, g2 Group) bool {
	total := g1.PlayerCount + g2.PlayerCount
	return total >= mode.MinPlayers && total <= mode.MaxPlayers
}

// InSizeBounds reports whether a single group's player count alone falls
// within a mode's bounds, used for the singleton-ticket match check which
// bypasses the strategy predicate entirely.
func InSizeBounds(mode matchmaking.GameModeConfig, g Group) bool {
	return g.PlayerCount >= mode.MinPlayers && g.PlayerCount <= mode.MaxPlayers
}

// FCFS accepts any candidate pair that satisfies the size bounds.
type FCFS struct{}

func (FCFS) IsMatch(mode matchmaking.GameModeConfig, g1, g2 Group) bool {
	return isInBounds(mode, g1, g2)
}

// MMR accepts a pair within size bounds whose MMR distance is covered by
// an acceptance radius that widens with wait time, capped at
// MaxMMRDistance.
type MMR struct {
	MaxMMRDistance    uint32
	WaitingTimeWeight uint32
}

func (m MMR) IsMatch(mode matchmaking.GameModeConfig, g1, g2 Group) bool {
	if !isInBounds(mode, g1, g2) {
		return false
	}
	d := mmrDistance(g1.AverageMMR, g2.AverageMMR)
	radius := g1.AverageWaitTime * int64(m.WaitingTimeWeight)
	if radius > int64(m.MaxMMRDistance) {
		radius = int64(m.MaxMMRDistance)
	}
	return radius > int64(d)
}

func mmrDistance(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// New builds the configured match-function for a game mode.
func New(mode matchmaking.GameModeConfig) MatchFunction {
	switch mode.MatchFunction {
	case matchmaking.MatchFunctionMMR:
		return MMR{MaxMMRDistance: mode.MaxMMRDistance, WaitingTimeWeight: mode.WaitingTimeWeight}
	default:
		return FCFS{}
	}
}
