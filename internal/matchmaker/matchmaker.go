package matchmaker

import (
	"github.com/dahomey-labs/matchmaking-engine/internal/matchfunc"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
)

// Matchmaker is the per-game-mode strategy interface. Insert/Remove calls
// are made exactly once per ticket or session lifetime phase; Process
// proposes matches through the shared Context.
type Matchmaker interface {
	InsertTicket(ticket matchmaking.Ticket)
	RemoveTicket(ticket matchmaking.Ticket)
	InsertSession(session matchmaking.Session)
	RemoveSession(session matchmaking.Session)
	Process(ctx *Context) error

	// Shutdown releases any resources (worker goroutines) the strategy
	// holds. A no-op for strategies with no background workers.
	Shutdown()
}

// New builds the matchmaker configured for a game mode.
func New(mode matchmaking.GameModeConfig) Matchmaker {
	switch mode.Matchmaker {
	case matchmaking.MatchmakerCutLists:
		return NewCutLists(mode)
	case matchmaking.MatchmakerMultiThreadedCutLists:
		return NewMultiThreadedCutLists(mode)
	default:
		return NewSimpleList(mode)
	}
}

func groupOf(players []matchmaking.Player, now int64) matchfunc.Group {
	if len(players) == 0 {
		return matchfunc.Group{}
	}
	var mmrSum, waitSum int64
	for _, p := range players {
		mmrSum += int64(p.MMR)
		waitSum += now - p.CreationTime
	}
	count := len(players)
	return matchfunc.Group{
		PlayerCount:     count,
		AverageMMR:      uint32(mmrSum / int64(count)),
		AverageWaitTime: waitSum / int64(count),
	}
}
