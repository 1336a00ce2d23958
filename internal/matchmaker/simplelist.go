package matchmaker

import (
	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchfunc"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/dahomey-labs/matchmaking-engine/internal/queuemap"
)

// SimpleList is the unbanded strategy: a single insertion-ordered set of
// open tickets and open sessions for the whole mode.
type SimpleList struct {
	mode         matchmaking.GameModeConfig
	matchFn      matchfunc.MatchFunction
	openTickets  *queuemap.QueueMap[ids.ProfileId]
	openSessions *queuemap.QueueMap[ids.SessionId]
}

// NewSimpleList builds a SimpleList strategy for a game mode.
func NewSimpleList(mode matchmaking.GameModeConfig) *SimpleList {
	return &SimpleList{
		mode:         mode,
		matchFn:      matchfunc.New(mode),
		openTickets:  queuemap.New[ids.ProfileId](),
		openSessions: queuemap.New[ids.SessionId](),
	}
}

func (s *SimpleList) InsertTicket(ticket matchmaking.Ticket)   { s.openTickets.Insert(ticket.OwnerProfileId) }
func (s *SimpleList) RemoveTicket(ticket matchmaking.Ticket)   { s.openTickets.Remove(ticket.OwnerProfileId) }
func (s *SimpleList) InsertSession(session matchmaking.Session) { s.openSessions.Insert(session.SessionId) }
func (s *SimpleList) RemoveSession(session matchmaking.Session) { s.openSessions.Remove(session.SessionId) }
func (s *SimpleList) Shutdown()                                {}

// Process runs one or more passes until a pass creates no new session.
func (s *SimpleList) Process(ctx *Context) error {
	return processSimpleListPass(ctx, s.mode, s.matchFn, s.openTickets, s.openSessions)
}

// processSimpleListPass implements the body shared by SimpleList (over
// the whole mode's tickets) and CutLists (over one MMR band): match open
// tickets against open sessions, then try pairwise and singleton session
// creation, restarting whenever a new session is created, until a full
// pass creates none.
func processSimpleListPass(
	ctx *Context,
	mode matchmaking.GameModeConfig,
	matchFn matchfunc.MatchFunction,
	openTickets *queuemap.QueueMap[ids.ProfileId],
	openSessions *queuemap.QueueMap[ids.SessionId],
) error {
	for {
		if err := matchOpenTicketsToSessions(ctx, mode, matchFn, openTickets, openSessions); err != nil {
			return err
		}

		createdPair, err := matchTicketPair(ctx, mode, matchFn, openTickets, openSessions)
		if err != nil {
			return err
		}
		if createdPair {
			continue
		}

		createdSingle, err := matchSingletonTicket(ctx, mode, matchFn, openTickets, openSessions)
		if err != nil {
			return err
		}
		if createdSingle {
			continue
		}

		return nil
	}
}

func matchOpenTicketsToSessions(
	ctx *Context,
	mode matchmaking.GameModeConfig,
	matchFn matchfunc.MatchFunction,
	openTickets *queuemap.QueueMap[ids.ProfileId],
	openSessions *queuemap.QueueMap[ids.SessionId],
) error {
	var matchedOwners []ids.ProfileId
	for _, owner := range openTickets.Iter() {
		ticket, ok := ctx.GetTicket(owner)
		if !ok {
			matchedOwners = append(matchedOwners, owner)
			continue
		}
		g1 := groupOf(ticket.Players, ctx.Now())
		for _, sessionId := range openSessions.Iter() {
			session, ok := ctx.GetSession(sessionId)
			if !ok {
				openSessions.Remove(sessionId)
				continue
			}
			g2 := groupOf(session.Players, ctx.Now())
			if !matchFn.IsMatch(mode, g1, g2) {
				continue
			}
			if err := ctx.MatchTicketToExistingSession(owner, sessionId); err != nil {
				return err
			}
			matchedOwners = append(matchedOwners, owner)
			break
		}
	}
	for _, owner := range matchedOwners {
		openTickets.Remove(owner)
	}
	return nil
}

func matchTicketPair(
	ctx *Context,
	mode matchmaking.GameModeConfig,
	matchFn matchfunc.MatchFunction,
	openTickets *queuemap.QueueMap[ids.ProfileId],
	openSessions *queuemap.QueueMap[ids.SessionId],
) (bool, error) {
	remaining := openTickets.Iter()
	for i := 0; i < len(remaining); i++ {
		t1, ok1 := ctx.GetTicket(remaining[i])
		if !ok1 {
			continue
		}
		g1 := groupOf(t1.Players, ctx.Now())
		for j := i + 1; j < len(remaining); j++ {
			t2, ok2 := ctx.GetTicket(remaining[j])
			if !ok2 {
				continue
			}
			g2 := groupOf(t2.Players, ctx.Now())
			if !matchFn.IsMatch(mode, g1, g2) {
				continue
			}
			sessionId, err := ctx.MatchTicketsToNewSession(mode.Name, []ids.ProfileId{remaining[i], remaining[j]})
			if err != nil {
				return false, err
			}
			openTickets.Remove(remaining[i])
			openTickets.Remove(remaining[j])
			openSessions.Insert(sessionId)
			return true, nil
		}
	}
	return false, nil
}

func matchSingletonTicket(
	ctx *Context,
	mode matchmaking.GameModeConfig,
	matchFn matchfunc.MatchFunction,
	openTickets *queuemap.QueueMap[ids.ProfileId],
	openSessions *queuemap.QueueMap[ids.SessionId],
) (bool, error) {
	for _, owner := range openTickets.Iter() {
		ticket, ok := ctx.GetTicket(owner)
		if !ok {
			continue
		}
		g := groupOf(ticket.Players, ctx.Now())
		if !matchfunc.InSizeBounds(mode, g) {
			continue
		}
		sessionId, err := ctx.MatchTicketsToNewSession(mode.Name, []ids.ProfileId{owner})
		if err != nil {
			return false, err
		}
		openTickets.Remove(owner)
		openSessions.Insert(sessionId)
		return true, nil
	}
	return false, nil
}
