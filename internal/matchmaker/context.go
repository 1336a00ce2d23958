// Package matchmaker implements the pluggable matching strategies
// (SimpleList, CutLists, MultiThreadedCutLists) behind a common
// Matchmaker interface, plus the mutation context every strategy proposes
// matches through.
package matchmaker

import (
	"fmt"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/itemcache"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/dahomey-labs/matchmaking-engine/internal/queuemap"
)

// MatchedPlayer records one player's Created -> Matched transition,
// produced during phase 3 and consumed by phase 5 (player progression).
type MatchedPlayer struct {
	ProfileId ids.ProfileId
	SessionId ids.SessionId
}

// Context is the mutation surface every matchmaker strategy proposes
// matches through. It owns read/write access to the region's ticket and
// session caches, the created-sessions insertion-ordered set, and the
// matched-players list accumulated this tick.
type Context struct {
	tickets  *itemcache.ItemCache[ids.ProfileId, matchmaking.Ticket]
	sessions *itemcache.ItemCache[ids.SessionId, matchmaking.Session]
	now      int64

	createdSessions *queuemap.QueueMap[ids.SessionId]
	matchedPlayers  []MatchedPlayer
}

// NewContext builds a Context for one tick.
func NewContext(
	tickets *itemcache.ItemCache[ids.ProfileId, matchmaking.Ticket],
	sessions *itemcache.ItemCache[ids.SessionId, matchmaking.Session],
	createdSessions *queuemap.QueueMap[ids.SessionId],
	now int64,
) *Context {
	return &Context{
		tickets:         tickets,
		sessions:        sessions,
		createdSessions: createdSessions,
		now:             now,
	}
}

// GetTicket returns a ticket by owner id.
func (c *Context) GetTicket(owner ids.ProfileId) (matchmaking.Ticket, bool) {
	return c.tickets.Get(owner)
}

// GetSession returns a session by id.
func (c *Context) GetSession(id ids.SessionId) (matchmaking.Session, bool) {
	return c.sessions.Get(id)
}

// Now returns the tick's reference timestamp, used by strategies to
// compute average waiting time.
func (c *Context) Now() int64 {
	return c.now
}

// MatchedPlayers returns the players matched so far this tick, for phase 5.
// It does not clear the list.
func (c *Context) MatchedPlayers() []MatchedPlayer {
	return c.matchedPlayers
}

// MatchTicketToExistingSession extends session's player list with
// ticket's players (converted to status Matched), and sets
// ticket.SessionId. Both mutations are recorded for write-back; every
// affected player is recorded in matched_players.
func (c *Context) MatchTicketToExistingSession(ticketOwner ids.ProfileId, sessionId ids.SessionId) error {
	ticket, ok := c.tickets.Get(ticketOwner)
	if !ok {
		return fmt.Errorf("match ticket to existing session: unknown ticket %s", ticketOwner)
	}
	session, ok := c.sessions.Get(sessionId)
	if !ok {
		return fmt.Errorf("match ticket to existing session: unknown session %s", sessionId)
	}

	for _, p := range ticket.Players {
		p.Status = matchmaking.PlayerMatched
		p.NewStatusTime = c.now
		p.CreationTime = ticket.CreationTime
		p.TimeUntilOpenSession = c.now - ticket.CreationTime
		p.TimeUntilCloseSession = 0
		session.Players = append(session.Players, p)
		c.matchedPlayers = append(c.matchedPlayers, MatchedPlayer{ProfileId: p.ProfileId, SessionId: sessionId})
	}
	sid := sessionId
	ticket.SessionId = &sid

	c.tickets.Create(ticket)
	c.tickets.Update(ticketOwner)
	c.sessions.Create(session)
	c.sessions.Update(sessionId)
	return nil
}

// MatchTicketsToNewSession creates a session in status Created, is_open =
// true, with every ticket's players added (converted to status Matched),
// and appends the new session to created_sessions.
func (c *Context) MatchTicketsToNewSession(gameMode string, ticketOwners []ids.ProfileId) (ids.SessionId, error) {
	return c.MatchTicketsToNewSessionWithId(ids.NewSessionId(), gameMode, ticketOwners)
}

// MatchTicketsToNewSessionWithId is MatchTicketsToNewSession with a
// caller-supplied session id, used by MultiThreadedCutLists where the
// band goroutine mints the id so it can track the resulting open session
// locally before the region worker applies the mutation.
func (c *Context) MatchTicketsToNewSessionWithId(sessionId ids.SessionId, gameMode string, ticketOwners []ids.ProfileId) (ids.SessionId, error) {
	session := matchmaking.Session{
		SessionId:    sessionId,
		GameMode:     gameMode,
		CreationTime: c.now,
		Status:       matchmaking.SessionCreated,
		IsOpen:       true,
	}

	for _, owner := range ticketOwners {
		ticket, ok := c.tickets.Get(owner)
		if !ok {
			return ids.SessionId{}, fmt.Errorf("match tickets to new session: unknown ticket %s", owner)
		}
		for _, p := range ticket.Players {
			p.Status = matchmaking.PlayerMatched
			p.NewStatusTime = c.now
			p.CreationTime = ticket.CreationTime
			p.TimeUntilOpenSession = c.now - ticket.CreationTime
			p.TimeUntilCloseSession = 0
			session.Players = append(session.Players, p)
			c.matchedPlayers = append(c.matchedPlayers, MatchedPlayer{ProfileId: p.ProfileId, SessionId: sessionId})
		}
		sid := sessionId
		ticket.SessionId = &sid
		c.tickets.Create(ticket)
		c.tickets.Update(owner)
	}

	c.sessions.Create(session)
	c.createdSessions.Insert(sessionId)
	return sessionId, nil
}
