package matchmaker

import (
	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchfunc"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/dahomey-labs/matchmaking-engine/internal/queuemap"
)

// band holds one MMR bucket's open tickets and open sessions. Bands are
// addressed by integer index and grow monotonically; a band is never
// removed even once empty, since shrinking would invalidate indexes held
// elsewhere.
type band struct {
	openTickets  *queuemap.QueueMap[ids.ProfileId]
	openSessions *queuemap.QueueMap[ids.SessionId]
}

func newBand() *band {
	return &band{
		openTickets:  queuemap.New[ids.ProfileId](),
		openSessions: queuemap.New[ids.SessionId](),
	}
}

// CutLists partitions open tickets (and the sessions matched against them)
// into MMR bands of width mode.MMRRange, running the SimpleList body
// independently inside each band. This bounds match comparisons to
// players of similar skill.
type CutLists struct {
	mode    matchmaking.GameModeConfig
	matchFn matchfunc.MatchFunction

	bands []*band

	ticketBand  map[ids.ProfileId]int
	sessionBand map[ids.SessionId]int
}

// NewCutLists builds a CutLists strategy for a game mode.
func NewCutLists(mode matchmaking.GameModeConfig) *CutLists {
	return &CutLists{
		mode:        mode,
		matchFn:     matchfunc.New(mode),
		ticketBand:  make(map[ids.ProfileId]int),
		sessionBand: make(map[ids.SessionId]int),
	}
}

func bandIndex(avgMMR uint32, mmrRange uint32) int {
	if mmrRange == 0 {
		return 0
	}
	return int(avgMMR / mmrRange)
}

func (c *CutLists) bandAt(i int) *band {
	for len(c.bands) <= i {
		c.bands = append(c.bands, newBand())
	}
	return c.bands[i]
}

func averagePlayerMMR(players []matchmaking.Player) uint32 {
	if len(players) == 0 {
		return 0
	}
	var sum uint32
	for _, p := range players {
		sum += p.MMR
	}
	return sum / uint32(len(players))
}

func (c *CutLists) InsertTicket(ticket matchmaking.Ticket) {
	idx := bandIndex(averagePlayerMMR(ticket.Players), c.mode.MMRRange)
	c.bandAt(idx).openTickets.Insert(ticket.OwnerProfileId)
	c.ticketBand[ticket.OwnerProfileId] = idx
}

func (c *CutLists) RemoveTicket(ticket matchmaking.Ticket) {
	idx, ok := c.ticketBand[ticket.OwnerProfileId]
	if !ok {
		return
	}
	c.bandAt(idx).openTickets.Remove(ticket.OwnerProfileId)
	delete(c.ticketBand, ticket.OwnerProfileId)
}

func (c *CutLists) InsertSession(session matchmaking.Session) {
	idx := bandIndex(averagePlayerMMR(session.Players), c.mode.MMRRange)
	c.bandAt(idx).openSessions.Insert(session.SessionId)
	c.sessionBand[session.SessionId] = idx
}

func (c *CutLists) RemoveSession(session matchmaking.Session) {
	idx, ok := c.sessionBand[session.SessionId]
	if !ok {
		return
	}
	c.bandAt(idx).openSessions.Remove(session.SessionId)
	delete(c.sessionBand, session.SessionId)
}

func (c *CutLists) Shutdown() {}

// Process runs the SimpleList pass independently inside each band. A
// ticket is only ever added to matched state once
// MatchTicketToExistingSession has actually succeeded — unlike the
// original implementation, a failed match attempt never marks a ticket as
// matched (see the open-questions note on the hit-then-break bug).
func (c *CutLists) Process(ctx *Context) error {
	for idx, b := range c.bands {
		if err := processSimpleListPass(ctx, c.mode, c.matchFn, b.openTickets, b.openSessions); err != nil {
			return err
		}
		// Sessions created from within this band's pass are inserted
		// directly into b.openSessions by processSimpleListPass; register
		// them here so a later RemoveSession for a closed session can find
		// its band.
		for _, sessionId := range b.openSessions.Iter() {
			if _, tracked := c.sessionBand[sessionId]; !tracked {
				c.sessionBand[sessionId] = idx
			}
		}
	}
	return nil
}
