package matchmaker

import (
	"log/slog"
	"sync"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchfunc"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/dahomey-labs/matchmaking-engine/internal/queuemap"
)

// mtCutListsInboxSize bounds each band's inbound channel. On a full
// channel the mutation for that tick is dropped and logged, rather than
// blocking the region worker or falling back to a different internal
// representation mid-run.
const mtCutListsInboxSize = 256

// mtCutListsOutboxSize bounds each band's proposal channel.
const mtCutListsOutboxSize = 256

type mtTicketSummary struct {
	owner           ids.ProfileId
	playerCount     int
	avgMMR          uint32
	avgCreationTime int64
}

type mtSessionSummary struct {
	sessionId       ids.SessionId
	playerCount     int
	avgMMR          uint32
	avgCreationTime int64
}

type mtInboundMsg struct {
	insertTicket *mtTicketSummary
	removeTicket *ids.ProfileId
	insertSession *mtSessionSummary
	removeSession *ids.SessionId
	tick          *int64
	shutdown      bool
}

// mtProposal is a band's recommendation, applied against the shared
// context by the region worker, which serializes all mutation.
type mtProposal struct {
	// one of:
	matchExisting *struct {
		owner     ids.ProfileId
		sessionId ids.SessionId
	}
	matchNew *struct {
		sessionId ids.SessionId
		owners    []ids.ProfileId
	}
}

// MultiThreadedCutLists runs each MMR band in its own goroutine, so bands
// can propose matches concurrently. The region worker stays
// single-threaded: it only ever applies proposals, never mutates shared
// state from inside a band goroutine.
type MultiThreadedCutLists struct {
	mode    matchmaking.GameModeConfig
	matchFn matchfunc.MatchFunction
	logger  *slog.Logger

	bandInbox  []chan mtInboundMsg
	bandOutbox []chan mtProposal
	bandIndex  map[int]struct{}
	bandWg     sync.WaitGroup

	ticketBand  map[ids.ProfileId]int
	sessionBand map[ids.SessionId]int
}

// NewMultiThreadedCutLists builds a MultiThreadedCutLists strategy for a
// game mode.
func NewMultiThreadedCutLists(mode matchmaking.GameModeConfig) *MultiThreadedCutLists {
	return &MultiThreadedCutLists{
		mode:        mode,
		matchFn:     matchfunc.New(mode),
		logger:      slog.Default().With("gameMode", mode.Name, "matchmaker", "MultiThreadedCutLists"),
		bandIndex:   make(map[int]struct{}),
		ticketBand:  make(map[ids.ProfileId]int),
		sessionBand: make(map[ids.SessionId]int),
	}
}

func (m *MultiThreadedCutLists) ensureBand(idx int) {
	if _, ok := m.bandIndex[idx]; ok {
		return
	}
	for len(m.bandInbox) <= idx {
		m.bandInbox = append(m.bandInbox, nil)
		m.bandOutbox = append(m.bandOutbox, nil)
	}
	inbox := make(chan mtInboundMsg, mtCutListsInboxSize)
	outbox := make(chan mtProposal, mtCutListsOutboxSize)
	m.bandInbox[idx] = inbox
	m.bandOutbox[idx] = outbox
	m.bandIndex[idx] = struct{}{}
	m.bandWg.Add(1)
	go func() {
		defer m.bandWg.Done()
		runBandWorker(m.mode, m.matchFn, inbox, outbox)
	}()
}

func (m *MultiThreadedCutLists) send(idx int, msg mtInboundMsg) {
	m.ensureBand(idx)
	select {
	case m.bandInbox[idx] <- msg:
	default:
		m.logger.Warn("band inbox full, dropping mutation", "band", idx)
	}
}

func (m *MultiThreadedCutLists) InsertTicket(ticket matchmaking.Ticket) {
	idx := bandIndex(averagePlayerMMR(ticket.Players), m.mode.MMRRange)
	m.ticketBand[ticket.OwnerProfileId] = idx
	m.send(idx, mtInboundMsg{insertTicket: &mtTicketSummary{
		owner:           ticket.OwnerProfileId,
		playerCount:     len(ticket.Players),
		avgMMR:          averagePlayerMMR(ticket.Players),
		avgCreationTime: averagePlayerCreationTime(ticket.Players),
	}})
}

func (m *MultiThreadedCutLists) RemoveTicket(ticket matchmaking.Ticket) {
	idx, ok := m.ticketBand[ticket.OwnerProfileId]
	if !ok {
		return
	}
	delete(m.ticketBand, ticket.OwnerProfileId)
	owner := ticket.OwnerProfileId
	m.send(idx, mtInboundMsg{removeTicket: &owner})
}

func (m *MultiThreadedCutLists) InsertSession(session matchmaking.Session) {
	idx := bandIndex(averagePlayerMMR(session.Players), m.mode.MMRRange)
	m.sessionBand[session.SessionId] = idx
	m.send(idx, mtInboundMsg{insertSession: &mtSessionSummary{
		sessionId:       session.SessionId,
		playerCount:     len(session.Players),
		avgMMR:          averagePlayerMMR(session.Players),
		avgCreationTime: averagePlayerCreationTime(session.Players),
	}})
}

func (m *MultiThreadedCutLists) RemoveSession(session matchmaking.Session) {
	idx, ok := m.sessionBand[session.SessionId]
	if !ok {
		return
	}
	delete(m.sessionBand, session.SessionId)
	sessionId := session.SessionId
	m.send(idx, mtInboundMsg{removeSession: &sessionId})
}

// Process sends the current tick time to every band, then drains whatever
// proposals are already available (from this or a prior tick) and applies
// them via ctx. It never blocks waiting for a band to respond.
func (m *MultiThreadedCutLists) Process(ctx *Context) error {
	now := ctx.Now()
	for idx := range m.bandInbox {
		if m.bandInbox[idx] == nil {
			continue
		}
		select {
		case m.bandInbox[idx] <- mtInboundMsg{tick: &now}:
		default:
			m.logger.Warn("band inbox full, skipping tick signal", "band", idx)
		}
	}

	for idx, outbox := range m.bandOutbox {
		if outbox == nil {
			continue
		}
	drain:
		for {
			select {
			case proposal := <-outbox:
				if err := m.applyProposal(ctx, idx, proposal); err != nil {
					return err
				}
			default:
				break drain
			}
		}
	}
	return nil
}

func (m *MultiThreadedCutLists) applyProposal(ctx *Context, idx int, proposal mtProposal) error {
	switch {
	case proposal.matchExisting != nil:
		p := proposal.matchExisting
		if err := ctx.MatchTicketToExistingSession(p.owner, p.sessionId); err != nil {
			m.logger.Warn("dropping stale match-to-existing-session proposal", "band", idx, "error", err)
			return nil
		}
		delete(m.ticketBand, p.owner)
	case proposal.matchNew != nil:
		p := proposal.matchNew
		if _, err := ctx.MatchTicketsToNewSessionWithId(p.sessionId, m.mode.Name, p.owners); err != nil {
			m.logger.Warn("dropping stale match-to-new-session proposal", "band", idx, "error", err)
			return nil
		}
		for _, owner := range p.owners {
			delete(m.ticketBand, owner)
		}
		m.sessionBand[p.sessionId] = idx
	}
	return nil
}

// Shutdown sends Shutdown to every band and joins all band goroutines.
// Unlike other mutations, the shutdown signal is sent with a blocking
// send: it must never be dropped, or the band goroutine leaks.
func (m *MultiThreadedCutLists) Shutdown() {
	for _, inbox := range m.bandInbox {
		if inbox == nil {
			continue
		}
		inbox <- mtInboundMsg{shutdown: true}
	}
	m.bandWg.Wait()
}

func averagePlayerCreationTime(players []matchmaking.Player) int64 {
	if len(players) == 0 {
		return 0
	}
	var sum int64
	for _, p := range players {
		sum += p.CreationTime
	}
	return sum / int64(len(players))
}

// runBandWorker is the goroutine body for one MMR band. It keeps a local,
// summary-only view of open tickets and sessions (no access to the shared
// item caches) and proposes matches without ever mutating shared state
// itself.
func runBandWorker(mode matchmaking.GameModeConfig, matchFn matchfunc.MatchFunction, inbox <-chan mtInboundMsg, outbox chan<- mtProposal) {
	tickets := make(map[ids.ProfileId]mtTicketSummary)
	sessions := make(map[ids.SessionId]mtSessionSummary)
	ticketOrder := queuemap.New[ids.ProfileId]()
	sessionOrder := queuemap.New[ids.SessionId]()

	for msg := range inbox {
		switch {
		case msg.insertTicket != nil:
			tickets[msg.insertTicket.owner] = *msg.insertTicket
			ticketOrder.Insert(msg.insertTicket.owner)
		case msg.removeTicket != nil:
			delete(tickets, *msg.removeTicket)
			ticketOrder.Remove(*msg.removeTicket)
		case msg.insertSession != nil:
			sessions[msg.insertSession.sessionId] = *msg.insertSession
			sessionOrder.Insert(msg.insertSession.sessionId)
		case msg.removeSession != nil:
			delete(sessions, *msg.removeSession)
			sessionOrder.Remove(*msg.removeSession)
		case msg.tick != nil:
			proposeBandMatches(mode, matchFn, *msg.tick, tickets, sessions, ticketOrder, sessionOrder, outbox)
		case msg.shutdown:
			return
		}
	}
}

func proposeBandMatches(
	mode matchmaking.GameModeConfig,
	matchFn matchfunc.MatchFunction,
	now int64,
	tickets map[ids.ProfileId]mtTicketSummary,
	sessions map[ids.SessionId]mtSessionSummary,
	ticketOrder *queuemap.QueueMap[ids.ProfileId],
	sessionOrder *queuemap.QueueMap[ids.SessionId],
	outbox chan<- mtProposal,
) {
	toGroup := func(playerCount int, avgMMR uint32, avgCreationTime int64) matchfunc.Group {
		return matchfunc.Group{PlayerCount: playerCount, AverageMMR: avgMMR, AverageWaitTime: now - avgCreationTime}
	}
	send := func(p mtProposal) bool {
		select {
		case outbox <- p:
			return true
		default:
			return false
		}
	}

	for {
		matchedAny := false

		var matchedOwners []ids.ProfileId
		for _, owner := range ticketOrder.Iter() {
			t, ok := tickets[owner]
			if !ok {
				matchedOwners = append(matchedOwners, owner)
				continue
			}
			g1 := toGroup(t.playerCount, t.avgMMR, t.avgCreationTime)
			for _, sessionId := range sessionOrder.Iter() {
				s, ok := sessions[sessionId]
				if !ok {
					continue
				}
				g2 := toGroup(s.playerCount, s.avgMMR, s.avgCreationTime)
				if !matchFn.IsMatch(mode, g1, g2) {
					continue
				}
				if !send(mtProposal{matchExisting: &struct {
					owner     ids.ProfileId
					sessionId ids.SessionId
				}{owner: owner, sessionId: sessionId}}) {
					break
				}
				matchedOwners = append(matchedOwners, owner)
				matchedAny = true
				break
			}
		}
		for _, owner := range matchedOwners {
			delete(tickets, owner)
			ticketOrder.Remove(owner)
		}
		if matchedAny {
			continue
		}

		if matchedPair, owners := proposeTicketPair(mode, matchFn, now, tickets, ticketOrder, send); matchedPair {
			for _, owner := range owners {
				delete(tickets, owner)
				ticketOrder.Remove(owner)
			}
			continue
		}

		if matchedSingle, owner := proposeSingletonTicket(mode, tickets, ticketOrder, toGroup, send); matchedSingle {
			delete(tickets, owner)
			ticketOrder.Remove(owner)
			continue
		}

		break
	}
}

func proposeTicketPair(
	mode matchmaking.GameModeConfig,
	matchFn matchfunc.MatchFunction,
	now int64,
	tickets map[ids.ProfileId]mtTicketSummary,
	ticketOrder *queuemap.QueueMap[ids.ProfileId],
	send func(mtProposal) bool,
) (bool, []ids.ProfileId) {
	toGroup := func(t mtTicketSummary) matchfunc.Group {
		return matchfunc.Group{PlayerCount: t.playerCount, AverageMMR: t.avgMMR, AverageWaitTime: now - t.avgCreationTime}
	}
	remaining := ticketOrder.Iter()
	for i := 0; i < len(remaining); i++ {
		t1, ok1 := tickets[remaining[i]]
		if !ok1 {
			continue
		}
		g1 := toGroup(t1)
		for j := i + 1; j < len(remaining); j++ {
			t2, ok2 := tickets[remaining[j]]
			if !ok2 {
				continue
			}
			g2 := toGroup(t2)
			if !matchFn.IsMatch(mode, g1, g2) {
				continue
			}
			sessionId := ids.NewSessionId()
			owners := []ids.ProfileId{remaining[i], remaining[j]}
			if !send(mtProposal{matchNew: &struct {
				sessionId ids.SessionId
				owners    []ids.ProfileId
			}{sessionId: sessionId, owners: owners}}) {
				return false, nil
			}
			return true, owners
		}
	}
	return false, nil
}

func proposeSingletonTicket(
	mode matchmaking.GameModeConfig,
	tickets map[ids.ProfileId]mtTicketSummary,
	ticketOrder *queuemap.QueueMap[ids.ProfileId],
	toGroup func(int, uint32, int64) matchfunc.Group,
	send func(mtProposal) bool,
) (bool, ids.ProfileId) {
	for _, owner := range ticketOrder.Iter() {
		t, ok := tickets[owner]
		if !ok {
			continue
		}
		g := toGroup(t.playerCount, t.avgMMR, t.avgCreationTime)
		if !matchfunc.InSizeBounds(mode, g) {
			continue
		}
		sessionId := ids.NewSessionId()
		owners := []ids.ProfileId{owner}
		if !send(mtProposal{matchNew: &struct {
			sessionId ids.SessionId
			owners    []ids.ProfileId
		}{sessionId: sessionId, owners: owners}}) {
			return false, ids.ProfileId{}
		}
		return true, owner
	}
	return false, ids.ProfileId{}
}
