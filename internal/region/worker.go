// Package region implements the per-region tick loop: the single
// long-running operation that drains commands, sweeps expired servers,
// dispatches matchmakers, places created sessions on idle servers,
// advances the player state machine, and writes everything back once per
// tick.
package region

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dahomey-labs/matchmaking-engine/internal/dal"
	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/itemcache"
	"github.com/dahomey-labs/matchmaking-engine/internal/kv"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaker"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/dahomey-labs/matchmaking-engine/internal/outbox"
	"github.com/dahomey-labs/matchmaking-engine/internal/queuemap"
	"github.com/dahomey-labs/matchmaking-engine/internal/servermanager"
	"github.com/dahomey-labs/matchmaking-engine/internal/waitingtime"
)

// serversFullNotificationCooldown bounds how often an open ticket is
// re-notified that no server is available.
const serversFullNotificationCooldown = 10

// activatingEntry is one (profile, session) pair waiting on
// ActivatePlayerSession, ordered by the time it entered Activating.
type activatingEntry struct {
	ProfileId ids.ProfileId
	SessionId ids.SessionId
}

// Worker owns one region's full matchmaking state and runs its tick loop.
type Worker struct {
	region string
	logger *slog.Logger

	reservedPlayerSessionTimeout int64
	tickPeriod                  time.Duration
	commandBatchSize            int

	commandQueue   *dal.CommandQueueDAL
	waitingTimeDAL *dal.WaitingTimeDAL

	servers         *servermanager.Manager
	tickets         *itemcache.ItemCache[ids.ProfileId, matchmaking.Ticket]
	sessions        *itemcache.ItemCache[ids.SessionId, matchmaking.Session]
	createdSessions *queuemap.QueueMap[ids.SessionId]
	activating      *queuemap.QueueMap[activatingEntry]

	gameModes   map[string]matchmaking.GameModeConfig
	matchmakers map[string]matchmaker.Matchmaker

	waitingTime *waitingtime.Estimator
	outbox      *outbox.Outbox
	transport   outbox.Transport

	canCreateNewSessions bool
}

// New builds a Worker for one region. gameModes is the full set of game
// modes this region matches; every matchmaker is constructed eagerly so
// loadCache can seed it before the first tick.
func New(
	region string,
	logger *slog.Logger,
	store kv.Store,
	transport outbox.Transport,
	gameModes []matchmaking.GameModeConfig,
	reservedPlayerSessionTimeout int64,
	tickPeriod time.Duration,
	commandBatchSize int,
) *Worker {
	modeByName := make(map[string]matchmaking.GameModeConfig, len(gameModes))
	matchmakers := make(map[string]matchmaker.Matchmaker, len(gameModes))
	for _, mode := range gameModes {
		modeByName[mode.Name] = mode
		matchmakers[mode.Name] = matchmaker.New(mode)
	}

	return &Worker{
		region:                       region,
		logger:                       logger,
		reservedPlayerSessionTimeout: reservedPlayerSessionTimeout,
		tickPeriod:                   tickPeriod,
		commandBatchSize:             commandBatchSize,
		commandQueue:                 dal.NewCommandQueueDAL(store, region),
		waitingTimeDAL:               dal.NewWaitingTimeDAL(store, region),
		servers:                      servermanager.New(dal.NewGameServerDAL(store, region)),
		tickets: itemcache.New[ids.ProfileId, matchmaking.Ticket](
			dal.NewTicketDAL(store, region),
			func(t matchmaking.Ticket) ids.ProfileId { return t.OwnerProfileId },
		),
		sessions: itemcache.New[ids.SessionId, matchmaking.Session](
			dal.NewSessionDAL(store, region),
			func(s matchmaking.Session) ids.SessionId { return s.SessionId },
		),
		createdSessions:      queuemap.New[ids.SessionId](),
		activating:           queuemap.New[activatingEntry](),
		gameModes:            modeByName,
		matchmakers:          matchmakers,
		waitingTime:          waitingtime.New(),
		outbox:               outbox.New(),
		transport:            transport,
		canCreateNewSessions: true,
	}
}

// Run loads the region's state and ticks until ctx is cancelled. It
// returns a non-nil error only if the initial load fails; per-tick errors
// are logged and the loop continues, retrying next tick.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("region worker starting", "region", w.region)

	if err := w.loadCache(ctx); err != nil {
		w.logger.Error("region worker failed to load cache", "region", w.region, "error", err)
		return err
	}
	defer w.shutdownMatchmakers()

	ticker := time.NewTicker(w.tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("region worker stopped", "region", w.region)
			return nil
		case <-ticker.C:
			if err := w.tick(ctx); err != nil {
				w.logger.Error("tick failed", "region", w.region, "error", err)
			}
		}
	}
}

func (w *Worker) shutdownMatchmakers() {
	for _, mm := range w.matchmakers {
		mm.Shutdown()
	}
}

// loadCache populates the three item caches and seeds every matchmaker
// with the open tickets and sessions it owns.
func (w *Worker) loadCache(ctx context.Context) error {
	if err := w.servers.Load(ctx); err != nil {
		return fmt.Errorf("loading servers: %w", err)
	}
	if err := w.tickets.Load(ctx); err != nil {
		return fmt.Errorf("loading tickets: %w", err)
	}
	if err := w.sessions.Load(ctx); err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}

	for _, ticket := range w.tickets.Iter() {
		if ticket.SessionId != nil {
			continue
		}
		mm, ok := w.matchmakers[ticket.GameMode]
		if !ok {
			w.logger.Error("load cache: unknown game mode for ticket", "region", w.region, "gameMode", ticket.GameMode, "owner", ticket.OwnerProfileId)
			continue
		}
		mm.InsertTicket(ticket)
	}

	for _, session := range w.sessions.Iter() {
		if !session.IsOpen {
			continue
		}
		mm, ok := w.matchmakers[session.GameMode]
		if !ok {
			w.logger.Error("load cache: unknown game mode for session", "region", w.region, "gameMode", session.GameMode, "session", session.SessionId)
			continue
		}
		mm.InsertSession(session)
	}

	return nil
}

// tick runs the six phases in order. A command-drain failure aborts the
// remaining phases for this tick; everything else logs and continues so
// one bad entity never stalls the region.
func (w *Worker) tick(ctx context.Context) error {
	now := time.Now().Unix()

	if err := w.processCommands(ctx, now); err != nil {
		return fmt.Errorf("processing commands: %w", err)
	}

	w.processServers(now)

	var matched []matchmaker.MatchedPlayer
	if w.canCreateNewSessions {
		matched = w.processMatchmakers(now)
		w.processSessions()
	}

	w.processPlayers(now, matched)

	return w.persist(ctx)
}

// --- phase 1: command drain ---

func (w *Worker) processCommands(ctx context.Context, now int64) error {
	cmds, errs := w.commandQueue.Drain(ctx, w.commandBatchSize)
	if cmds == nil && len(errs) == 1 {
		return errs[0]
	}
	for _, err := range errs {
		w.logger.Warn("dropping malformed command", "region", w.region, "error", err)
	}
	for _, cmd := range cmds {
		w.processCommand(ctx, cmd, now)
	}
	return nil
}

func (w *Worker) processCommand(ctx context.Context, cmd matchmaking.Command, now int64) {
	switch cmd.Kind {
	case matchmaking.CommandCreateTicket:
		w.createTicket(*cmd.CreateTicket)
	case matchmaking.CommandDeleteTicket:
		w.deleteTicket(cmd.DeleteTicket.Owner, cmd.DeleteTicket.Canceller)
	case matchmaking.CommandActivatePlayerSession:
		w.activatePlayerSession(cmd.ActivatePlayerSession.Session, cmd.ActivatePlayerSession.Profile, now)
	case matchmaking.CommandActivateSession:
		w.activateSession(cmd.ActivateSession.Session)
	case matchmaking.CommandDeleteSession:
		w.commandDeleteSession(cmd.DeleteSession.Session)
	case matchmaking.CommandDeletePlayerSession:
		w.deletePlayerSession(cmd.DeletePlayerSession.Session, cmd.DeletePlayerSession.Profile)
	case matchmaking.CommandInitializeGameServer:
		w.initializeGameServer(*cmd.InitializeGameServer, now)
	case matchmaking.CommandKeepAliveGameServer:
		w.keepAliveGameServer(cmd.KeepAliveGameServer.GameServerId, now)
	case matchmaking.CommandShutdownGameServer:
		w.shutdownGameServer(cmd.ShutdownGameServer.GameServerId)
	case matchmaking.CommandUpdateSession:
		w.updateSession(cmd.UpdateSession.Session, cmd.UpdateSession.IsOpen, now)
	case matchmaking.CommandResetMatchmaking:
		w.resetMatchmaking(ctx)
	default:
		w.logger.Warn("unknown command kind", "region", w.region, "kind", cmd.Kind)
	}
}

func (w *Worker) createTicket(payload matchmaking.CreateTicketPayload) {
	ticket := payload.Ticket
	if _, existed := w.tickets.Get(ticket.OwnerProfileId); existed {
		w.logger.Warn("ticket already existed, replaced", "region", w.region, "owner", ticket.OwnerProfileId)
	}
	mm, ok := w.matchmakers[ticket.GameMode]
	if !ok {
		w.logger.Error("create ticket: unknown game mode", "region", w.region, "gameMode", ticket.GameMode, "owner", ticket.OwnerProfileId)
		return
	}
	mm.InsertTicket(ticket)
	w.tickets.Create(ticket)
}

func (w *Worker) deleteTicket(owner, canceller ids.ProfileId) {
	ticket, ok := w.tickets.Get(owner)
	if !ok {
		w.logger.Warn("delete ticket: unknown ticket", "region", w.region, "owner", owner)
		return
	}
	mm, ok := w.matchmakers[ticket.GameMode]
	if !ok {
		w.logger.Error("delete ticket: unknown game mode", "region", w.region, "gameMode", ticket.GameMode)
		return
	}

	if ticket.SessionId != nil {
		if session, ok := w.sessions.Get(*ticket.SessionId); ok {
			members := make(map[ids.ProfileId]struct{}, len(ticket.Players))
			for _, p := range ticket.Players {
				members[p.ProfileId] = struct{}{}
			}
			kept := session.Players[:0:0]
			for _, p := range session.Players {
				if _, remove := members[p.ProfileId]; !remove {
					kept = append(kept, p)
				}
			}
			session.Players = kept
			w.sessions.Create(session)
			w.sessions.Update(session.SessionId)
		}
	}

	for _, p := range ticket.Players {
		if p.ProfileId == canceller {
			continue
		}
		w.outbox.QueuePlayerNotification(p.ProfileId.String(), matchmaking.NewMatchmakingFailed(matchmaking.CancelledByFriend))
	}

	mm.RemoveTicket(ticket)
	w.tickets.Delete(owner)
}

func (w *Worker) activatePlayerSession(sessionId ids.SessionId, profile ids.ProfileId, now int64) {
	session, ok := w.sessions.Get(sessionId)
	if !ok {
		w.logger.Error("activate player session: unknown session", "region", w.region, "session", sessionId, "profile", profile)
		return
	}
	idx := playerIndex(session.Players, profile)
	if idx == -1 {
		w.logger.Error("activate player session: player not in session", "region", w.region, "session", sessionId, "profile", profile)
		return
	}

	session.Players[idx].NewStatusTime = now
	session.Players[idx].Status = matchmaking.PlayerActive
	w.sessions.Create(session)
	w.sessions.Update(sessionId)
	w.tickets.Delete(profile)
}

func (w *Worker) activateSession(sessionId ids.SessionId) {
	session, ok := w.sessions.Get(sessionId)
	if !ok {
		w.logger.Error("activate session: unknown session", "region", w.region, "session", sessionId)
		return
	}
	if session.Status == matchmaking.SessionActive {
		w.logger.Warn("session already active", "region", w.region, "session", sessionId)
		return
	}
	session.Status = matchmaking.SessionActive
	w.sessions.Create(session)
	w.sessions.Update(sessionId)
}

func (w *Worker) commandDeleteSession(sessionId ids.SessionId) {
	session, ok := w.sessions.Get(sessionId)
	if !ok {
		w.logger.Error("delete session: unknown session", "region", w.region, "session", sessionId)
		return
	}
	if session.GameServerId != nil {
		if server, ok := w.servers.Get(*session.GameServerId); ok {
			server.SessionId = nil
			w.servers.UpdateServer(server)
		} else {
			w.logger.Warn("delete session: unknown server", "region", w.region, "server", *session.GameServerId, "session", sessionId)
		}
	}
	w.deleteSession(sessionId)
}

func (w *Worker) deletePlayerSession(sessionId ids.SessionId, profile ids.ProfileId) {
	session, ok := w.sessions.Get(sessionId)
	if !ok {
		w.logger.Error("delete player session: unknown session", "region", w.region, "session", sessionId, "profile", profile)
		return
	}
	w.tickets.Delete(profile)

	before := len(session.Players)
	kept := session.Players[:0:0]
	for _, p := range session.Players {
		if p.ProfileId != profile {
			kept = append(kept, p)
		}
	}
	if len(kept) == before {
		w.logger.Error("delete player session: player not in session", "region", w.region, "session", sessionId, "profile", profile)
		return
	}
	session.Players = kept
	w.sessions.Create(session)
	w.sessions.Update(sessionId)
}

func (w *Worker) initializeGameServer(p matchmaking.InitializeGameServerPayload, now int64) {
	if _, ok := w.servers.Get(p.GameServerId); ok {
		w.logger.Warn("game server already initialized", "region", w.region, "server", p.GameServerId)
		return
	}
	server := matchmaking.GameServer{
		GameServerId:  p.GameServerId,
		HostName:      p.HostName,
		HostType:      p.HostType,
		HostBootTime:  p.HostBootTime,
		HostProvider:  p.HostProvider,
		GameVersion:   p.GameVersion,
		ProcessId:     p.ProcessId,
		IpAddress:     p.IpAddress,
		Port:          p.Port,
		KeepAliveTime: now,
	}
	w.logger.Debug("game server initialized", "region", w.region, "server", server.GameServerId, "ip", server.IpAddress, "port", server.Port, "hostType", server.HostType)
	w.servers.CreateServer(server)
}

func (w *Worker) keepAliveGameServer(id ids.GameServerId, now int64) {
	if err := w.servers.KeepAliveServer(id, now); err != nil {
		w.logger.Warn("keep-alive for unknown game server", "region", w.region, "server", id, "error", err)
	}
}

func (w *Worker) shutdownGameServer(id ids.GameServerId) {
	server, ok := w.servers.Get(id)
	if !ok {
		w.logger.Warn("shutdown: unknown game server", "region", w.region, "server", id)
		return
	}
	if server.SessionId != nil {
		w.deleteSession(*server.SessionId)
	}
	w.servers.DeleteServer(id)
}

func (w *Worker) updateSession(sessionId ids.SessionId, isOpen bool, now int64) {
	session, ok := w.sessions.Get(sessionId)
	if !ok {
		w.logger.Error("update session: unknown session", "region", w.region, "session", sessionId)
		return
	}
	if session.Status != matchmaking.SessionActive {
		w.logger.Warn("update session: not active", "region", w.region, "session", sessionId, "status", session.Status.String())
		return
	}

	if session.IsOpen && !isOpen {
		for i := range session.Players {
			session.Players[i].TimeUntilCloseSession = now - session.Players[i].CreationTime
		}
	}
	session.IsOpen = isOpen

	if !isOpen {
		if mm, ok := w.matchmakers[session.GameMode]; ok {
			mm.RemoveSession(session)
		} else {
			w.logger.Error("update session: unknown game mode", "region", w.region, "gameMode", session.GameMode)
		}
	}

	w.sessions.Create(session)
	w.sessions.Update(sessionId)
}

func (w *Worker) resetMatchmaking(ctx context.Context) {
	for _, ticket := range w.tickets.Iter() {
		if ticket.SessionId != nil {
			continue
		}
		for _, p := range ticket.Players {
			w.outbox.QueuePlayerNotification(p.ProfileId.String(), matchmaking.NewMatchmakingFailed(matchmaking.CancelledByMatchmakingService))
		}
	}

	if err := w.servers.Reset(ctx); err != nil {
		w.logger.Error("reset matchmaking: resetting servers", "region", w.region, "error", err)
	}
	if err := w.tickets.Reset(ctx); err != nil {
		w.logger.Error("reset matchmaking: resetting tickets", "region", w.region, "error", err)
	}
	if err := w.sessions.Reset(ctx); err != nil {
		w.logger.Error("reset matchmaking: resetting sessions", "region", w.region, "error", err)
	}
	if err := w.waitingTimeDAL.Reset(ctx, w.waitingTime.GameModes()); err != nil {
		w.logger.Error("reset matchmaking: resetting waiting times", "region", w.region, "error", err)
	}
	w.waitingTime.Reset()
	w.createdSessions.Clear()
	w.activating.Clear()

	for name, mode := range w.gameModes {
		w.matchmakers[name].Shutdown()
		w.matchmakers[name] = matchmaker.New(mode)
	}
}

// deleteSession is the shared procedure invoked by DeleteSession,
// ShutdownGameServer, and server expiry.
func (w *Worker) deleteSession(sessionId ids.SessionId) {
	session, ok := w.sessions.Get(sessionId)
	if !ok {
		w.logger.Error("delete session: unknown session", "region", w.region, "session", sessionId)
		return
	}

	for _, player := range session.Players {
		ticket, ok := w.tickets.Get(player.ProfileId)
		if !ok {
			continue
		}
		switch player.Status {
		case matchmaking.PlayerCreated:
		case matchmaking.PlayerMatched:
			ticket.SessionId = nil
			if mm, ok := w.matchmakers[ticket.GameMode]; ok {
				mm.InsertTicket(ticket)
			} else {
				w.logger.Error("delete session: unknown game mode", "region", w.region, "gameMode", ticket.GameMode)
			}
			w.tickets.Create(ticket)
			w.tickets.Update(ticket.OwnerProfileId)
		case matchmaking.PlayerActivating, matchmaking.PlayerActive:
			w.tickets.Delete(player.ProfileId)
		}
	}

	if session.IsOpen {
		if mm, ok := w.matchmakers[session.GameMode]; ok {
			mm.RemoveSession(session)
		}
	}
	w.sessions.Delete(sessionId)
}

// --- phase 2: server sweep ---

func (w *Worker) processServers(now int64) {
	orphaned := w.servers.ProcessExpiredServers(now)
	for _, sessionId := range orphaned {
		w.deleteSession(sessionId)
	}

	w.canCreateNewSessions = w.servers.HasIdleServer()
	if w.canCreateNewSessions {
		return
	}
	w.notifyServersFull(now)
}

func (w *Worker) notifyServersFull(now int64) {
	position := 0
	for _, ticket := range w.openTicketsByCreationTime() {
		position++
		if now-ticket.ServersFullNotificationLastTimeSent <= serversFullNotificationCooldown {
			continue
		}

		estimate := w.waitingTime.Median(ticket.GameMode)
		for _, p := range ticket.Players {
			w.outbox.QueuePlayerNotification(p.ProfileId.String(), matchmaking.NewMatchmakingServersFull(ticket.GameMode, position, estimate))
		}

		ticket.ServersFullNotificationLastTimeSent = now
		w.tickets.Create(ticket)
		w.tickets.Update(ticket.OwnerProfileId)
	}
}

func (w *Worker) openTicketsByCreationTime() []matchmaking.Ticket {
	var open []matchmaking.Ticket
	for _, t := range w.tickets.Iter() {
		if t.SessionId == nil {
			open = append(open, t)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].CreationTime < open[j].CreationTime })
	return open
}

// --- phase 3: matchmaker dispatch ---

func (w *Worker) processMatchmakers(now int64) []matchmaker.MatchedPlayer {
	mctx := matchmaker.NewContext(w.tickets, w.sessions, w.createdSessions, now)
	for name, mm := range w.matchmakers {
		if err := mm.Process(mctx); err != nil {
			w.logger.Error("matchmaker process failed", "region", w.region, "gameMode", name, "error", err)
		}
	}
	return mctx.MatchedPlayers()
}

// --- phase 4: session placement ---

func (w *Worker) processSessions() {
	sessionIds := w.createdSessions.Iter()
	w.createdSessions.Clear()

	var toDelete []ids.SessionId
	for _, sessionId := range sessionIds {
		server, ok := w.servers.GetIdleServer()
		if !ok {
			toDelete = append(toDelete, sessionId)
			continue
		}

		session, ok := w.sessions.Get(sessionId)
		if !ok {
			w.logger.Error("place session: unknown created session", "region", w.region, "session", sessionId)
			continue
		}

		serverId := server.GameServerId
		w.outbox.QueueServerNotification(serverId.String(), matchmaking.NewMatchmakingActivateSession(
			session.SessionId, session.IpAddress, session.Port, session.EncryptionKey,
		))

		server.SessionId = &session.SessionId
		w.servers.UpdateServer(server)

		session.GameServerId = &serverId
		w.sessions.Create(session)
		w.sessions.Update(sessionId)
	}

	for _, sessionId := range toDelete {
		w.deleteSession(sessionId)
	}
}

// --- phase 5: player progression ---

func (w *Worker) processPlayers(now int64, matched []matchmaker.MatchedPlayer) {
	w.processMatchedPlayers(now, matched)
	w.processActivatingPlayers(now)
}

func (w *Worker) processMatchedPlayers(now int64, matched []matchmaker.MatchedPlayer) {
	for _, mp := range matched {
		session, ok := w.sessions.Get(mp.SessionId)
		if !ok {
			w.logger.Error("matched player: unknown session", "region", w.region, "session", mp.SessionId, "profile", mp.ProfileId)
			continue
		}
		idx := playerIndex(session.Players, mp.ProfileId)
		if idx == -1 {
			w.logger.Error("matched player not present in session", "region", w.region, "session", mp.SessionId, "profile", mp.ProfileId)
			continue
		}

		session.Players[idx].NewStatusTime = now
		session.Players[idx].Status = matchmaking.PlayerActivating
		w.updateWaitingTime(now, mp.ProfileId, session.GameMode)

		w.outbox.QueuePlayerNotification(mp.ProfileId.String(), matchmaking.NewMatchmakingCompleted(mp.SessionId, session.GameMode))

		w.sessions.Create(session)
		w.sessions.Update(mp.SessionId)
		w.activating.Insert(activatingEntry{ProfileId: mp.ProfileId, SessionId: mp.SessionId})
	}
}

// updateWaitingTime records a wait-time sample for singleton tickets only,
// to avoid biasing the estimator by party size.
func (w *Worker) updateWaitingTime(now int64, owner ids.ProfileId, gameMode string) {
	ticket, ok := w.tickets.Get(owner)
	if !ok {
		return
	}
	if len(ticket.Players) != 1 {
		return
	}
	w.waitingTime.Observe(gameMode, now-ticket.CreationTime)
}

func (w *Worker) processActivatingPlayers(now int64) {
	timedOut := w.activating.PopFrontWhile(func(e activatingEntry) bool {
		session, ok := w.sessions.Get(e.SessionId)
		if !ok {
			w.logger.Error("activating player: unknown session", "region", w.region, "session", e.SessionId, "profile", e.ProfileId)
			return true
		}
		idx := playerIndex(session.Players, e.ProfileId)
		if idx == -1 {
			w.logger.Error("activating player not present in session", "region", w.region, "session", e.SessionId, "profile", e.ProfileId)
			return true
		}
		if session.Players[idx].Status != matchmaking.PlayerActivating {
			return true
		}
		return now-session.Players[idx].NewStatusTime > w.reservedPlayerSessionTimeout
	})

	for _, e := range timedOut {
		session, ok := w.sessions.Get(e.SessionId)
		if !ok {
			continue
		}
		idx := playerIndex(session.Players, e.ProfileId)
		if idx == -1 || session.Players[idx].Status != matchmaking.PlayerActivating {
			continue
		}

		w.logger.Debug("activating player timed out", "region", w.region, "session", e.SessionId, "profile", e.ProfileId)
		w.tickets.Delete(e.ProfileId)

		kept := session.Players[:0:0]
		for _, p := range session.Players {
			if p.ProfileId != e.ProfileId {
				kept = append(kept, p)
			}
		}
		session.Players = kept
		w.sessions.Create(session)
		w.sessions.Update(e.SessionId)
	}
}

func playerIndex(players []matchmaking.Player, profile ids.ProfileId) int {
	for i := range players {
		if players[i].ProfileId == profile {
			return i
		}
	}
	return -1
}

// --- phase 6: persistence & notifications ---

func (w *Worker) persist(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.servers.Save(gctx) })
	g.Go(func() error { return w.tickets.Save(gctx) })
	g.Go(func() error { return w.sessions.Save(gctx) })
	g.Go(func() error { return w.waitingTimeDAL.Save(gctx, w.waitingTime.Medians()) })
	g.Go(func() error { return w.outbox.Flush(gctx, w.transport) })

	if err := g.Wait(); err != nil {
		return fmt.Errorf("tick persistence: %w", err)
	}
	return nil
}
