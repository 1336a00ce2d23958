// Package servermanager wraps the game-server item cache with the two
// auxiliary indexes the region worker's server sweep and session
// placement phases depend on: an insertion-ordered active-server set
// (oldest heartbeat first) and an idle-server set.
package servermanager

import (
	"context"
	"fmt"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/itemcache"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/dahomey-labs/matchmaking-engine/internal/queuemap"
)

// HeartbeatTimeoutSeconds is the fixed expiry window: a server that has
// not heartbeated within this window of "now" is considered lost.
const HeartbeatTimeoutSeconds = 60

func serverId(s matchmaking.GameServer) ids.GameServerId { return s.GameServerId }

// Manager owns the servers item cache plus the active/idle indexes.
type Manager struct {
	servers       *itemcache.ItemCache[ids.GameServerId, matchmaking.GameServer]
	activeServers *queuemap.QueueMap[ids.GameServerId]
	idleServers   map[ids.GameServerId]struct{}
}

// New wraps a game-server DAL in a Manager.
func New(dal itemcache.DAL[ids.GameServerId, matchmaking.GameServer]) *Manager {
	return &Manager{
		servers:       itemcache.New[ids.GameServerId, matchmaking.GameServer](dal, serverId),
		activeServers: queuemap.New[ids.GameServerId](),
		idleServers:   make(map[ids.GameServerId]struct{}),
	}
}

// Load populates the cache and rebuilds both indexes from scratch.
func (m *Manager) Load(ctx context.Context) error {
	if err := m.servers.Load(ctx); err != nil {
		return err
	}
	m.activeServers.Clear()
	m.idleServers = make(map[ids.GameServerId]struct{})
	for _, server := range m.servers.Iter() {
		m.activeServers.Insert(server.GameServerId)
		m.refreshIdleMembership(server)
	}
	return nil
}

func (m *Manager) refreshIdleMembership(server matchmaking.GameServer) {
	if server.IsIdle() {
		m.idleServers[server.GameServerId] = struct{}{}
	} else {
		delete(m.idleServers, server.GameServerId)
	}
}

// Get returns the server for id, if present.
func (m *Manager) Get(id ids.GameServerId) (matchmaking.GameServer, bool) {
	return m.servers.Get(id)
}

// CreateServer registers a newly initialized server in Idle state.
func (m *Manager) CreateServer(server matchmaking.GameServer) {
	m.servers.Create(server)
	m.activeServers.Insert(server.GameServerId)
	m.refreshIdleMembership(server)
}

// UpdateServer persists mutations made to an in-memory server and
// refreshes its idle/busy membership against its current SessionId.
func (m *Manager) UpdateServer(server matchmaking.GameServer) {
	m.servers.Create(server)
	m.servers.Update(server.GameServerId)
	m.refreshIdleMembership(server)
}

// DeleteServer removes a server entirely.
func (m *Manager) DeleteServer(id ids.GameServerId) {
	m.servers.Delete(id)
	m.activeServers.Remove(id)
	delete(m.idleServers, id)
}

// KeepAliveServer stamps keep_alive_time and moves the server to the tail
// of the active-server index.
func (m *Manager) KeepAliveServer(id ids.GameServerId, now int64) error {
	server, ok := m.servers.Get(id)
	if !ok {
		return fmt.Errorf("keep-alive for unknown game server %s", id)
	}
	server.KeepAliveTime = now
	m.servers.Create(server)
	m.servers.Update(id)
	m.activeServers.Insert(id)
	return nil
}

// HasIdleServer reports whether any idle server is registered.
func (m *Manager) HasIdleServer() bool {
	return len(m.idleServers) > 0
}

// GetIdleServer returns any idle server, with no ordering requirement.
func (m *Manager) GetIdleServer() (matchmaking.GameServer, bool) {
	for id := range m.idleServers {
		server, ok := m.servers.Get(id)
		if !ok {
			continue
		}
		return server, true
	}
	return matchmaking.GameServer{}, false
}

// ProcessExpiredServers walks active_servers oldest-first, deleting every
// server whose keep-alive has lapsed (including one flagged stopping by
// the autoscaler), stopping at the first survivor. It returns the session
// ids the expired servers held, so the caller can mark those sessions for
// deletion with reason "server lost".
func (m *Manager) ProcessExpiredServers(now int64) []ids.SessionId {
	expiredIds := m.activeServers.PopFrontWhile(func(id ids.GameServerId) bool {
		server, ok := m.servers.Get(id)
		if !ok {
			return true
		}
		return server.IsStopping() || server.KeepAliveTime+HeartbeatTimeoutSeconds < now
	})

	var orphanedSessions []ids.SessionId
	for _, id := range expiredIds {
		server, ok := m.servers.Get(id)
		if ok && server.SessionId != nil {
			orphanedSessions = append(orphanedSessions, *server.SessionId)
		}
		m.servers.Delete(id)
		delete(m.idleServers, id)
	}
	return orphanedSessions
}

// Save flushes dirty servers to the backing store.
func (m *Manager) Save(ctx context.Context) error {
	return m.servers.Save(ctx)
}

// Reset purges all servers for the region.
func (m *Manager) Reset(ctx context.Context) error {
	if err := m.servers.Reset(ctx); err != nil {
		return err
	}
	m.activeServers.Clear()
	m.idleServers = make(map[ids.GameServerId]struct{})
	return nil
}

// ActiveCount and IdleCount exist for invariant tests asserting index
// coherence against the underlying cache.
func (m *Manager) ActiveCount() int { return m.activeServers.Len() }
func (m *Manager) IdleCount() int   { return len(m.idleServers) }
func (m *Manager) TotalCount() int  { return m.servers.Len() }
