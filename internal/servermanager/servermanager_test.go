package servermanager

import (
	"context"
	"testing"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/itemcache"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDAL struct {
	items map[ids.GameServerId]matchmaking.GameServer
}

func newFakeDAL() *fakeDAL {
	return &fakeDAL{items: make(map[ids.GameServerId]matchmaking.GameServer)}
}

func (f *fakeDAL) LoadAll(ctx context.Context) (map[ids.GameServerId]matchmaking.GameServer, error) {
	out := make(map[ids.GameServerId]matchmaking.GameServer, len(f.items))
	for k, v := range f.items {
		out[k] = v
	}
	return out, nil
}

func (f *fakeDAL) CreateBatch(ctx context.Context, items map[ids.GameServerId]matchmaking.GameServer) error {
	for k, v := range items {
		f.items[k] = v
	}
	return nil
}

func (f *fakeDAL) UpdateBatch(ctx context.Context, items map[ids.GameServerId]matchmaking.GameServer) error {
	for k, v := range items {
		f.items[k] = v
	}
	return nil
}

func (f *fakeDAL) DeleteBatch(ctx context.Context, delIds []ids.GameServerId) error {
	for _, id := range delIds {
		delete(f.items, id)
	}
	return nil
}

func (f *fakeDAL) Reset(ctx context.Context) error {
	f.items = make(map[ids.GameServerId]matchmaking.GameServer)
	return nil
}

var _ itemcache.DAL[ids.GameServerId, matchmaking.GameServer] = (*fakeDAL)(nil)

func TestServerSweepBoundary(t *testing.T) {
	m := New(newFakeDAL())
	require.NoError(t, m.Load(context.Background()))

	survivor := matchmaking.GameServer{GameServerId: ids.NewGameServerId(), KeepAliveTime: 1000}
	expired := matchmaking.GameServer{GameServerId: ids.NewGameServerId(), KeepAliveTime: 939}
	// Insert in keep-alive order (oldest first), as the active-server index
	// is always ordered.
	m.CreateServer(expired)
	m.CreateServer(survivor)

	// now = 1060: survivor's keep_alive+60 == now -> does not expire.
	// expired's keep_alive+60 = 999 < 1060 -> expires.
	lost := m.ProcessExpiredServers(1060)
	assert.Empty(t, lost)

	_, stillThere := m.Get(survivor.GameServerId)
	assert.True(t, stillThere)
	_, gone := m.Get(expired.GameServerId)
	assert.False(t, gone)
}

func TestProcessExpiredServersReturnsOrphanedSessions(t *testing.T) {
	m := New(newFakeDAL())
	require.NoError(t, m.Load(context.Background()))

	sessionId := ids.NewSessionId()
	server := matchmaking.GameServer{GameServerId: ids.NewGameServerId(), KeepAliveTime: 0, SessionId: &sessionId}
	m.CreateServer(server)

	lost := m.ProcessExpiredServers(1000)
	require.Len(t, lost, 1)
	assert.Equal(t, sessionId, lost[0])
}

func TestIdleServerTracking(t *testing.T) {
	m := New(newFakeDAL())
	require.NoError(t, m.Load(context.Background()))

	server := matchmaking.GameServer{GameServerId: ids.NewGameServerId()}
	m.CreateServer(server)
	assert.True(t, m.HasIdleServer())

	sessionId := ids.NewSessionId()
	server.SessionId = &sessionId
	m.UpdateServer(server)
	assert.False(t, m.HasIdleServer())
}

func TestStoppingServerExpiresBeforeKeepAliveTimeout(t *testing.T) {
	m := New(newFakeDAL())
	require.NoError(t, m.Load(context.Background()))

	stopping := matchmaking.GameServer{
		GameServerId:            ids.NewGameServerId(),
		KeepAliveTime:           1000,
		HostShutdownRequestTime: 999,
	}
	m.CreateServer(stopping)

	// now = 1001: keep-alive is nowhere near the 60s timeout, but the
	// autoscaler flagged this server for teardown, so it expires anyway.
	lost := m.ProcessExpiredServers(1001)
	assert.Empty(t, lost)
	_, stillThere := m.Get(stopping.GameServerId)
	assert.False(t, stillThere)
}

func TestKeepAliveMovesToTail(t *testing.T) {
	m := New(newFakeDAL())
	require.NoError(t, m.Load(context.Background()))

	s1 := matchmaking.GameServer{GameServerId: ids.NewGameServerId(), KeepAliveTime: 0}
	s2 := matchmaking.GameServer{GameServerId: ids.NewGameServerId(), KeepAliveTime: 0}
	m.CreateServer(s1)
	m.CreateServer(s2)

	require.NoError(t, m.KeepAliveServer(s1.GameServerId, 500))

	// s2 is now oldest; at now=560 only s2 should expire (500+60<560 false
	// for s1, but s2's keep_alive is still 0, so it expires first).
	lost := m.ProcessExpiredServers(560)
	assert.Empty(t, lost)
	_, s2Present := m.Get(s2.GameServerId)
	assert.False(t, s2Present)
	_, s1Present := m.Get(s1.GameServerId)
	assert.True(t, s1Present)
}
