package matchmaker

import (
	"context"
	"testing"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/itemcache"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/dahomey-labs/matchmaking-engine/internal/queuemap"
	"github.com/stretchr/testify/require"
)

type fakeTicketDAL struct{}

func (fakeTicketDAL) LoadAll(ctx context.Context) (map[ids.ProfileId]matchmaking.Ticket, error) {
	return map[ids.ProfileId]matchmaking.Ticket{}, nil
}
func (fakeTicketDAL) CreateBatch(ctx context.Context, items map[ids.ProfileId]matchmaking.Ticket) error {
	return nil
}
func (fakeTicketDAL) UpdateBatch(ctx context.Context, items map[ids.ProfileId]matchmaking.Ticket) error {
	return nil
}
func (fakeTicketDAL) DeleteBatch(ctx context.Context, idList []ids.ProfileId) error { return nil }
func (fakeTicketDAL) Reset(ctx context.Context) error                              { return nil }

type fakeSessionDAL struct{}

func (fakeSessionDAL) LoadAll(ctx context.Context) (map[ids.SessionId]matchmaking.Session, error) {
	return map[ids.SessionId]matchmaking.Session{}, nil
}
func (fakeSessionDAL) CreateBatch(ctx context.Context, items map[ids.SessionId]matchmaking.Session) error {
	return nil
}
func (fakeSessionDAL) UpdateBatch(ctx context.Context, items map[ids.SessionId]matchmaking.Session) error {
	return nil
}
func (fakeSessionDAL) DeleteBatch(ctx context.Context, idList []ids.SessionId) error { return nil }
func (fakeSessionDAL) Reset(ctx context.Context) error                              { return nil }

// testFixture bundles a Context with the ticket/session caches backing it,
// so a test can seed tickets/sessions and then inspect post-Process state.
type testFixture struct {
	t        *testing.T
	tickets  *itemcache.ItemCache[ids.ProfileId, matchmaking.Ticket]
	sessions *itemcache.ItemCache[ids.SessionId, matchmaking.Session]
	created  *queuemap.QueueMap[ids.SessionId]
	ctx      *Context
}

func newTestFixture(t *testing.T, now int64) *testFixture {
	t.Helper()
	tickets := itemcache.New[ids.ProfileId, matchmaking.Ticket](fakeTicketDAL{}, func(tk matchmaking.Ticket) ids.ProfileId { return tk.OwnerProfileId })
	sessions := itemcache.New[ids.SessionId, matchmaking.Session](fakeSessionDAL{}, func(s matchmaking.Session) ids.SessionId { return s.SessionId })
	require.NoError(t, tickets.Load(context.Background()))
	require.NoError(t, sessions.Load(context.Background()))
	created := queuemap.New[ids.SessionId]()
	return &testFixture{
		t:        t,
		tickets:  tickets,
		sessions: sessions,
		created:  created,
		ctx:      NewContext(tickets, sessions, created, now),
	}
}

func (f *testFixture) putTicket(owner ids.ProfileId, mmr uint32, creationTime int64) matchmaking.Ticket {
	ticket := matchmaking.Ticket{
		OwnerProfileId: owner,
		GameMode:       "solo",
		Players: []matchmaking.Player{{
			ProfileId:    owner,
			MMR:          mmr,
			CreationTime: creationTime,
		}},
		CreationTime: creationTime,
	}
	f.tickets.Create(ticket)
	return ticket
}

func testMode(mode matchmaking.GameModeConfig) matchmaking.GameModeConfig {
	if mode.Name == "" {
		mode.Name = "solo"
	}
	return mode
}
