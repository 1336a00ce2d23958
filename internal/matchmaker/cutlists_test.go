package matchmaker

import (
	"testing"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cutListsMode() matchmaking.GameModeConfig {
	return testMode(matchmaking.GameModeConfig{
		MinPlayers:     2,
		MaxPlayers:     2,
		MatchFunction:  matchmaking.MatchFunctionFCFS,
		MMRRange:       100,
	})
}

func TestCutListsMatchesWithinSameBand(t *testing.T) {
	mode := cutListsMode()
	f := newTestFixture(t, 1000)
	c := NewCutLists(mode)

	owner1, owner2 := ids.ProfileId(1), ids.ProfileId(2)
	t1 := f.putTicket(owner1, 1010, 1000)
	t2 := f.putTicket(owner2, 1020, 1000)
	c.InsertTicket(t1)
	c.InsertTicket(t2)

	require.NoError(t, c.Process(f.ctx))
	require.Len(t, f.ctx.MatchedPlayers(), 2)
}

func TestCutListsDoesNotCrossBands(t *testing.T) {
	mode := cutListsMode()
	f := newTestFixture(t, 1000)
	c := NewCutLists(mode)

	owner1, owner2 := ids.ProfileId(1), ids.ProfileId(2)
	t1 := f.putTicket(owner1, 50, 1000)
	t2 := f.putTicket(owner2, 250, 1000)
	c.InsertTicket(t1)
	c.InsertTicket(t2)

	require.NoError(t, c.Process(f.ctx))
	assert.Empty(t, f.ctx.MatchedPlayers())
}

func TestCutListsRemoveTicketUsesTrackedBand(t *testing.T) {
	mode := cutListsMode()
	f := newTestFixture(t, 1000)
	c := NewCutLists(mode)

	owner := ids.ProfileId(1)
	ticket := f.putTicket(owner, 1010, 1000)
	c.InsertTicket(ticket)
	c.RemoveTicket(ticket)

	owner2 := ids.ProfileId(2)
	ticket2 := f.putTicket(owner2, 1020, 1000)
	c.InsertTicket(ticket2)

	require.NoError(t, c.Process(f.ctx))
	assert.Empty(t, f.ctx.MatchedPlayers())
}

func TestCutListsTracksSessionsCreatedDuringProcess(t *testing.T) {
	mode := cutListsMode()
	f := newTestFixture(t, 1000)
	c := NewCutLists(mode)

	owner1, owner2 := ids.ProfileId(1), ids.ProfileId(2)
	t1 := f.putTicket(owner1, 1010, 1000)
	t2 := f.putTicket(owner2, 1020, 1000)
	c.InsertTicket(t1)
	c.InsertTicket(t2)
	require.NoError(t, c.Process(f.ctx))
	require.Len(t, f.ctx.MatchedPlayers(), 2)

	sessionId := f.ctx.MatchedPlayers()[0].SessionId
	session, ok := f.sessions.Get(sessionId)
	require.True(t, ok)

	_, tracked := c.sessionBand[sessionId]
	require.True(t, tracked)

	c.RemoveSession(session)
	_, stillTracked := c.sessionBand[sessionId]
	assert.False(t, stillTracked)
}
