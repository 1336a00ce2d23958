package matchmaker

import (
	"testing"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleListMatchesPairIntoNewSession(t *testing.T) {
	mode := testMode(matchmaking.GameModeConfig{MinPlayers: 2, MaxPlayers: 2, MatchFunction: matchmaking.MatchFunctionFCFS})
	f := newTestFixture(t, 1000)
	s := NewSimpleList(mode)

	owner1, owner2 := ids.ProfileId(1), ids.ProfileId(2)
	t1 := f.putTicket(owner1, 1000, 1000)
	t2 := f.putTicket(owner2, 1000, 1000)
	s.InsertTicket(t1)
	s.InsertTicket(t2)

	require.NoError(t, s.Process(f.ctx))

	matched := f.ctx.MatchedPlayers()
	require.Len(t, matched, 2)
	assert.Equal(t, matched[0].SessionId, matched[1].SessionId)

	ticket, ok := f.tickets.Get(owner1)
	require.True(t, ok)
	require.NotNil(t, ticket.SessionId)
}

func TestSimpleListMatchesSingletonWhenInBounds(t *testing.T) {
	mode := testMode(matchmaking.GameModeConfig{MinPlayers: 1, MaxPlayers: 1, MatchFunction: matchmaking.MatchFunctionFCFS})
	f := newTestFixture(t, 1000)
	s := NewSimpleList(mode)

	owner := ids.ProfileId(1)
	ticket := f.putTicket(owner, 1000, 1000)
	s.InsertTicket(ticket)

	require.NoError(t, s.Process(f.ctx))

	matched := f.ctx.MatchedPlayers()
	require.Len(t, matched, 1)
	assert.Equal(t, owner, matched[0].ProfileId)
}

func TestSimpleListLeavesUnmatchableTicketOpen(t *testing.T) {
	mode := testMode(matchmaking.GameModeConfig{MinPlayers: 2, MaxPlayers: 2, MatchFunction: matchmaking.MatchFunctionFCFS})
	f := newTestFixture(t, 1000)
	s := NewSimpleList(mode)

	owner := ids.ProfileId(1)
	ticket := f.putTicket(owner, 1000, 1000)
	s.InsertTicket(ticket)

	require.NoError(t, s.Process(f.ctx))
	assert.Empty(t, f.ctx.MatchedPlayers())
}

func TestSimpleListMatchesTicketToExistingSession(t *testing.T) {
	mode := testMode(matchmaking.GameModeConfig{MinPlayers: 1, MaxPlayers: 2, MatchFunction: matchmaking.MatchFunctionFCFS})
	f := newTestFixture(t, 1000)
	s := NewSimpleList(mode)

	owner1 := ids.ProfileId(1)
	t1 := f.putTicket(owner1, 1000, 1000)
	s.InsertTicket(t1)
	require.NoError(t, s.Process(f.ctx))
	require.Len(t, f.ctx.MatchedPlayers(), 1)

	sessionId := f.ctx.MatchedPlayers()[0].SessionId
	session, ok := f.sessions.Get(sessionId)
	require.True(t, ok)
	s.InsertSession(session)

	owner2 := ids.ProfileId(2)
	t2 := f.putTicket(owner2, 1000, 1000)
	s.InsertTicket(t2)

	require.NoError(t, s.Process(f.ctx))

	updated, ok := f.sessions.Get(sessionId)
	require.True(t, ok)
	assert.Len(t, updated.Players, 2)
}
