package matchmaker

import (
	"testing"
	"time"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mtMode() matchmaking.GameModeConfig {
	return testMode(matchmaking.GameModeConfig{
		MinPlayers:    2,
		MaxPlayers:    2,
		MatchFunction: matchmaking.MatchFunctionFCFS,
		MMRRange:      100,
	})
}

// processUntil repeatedly calls Process and checks cond, since band
// goroutines apply mutations and propose matches asynchronously. Fails
// the test if cond never becomes true within the deadline.
func processUntil(t *testing.T, f *testFixture, c *MultiThreadedCutLists, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		require.NoError(t, c.Process(f.ctx))
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never satisfied before deadline")
}

func TestMultiThreadedCutListsMatchesWithinSameBand(t *testing.T) {
	mode := mtMode()
	f := newTestFixture(t, 1000)
	c := NewMultiThreadedCutLists(mode)
	defer c.Shutdown()

	owner1, owner2 := ids.ProfileId(1), ids.ProfileId(2)
	t1 := f.putTicket(owner1, 1010, 1000)
	t2 := f.putTicket(owner2, 1020, 1000)
	c.InsertTicket(t1)
	c.InsertTicket(t2)

	processUntil(t, f, c, func() bool { return len(f.ctx.MatchedPlayers()) == 2 })
}

func TestMultiThreadedCutListsDoesNotCrossBands(t *testing.T) {
	mode := mtMode()
	f := newTestFixture(t, 1000)
	c := NewMultiThreadedCutLists(mode)
	defer c.Shutdown()

	owner1, owner2 := ids.ProfileId(1), ids.ProfileId(2)
	t1 := f.putTicket(owner1, 50, 1000)
	t2 := f.putTicket(owner2, 250, 1000)
	c.InsertTicket(t1)
	c.InsertTicket(t2)

	for i := 0; i < 20; i++ {
		require.NoError(t, c.Process(f.ctx))
		time.Sleep(time.Millisecond)
	}
	assert.Empty(t, f.ctx.MatchedPlayers())
}

func TestMultiThreadedCutListsMatchesSingletonInBounds(t *testing.T) {
	mode := testMode(matchmaking.GameModeConfig{
		MinPlayers:    1,
		MaxPlayers:    1,
		MatchFunction: matchmaking.MatchFunctionFCFS,
		MMRRange:      100,
	})
	f := newTestFixture(t, 1000)
	c := NewMultiThreadedCutLists(mode)
	defer c.Shutdown()

	owner := ids.ProfileId(1)
	ticket := f.putTicket(owner, 1000, 1000)
	c.InsertTicket(ticket)

	processUntil(t, f, c, func() bool { return len(f.ctx.MatchedPlayers()) == 1 })
}

func TestMultiThreadedCutListsShutdownJoinsGoroutines(t *testing.T) {
	mode := mtMode()
	c := NewMultiThreadedCutLists(mode)
	ticket := matchmaking.Ticket{
		OwnerProfileId: ids.ProfileId(1),
		Players:        []matchmaking.Player{{ProfileId: ids.ProfileId(1), MMR: 1000}},
	}
	c.InsertTicket(ticket)

	done := make(chan struct{})
	go func() {
		c.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not return: band goroutine leaked")
	}
}
