package outbox

import (
	"context"
	"testing"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/kv"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	sends      []string
	failOnNth  int
	sendsCount int
}

func (r *recordingTransport) Send(ctx context.Context, channel string, payload []byte) error {
	r.sendsCount++
	if r.failOnNth > 0 && r.sendsCount == r.failOnNth {
		return assert.AnError
	}
	r.sends = append(r.sends, channel)
	return nil
}

func TestFlushSendsInOrder(t *testing.T) {
	o := New()
	o.QueuePlayerNotification("1", matchmaking.NewMatchmakingCompleted(ids.NewSessionId(), "QuickMatch"))
	o.QueuePlayerNotification("2", matchmaking.NewMatchmakingCompleted(ids.NewSessionId(), "QuickMatch"))
	o.QueueServerNotification("g1", matchmaking.NewMatchmakingActivateSession(ids.NewSessionId(), "1.2.3.4", 7000, "key"))

	transport := &recordingTransport{}
	require.NoError(t, o.Flush(context.Background(), transport))
	assert.Equal(t, []string{"1", "2", "g1"}, transport.sends)
	assert.Equal(t, 0, o.Len())
}

func TestFlushFailurePreservesRemainder(t *testing.T) {
	o := New()
	o.QueuePlayerNotification("1", matchmaking.NewMatchmakingCompleted(ids.NewSessionId(), "QuickMatch"))
	o.QueuePlayerNotification("2", matchmaking.NewMatchmakingCompleted(ids.NewSessionId(), "QuickMatch"))

	transport := &recordingTransport{failOnNth: 2}
	err := o.Flush(context.Background(), transport)
	assert.Error(t, err)
	assert.Equal(t, 1, o.Len())
}

func TestRedisTransportSendThenGet(t *testing.T) {
	store := kv.NewFakeStore()
	transport := NewRedisTransport(store)
	ctx := context.Background()

	data, err := matchmaking.EncodeNotification(matchmaking.NewMatchmakingFailed(matchmaking.CancelledByFriend))
	require.NoError(t, err)

	require.NoError(t, transport.Send(ctx, "42", data))
	notifications, err := transport.GetNotifications(ctx, "42")
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0], `"reason":1`)

	// queue is cleared after GetNotifications
	notifications, err = transport.GetNotifications(ctx, "42")
	require.NoError(t, err)
	assert.Empty(t, notifications)
}
