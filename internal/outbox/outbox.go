// Package outbox buffers notifications produced during a tick and flushes
// them, in order, through a Transport once the tick's mutations are
// complete.
package outbox

import (
	"context"
	"fmt"

	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
)

// Transport is the notification delivery contract: push a payload onto a
// recipient's queue and announce it over pub/sub. Grounded on the
// LPUSH-then-PUBLISH pattern of the source's notification manager.
type Transport interface {
	Send(ctx context.Context, channel string, payload []byte) error
}

// entry pairs a recipient channel with the notification queued for it.
type entry struct {
	channel      string
	notification matchmaking.Notification
}

// Outbox accumulates (channel, notification) entries during a tick and
// flushes them in FIFO order: notifications must be delivered in the
// order they were produced, since later notifications about a session can
// depend on an earlier one (e.g. MatchmakingCompleted before
// MatchmakingActivateSession) having already been observed by the client.
type Outbox struct {
	entries []entry
}

// New constructs an empty Outbox.
func New() *Outbox {
	return &Outbox{}
}

// QueuePlayerNotification queues a notification for a player channel,
// serialized as the player's decimal profile id.
func (o *Outbox) QueuePlayerNotification(channel string, n matchmaking.Notification) {
	o.entries = append(o.entries, entry{channel: channel, notification: n})
}

// QueueServerNotification queues a notification for a game-server channel,
// serialized as the server's hex id.
func (o *Outbox) QueueServerNotification(channel string, n matchmaking.Notification) {
	o.entries = append(o.entries, entry{channel: channel, notification: n})
}

// Len reports how many notifications are currently queued.
func (o *Outbox) Len() int {
	return len(o.entries)
}

// Flush sends every queued notification, in the order it was queued, via
// transport. A failure aborts the flush; entries already sent are dropped
// but the remainder stays queued so the next tick retries them, per
// spec's "notification flush failure" handling.
func (o *Outbox) Flush(ctx context.Context, transport Transport) error {
	for i, e := range o.entries {
		data, err := matchmaking.EncodeNotification(e.notification)
		if err != nil {
			o.entries = o.entries[i:]
			return fmt.Errorf("encoding notification for %s: %w", e.channel, err)
		}
		if err := transport.Send(ctx, e.channel, data); err != nil {
			o.entries = o.entries[i:]
			return fmt.Errorf("sending notification to %s: %w", e.channel, err)
		}
	}
	o.entries = nil
	return nil
}
