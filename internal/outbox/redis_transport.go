package outbox

import (
	"context"
	"fmt"

	"github.com/dahomey-labs/matchmaking-engine/internal/kv"
)

// RedisTransport implements Transport over kv.Store, following the
// source's notification manager: push the payload onto a `nq:{channel}`
// list, then publish a short "new" marker so any listener currently
// blocked in get_with_timeout wakes up and polls the queue.
type RedisTransport struct {
	store kv.Store
}

// NewRedisTransport wraps a kv.Store as a notification Transport.
func NewRedisTransport(store kv.Store) *RedisTransport {
	return &RedisTransport{store: store}
}

func queueKey(channel string) string {
	return fmt.Sprintf("nq:%s", channel)
}

func (t *RedisTransport) Send(ctx context.Context, channel string, payload []byte) error {
	if err := t.store.RPush(ctx, queueKey(channel), string(payload)); err != nil {
		return fmt.Errorf("queueing notification for %s: %w", channel, err)
	}
	if err := t.store.Publish(ctx, channel, "new"); err != nil {
		return fmt.Errorf("publishing notification marker for %s: %w", channel, err)
	}
	return nil
}

// GetNotifications pops all currently queued payloads for a channel, used
// by external consumers (and tests) polling the queue directly.
func (t *RedisTransport) GetNotifications(ctx context.Context, channel string) ([]string, error) {
	all, err := t.store.LRange(ctx, queueKey(channel), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("reading notification queue for %s: %w", channel, err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	if err := t.store.Del(ctx, queueKey(channel)); err != nil {
		return nil, fmt.Errorf("clearing notification queue for %s: %w", channel, err)
	}
	return all, nil
}

// ClearQueue drops all pending notifications for a channel.
func (t *RedisTransport) ClearQueue(ctx context.Context, channel string) error {
	if err := t.store.Del(ctx, queueKey(channel)); err != nil {
		return fmt.Errorf("clearing notification queue for %s: %w", channel, err)
	}
	return nil
}
