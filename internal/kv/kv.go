// Package kv defines the key-value primitive surface the matchmaking
// engine's authoritative store must provide, and a Redis-backed
// implementation of it.
package kv

import "context"

// Store is the primitive surface every DAL is built on: a string value, a
// set, a sorted set, and a list, plus pub/sub for the notification
// transport.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	MGet(ctx context.Context, keys []string) (map[string]string, error)
	MSet(ctx context.Context, values map[string]string) error
	Del(ctx context.Context, keys ...string) error

	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)

	ZAdd(ctx context.Context, key string, member string, score float64) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	LPush(ctx context.Context, key string, values ...string) error
	RPush(ctx context.Context, key string, values ...string) error
	LPop(ctx context.Context, key string, count int) ([]string, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	Publish(ctx context.Context, channel, payload string) error
	Subscribe(ctx context.Context, channel string) (sub Subscription, err error)
}

// Subscription is a live pub/sub subscription. Callers must call Close
// when done.
type Subscription interface {
	// Receive blocks until a message arrives or ctx is done.
	Receive(ctx context.Context) (payload string, err error)
	Close() error
}
