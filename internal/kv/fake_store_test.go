package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeStoreStringRoundTrip(t *testing.T) {
	s := NewFakeStore()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Del(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFakeStoreSet(t *testing.T) {
	s := NewFakeStore()
	ctx := context.Background()

	require.NoError(t, s.SAdd(ctx, "set", "a", "b", "c"))
	members, err := s.SMembers(ctx, "set")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, members)

	require.NoError(t, s.SRem(ctx, "set", "b"))
	members, err = s.SMembers(ctx, "set")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, members)
}

func TestFakeStoreZSetOrdering(t *testing.T) {
	s := NewFakeStore()
	ctx := context.Background()

	require.NoError(t, s.ZAdd(ctx, "z", "c", 3))
	require.NoError(t, s.ZAdd(ctx, "z", "a", 1))
	require.NoError(t, s.ZAdd(ctx, "z", "b", 2))

	members, err := s.ZRange(ctx, "z", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, members)
}

func TestFakeStoreListFIFO(t *testing.T) {
	s := NewFakeStore()
	ctx := context.Background()

	require.NoError(t, s.RPush(ctx, "l", "1", "2", "3"))
	popped, err := s.LPop(ctx, "l", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, popped)

	rest, err := s.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, rest)
}

func TestFakeStorePubSub(t *testing.T) {
	s := NewFakeStore()
	ctx := context.Background()

	sub, err := s.Subscribe(ctx, "ch")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, s.Publish(ctx, "ch", "new"))
	payload, err := sub.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", payload)
}
