package kv

import (
	"context"
	"sort"
	"sync"
)

// FakeStore is an in-memory Store used by unit tests that would otherwise
// need a live Redis instance. It implements just enough semantics to
// exercise the DAL and cache layers: it does not reproduce Redis's exact
// sorted-set tie-breaking or pub/sub delivery guarantees.
type FakeStore struct {
	mu sync.Mutex

	strings map[string]string
	sets    map[string]map[string]struct{}
	zsets   map[string]map[string]float64
	lists   map[string][]string

	subs map[string][]chan string
}

// NewFakeStore constructs an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		strings: make(map[string]string),
		sets:    make(map[string]map[string]struct{}),
		zsets:   make(map[string]map[string]float64),
		lists:   make(map[string][]string),
		subs:    make(map[string][]chan string),
	}
}

func (f *FakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.strings[key]
	return v, ok, nil
}

func (f *FakeStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strings[key] = value
	return nil
}

func (f *FakeStore) MGet(ctx context.Context, keys []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := f.strings[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (f *FakeStore) MSet(ctx context.Context, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range values {
		f.strings[k] = v
	}
	return nil
}

func (f *FakeStore) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.strings, k)
		delete(f.sets, k)
		delete(f.zsets, k)
		delete(f.lists, k)
	}
	return nil
}

func (f *FakeStore) SAdd(ctx context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.sets[key]
	if !ok {
		set = make(map[string]struct{})
		f.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return nil
}

func (f *FakeStore) SRem(ctx context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.sets[key]
	if !ok {
		return nil
	}
	for _, m := range members {
		delete(set, m)
	}
	return nil
}

func (f *FakeStore) SMembers(ctx context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.sets[key]
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func (f *FakeStore) ZAdd(ctx context.Context, key string, member string, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	z, ok := f.zsets[key]
	if !ok {
		z = make(map[string]float64)
		f.zsets[key] = z
	}
	z[member] = score
	return nil
}

func (f *FakeStore) ZRem(ctx context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	z, ok := f.zsets[key]
	if !ok {
		return nil
	}
	for _, m := range members {
		delete(z, m)
	}
	return nil
}

func (f *FakeStore) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	z := f.zsets[key]
	type pair struct {
		member string
		score  float64
	}
	pairs := make([]pair, 0, len(z))
	for m, s := range z {
		pairs = append(pairs, pair{m, s})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score < pairs[j].score
		}
		return pairs[i].member < pairs[j].member
	})

	n := int64(len(pairs))
	start, stop = normalizeRange(start, stop, n)
	if start > stop || n == 0 {
		return nil, nil
	}
	out := make([]string, 0, stop-start+1)
	for i := start; i <= stop; i++ {
		out = append(out, pairs[i].member)
	}
	return out, nil
}

func (f *FakeStore) LPush(ctx context.Context, key string, values ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range values {
		f.lists[key] = append([]string{v}, f.lists[key]...)
	}
	return nil
}

func (f *FakeStore) RPush(ctx context.Context, key string, values ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[key] = append(f.lists[key], values...)
	return nil
}

func (f *FakeStore) LPop(ctx context.Context, key string, count int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.lists[key]
	if len(list) == 0 || count <= 0 {
		return nil, nil
	}
	if count > len(list) {
		count = len(list)
	}
	out := list[:count]
	f.lists[key] = list[count:]
	return out, nil
}

func (f *FakeStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.lists[key]
	n := int64(len(list))
	start, stop = normalizeRange(start, stop, n)
	if start > stop || n == 0 {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

func (f *FakeStore) Publish(ctx context.Context, channel, payload string) error {
	f.mu.Lock()
	subs := append([]chan string(nil), f.subs[channel]...)
	f.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (f *FakeStore) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	ch := make(chan string, 16)
	f.mu.Lock()
	f.subs[channel] = append(f.subs[channel], ch)
	f.mu.Unlock()
	return &fakeSubscription{store: f, channel: channel, ch: ch}, nil
}

type fakeSubscription struct {
	store   *FakeStore
	channel string
	ch      chan string
}

func (s *fakeSubscription) Receive(ctx context.Context) (string, error) {
	select {
	case payload := <-s.ch:
		return payload, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *fakeSubscription) Close() error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	subs := s.store.subs[s.channel]
	for i, ch := range subs {
		if ch == s.ch {
			s.store.subs[s.channel] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	close(s.ch)
	return nil
}

func normalizeRange(start, stop, n int64) (int64, int64) {
	if start < 0 {
		start = n + start
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop = n + stop
	}
	if stop >= n {
		stop = n - 1
	}
	return start, stop
}
