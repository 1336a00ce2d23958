// Package itemcache implements the write-back tri-state cache shared by
// every region worker entity (servers, sessions, tickets): an in-memory
// map plus three pairwise-disjoint dirty sets (to_create, to_update,
// to_delete), flushed to the backing store once per tick.
package itemcache

import (
	"context"
	"fmt"
)

// DAL is the backing-store contract an ItemCache batches its writes
// against. One DAL implementation exists per entity type (servers,
// sessions, tickets).
type DAL[I comparable, T any] interface {
	LoadAll(ctx context.Context) (map[I]T, error)
	CreateBatch(ctx context.Context, items map[I]T) error
	UpdateBatch(ctx context.Context, items map[I]T) error
	DeleteBatch(ctx context.Context, ids []I) error
	Reset(ctx context.Context) error
}

// ItemCache is the generic write-back cache. I is the identifier type, T
// the entity type.
type ItemCache[I comparable, T any] struct {
	dal   DAL[I, T]
	idOf  func(T) I
	items map[I]T

	toCreate map[I]struct{}
	toUpdate map[I]struct{}
	toDelete map[I]struct{}
}

// New constructs an empty ItemCache. idOf extracts an entity's identifier;
// it exists because Go generics cannot express "T has an Id() I method"
// without an interface constraint that would force entities to be
// pointer-receiver-only, so callers hand it in explicitly.
func New[I comparable, T any](dal DAL[I, T], idOf func(T) I) *ItemCache[I, T] {
	return &ItemCache[I, T]{
		dal:      dal,
		idOf:     idOf,
		items:    make(map[I]T),
		toCreate: make(map[I]struct{}),
		toUpdate: make(map[I]struct{}),
		toDelete: make(map[I]struct{}),
	}
}

// Load fetches all items for the region and resets dirty sets.
func (c *ItemCache[I, T]) Load(ctx context.Context) error {
	items, err := c.dal.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading item cache: %w", err)
	}
	c.items = items
	c.toCreate = make(map[I]struct{})
	c.toUpdate = make(map[I]struct{})
	c.toDelete = make(map[I]struct{})
	return nil
}

// Get returns the item for id, if present.
func (c *ItemCache[I, T]) Get(id I) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

// Iter returns every in-memory item, in unspecified order.
func (c *ItemCache[I, T]) Iter() []T {
	out := make([]T, 0, len(c.items))
	for _, v := range c.items {
		out = append(out, v)
	}
	return out
}

// Len reports how many items are currently in memory.
func (c *ItemCache[I, T]) Len() int {
	return len(c.items)
}

// Create inserts item into the cache, overwriting any prior value, and
// marks it for creation. An item created and then deleted within the same
// tick cancels out (see Delete).
func (c *ItemCache[I, T]) Create(item T) {
	id := c.idOf(item)
	c.items[id] = item
	delete(c.toDelete, id)
	c.toCreate[id] = struct{}{}
}

// Update marks id dirty for write-back, unless it is already pending
// creation (a not-yet-persisted item has no update to issue).
func (c *ItemCache[I, T]) Update(id I) {
	if _, pending := c.toCreate[id]; pending {
		return
	}
	c.toUpdate[id] = struct{}{}
}

// Delete removes id from the cache. If it was pending creation the create
// is discarded outright (net no-op); otherwise it is marked for deletion.
func (c *ItemCache[I, T]) Delete(id I) {
	delete(c.items, id)
	if _, pending := c.toCreate[id]; pending {
		delete(c.toCreate, id)
		return
	}
	delete(c.toUpdate, id)
	c.toDelete[id] = struct{}{}
}

// Dirty reports whether any of the three dirty sets is non-empty.
func (c *ItemCache[I, T]) Dirty() bool {
	return len(c.toCreate) > 0 || len(c.toUpdate) > 0 || len(c.toDelete) > 0
}

// Save issues create/update/delete batches against the backing store. On
// success all three dirty sets are emptied. On failure the dirty sets are
// left intact so the next tick's save retries the same work.
func (c *ItemCache[I, T]) Save(ctx context.Context) error {
	creates := c.snapshot(c.toCreate)
	updates := c.snapshot(c.toUpdate)
	deletes := make([]I, 0, len(c.toDelete))
	for id := range c.toDelete {
		deletes = append(deletes, id)
	}

	if len(creates) > 0 {
		if err := c.dal.CreateBatch(ctx, creates); err != nil {
			return fmt.Errorf("saving created items: %w", err)
		}
	}
	if len(updates) > 0 {
		if err := c.dal.UpdateBatch(ctx, updates); err != nil {
			return fmt.Errorf("saving updated items: %w", err)
		}
	}
	if len(deletes) > 0 {
		if err := c.dal.DeleteBatch(ctx, deletes); err != nil {
			return fmt.Errorf("saving deleted items: %w", err)
		}
	}

	c.toCreate = make(map[I]struct{})
	c.toUpdate = make(map[I]struct{})
	c.toDelete = make(map[I]struct{})
	return nil
}

func (c *ItemCache[I, T]) snapshot(ids map[I]struct{}) map[I]T {
	out := make(map[I]T, len(ids))
	for id := range ids {
		if v, ok := c.items[id]; ok {
			out[id] = v
		}
	}
	return out
}

// Reset purges the region's entities from the backing store and clears
// in-memory state.
func (c *ItemCache[I, T]) Reset(ctx context.Context) error {
	if err := c.dal.Reset(ctx); err != nil {
		return fmt.Errorf("resetting item cache: %w", err)
	}
	c.items = make(map[I]T)
	c.toCreate = make(map[I]struct{})
	c.toUpdate = make(map[I]struct{})
	c.toDelete = make(map[I]struct{})
	return nil
}

// DirtyCounts reports the size of each dirty set, for tests asserting the
// pairwise-disjoint invariant and cancellation behavior.
func (c *ItemCache[I, T]) DirtyCounts() (creates, updates, deletes int) {
	return len(c.toCreate), len(c.toUpdate), len(c.toDelete)
}
