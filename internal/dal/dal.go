// Package dal adapts the matchmaking domain entities onto the kv.Store
// primitive surface, using the key layout spec.md §6 defines:
// region-prefixed string keys holding JSON for entities, a set for server membership, sorted
// sets for session/ticket ordering, and a list for the command queue.
package dal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/dahomey-labs/matchmaking-engine/internal/itemcache"
	"github.com/dahomey-labs/matchmaking-engine/internal/kv"
	"github.com/dahomey-labs/matchmaking-engine/internal/matchmaking"
)

// GameServerDAL backs the servers item cache. Key layout:
// {region}:gss (set of ids), {region}:gs:{id} (JSON value).
type GameServerDAL struct {
	store  kv.Store
	region string
}

func NewGameServerDAL(store kv.Store, region string) *GameServerDAL {
	return &GameServerDAL{store: store, region: region}
}

func (d *GameServerDAL) setKey() string { return fmt.Sprintf("%s:gss", d.region) }
func (d *GameServerDAL) itemKey(id ids.GameServerId) string {
	return fmt.Sprintf("%s:gs:%s", d.region, id.String())
}

func (d *GameServerDAL) LoadAll(ctx context.Context) (map[ids.GameServerId]matchmaking.GameServer, error) {
	rawIds, err := d.store.SMembers(ctx, d.setKey())
	if err != nil {
		return nil, fmt.Errorf("listing game servers: %w", err)
	}
	if len(rawIds) == 0 {
		return map[ids.GameServerId]matchmaking.GameServer{}, nil
	}
	keys := make([]string, len(rawIds))
	for i, raw := range rawIds {
		keys[i] = fmt.Sprintf("%s:gs:%s", d.region, raw)
	}
	values, err := d.store.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("loading game servers: %w", err)
	}
	out := make(map[ids.GameServerId]matchmaking.GameServer, len(values))
	for _, raw := range values {
		var server matchmaking.GameServer
		if err := json.Unmarshal([]byte(raw), &server); err != nil {
			return nil, fmt.Errorf("decoding game server: %w", err)
		}
		out[server.GameServerId] = server
	}
	return out, nil
}

func (d *GameServerDAL) CreateBatch(ctx context.Context, items map[ids.GameServerId]matchmaking.GameServer) error {
	memberIds := make([]string, 0, len(items))
	values := make(map[string]string, len(items))
	for id, server := range items {
		memberIds = append(memberIds, id.String())
		data, err := json.Marshal(server)
		if err != nil {
			return fmt.Errorf("encoding game server %s: %w", id, err)
		}
		values[d.itemKey(id)] = string(data)
	}
	if err := d.store.SAdd(ctx, d.setKey(), memberIds...); err != nil {
		return fmt.Errorf("registering game servers: %w", err)
	}
	if err := d.store.MSet(ctx, values); err != nil {
		return fmt.Errorf("creating game servers: %w", err)
	}
	return nil
}

func (d *GameServerDAL) UpdateBatch(ctx context.Context, items map[ids.GameServerId]matchmaking.GameServer) error {
	values := make(map[string]string, len(items))
	for id, server := range items {
		data, err := json.Marshal(server)
		if err != nil {
			return fmt.Errorf("encoding game server %s: %w", id, err)
		}
		values[d.itemKey(id)] = string(data)
	}
	if err := d.store.MSet(ctx, values); err != nil {
		return fmt.Errorf("updating game servers: %w", err)
	}
	return nil
}

func (d *GameServerDAL) DeleteBatch(ctx context.Context, delIds []ids.GameServerId) error {
	memberIds := make([]string, len(delIds))
	keys := make([]string, len(delIds))
	for i, id := range delIds {
		memberIds[i] = id.String()
		keys[i] = d.itemKey(id)
	}
	if err := d.store.SRem(ctx, d.setKey(), memberIds...); err != nil {
		return fmt.Errorf("deregistering game servers: %w", err)
	}
	if err := d.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("deleting game servers: %w", err)
	}
	return nil
}

func (d *GameServerDAL) Reset(ctx context.Context) error {
	rawIds, err := d.store.SMembers(ctx, d.setKey())
	if err != nil {
		return fmt.Errorf("listing game servers for reset: %w", err)
	}
	keys := make([]string, 0, len(rawIds)+1)
	for _, raw := range rawIds {
		keys = append(keys, fmt.Sprintf("%s:gs:%s", d.region, raw))
	}
	keys = append(keys, d.setKey())
	if err := d.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("resetting game servers: %w", err)
	}
	return nil
}

var _ itemcache.DAL[ids.GameServerId, matchmaking.GameServer] = (*GameServerDAL)(nil)

// SessionDAL backs the sessions item cache. Key layout:
// {region}:mmsq (zset of session ids scored by creation_time),
// {region}:mms:{id} (JSON value).
type SessionDAL struct {
	store  kv.Store
	region string
}

func NewSessionDAL(store kv.Store, region string) *SessionDAL {
	return &SessionDAL{store: store, region: region}
}

func (d *SessionDAL) zsetKey() string { return fmt.Sprintf("%s:mmsq", d.region) }
func (d *SessionDAL) itemKey(id ids.SessionId) string {
	return fmt.Sprintf("%s:mms:%s", d.region, id.String())
}

func (d *SessionDAL) LoadAll(ctx context.Context) (map[ids.SessionId]matchmaking.Session, error) {
	rawIds, err := d.store.ZRange(ctx, d.zsetKey(), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	if len(rawIds) == 0 {
		return map[ids.SessionId]matchmaking.Session{}, nil
	}
	keys := make([]string, len(rawIds))
	for i, raw := range rawIds {
		keys[i] = fmt.Sprintf("%s:mms:%s", d.region, raw)
	}
	values, err := d.store.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	out := make(map[ids.SessionId]matchmaking.Session, len(values))
	for _, raw := range values {
		var session matchmaking.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return nil, fmt.Errorf("decoding session: %w", err)
		}
		out[session.SessionId] = session
	}
	return out, nil
}

func (d *SessionDAL) CreateBatch(ctx context.Context, items map[ids.SessionId]matchmaking.Session) error {
	values := make(map[string]string, len(items))
	for id, session := range items {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("encoding session %s: %w", id, err)
		}
		values[d.itemKey(id)] = string(data)
		if err := d.store.ZAdd(ctx, d.zsetKey(), id.String(), float64(session.CreationTime)); err != nil {
			return fmt.Errorf("indexing session %s: %w", id, err)
		}
	}
	if err := d.store.MSet(ctx, values); err != nil {
		return fmt.Errorf("creating sessions: %w", err)
	}
	return nil
}

func (d *SessionDAL) UpdateBatch(ctx context.Context, items map[ids.SessionId]matchmaking.Session) error {
	values := make(map[string]string, len(items))
	for id, session := range items {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("encoding session %s: %w", id, err)
		}
		values[d.itemKey(id)] = string(data)
	}
	if err := d.store.MSet(ctx, values); err != nil {
		return fmt.Errorf("updating sessions: %w", err)
	}
	return nil
}

func (d *SessionDAL) DeleteBatch(ctx context.Context, delIds []ids.SessionId) error {
	memberIds := make([]string, len(delIds))
	keys := make([]string, len(delIds))
	for i, id := range delIds {
		memberIds[i] = id.String()
		keys[i] = d.itemKey(id)
	}
	if err := d.store.ZRem(ctx, d.zsetKey(), memberIds...); err != nil {
		return fmt.Errorf("deindexing sessions: %w", err)
	}
	if err := d.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("deleting sessions: %w", err)
	}
	return nil
}

func (d *SessionDAL) Reset(ctx context.Context) error {
	rawIds, err := d.store.ZRange(ctx, d.zsetKey(), 0, -1)
	if err != nil {
		return fmt.Errorf("listing sessions for reset: %w", err)
	}
	keys := make([]string, 0, len(rawIds)+1)
	for _, raw := range rawIds {
		keys = append(keys, fmt.Sprintf("%s:mms:%s", d.region, raw))
	}
	keys = append(keys, d.zsetKey())
	if err := d.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("resetting sessions: %w", err)
	}
	return nil
}

var _ itemcache.DAL[ids.SessionId, matchmaking.Session] = (*SessionDAL)(nil)

// TicketDAL backs the tickets item cache. Key layout:
// {region}:mmtq (zset of owner ids scored by creation_time),
// {region}:mmt:{owner} (JSON value).
type TicketDAL struct {
	store  kv.Store
	region string
}

func NewTicketDAL(store kv.Store, region string) *TicketDAL {
	return &TicketDAL{store: store, region: region}
}

func (d *TicketDAL) zsetKey() string { return fmt.Sprintf("%s:mmtq", d.region) }
func (d *TicketDAL) itemKey(owner ids.ProfileId) string {
	return fmt.Sprintf("%s:mmt:%s", d.region, owner.String())
}

func (d *TicketDAL) LoadAll(ctx context.Context) (map[ids.ProfileId]matchmaking.Ticket, error) {
	rawOwners, err := d.store.ZRange(ctx, d.zsetKey(), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	if len(rawOwners) == 0 {
		return map[ids.ProfileId]matchmaking.Ticket{}, nil
	}
	keys := make([]string, len(rawOwners))
	for i, raw := range rawOwners {
		keys[i] = fmt.Sprintf("%s:mmt:%s", d.region, raw)
	}
	values, err := d.store.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("loading tickets: %w", err)
	}
	out := make(map[ids.ProfileId]matchmaking.Ticket, len(values))
	for _, raw := range values {
		var ticket matchmaking.Ticket
		if err := json.Unmarshal([]byte(raw), &ticket); err != nil {
			return nil, fmt.Errorf("decoding ticket: %w", err)
		}
		out[ticket.OwnerProfileId] = ticket
	}
	return out, nil
}

func (d *TicketDAL) CreateBatch(ctx context.Context, items map[ids.ProfileId]matchmaking.Ticket) error {
	values := make(map[string]string, len(items))
	for owner, ticket := range items {
		data, err := json.Marshal(ticket)
		if err != nil {
			return fmt.Errorf("encoding ticket %s: %w", owner, err)
		}
		values[d.itemKey(owner)] = string(data)
		if err := d.store.ZAdd(ctx, d.zsetKey(), owner.String(), float64(ticket.CreationTime)); err != nil {
			return fmt.Errorf("indexing ticket %s: %w", owner, err)
		}
	}
	if err := d.store.MSet(ctx, values); err != nil {
		return fmt.Errorf("creating tickets: %w", err)
	}
	return nil
}

func (d *TicketDAL) UpdateBatch(ctx context.Context, items map[ids.ProfileId]matchmaking.Ticket) error {
	values := make(map[string]string, len(items))
	for owner, ticket := range items {
		data, err := json.Marshal(ticket)
		if err != nil {
			return fmt.Errorf("encoding ticket %s: %w", owner, err)
		}
		values[d.itemKey(owner)] = string(data)
	}
	if err := d.store.MSet(ctx, values); err != nil {
		return fmt.Errorf("updating tickets: %w", err)
	}
	return nil
}

func (d *TicketDAL) DeleteBatch(ctx context.Context, owners []ids.ProfileId) error {
	memberIds := make([]string, len(owners))
	keys := make([]string, len(owners))
	for i, owner := range owners {
		memberIds[i] = owner.String()
		keys[i] = d.itemKey(owner)
	}
	if err := d.store.ZRem(ctx, d.zsetKey(), memberIds...); err != nil {
		return fmt.Errorf("deindexing tickets: %w", err)
	}
	if err := d.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("deleting tickets: %w", err)
	}
	return nil
}

func (d *TicketDAL) Reset(ctx context.Context) error {
	rawOwners, err := d.store.ZRange(ctx, d.zsetKey(), 0, -1)
	if err != nil {
		return fmt.Errorf("listing tickets for reset: %w", err)
	}
	keys := make([]string, 0, len(rawOwners)+1)
	for _, raw := range rawOwners {
		keys = append(keys, fmt.Sprintf("%s:mmt:%s", d.region, raw))
	}
	keys = append(keys, d.zsetKey())
	if err := d.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("resetting tickets: %w", err)
	}
	return nil
}

var _ itemcache.DAL[ids.ProfileId, matchmaking.Ticket] = (*TicketDAL)(nil)

// CommandQueueDAL wraps the region's inbound command list:
// {region}:cmdq. Producers push to the right; the worker pops from the
// left.
type CommandQueueDAL struct {
	store  kv.Store
	region string
}

func NewCommandQueueDAL(store kv.Store, region string) *CommandQueueDAL {
	return &CommandQueueDAL{store: store, region: region}
}

func (d *CommandQueueDAL) key() string { return fmt.Sprintf("%s:cmdq", d.region) }

// Push encodes a command and enqueues it at the tail.
func (d *CommandQueueDAL) Push(ctx context.Context, cmd matchmaking.Command) error {
	data, err := matchmaking.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	if err := d.store.RPush(ctx, d.key(), string(data)); err != nil {
		return fmt.Errorf("pushing command: %w", err)
	}
	return nil
}

// Drain pops up to batchSize commands from the head of the queue, decoding
// each. A decode failure on one entry does not prevent the rest from being
// returned; it is reported as a slice of errors so the caller can log and
// skip per spec.md's "logical precondition violation" handling.
func (d *CommandQueueDAL) Drain(ctx context.Context, batchSize int) ([]matchmaking.Command, []error) {
	raw, err := d.store.LPop(ctx, d.key(), batchSize)
	if err != nil {
		return nil, []error{fmt.Errorf("draining command queue: %w", err)}
	}
	cmds := make([]matchmaking.Command, 0, len(raw))
	var errs []error
	for _, entry := range raw {
		cmd, err := matchmaking.DecodeCommand([]byte(entry))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds, errs
}

// WaitingTimeDAL wraps the per-(region, game mode) median estimate:
// {region}:{game_mode}:mmawt.
type WaitingTimeDAL struct {
	store  kv.Store
	region string
}

func NewWaitingTimeDAL(store kv.Store, region string) *WaitingTimeDAL {
	return &WaitingTimeDAL{store: store, region: region}
}

func (d *WaitingTimeDAL) key(gameMode string) string {
	return fmt.Sprintf("%s:%s:mmawt", d.region, gameMode)
}

func (d *WaitingTimeDAL) Save(ctx context.Context, medians map[string]int64) error {
	if len(medians) == 0 {
		return nil
	}
	values := make(map[string]string, len(medians))
	for mode, median := range medians {
		values[d.key(mode)] = fmt.Sprintf("%d", median)
	}
	if err := d.store.MSet(ctx, values); err != nil {
		return fmt.Errorf("saving waiting times: %w", err)
	}
	return nil
}

func (d *WaitingTimeDAL) Reset(ctx context.Context, gameModes []string) error {
	keys := make([]string, len(gameModes))
	for i, mode := range gameModes {
		keys[i] = d.key(mode)
	}
	if err := d.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("resetting waiting times: %w", err)
	}
	return nil
}
