// Package matchmaking holds the core data model shared by every region
// worker: tickets, sessions, players, game servers, and the static
// game-mode configuration they are matched under.
package matchmaking

import "github.com/dahomey-labs/matchmaking-engine/internal/ids"

// PlayerStatus tracks a player's position in the matchmaking sub-state
// machine: Created -> Matched -> Activating -> Active.
type PlayerStatus int

const (
	PlayerCreated PlayerStatus = iota
	PlayerMatched
	PlayerActivating
	PlayerActive
)

func (s PlayerStatus) String() string {
	switch s {
	case PlayerCreated:
		return "Created"
	case PlayerMatched:
		return "Matched"
	case PlayerActivating:
		return "Activating"
	case PlayerActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// Player is embedded inside both tickets and sessions.
type Player struct {
	ProfileId            ids.ProfileId `json:"i"`
	DisplayName          string        `json:"dn"`
	MMR                  uint32        `json:"mmr"`
	Latency              uint32        `json:"latency"`
	Status               PlayerStatus  `json:"s"`
	NewStatusTime        int64         `json:"t"`
	CreationTime         int64         `json:"ct"`
	TimeUntilOpenSession int64         `json:"tos"`
	TimeUntilCloseSession int64        `json:"tcs"`
}

// Ticket is the unit of demand: one owner, one or more players (a party),
// keyed by the owner's profile id.
type Ticket struct {
	OwnerProfileId                 ids.ProfileId  `json:"i"`
	GameMode                       string         `json:"m"`
	Players                        []Player       `json:"p"`
	CreationTime                   int64          `json:"t"`
	SessionId                      *ids.SessionId `json:"n,omitempty"`
	ServersFullNotificationLastTimeSent int64     `json:"f"`
}

// Id returns the ticket's key: its owner's profile id.
func (t *Ticket) Id() ids.ProfileId { return t.OwnerProfileId }

// SessionStatus tracks a session's lifecycle.
type SessionStatus int

const (
	SessionCreated SessionStatus = iota
	SessionActivating
	SessionActive
)

func (s SessionStatus) String() string {
	switch s {
	case SessionCreated:
		return "Created"
	case SessionActivating:
		return "Activating"
	case SessionActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// Session is the unit of supply consumption: a group of players bound to a
// game mode and, once placed, a game server.
type Session struct {
	SessionId      ids.SessionId      `json:"i"`
	GameMode       string             `json:"m"`
	Players        []Player           `json:"p"`
	CreationTime   int64              `json:"t"`
	Status         SessionStatus      `json:"s"`
	IsOpen         bool               `json:"o"`
	GameServerId   *ids.GameServerId  `json:"gs,omitempty"`
	IpAddress      string             `json:"ip"`
	Port           uint16             `json:"pt"`
	EncryptionKey  string             `json:"k"`
}

// Id returns the session's key.
func (s *Session) Id() ids.SessionId { return s.SessionId }

// HostType distinguishes autoscaled (Dynamic) hosts from fixed (Static)
// fleet hosts.
type HostType int

const (
	HostDynamic HostType = iota + 1
	HostStatic
)

func (h HostType) String() string {
	switch h {
	case HostDynamic:
		return "Dynamic"
	case HostStatic:
		return "Static"
	default:
		return "Undefined"
	}
}

// GameServer is a registered game-hosting process, idle (SessionId == nil)
// or busy (SessionId set).
type GameServer struct {
	GameServerId ids.GameServerId  `json:"i"`
	HostName     string            `json:"ii"`
	HostType     HostType          `json:"ht"`
	HostBootTime int64             `json:"hb"`
	HostProvider string            `json:"hp"`
	GameVersion  string            `json:"gv"`
	ProcessId    uint32            `json:"pid"`
	IpAddress    string            `json:"ip"`
	Port         uint16            `json:"p"`
	SessionId    *ids.SessionId    `json:"s,omitempty"`
	KeepAliveTime int64            `json:"t"`
	// HostShutdownRequestTime is stamped by an external autoscaler ahead of
	// a planned host teardown (supplemented feature, see SPEC_FULL.md).
	// Zero means no shutdown has been requested.
	HostShutdownRequestTime int64 `json:"hs"`
}

// Id returns the game server's key.
func (g *GameServer) Id() ids.GameServerId { return g.GameServerId }

func (g *GameServer) IsBusy() bool  { return g.SessionId != nil }
func (g *GameServer) IsIdle() bool  { return g.SessionId == nil }
func (g *GameServer) IsStopping() bool { return g.HostShutdownRequestTime != 0 }

// MatchmakerKind selects the matching strategy for a game mode.
type MatchmakerKind int

const (
	MatchmakerSimpleList MatchmakerKind = iota
	MatchmakerCutLists
	MatchmakerMultiThreadedCutLists
)

// MatchFunctionKind selects the acceptance predicate for a game mode.
type MatchFunctionKind int

const (
	MatchFunctionFCFS MatchFunctionKind = iota
	MatchFunctionMMR
)

// GameModeConfig is the static configuration of one game mode.
type GameModeConfig struct {
	Name             string
	MinPlayers       int
	MaxPlayers       int
	TeamPlayerCount  int
	Matchmaker       MatchmakerKind
	MatchFunction    MatchFunctionKind
	MaxMMRDistance   uint32
	WaitingTimeWeight uint32
	// MMRRange is the CutLists band width; unused by SimpleList.
	MMRRange uint32
}
