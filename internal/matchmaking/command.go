package matchmaking

import (
	"encoding/json"
	"fmt"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
)

// CommandKind discriminates the tagged MatchmakingCommand union. Values are
// wire-stable strings, matching the serde tag style of the source protocol.
type CommandKind string

const (
	CommandCreateTicket          CommandKind = "CreateTicket"
	CommandDeleteTicket          CommandKind = "DeleteTicket"
	CommandActivatePlayerSession CommandKind = "ActivatePlayerSession"
	CommandActivateSession       CommandKind = "ActivateSession"
	CommandDeleteSession         CommandKind = "DeleteSession"
	CommandDeletePlayerSession   CommandKind = "DeletePlayerSession"
	CommandInitializeGameServer  CommandKind = "InitializeGameServer"
	CommandKeepAliveGameServer   CommandKind = "KeepAliveGameServer"
	CommandShutdownGameServer    CommandKind = "ShutdownGameServer"
	CommandUpdateSession         CommandKind = "UpdateSession"
	CommandResetMatchmaking      CommandKind = "ResetMatchmaking"
)

// Command is the tagged union popped off a region's command queue. Exactly
// one of the payload fields is populated, selected by Kind.
type Command struct {
	Kind CommandKind `json:"kind"`

	CreateTicket          *CreateTicketPayload          `json:"createTicket,omitempty"`
	DeleteTicket          *DeleteTicketPayload          `json:"deleteTicket,omitempty"`
	ActivatePlayerSession *ActivatePlayerSessionPayload `json:"activatePlayerSession,omitempty"`
	ActivateSession       *ActivateSessionPayload       `json:"activateSession,omitempty"`
	DeleteSession         *DeleteSessionPayload         `json:"deleteSession,omitempty"`
	DeletePlayerSession   *DeletePlayerSessionPayload   `json:"deletePlayerSession,omitempty"`
	InitializeGameServer  *InitializeGameServerPayload  `json:"initializeGameServer,omitempty"`
	KeepAliveGameServer   *KeepAliveGameServerPayload   `json:"keepAliveGameServer,omitempty"`
	ShutdownGameServer    *ShutdownGameServerPayload    `json:"shutdownGameServer,omitempty"`
	UpdateSession         *UpdateSessionPayload         `json:"updateSession,omitempty"`
}

type CreateTicketPayload struct {
	Ticket Ticket `json:"ticket"`
}

type DeleteTicketPayload struct {
	Owner     ids.ProfileId `json:"owner"`
	Canceller ids.ProfileId `json:"canceller"`
}

type ActivatePlayerSessionPayload struct {
	Session ids.SessionId `json:"session"`
	Profile ids.ProfileId `json:"profile"`
}

type ActivateSessionPayload struct {
	Session ids.SessionId `json:"session"`
}

type DeleteSessionPayload struct {
	Session ids.SessionId `json:"session"`
}

type DeletePlayerSessionPayload struct {
	Session ids.SessionId `json:"session"`
	Profile ids.ProfileId `json:"profile"`
}

type InitializeGameServerPayload struct {
	GameServerId ids.GameServerId `json:"gameServerId"`
	HostName     string           `json:"hostName"`
	HostType     HostType         `json:"hostType"`
	HostBootTime int64            `json:"hostBootTime"`
	HostProvider string           `json:"hostProvider"`
	GameVersion  string           `json:"gameVersion"`
	ProcessId    uint32           `json:"processId"`
	IpAddress    string           `json:"ipAddress"`
	Port         uint16           `json:"port"`
}

type KeepAliveGameServerPayload struct {
	GameServerId ids.GameServerId `json:"gameServerId"`
}

type ShutdownGameServerPayload struct {
	GameServerId ids.GameServerId `json:"gameServerId"`
}

type UpdateSessionPayload struct {
	Session ids.SessionId `json:"session"`
	IsOpen  bool          `json:"isOpen"`
}

// EncodeCommand and DecodeCommand round-trip a Command through the
// command queue. Command is (de)serialized through ordinary struct tags;
// the helpers below also validate the tag/payload pairing so a malformed
// queue entry fails loudly instead of silently dispatching a nil payload.

// Validate checks that exactly the payload matching Kind is populated.
func (c *Command) Validate() error {
	present := 0
	check := func(ok bool) {
		if ok {
			present++
		}
	}
	check(c.CreateTicket != nil)
	check(c.DeleteTicket != nil)
	check(c.ActivatePlayerSession != nil)
	check(c.ActivateSession != nil)
	check(c.DeleteSession != nil)
	check(c.DeletePlayerSession != nil)
	check(c.InitializeGameServer != nil)
	check(c.KeepAliveGameServer != nil)
	check(c.ShutdownGameServer != nil)
	check(c.UpdateSession != nil)

	wantsPayload := c.Kind != CommandResetMatchmaking
	if wantsPayload && present != 1 {
		return fmt.Errorf("command %q: expected exactly one payload, found %d", c.Kind, present)
	}
	if !wantsPayload && present != 0 {
		return fmt.Errorf("command %q: expected no payload, found %d", c.Kind, present)
	}
	payloadFor := map[CommandKind]bool{
		CommandCreateTicket:          c.CreateTicket != nil,
		CommandDeleteTicket:          c.DeleteTicket != nil,
		CommandActivatePlayerSession: c.ActivatePlayerSession != nil,
		CommandActivateSession:       c.ActivateSession != nil,
		CommandDeleteSession:         c.DeleteSession != nil,
		CommandDeletePlayerSession:   c.DeletePlayerSession != nil,
		CommandInitializeGameServer:  c.InitializeGameServer != nil,
		CommandKeepAliveGameServer:   c.KeepAliveGameServer != nil,
		CommandShutdownGameServer:    c.ShutdownGameServer != nil,
		CommandUpdateSession:         c.UpdateSession != nil,
	}
	if wantsPayload && !payloadFor[c.Kind] {
		return fmt.Errorf("command %q: payload does not match kind", c.Kind)
	}
	return nil
}

// DecodeCommand unmarshals a single queue entry and validates its shape.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("decoding command: %w", err)
	}
	if err := cmd.Validate(); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// EncodeCommand marshals a command for pushing onto the command queue.
func EncodeCommand(cmd Command) ([]byte, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encoding command %q: %w", cmd.Kind, err)
	}
	return data, nil
}
