// Package ids defines the opaque identifier types shared across the
// matchmaking domain: profile ids (external, unsigned integers) and the
// UUIDs minted by the matchmaking engine itself for sessions and servers.
package ids

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ProfileId identifies a player profile. Profiles are owned by the
// out-of-scope profile store; the engine treats the id as opaque.
type ProfileId uint64

func (p ProfileId) String() string {
	return fmt.Sprintf("%d", uint64(p))
}

// SessionId identifies a matchmaking session.
type SessionId uuid.UUID

// NewSessionId mints a new random session id.
func NewSessionId() SessionId {
	return SessionId(uuid.New())
}

func (s SessionId) String() string {
	return uuid.UUID(s).String()
}

func (s SessionId) MarshalJSON() ([]byte, error) {
	return json.Marshal(uuid.UUID(s).String())
}

func (s *SessionId) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := uuid.Parse(str)
	if err != nil {
		return fmt.Errorf("parsing session id %q: %w", str, err)
	}
	*s = SessionId(parsed)
	return nil
}

// GameServerId identifies a registered game server.
type GameServerId uuid.UUID

// NewGameServerId mints a new random game server id.
func NewGameServerId() GameServerId {
	return GameServerId(uuid.New())
}

func (g GameServerId) String() string {
	return uuid.UUID(g).String()
}

func (g GameServerId) MarshalJSON() ([]byte, error) {
	return json.Marshal(uuid.UUID(g).String())
}

func (g *GameServerId) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := uuid.Parse(str)
	if err != nil {
		return fmt.Errorf("parsing game server id %q: %w", str, err)
	}
	*g = GameServerId(parsed)
	return nil
}

// ParseSessionId parses a session id from its string form, as used when a
// session id arrives over the command queue or is looked up by an external
// caller.
func ParseSessionId(s string) (SessionId, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return SessionId{}, fmt.Errorf("parsing session id %q: %w", s, err)
	}
	return SessionId(parsed), nil
}

// ParseGameServerId parses a game server id from its string form.
func ParseGameServerId(s string) (GameServerId, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return GameServerId{}, fmt.Errorf("parsing game server id %q: %w", s, err)
	}
	return GameServerId(parsed), nil
}
