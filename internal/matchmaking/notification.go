package matchmaking

import (
	"encoding/json"
	"fmt"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
)

// FailureReason is the numeric reason code carried by MatchmakingFailed
// notifications.
type FailureReason int

const (
	CancelledByFriend FailureReason = iota + 1
	CancelledByMatchmakingService
	PrivateServerNotFound
	PrivateServerFull
	PrivateServerClosed
	ServerSessionClosed
	ExpiredInvitation
	InvalidInvitation
)

func (r FailureReason) String() string {
	switch r {
	case CancelledByFriend:
		return "CancelledByFriend"
	case CancelledByMatchmakingService:
		return "CancelledByMatchmakingService"
	case PrivateServerNotFound:
		return "PrivateServerNotFound"
	case PrivateServerFull:
		return "PrivateServerFull"
	case PrivateServerClosed:
		return "PrivateServerClosed"
	case ServerSessionClosed:
		return "ServerSessionClosed"
	case ExpiredInvitation:
		return "ExpiredInvitation"
	case InvalidInvitation:
		return "InvalidInvitation"
	default:
		return "Unknown"
	}
}

// NotificationKind discriminates the tagged notification payload union.
type NotificationKind string

const (
	NotificationMatchmakingCompleted      NotificationKind = "MatchmakingCompleted"
	NotificationMatchmakingActivateSession NotificationKind = "MatchmakingActivateSession"
	NotificationMatchmakingFailed         NotificationKind = "MatchmakingFailed"
	NotificationMatchmakingServersFull    NotificationKind = "MatchmakingServersFull"
	// NotificationMatchmakingStarted is emitted by the out-of-scope admission
	// service, before a ticket ever reaches a region worker. The payload type
	// is defined here to keep the wire contract complete; no component in
	// this module constructs one.
	NotificationMatchmakingStarted NotificationKind = "MatchmakingStarted"
)

// Notification is the tagged payload pushed through the outbox.
type Notification struct {
	Kind NotificationKind `json:"kind"`

	MatchmakingCompleted       *MatchmakingCompletedPayload       `json:"matchmakingCompleted,omitempty"`
	MatchmakingActivateSession *MatchmakingActivateSessionPayload `json:"matchmakingActivateSession,omitempty"`
	MatchmakingFailed          *MatchmakingFailedPayload          `json:"matchmakingFailed,omitempty"`
	MatchmakingServersFull     *MatchmakingServersFullPayload     `json:"matchmakingServersFull,omitempty"`
	MatchmakingStarted         *MatchmakingStartedPayload         `json:"matchmakingStarted,omitempty"`
}

type MatchmakingCompletedPayload struct {
	SessionId ids.SessionId `json:"sessionId"`
	GameMode  string        `json:"gameMode"`
}

type MatchmakingActivateSessionPayload struct {
	SessionId     ids.SessionId `json:"sessionId"`
	IpAddress     string        `json:"ipAddress"`
	Port          uint16        `json:"port"`
	EncryptionKey string        `json:"encryptionKey"`
}

type MatchmakingFailedPayload struct {
	Reason FailureReason `json:"reason"`
}

type MatchmakingServersFullPayload struct {
	GameMode        string `json:"gameMode"`
	PositionInQueue int    `json:"positionInQueue"`
	EstimatedWaitSeconds int64 `json:"estimatedWaitSeconds"`
}

type MatchmakingStartedPayload struct {
	GameMode string `json:"gameMode"`
}

// NewMatchmakingCompleted builds a MatchmakingCompleted notification.
func NewMatchmakingCompleted(sessionId ids.SessionId, gameMode string) Notification {
	return Notification{
		Kind:                 NotificationMatchmakingCompleted,
		MatchmakingCompleted: &MatchmakingCompletedPayload{SessionId: sessionId, GameMode: gameMode},
	}
}

// NewMatchmakingActivateSession builds a MatchmakingActivateSession notification.
func NewMatchmakingActivateSession(sessionId ids.SessionId, ip string, port uint16, key string) Notification {
	return Notification{
		Kind: NotificationMatchmakingActivateSession,
		MatchmakingActivateSession: &MatchmakingActivateSessionPayload{
			SessionId: sessionId, IpAddress: ip, Port: port, EncryptionKey: key,
		},
	}
}

// NewMatchmakingFailed builds a MatchmakingFailed notification.
func NewMatchmakingFailed(reason FailureReason) Notification {
	return Notification{
		Kind:              NotificationMatchmakingFailed,
		MatchmakingFailed: &MatchmakingFailedPayload{Reason: reason},
	}
}

// NewMatchmakingServersFull builds a MatchmakingServersFull notification.
func NewMatchmakingServersFull(gameMode string, positionInQueue int, estimatedWaitSeconds int64) Notification {
	return Notification{
		Kind: NotificationMatchmakingServersFull,
		MatchmakingServersFull: &MatchmakingServersFullPayload{
			GameMode:             gameMode,
			PositionInQueue:      positionInQueue,
			EstimatedWaitSeconds: estimatedWaitSeconds,
		},
	}
}

// EncodeNotification marshals a notification for pushing onto a recipient's
// notification queue.
func EncodeNotification(n Notification) ([]byte, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encoding notification %q: %w", n.Kind, err)
	}
	return data, nil
}
