package matchmaking

import (
	"testing"

	"github.com/dahomey-labs/matchmaking-engine/internal/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRoundTrip(t *testing.T) {
	owner := ids.ProfileId(1)
	cmd := Command{
		Kind: CommandCreateTicket,
		CreateTicket: &CreateTicketPayload{
			Ticket: Ticket{
				OwnerProfileId: owner,
				GameMode:       "QuickMatch",
				Players:        []Player{{ProfileId: owner}},
				CreationTime:   100,
			},
		},
	}

	data, err := EncodeCommand(cmd)
	require.NoError(t, err)

	decoded, err := DecodeCommand(data)
	require.NoError(t, err)
	assert.Equal(t, CommandCreateTicket, decoded.Kind)
	require.NotNil(t, decoded.CreateTicket)
	assert.Equal(t, owner, decoded.CreateTicket.Ticket.OwnerProfileId)
	assert.Equal(t, "QuickMatch", decoded.CreateTicket.Ticket.GameMode)
}

func TestCommandResetMatchmakingHasNoPayload(t *testing.T) {
	cmd := Command{Kind: CommandResetMatchmaking}
	data, err := EncodeCommand(cmd)
	require.NoError(t, err)

	decoded, err := DecodeCommand(data)
	require.NoError(t, err)
	assert.Equal(t, CommandResetMatchmaking, decoded.Kind)
}

func TestCommandValidateRejectsMismatchedPayload(t *testing.T) {
	cmd := Command{
		Kind:          CommandActivateSession,
		DeleteTicket:  &DeleteTicketPayload{Owner: 1, Canceller: 2},
	}
	err := cmd.Validate()
	assert.Error(t, err)
}

func TestCommandValidateRejectsMissingPayload(t *testing.T) {
	cmd := Command{Kind: CommandActivateSession}
	err := cmd.Validate()
	assert.Error(t, err)
}

func TestNotificationEncodeContainsKind(t *testing.T) {
	n := NewMatchmakingServersFull("QuickMatch", 1, 5)
	data, err := EncodeNotification(n)
	require.NoError(t, err)
	assert.Contains(t, string(data), "MatchmakingServersFull")
	assert.Contains(t, string(data), "positionInQueue")
}
