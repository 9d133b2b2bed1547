package ibc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentifierValidation(t *testing.T) {
	require.NoError(t, ClientID("07-tendermint-0").Validate())
	require.NoError(t, ConnectionID("connection-0").Validate())
	require.NoError(t, PortID("transfer").Validate())
	require.NoError(t, ChannelID("channel-0").Validate())

	require.Error(t, ClientID("").Validate())
	require.Error(t, ConnectionID("conn").Validate())
	require.Error(t, PortID("a").Validate())
	require.Error(t, ChannelID("channel/0").Validate())
}

func TestChannelSideID(t *testing.T) {
	var side ChannelSide[chainA]
	_, ok := side.ChannelID()
	require.False(t, ok)

	side.channelID = "channel-4"
	id, ok := side.ChannelID()
	require.True(t, ok)
	require.Equal(t, ChannelID("channel-4"), id)
}
