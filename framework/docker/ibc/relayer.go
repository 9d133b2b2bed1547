package ibc

import (
	"context"
	"time"

	"github.com/celestiaorg/relaytest/framework/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
)

// Relayer interface defines the operations for an IBC relayer.
type Relayer interface {
	// Start starts the relayer.
	Start(ctx context.Context) error

	// Stop stops the relayer.
	Stop(ctx context.Context) error

	// Init writes the relayer configuration for chains.
	Init(ctx context.Context, chains ...types.ChainConfig) error

	// AddKey imports the relayer key used to sign transactions on chainID.
	AddKey(ctx context.Context, chainID, keyName, mnemonic string) error

	// CreateClient creates a client on hostChainID that tracks referenceChainID.
	CreateClient(ctx context.Context, hostChainID, referenceChainID string) (ClientOutput, error)

	// CreateConnection performs the connection handshake between two existing clients.
	CreateConnection(ctx context.Context, opts CreateConnectionOptions) (ConnectionOutput, error)

	// CreateChannel performs the channel handshake on top of an existing connection.
	CreateChannel(ctx context.Context, opts CreateChannelOptions) (ChannelOutput, error)
}

// CreateConnectionOptions defines options for creating an IBC connection.
type CreateConnectionOptions struct {
	ChainA      string
	ClientA     string
	ClientB     string
	DelayPeriod time.Duration
}

// CreateChannelOptions defines options for creating an IBC channel.
type CreateChannelOptions struct {
	ChainA      string
	ConnectionA string
	PortA       string
	PortB       string
	Order       ChannelOrder
	// Version is left to the application to negotiate when empty.
	Version string
}

// ChannelOrder represents the ordering of an IBC channel.
type ChannelOrder string

const (
	OrderOrdered   ChannelOrder = "ordered"
	OrderUnordered ChannelOrder = "unordered"
)

// channelOrder maps an ibc-go channel order to the relayer's flag value.
func channelOrder(order channeltypes.Order) (ChannelOrder, bool) {
	switch order {
	case channeltypes.ORDERED:
		return OrderOrdered, true
	case channeltypes.UNORDERED:
		return OrderUnordered, true
	default:
		return "", false
	}
}
