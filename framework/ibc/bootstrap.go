package ibc

import (
	"context"
	"fmt"

	"github.com/celestiaorg/relaytest/framework/config"
	"github.com/celestiaorg/relaytest/framework/ibc/tagged"
	"github.com/celestiaorg/relaytest/framework/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"go.uber.org/zap"
)

// Handshaker drives both the connection and the channel handshake.
type Handshaker interface {
	ConnectionBuilder
	ChannelBuilder
}

// ConnectedChannel is an open channel between ChainA and ChainB together with
// its identifiers, each scoped to the chain it belongs to.
type ConnectedChannel[ChainA, ChainB types.ChainHandle] struct {
	Channel Channel[ChainA, ChainB]

	ChannelIDA tagged.DualTagged[ChainA, ChainB, ChannelID]
	ChannelIDB tagged.DualTagged[ChainB, ChainA, ChannelID]
	PortA      tagged.DualTagged[ChainA, ChainB, PortID]
	PortB      tagged.DualTagged[ChainB, ChainA, PortID]
}

// BootstrapOption configures BootstrapChannel.
type BootstrapOption func(*bootstrapOptions)

type bootstrapOptions struct {
	logger *zap.Logger
}

// WithLogger sets the logger bootstrap progress is reported to.
func WithLogger(logger *zap.Logger) BootstrapOption {
	return func(o *bootstrapOptions) {
		o.logger = logger
	}
}

// BootstrapChannelWithChains opens a new connection and an unordered channel
// between portA on chain A and portB on chain B of chains.
func BootstrapChannelWithChains[ChainA, ChainB types.ChainHandle](
	ctx context.Context,
	handshaker Handshaker,
	chains ConnectedChains[ChainA, ChainB],
	portA, portB PortID,
	opts ...BootstrapOption,
) (ConnectedChannel[ChainA, ChainB], error) {
	return BootstrapChannel(
		ctx,
		handshaker,
		chains.ClientBToA,
		chains.ClientAToB,
		tagged.NewDual[ChainA, ChainB](portA),
		tagged.NewDual[ChainB, ChainA](portB),
		opts...,
	)
}

// BootstrapChannel opens a new connection between the chains of clientBToA and
// clientAToB and an unordered channel on top of it.
//
// The connection handshake completes before the channel handshake starts,
// and nothing is retried or torn down on failure. If the channel handshake
// fails the open connection is returned in a *ChannelBuildError.
func BootstrapChannel[ChainA, ChainB types.ChainHandle](
	ctx context.Context,
	handshaker Handshaker,
	clientBToA ForeignClient[ChainA, ChainB],
	clientAToB ForeignClient[ChainB, ChainA],
	portA tagged.DualTagged[ChainA, ChainB, PortID],
	portB tagged.DualTagged[ChainB, ChainA, PortID],
	opts ...BootstrapOption,
) (ConnectedChannel[ChainA, ChainB], error) {
	o := bootstrapOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With(
		zap.String("chain_a", clientBToA.DstChain.GetChainID()),
		zap.String("chain_b", clientAToB.DstChain.GetChainID()),
	)

	logger.Debug("creating connection",
		zap.Stringer("client_b_to_a", clientBToA.ID),
		zap.Stringer("client_a_to_b", clientAToB.ID),
	)
	connection, err := NewConnection(ctx, handshaker, clientBToA, clientAToB, config.DefaultConnectionDelay())
	if err != nil {
		return ConnectedChannel[ChainA, ChainB]{}, fmt.Errorf("%w: %w", ErrConnectionBuild, err)
	}

	logger.Debug("creating channel",
		zap.Stringer("connection_a", connection.ASide.ConnectionID),
		zap.Stringer("connection_b", connection.BSide.ConnectionID),
		zap.Stringer("port_a", portA.Value()),
		zap.Stringer("port_b", portB.Value()),
	)
	channel, err := NewChannel(ctx, handshaker, connection, channeltypes.UNORDERED, portA.Value(), portB.Value(), "")
	if err != nil {
		return ConnectedChannel[ChainA, ChainB]{}, &ChannelBuildError[ChainA, ChainB]{Connection: connection, Err: err}
	}

	channelIDA, ok := channel.TaggedChannelIDA()
	if !ok {
		return ConnectedChannel[ChainA, ChainB]{}, &MissingChannelIDError{Side: SideA, ChainID: channel.ASide.Chain.GetChainID()}
	}
	channelIDB, ok := channel.TaggedChannelIDB()
	if !ok {
		return ConnectedChannel[ChainA, ChainB]{}, &MissingChannelIDError{Side: SideB, ChainID: channel.BSide.Chain.GetChainID()}
	}

	logger.Debug("channel open",
		zap.Stringer("channel_a", channelIDA.Value()),
		zap.Stringer("channel_b", channelIDB.Value()),
		zap.String("version", channel.Version),
	)

	return ConnectedChannel[ChainA, ChainB]{
		Channel:    channel,
		ChannelIDA: channelIDA,
		ChannelIDB: channelIDB,
		PortA:      portA.Cloned(),
		PortB:      portB.Cloned(),
	}, nil
}
