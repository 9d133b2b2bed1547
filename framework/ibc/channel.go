package ibc

import (
	"context"
	"fmt"

	"github.com/celestiaorg/relaytest/framework/ibc/tagged"
	"github.com/celestiaorg/relaytest/framework/types"
)

// ChannelEnd is one end of a channel as seen by a ChannelBuilder.
type ChannelEnd struct {
	Chain        types.ChainHandle
	ClientID     ClientID
	ConnectionID ConnectionID
	PortID       PortID
}

// ChannelHandshake is what a ChannelBuilder reports back. A side whose
// channel identifier is empty has not been assigned one.
type ChannelHandshake struct {
	ChannelIDA ChannelID
	ChannelIDB ChannelID
	Version    string
}

// ChannelBuilder performs the channel handshake. It is unaware of chain roles.
//
// On success both sides of the returned handshake are expected to carry a
// channel identifier. An empty versionOverride lets the builder negotiate the
// application's default version.
type ChannelBuilder interface {
	BuildChannel(ctx context.Context, a, b ChannelEnd, order Order, versionOverride string) (ChannelHandshake, error)
}

// ChannelSide is one end of a channel.
type ChannelSide[Chain types.ChainHandle] struct {
	Chain        Chain
	ClientID     ClientID
	ConnectionID ConnectionID
	PortID       PortID

	channelID ChannelID
}

// ChannelID returns the channel identifier of this side, if one was assigned.
func (s ChannelSide[Chain]) ChannelID() (ChannelID, bool) {
	return s.channelID, s.channelID != ""
}

// Channel is a channel between ChainA and ChainB on top of a connection.
type Channel[ChainA, ChainB types.ChainHandle] struct {
	Connection Connection[ChainA, ChainB]
	Ordering   Order
	Version    string
	ASide      ChannelSide[ChainA]
	BSide      ChannelSide[ChainB]
}

// TaggedChannelIDA returns the channel identifier on chain A, if assigned.
func (c Channel[ChainA, ChainB]) TaggedChannelIDA() (tagged.DualTagged[ChainA, ChainB, ChannelID], bool) {
	id, ok := c.ASide.ChannelID()
	return tagged.NewDual[ChainA, ChainB](id), ok
}

// TaggedChannelIDB returns the channel identifier on chain B, if assigned.
func (c Channel[ChainA, ChainB]) TaggedChannelIDB() (tagged.DualTagged[ChainB, ChainA, ChannelID], bool) {
	id, ok := c.BSide.ChannelID()
	return tagged.NewDual[ChainB, ChainA](id), ok
}

// NewChannel runs the channel handshake over connection between portA on
// chain A and portB on chain B.
func NewChannel[ChainA, ChainB types.ChainHandle](
	ctx context.Context,
	builder ChannelBuilder,
	connection Connection[ChainA, ChainB],
	order Order,
	portA, portB PortID,
	versionOverride string,
) (Channel[ChainA, ChainB], error) {
	if err := portA.Validate(); err != nil {
		return Channel[ChainA, ChainB]{}, fmt.Errorf("invalid port for side a: %w", err)
	}
	if err := portB.Validate(); err != nil {
		return Channel[ChainA, ChainB]{}, fmt.Errorf("invalid port for side b: %w", err)
	}

	a := ChannelEnd{
		Chain:        connection.ASide.Chain,
		ClientID:     connection.ASide.ClientID,
		ConnectionID: connection.ASide.ConnectionID,
		PortID:       portA,
	}
	b := ChannelEnd{
		Chain:        connection.BSide.Chain,
		ClientID:     connection.BSide.ClientID,
		ConnectionID: connection.BSide.ConnectionID,
		PortID:       portB,
	}

	handshake, err := builder.BuildChannel(ctx, a, b, order, versionOverride)
	if err != nil {
		return Channel[ChainA, ChainB]{}, err
	}
	if err := validateAssigned(SideA, handshake.ChannelIDA); err != nil {
		return Channel[ChainA, ChainB]{}, err
	}
	if err := validateAssigned(SideB, handshake.ChannelIDB); err != nil {
		return Channel[ChainA, ChainB]{}, err
	}

	return Channel[ChainA, ChainB]{
		Connection: connection,
		Ordering:   order,
		Version:    handshake.Version,
		ASide: ChannelSide[ChainA]{
			Chain:        connection.ASide.Chain,
			ClientID:     connection.ASide.ClientID,
			ConnectionID: connection.ASide.ConnectionID,
			PortID:       portA,
			channelID:    handshake.ChannelIDA,
		},
		BSide: ChannelSide[ChainB]{
			Chain:        connection.BSide.Chain,
			ClientID:     connection.BSide.ClientID,
			ConnectionID: connection.BSide.ConnectionID,
			PortID:       portB,
			channelID:    handshake.ChannelIDB,
		},
	}, nil
}

// validateAssigned checks id if the builder assigned one.
func validateAssigned(side Side, id ChannelID) error {
	if id == "" {
		return nil
	}
	if err := id.Validate(); err != nil {
		return fmt.Errorf("channel builder returned invalid channel id %q for side %s: %w", id, side, err)
	}
	return nil
}
