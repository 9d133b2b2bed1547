package ibc

import (
	"context"
	"fmt"
	"time"

	"github.com/celestiaorg/relaytest/framework/ibc/tagged"
	"github.com/celestiaorg/relaytest/framework/types"
)

// ConnectionEnd is one end of a connection as seen by a ConnectionBuilder.
type ConnectionEnd struct {
	Chain    types.ChainHandle
	ClientID ClientID
}

// ConnectionBuilder performs the connection handshake. It is unaware of chain roles.
//
// BuildConnection either returns the identifiers of a fully opened connection
// on both ends or an error, never a half-open connection.
type ConnectionBuilder interface {
	BuildConnection(ctx context.Context, a, b ConnectionEnd, delayPeriod time.Duration) (ConnectionID, ConnectionID, error)
}

// ConnectionSide is one end of an open connection.
type ConnectionSide[Chain types.ChainHandle] struct {
	Chain        Chain
	ClientID     ClientID
	ConnectionID ConnectionID
}

// Connection is an open connection between ChainA and ChainB.
type Connection[ChainA, ChainB types.ChainHandle] struct {
	DelayPeriod time.Duration
	ASide       ConnectionSide[ChainA]
	BSide       ConnectionSide[ChainB]
}

// ConnectionIDA returns the connection identifier on chain A.
func (c Connection[ChainA, ChainB]) ConnectionIDA() tagged.DualTagged[ChainA, ChainB, ConnectionID] {
	return tagged.NewDual[ChainA, ChainB](c.ASide.ConnectionID)
}

// ConnectionIDB returns the connection identifier on chain B.
func (c Connection[ChainA, ChainB]) ConnectionIDB() tagged.DualTagged[ChainB, ChainA, ConnectionID] {
	return tagged.NewDual[ChainB, ChainA](c.BSide.ConnectionID)
}

// NewConnection opens a connection between the chains hosting clientBToA and clientAToB.
func NewConnection[ChainA, ChainB types.ChainHandle](
	ctx context.Context,
	builder ConnectionBuilder,
	clientBToA ForeignClient[ChainA, ChainB],
	clientAToB ForeignClient[ChainB, ChainA],
	delayPeriod time.Duration,
) (Connection[ChainA, ChainB], error) {
	a := ConnectionEnd{Chain: clientBToA.DstChain, ClientID: clientBToA.ID}
	b := ConnectionEnd{Chain: clientAToB.DstChain, ClientID: clientAToB.ID}

	connectionIDA, connectionIDB, err := builder.BuildConnection(ctx, a, b, delayPeriod)
	if err != nil {
		return Connection[ChainA, ChainB]{}, err
	}
	if err := connectionIDA.Validate(); err != nil {
		return Connection[ChainA, ChainB]{}, fmt.Errorf("connection builder returned invalid connection id %q for side a: %w", connectionIDA, err)
	}
	if err := connectionIDB.Validate(); err != nil {
		return Connection[ChainA, ChainB]{}, fmt.Errorf("connection builder returned invalid connection id %q for side b: %w", connectionIDB, err)
	}

	return Connection[ChainA, ChainB]{
		DelayPeriod: delayPeriod,
		ASide: ConnectionSide[ChainA]{
			Chain:        clientBToA.DstChain,
			ClientID:     clientBToA.ID,
			ConnectionID: connectionIDA,
		},
		BSide: ConnectionSide[ChainB]{
			Chain:        clientAToB.DstChain,
			ClientID:     clientAToB.ID,
			ConnectionID: connectionIDB,
		},
	}, nil
}
