package ibc

import (
	"context"
	"fmt"

	"github.com/celestiaorg/relaytest/framework/ibc/tagged"
	"github.com/celestiaorg/relaytest/framework/types"
	"golang.org/x/sync/errgroup"
)

// ClientBuilder creates light clients. It is unaware of chain roles.
type ClientBuilder interface {
	// CreateClient creates a client on host that tracks reference.
	CreateClient(ctx context.Context, host, reference types.ChainHandle) (ClientID, error)
}

// ForeignClient is a light client hosted on DstChain that verifies SrcChain.
type ForeignClient[DstChain, SrcChain types.ChainHandle] struct {
	DstChain DstChain
	SrcChain SrcChain
	ID       ClientID
}

// TaggedID returns the client identifier scoped to the hosting chain.
func (c ForeignClient[DstChain, SrcChain]) TaggedID() tagged.DualTagged[DstChain, SrcChain, ClientID] {
	return tagged.NewDual[DstChain, SrcChain](c.ID)
}

func (c ForeignClient[DstChain, SrcChain]) String() string {
	return fmt.Sprintf("%s on %s tracking %s", c.ID, c.DstChain.GetChainID(), c.SrcChain.GetChainID())
}

// CreateForeignClient creates a client on dst that verifies src.
func CreateForeignClient[DstChain, SrcChain types.ChainHandle](
	ctx context.Context,
	builder ClientBuilder,
	dst DstChain,
	src SrcChain,
) (ForeignClient[DstChain, SrcChain], error) {
	id, err := builder.CreateClient(ctx, dst, src)
	if err != nil {
		return ForeignClient[DstChain, SrcChain]{}, err
	}
	if err := id.Validate(); err != nil {
		return ForeignClient[DstChain, SrcChain]{}, fmt.Errorf("client builder returned invalid client id %q: %w", id, err)
	}
	return ForeignClient[DstChain, SrcChain]{DstChain: dst, SrcChain: src, ID: id}, nil
}

// ConnectedChains holds a pair of chains and a foreign client in each direction.
// It is built once per test run and not modified afterwards.
type ConnectedChains[ChainA, ChainB types.ChainHandle] struct {
	HandleA ChainA
	HandleB ChainB
	// ClientBToA is hosted on chain A and verifies chain B.
	ClientBToA ForeignClient[ChainA, ChainB]
	// ClientAToB is hosted on chain B and verifies chain A.
	ClientAToB ForeignClient[ChainB, ChainA]
}

// NewConnectedChains pairs two existing foreign clients.
func NewConnectedChains[ChainA, ChainB types.ChainHandle](
	clientBToA ForeignClient[ChainA, ChainB],
	clientAToB ForeignClient[ChainB, ChainA],
) (ConnectedChains[ChainA, ChainB], error) {
	chainA, chainB := clientBToA.DstChain.GetChainID(), clientBToA.SrcChain.GetChainID()
	if clientAToB.SrcChain.GetChainID() != chainA || clientAToB.DstChain.GetChainID() != chainB {
		return ConnectedChains[ChainA, ChainB]{}, fmt.Errorf(
			"clients do not connect the same chains: %s and %s", clientBToA, clientAToB)
	}

	return ConnectedChains[ChainA, ChainB]{
		HandleA:    clientBToA.DstChain,
		HandleB:    clientAToB.DstChain,
		ClientBToA: clientBToA,
		ClientAToB: clientAToB,
	}, nil
}

// BootstrapConnectedChains creates a foreign client in each direction between
// chainA and chainB. The two clients are created concurrently.
func BootstrapConnectedChains[ChainA, ChainB types.ChainHandle](
	ctx context.Context,
	builder ClientBuilder,
	chainA ChainA,
	chainB ChainB,
) (ConnectedChains[ChainA, ChainB], error) {
	if chainA.GetChainID() == chainB.GetChainID() {
		return ConnectedChains[ChainA, ChainB]{}, fmt.Errorf("cannot connect chain %s to itself", chainA.GetChainID())
	}

	var (
		clientBToA ForeignClient[ChainA, ChainB]
		clientAToB ForeignClient[ChainB, ChainA]
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		clientBToA, err = CreateForeignClient(egCtx, builder, chainA, chainB)
		if err != nil {
			return fmt.Errorf("%w: client on %s: %w", ErrClientBuild, chainA.GetChainID(), err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		clientAToB, err = CreateForeignClient(egCtx, builder, chainB, chainA)
		if err != nil {
			return fmt.Errorf("%w: client on %s: %w", ErrClientBuild, chainB.GetChainID(), err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return ConnectedChains[ChainA, ChainB]{}, err
	}

	return NewConnectedChains(clientBToA, clientAToB)
}
