package ibc

import (
	"context"
	"sync"
	"time"

	"github.com/celestiaorg/relaytest/framework/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	connectiontypes "github.com/cosmos/ibc-go/v8/modules/core/03-connection/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"github.com/cosmos/ibc-go/v8/modules/core/exported"
)

// chainA and chainB are distinct handle types so they act as distinct roles.
type chainA struct{ id string }

func (c chainA) GetChainID() string { return c.id }

type chainB struct{ id string }

func (c chainB) GetChainID() string { return c.id }

var (
	handleA = chainA{id: "chain-a"}
	handleB = chainB{id: "chain-b"}
)

type channelCall struct {
	a, b            ChannelEnd
	order           Order
	versionOverride string
}

// stubHandshaker hands out identifiers from counters the way ibc-go does and
// records every call it receives.
type stubHandshaker struct {
	mu sync.Mutex

	connectionErr error
	channelErr    error
	omitA, omitB  bool
	badConnection bool

	nextConnection uint64
	nextChannel    uint64

	calls        []string
	delays       []time.Duration
	connections  [][2]ConnectionEnd
	channelCalls []channelCall
}

var _ Handshaker = (*stubHandshaker)(nil)

func (s *stubHandshaker) BuildConnection(_ context.Context, a, b ConnectionEnd, delayPeriod time.Duration) (ConnectionID, ConnectionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, "connection")
	s.delays = append(s.delays, delayPeriod)
	s.connections = append(s.connections, [2]ConnectionEnd{a, b})
	if s.connectionErr != nil {
		return "", "", s.connectionErr
	}
	if s.badConnection {
		return "conn", "", nil
	}

	idA := ConnectionID(connectiontypes.FormatConnectionIdentifier(s.nextConnection))
	idB := ConnectionID(connectiontypes.FormatConnectionIdentifier(s.nextConnection + 1))
	s.nextConnection += 2
	return idA, idB, nil
}

func (s *stubHandshaker) BuildChannel(_ context.Context, a, b ChannelEnd, order Order, versionOverride string) (ChannelHandshake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, "channel")
	s.channelCalls = append(s.channelCalls, channelCall{a: a, b: b, order: order, versionOverride: versionOverride})
	if s.channelErr != nil {
		return ChannelHandshake{}, s.channelErr
	}

	handshake := ChannelHandshake{
		ChannelIDA: ChannelID(channeltypes.FormatChannelIdentifier(s.nextChannel)),
		ChannelIDB: ChannelID(channeltypes.FormatChannelIdentifier(s.nextChannel + 1)),
		Version:    "ics20-1",
	}
	s.nextChannel += 2
	if s.omitA {
		handshake.ChannelIDA = ""
	}
	if s.omitB {
		handshake.ChannelIDB = ""
	}
	return handshake, nil
}

func (s *stubHandshaker) recordedCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// stubClientBuilder creates tendermint client identifiers per host chain.
type stubClientBuilder struct {
	mu     sync.Mutex
	next   map[string]uint64
	errFor map[string]error
}

func (s *stubClientBuilder) CreateClient(_ context.Context, host, _ types.ChainHandle) (ClientID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errFor[host.GetChainID()]; err != nil {
		return "", err
	}
	if s.next == nil {
		s.next = make(map[string]uint64)
	}
	seq := s.next[host.GetChainID()]
	s.next[host.GetChainID()]++
	return ClientID(clienttypes.FormatClientIdentifier(exported.Tendermint, seq)), nil
}

func testForeignClients() (ForeignClient[chainA, chainB], ForeignClient[chainB, chainA]) {
	return ForeignClient[chainA, chainB]{DstChain: handleA, SrcChain: handleB, ID: "07-tendermint-0"},
		ForeignClient[chainB, chainA]{DstChain: handleB, SrcChain: handleA, ID: "07-tendermint-0"}
}

func testConnectedChains() ConnectedChains[chainA, chainB] {
	clientBToA, clientAToB := testForeignClients()
	return ConnectedChains[chainA, chainB]{
		HandleA:    handleA,
		HandleB:    handleB,
		ClientBToA: clientBToA,
		ClientAToB: clientAToB,
	}
}
