package ibc

import (
	"context"
	"fmt"
	"time"

	coreibc "github.com/celestiaorg/relaytest/framework/ibc"
	"github.com/celestiaorg/relaytest/framework/types"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
)

var (
	_ coreibc.ClientBuilder = (*Connector)(nil)
	_ coreibc.Handshaker    = (*Connector)(nil)
)

// Connector drives a Relayer on behalf of the typed bootstrap in framework/ibc.
type Connector struct {
	relayer       Relayer
	logger        *zap.Logger
	checkTimeout  time.Duration
	checkEndpoint bool
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithConnectorLogger sets the logger used by the Connector.
func WithConnectorLogger(logger *zap.Logger) ConnectorOption {
	return func(c *Connector) {
		c.logger = logger
	}
}

// WithEndpointCheck makes AddChains wait until every chain's gRPC endpoint is ready.
func WithEndpointCheck(timeout time.Duration) ConnectorOption {
	return func(c *Connector) {
		c.checkEndpoint = true
		c.checkTimeout = timeout
	}
}

// NewConnector creates a Connector that performs handshakes through relayer.
func NewConnector(relayer Relayer, opts ...ConnectorOption) *Connector {
	c := &Connector{
		relayer: relayer,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddChains configures the relayer for chains and imports their relayer keys.
func (c *Connector) AddChains(ctx context.Context, chains ...types.ChainConfig) error {
	if c.checkEndpoint {
		for _, chain := range chains {
			if chain.GRPCAddress == "" {
				continue
			}
			if err := waitForGRPC(ctx, chain.GRPCAddress, c.checkTimeout); err != nil {
				return fmt.Errorf("chain %s: %w", chain.ChainID, err)
			}
		}
	}

	if err := c.relayer.Init(ctx, chains...); err != nil {
		return fmt.Errorf("failed to add chains to relayer: %w", err)
	}

	for _, chain := range chains {
		if chain.RelayerMnemonic == "" {
			continue
		}
		keyName := fmt.Sprintf("relayer-%s", chain.ChainID)
		if err := c.relayer.AddKey(ctx, chain.ChainID, keyName, chain.RelayerMnemonic); err != nil {
			return fmt.Errorf("failed to add relayer key for chain %s: %w", chain.ChainID, err)
		}
	}
	return nil
}

// CreateClient implements coreibc.ClientBuilder.
func (c *Connector) CreateClient(ctx context.Context, host, reference types.ChainHandle) (coreibc.ClientID, error) {
	out, err := c.relayer.CreateClient(ctx, host.GetChainID(), reference.GetChainID())
	if err != nil {
		return "", err
	}
	c.logger.Info("client created",
		zap.String("host", host.GetChainID()),
		zap.String("reference", reference.GetChainID()),
		zap.String("client_id", out.ClientID),
	)
	return coreibc.ClientID(out.ClientID), nil
}

// BuildConnection implements coreibc.ConnectionBuilder.
func (c *Connector) BuildConnection(ctx context.Context, a, b coreibc.ConnectionEnd, delayPeriod time.Duration) (coreibc.ConnectionID, coreibc.ConnectionID, error) {
	out, err := c.relayer.CreateConnection(ctx, CreateConnectionOptions{
		ChainA:      a.Chain.GetChainID(),
		ClientA:     a.ClientID.String(),
		ClientB:     b.ClientID.String(),
		DelayPeriod: delayPeriod,
	})
	if err != nil {
		return "", "", err
	}

	if out.ASide.ClientID != a.ClientID.String() || out.BSide.ClientID != b.ClientID.String() {
		return "", "", fmt.Errorf("relayer built connection on clients %s/%s, requested %s/%s",
			out.ASide.ClientID, out.BSide.ClientID, a.ClientID, b.ClientID)
	}

	c.logger.Info("connection open",
		zap.String("connection_a", out.ASide.ConnectionID),
		zap.String("connection_b", out.BSide.ConnectionID),
	)
	return coreibc.ConnectionID(out.ASide.ConnectionID), coreibc.ConnectionID(out.BSide.ConnectionID), nil
}

// BuildChannel implements coreibc.ChannelBuilder.
func (c *Connector) BuildChannel(ctx context.Context, a, b coreibc.ChannelEnd, order coreibc.Order, versionOverride string) (coreibc.ChannelHandshake, error) {
	relayerOrder, ok := channelOrder(order)
	if !ok {
		return coreibc.ChannelHandshake{}, fmt.Errorf("unsupported channel order %s", order)
	}

	out, err := c.relayer.CreateChannel(ctx, CreateChannelOptions{
		ChainA:      a.Chain.GetChainID(),
		ConnectionA: a.ConnectionID.String(),
		PortA:       a.PortID.String(),
		PortB:       b.PortID.String(),
		Order:       relayerOrder,
		Version:     versionOverride,
	})
	if err != nil {
		return coreibc.ChannelHandshake{}, err
	}

	if out.BSide.ConnectionID != "" && out.BSide.ConnectionID != b.ConnectionID.String() {
		return coreibc.ChannelHandshake{}, fmt.Errorf("relayer built channel on connection %s, expected %s", out.BSide.ConnectionID, b.ConnectionID)
	}

	handshake := coreibc.ChannelHandshake{
		ChannelIDA: coreibc.ChannelID(deref(out.ASide.ChannelID)),
		ChannelIDB: coreibc.ChannelID(deref(out.BSide.ChannelID)),
		Version:    deref(out.ASide.Version),
	}
	if handshake.Version == "" {
		handshake.Version = deref(out.BSide.Version)
	}
	return handshake, nil
}

// waitForGRPC blocks until a gRPC connection to addr is ready or timeout elapses.
func waitForGRPC(ctx context.Context, addr string, timeout time.Duration) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to create grpc client for %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn.Connect()
	for {
		state := conn.GetState()
		if state == connectivity.Ready {
			return nil
		}
		if !conn.WaitForStateChange(ctx, state) {
			return fmt.Errorf("grpc endpoint %s not ready (last state %s): %w", addr, state, ctx.Err())
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
