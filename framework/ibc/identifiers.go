package ibc

import (
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
)

// Order is the packet ordering of a channel.
type Order = channeltypes.Order

// ClientID identifies a light client on the chain hosting it.
type ClientID string

// ConnectionID identifies a connection end on one chain.
type ConnectionID string

// PortID identifies an application port on one chain.
type PortID string

// ChannelID identifies a channel end on one chain. The empty ChannelID means
// no identifier has been assigned yet.
type ChannelID string

func (id ClientID) String() string     { return string(id) }
func (id ConnectionID) String() string { return string(id) }
func (id PortID) String() string       { return string(id) }
func (id ChannelID) String() string    { return string(id) }

// Validate checks id against the ICS-24 client identifier rules.
func (id ClientID) Validate() error {
	return host.ClientIdentifierValidator(string(id))
}

// Validate checks id against the ICS-24 connection identifier rules.
func (id ConnectionID) Validate() error {
	return host.ConnectionIdentifierValidator(string(id))
}

// Validate checks id against the ICS-24 port identifier rules.
func (id PortID) Validate() error {
	return host.PortIdentifierValidator(string(id))
}

// Validate checks id against the ICS-24 channel identifier rules.
func (id ChannelID) Validate() error {
	return host.ChannelIdentifierValidator(string(id))
}

// Side names one end of a connection or channel.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)
