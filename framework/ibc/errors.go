package ibc

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"github.com/celestiaorg/relaytest/framework/types"
)

// ModuleName is the codespace of the errors raised by channel bootstrapping.
const ModuleName = "relaytest"

var (
	ErrClientBuild      = errorsmod.Register(ModuleName, 2, "foreign client creation failed")
	ErrConnectionBuild  = errorsmod.Register(ModuleName, 3, "connection handshake failed")
	ErrChannelBuild     = errorsmod.Register(ModuleName, 4, "channel handshake failed")
	ErrMissingChannelID = errorsmod.Register(ModuleName, 5, "expected channel id")
)

// MissingChannelIDError is returned when a channel handshake reported success
// without assigning a channel identifier to one of its sides.
type MissingChannelIDError struct {
	Side    Side
	ChainID string
}

func (e *MissingChannelIDError) Error() string {
	return fmt.Sprintf("%s on side %s (chain %s)", ErrMissingChannelID.Error(), e.Side, e.ChainID)
}

func (e *MissingChannelIDError) Unwrap() error {
	return ErrMissingChannelID
}

// ChannelBuildError is returned when the channel handshake fails after the
// connection handshake succeeded. The connection is left open on both chains
// and is handed back so the caller can retry the channel on top of it.
type ChannelBuildError[ChainA, ChainB types.ChainHandle] struct {
	Connection Connection[ChainA, ChainB]
	Err        error
}

func (e *ChannelBuildError[ChainA, ChainB]) Error() string {
	return fmt.Sprintf("%s over %s/%s: %s",
		ErrChannelBuild.Error(), e.Connection.ASide.ConnectionID, e.Connection.BSide.ConnectionID, e.Err)
}

func (e *ChannelBuildError[ChainA, ChainB]) Unwrap() []error {
	return []error{ErrChannelBuild, e.Err}
}
