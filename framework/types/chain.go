package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	cmttypes "github.com/cometbft/cometbft/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ChainHandle identifies one of the chains taking part in a test.
// Concrete handle types double as chain roles: a value typed for one handle
// type cannot be used where another handle type is expected.
type ChainHandle interface {
	// GetChainID returns the chain id of the chain.
	GetChainID() string
}

// ChainConfig describes a chain the way a relayer needs to reach it.
type ChainConfig struct {
	ChainID      string `toml:"chain_id"`
	RPCAddress   string `toml:"rpc_address"`
	GRPCAddress  string `toml:"grpc_address"`
	Bech32Prefix string `toml:"bech32_prefix"`
	Denom        string `toml:"denom"`
	// GasPrices is a single decimal coin, e.g. "0.025utia".
	GasPrices string `toml:"gas_prices"`
	// RelayerMnemonic funds the relayer key on this chain. May be empty if the key is added separately.
	RelayerMnemonic string `toml:"relayer_mnemonic"`
}

// GetChainID implements ChainHandle.
func (c ChainConfig) GetChainID() string {
	return c.ChainID
}

// GasPrice parses GasPrices. An empty value yields a zero price in Denom.
func (c ChainConfig) GasPrice() (sdk.DecCoin, error) {
	if c.GasPrices == "" {
		if c.Denom == "" {
			return sdk.DecCoin{}, fmt.Errorf("chain %s: no gas prices and no denom", c.ChainID)
		}
		return sdk.NewDecCoinFromDec(c.Denom, sdkmath.LegacyZeroDec()), nil
	}

	price, err := sdk.ParseDecCoin(c.GasPrices)
	if err != nil {
		return sdk.DecCoin{}, fmt.Errorf("failed to parse gas prices for chain %s: %w", c.ChainID, err)
	}
	if c.Denom != "" && price.Denom != c.Denom {
		return sdk.DecCoin{}, fmt.Errorf("gas price denom %q does not match chain denom %q", price.Denom, c.Denom)
	}
	return price, nil
}

// Validate checks the fields the relayer cannot work without.
func (c ChainConfig) Validate() error {
	if c.ChainID == "" {
		return fmt.Errorf("chain id must not be empty")
	}
	if len(c.ChainID) > cmttypes.MaxChainIDLen {
		return fmt.Errorf("chain id %q is longer than %d characters", c.ChainID, cmttypes.MaxChainIDLen)
	}
	if c.RPCAddress == "" {
		return fmt.Errorf("chain %s: rpc address must not be empty", c.ChainID)
	}
	if c.Denom == "" {
		return fmt.Errorf("chain %s: denom must not be empty", c.ChainID)
	}
	if _, err := c.GasPrice(); err != nil {
		return err
	}
	return nil
}
