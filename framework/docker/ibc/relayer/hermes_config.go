package relayer

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/celestiaorg/relaytest/framework/types"
)

const (
	hermesTelemetryPort = 3001
	hermesRestPort      = 3000
)

// HermesConfig represents the full Hermes configuration
type HermesConfig struct {
	Global    GlobalConfig    `toml:"global"`
	Mode      ModeConfig      `toml:"mode"`
	Rest      RestConfig      `toml:"rest"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Chains    []ChainConfig   `toml:"chains"`
}

// GlobalConfig contains global Hermes settings
type GlobalConfig struct {
	LogLevel string `toml:"log_level"`
}

// ModeConfig defines the relayer operation modes
type ModeConfig struct {
	Clients     ClientsConfig     `toml:"clients"`
	Connections ConnectionsConfig `toml:"connections"`
	Channels    ChannelsConfig    `toml:"channels"`
	Packets     PacketsConfig     `toml:"packets"`
}

type ClientsConfig struct {
	Enabled      bool `toml:"enabled"`
	Refresh      bool `toml:"refresh"`
	Misbehaviour bool `toml:"misbehaviour"`
}

type ConnectionsConfig struct {
	Enabled bool `toml:"enabled"`
}

type ChannelsConfig struct {
	Enabled bool `toml:"enabled"`
}

type PacketsConfig struct {
	Enabled      bool `toml:"enabled"`
	ClearOnStart bool `toml:"clear_on_start"`
}

// RestConfig for REST API
type RestConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

// TelemetryConfig for telemetry
type TelemetryConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

// ChainConfig represents configuration for a single chain
type ChainConfig struct {
	ID             string            `toml:"id"`
	Type           string            `toml:"type"`
	RPCAddr        string            `toml:"rpc_addr"`
	GRPCAddr       string            `toml:"grpc_addr"`
	EventSource    EventSourceConfig `toml:"event_source"`
	RPCTimeout     string            `toml:"rpc_timeout"`
	TrustedNode    bool              `toml:"trusted_node"`
	AccountPrefix  string            `toml:"account_prefix"`
	KeyName        string            `toml:"key_name"`
	KeyStoreType   string            `toml:"key_store_type"`
	StorePrefix    string            `toml:"store_prefix"`
	DefaultGas     int               `toml:"default_gas"`
	MaxGas         int               `toml:"max_gas"`
	GasPrice       GasPrice          `toml:"gas_price"`
	GasMultiplier  float64           `toml:"gas_multiplier"`
	MaxMsgNum      int               `toml:"max_msg_num"`
	MaxTxSize      int               `toml:"max_tx_size"`
	ClockDrift     string            `toml:"clock_drift"`
	MaxBlockTime   string            `toml:"max_block_time"`
	TrustingPeriod string            `toml:"trusting_period"`
	TrustThreshold TrustThreshold    `toml:"trust_threshold"`
	AddressType    AddressType       `toml:"address_type"`
	MemoPrefix     string            `toml:"memo_prefix"`
}

type EventSourceConfig struct {
	Mode     string `toml:"mode"`
	Interval string `toml:"interval"`
}

type GasPrice struct {
	Price float64 `toml:"price"`
	Denom string  `toml:"denom"`
}

// TrustThreshold is written as strings, which is what Hermes 1.8 expects.
type TrustThreshold struct {
	Numerator   string `toml:"numerator"`
	Denominator string `toml:"denominator"`
}

type AddressType struct {
	Derivation string `toml:"derivation"`
}

// relayerKeyName is the name of the key Hermes signs with on chainID.
func relayerKeyName(chainID string) string {
	return fmt.Sprintf("relayer-%s", chainID)
}

// NewHermesConfig creates a new Hermes configuration from chain configs
func NewHermesConfig(logLevel string, chains []types.ChainConfig) (*HermesConfig, error) {
	hermesChains := make([]ChainConfig, len(chains))

	for i, chainCfg := range chains {
		gasPrice, err := chainCfg.GasPrice()
		if err != nil {
			return nil, err
		}
		price, err := gasPrice.Amount.Float64()
		if err != nil {
			return nil, fmt.Errorf("failed to convert gas price for chain %s: %w", chainCfg.ChainID, err)
		}

		hermesChains[i] = ChainConfig{
			ID:       chainCfg.ChainID,
			Type:     "CosmosSdk",
			RPCAddr:  chainCfg.RPCAddress,
			GRPCAddr: chainCfg.GRPCAddress,
			EventSource: EventSourceConfig{
				Mode:     "pull",
				Interval: "1s",
			},
			RPCTimeout:    "10s",
			TrustedNode:   true,
			AccountPrefix: chainCfg.Bech32Prefix,
			KeyName:       relayerKeyName(chainCfg.ChainID),
			KeyStoreType:  "Test",
			StorePrefix:   "ibc",
			DefaultGas:    100000,
			MaxGas:        400000,
			GasPrice: GasPrice{
				Price: price,
				Denom: gasPrice.Denom,
			},
			GasMultiplier:  1.1,
			MaxMsgNum:      30,
			MaxTxSize:      2097152,
			ClockDrift:     "5s",
			MaxBlockTime:   "30s",
			TrustingPeriod: "14days",
			TrustThreshold: TrustThreshold{
				Numerator:   "1",
				Denominator: "3",
			},
			AddressType: AddressType{
				Derivation: "cosmos",
			},
		}
	}

	return &HermesConfig{
		Global: GlobalConfig{
			LogLevel: logLevel,
		},
		Mode: ModeConfig{
			Clients: ClientsConfig{
				Enabled:      true,
				Refresh:      true,
				Misbehaviour: true,
			},
			Connections: ConnectionsConfig{
				Enabled: true,
			},
			Channels: ChannelsConfig{
				Enabled: true,
			},
			Packets: PacketsConfig{
				Enabled:      true,
				ClearOnStart: true,
			},
		},
		Rest: RestConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    hermesRestPort,
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    hermesTelemetryPort,
		},
		Chains: hermesChains,
	}, nil
}

// ToTOML converts the Hermes config to TOML
func (c *HermesConfig) ToTOML() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode hermes config: %w", err)
	}
	return buf.Bytes(), nil
}
