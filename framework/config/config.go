// Package config holds the harness configuration: how channels are
// bootstrapped, which relayer image drives the handshakes, and the chains it
// talks to.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/celestiaorg/relaytest/framework/types"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
)

const (
	DefaultRelayerImage   = "ghcr.io/informalsystems/hermes"
	DefaultRelayerVersion = "1.8.2"
	DefaultRelayerUIDGID  = "1000:1000"
	DefaultRelayerHomeDir = "/home/hermes"
	DefaultLogLevel       = "info"
)

// DefaultConnectionDelay is the delay period used for every connection the
// harness bootstraps. Hermes defaults to zero as well.
func DefaultConnectionDelay() time.Duration {
	return 0
}

// Config is the root of the harness configuration file.
type Config struct {
	Bootstrap BootstrapConfig     `toml:"bootstrap"`
	Relayer   RelayerConfig       `toml:"relayer"`
	Chains    []types.ChainConfig `toml:"chains"`
}

// BootstrapConfig names the ports a test scenario opens a channel between.
type BootstrapConfig struct {
	PortA string `toml:"port_a"`
	PortB string `toml:"port_b"`
}

// RelayerConfig selects the relayer container.
type RelayerConfig struct {
	Image    string `toml:"image"`
	Version  string `toml:"version"`
	UIDGID   string `toml:"uid_gid"`
	HomeDir  string `toml:"home_dir"`
	LogLevel string `toml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Bootstrap: BootstrapConfig{
			PortA: transfertypes.PortID,
			PortB: transfertypes.PortID,
		},
		Relayer: RelayerConfig{
			Image:    DefaultRelayerImage,
			Version:  DefaultRelayerVersion,
			UIDGID:   DefaultRelayerUIDGID,
			HomeDir:  DefaultRelayerHomeDir,
			LogLevel: DefaultLogLevel,
		},
	}
}

// Load reads a TOML file on top of Default.
func Load(path string) (Config, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := Parse(bz)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of Default and validates the result.
func Parse(bz []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(bz), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the harness cannot run with.
func (c Config) Validate() error {
	if err := host.PortIdentifierValidator(c.Bootstrap.PortA); err != nil {
		return fmt.Errorf("invalid port_a: %w", err)
	}
	if err := host.PortIdentifierValidator(c.Bootstrap.PortB); err != nil {
		return fmt.Errorf("invalid port_b: %w", err)
	}
	if c.Relayer.Image == "" || c.Relayer.Version == "" {
		return fmt.Errorf("relayer image and version must be set")
	}

	seen := make(map[string]struct{}, len(c.Chains))
	for _, chain := range c.Chains {
		if err := chain.Validate(); err != nil {
			return err
		}
		if _, ok := seen[chain.ChainID]; ok {
			return fmt.Errorf("duplicate chain id %s", chain.ChainID)
		}
		seen[chain.ChainID] = struct{}{}
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}
