package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/celestiaorg/relaytest/framework/config"
	"github.com/celestiaorg/relaytest/framework/docker/container"
	"github.com/celestiaorg/relaytest/framework/docker/ibc"
	"github.com/celestiaorg/relaytest/framework/types"
	"github.com/docker/go-connections/nat"
	"go.uber.org/zap"
)

const (
	hermesNodeName      = "hermes"
	hermesConfigRelPath = ".hermes/config.toml"
	hermesMnemonicDir   = ".hermes/mnemonics"

	sequenceMismatch = "account sequence mismatch"
)

var _ ibc.Relayer = (*Hermes)(nil)

// commandRunner runs commands where the hermes binary is installed.
type commandRunner interface {
	Exec(ctx context.Context, cmd []string, opts container.Options) ([]byte, []byte, error)
	WriteFile(ctx context.Context, relPath string, content []byte) error
}

// Hermes implements the IBC relayer interface using Hermes.
type Hermes struct {
	logger   *zap.Logger
	node     *container.Node
	runner   commandRunner
	homeDir  string
	logLevel string

	retryAttempts uint
	retryDelay    time.Duration

	chains []types.ChainConfig
}

// NewHermes creates a Hermes relayer that runs in its own container on networkID.
func NewHermes(logger *zap.Logger, dockerClient types.DockerClient, testName, networkID string, cfg config.RelayerConfig) *Hermes {
	image := container.Image{
		Repository: cfg.Image,
		Version:    cfg.Version,
		UIDGID:     cfg.UIDGID,
	}
	node := container.NewNode(logger, dockerClient, networkID, testName, image, cfg.HomeDir, hermesNodeName)
	node.ExposedPorts[nat.Port(fmt.Sprintf("%d/tcp", hermesTelemetryPort))] = struct{}{}

	h := newHermes(logger, node, cfg)
	h.node = node
	return h
}

func newHermes(logger *zap.Logger, runner commandRunner, cfg config.RelayerConfig) *Hermes {
	return &Hermes{
		logger:        logger,
		runner:        runner,
		homeDir:       cfg.HomeDir,
		logLevel:      cfg.LogLevel,
		retryAttempts: 5,
		retryDelay:    2 * time.Second,
	}
}

// Node returns the container Hermes runs in, or nil if it was not created by NewHermes.
func (h *Hermes) Node() *container.Node {
	return h.node
}

// TelemetryAddress is the address of the Hermes telemetry endpoint on the docker network.
func (h *Hermes) TelemetryAddress() string {
	if h.node == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", h.node.ContainerName(), hermesTelemetryPort)
}

// Start starts the Hermes container.
func (h *Hermes) Start(ctx context.Context) error {
	if h.node == nil {
		return nil
	}
	return h.node.Start(ctx)
}

// Stop stops and removes the Hermes container.
func (h *Hermes) Stop(ctx context.Context) error {
	if h.node == nil {
		return nil
	}
	return h.node.Stop(ctx)
}

// Init adds chains to the Hermes configuration and writes config.toml.
// A chain that is already configured is replaced.
func (h *Hermes) Init(ctx context.Context, chains ...types.ChainConfig) error {
	for _, chain := range chains {
		if err := chain.Validate(); err != nil {
			return fmt.Errorf("invalid chain config: %w", err)
		}
	}

	merged := append([]types.ChainConfig(nil), h.chains...)
	for _, chain := range chains {
		if i := indexOfChain(merged, chain.ChainID); i >= 0 {
			merged[i] = chain
			continue
		}
		merged = append(merged, chain)
	}

	cfg, err := NewHermesConfig(h.logLevel, merged)
	if err != nil {
		return err
	}
	bz, err := cfg.ToTOML()
	if err != nil {
		return err
	}
	if err := h.runner.WriteFile(ctx, hermesConfigRelPath, bz); err != nil {
		return fmt.Errorf("failed to write hermes config: %w", err)
	}

	h.chains = merged
	h.logger.Info("hermes configured", zap.Int("chains", len(merged)))
	return nil
}

// AddKey imports mnemonic as keyName for chainID.
func (h *Hermes) AddKey(ctx context.Context, chainID, keyName, mnemonic string) error {
	if indexOfChain(h.chains, chainID) < 0 {
		return fmt.Errorf("chain %s is not configured in hermes", chainID)
	}

	mnemonicPath := path.Join(hermesMnemonicDir, chainID+".txt")
	if err := h.runner.WriteFile(ctx, mnemonicPath, []byte(mnemonic)); err != nil {
		return fmt.Errorf("failed to write mnemonic for chain %s: %w", chainID, err)
	}

	_, err := h.run(ctx,
		"keys", "add",
		"--chain", chainID,
		"--key-name", keyName,
		"--mnemonic-file", path.Join(h.homeDir, mnemonicPath),
		"--overwrite",
	)
	return err
}

// CreateClient creates a client on hostChainID tracking referenceChainID.
func (h *Hermes) CreateClient(ctx context.Context, hostChainID, referenceChainID string) (ibc.ClientOutput, error) {
	raw, err := h.run(ctx,
		"create", "client",
		"--host-chain", hostChainID,
		"--reference-chain", referenceChainID,
	)
	if err != nil {
		return ibc.ClientOutput{}, err
	}

	var result struct {
		CreateClient *ibc.ClientOutput `json:"CreateClient"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return ibc.ClientOutput{}, fmt.Errorf("failed to decode create client result: %w", err)
	}
	if result.CreateClient == nil {
		return ibc.ClientOutput{}, fmt.Errorf("unexpected create client result: %s", raw)
	}
	return *result.CreateClient, nil
}

// CreateConnection runs the connection handshake starting from ChainA.
func (h *Hermes) CreateConnection(ctx context.Context, opts ibc.CreateConnectionOptions) (ibc.ConnectionOutput, error) {
	raw, err := h.run(ctx,
		"create", "connection",
		"--a-chain", opts.ChainA,
		"--a-client", opts.ClientA,
		"--b-client", opts.ClientB,
		"--delay", strconv.FormatUint(uint64(opts.DelayPeriod/time.Second), 10),
	)
	if err != nil {
		return ibc.ConnectionOutput{}, err
	}

	var out ibc.ConnectionOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return ibc.ConnectionOutput{}, fmt.Errorf("failed to decode create connection result: %w", err)
	}
	return out, nil
}

// CreateChannel runs the channel handshake on ConnectionA.
func (h *Hermes) CreateChannel(ctx context.Context, opts ibc.CreateChannelOptions) (ibc.ChannelOutput, error) {
	args := []string{
		"create", "channel",
		"--a-chain", opts.ChainA,
		"--a-connection", opts.ConnectionA,
		"--a-port", opts.PortA,
		"--b-port", opts.PortB,
		"--order", string(opts.Order),
	}
	if opts.Version != "" {
		args = append(args, "--channel-version", opts.Version)
	}

	raw, err := h.run(ctx, args...)
	if err != nil {
		return ibc.ChannelOutput{}, err
	}

	var out ibc.ChannelOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return ibc.ChannelOutput{}, fmt.Errorf("failed to decode create channel result: %w", err)
	}
	return out, nil
}

// run executes hermes with args and returns the result of a successful run.
// Account sequence mismatches are retried, every other failure is returned as is.
func (h *Hermes) run(ctx context.Context, args ...string) (json.RawMessage, error) {
	cmd := append([]string{"hermes", "--json", "--config", path.Join(h.homeDir, hermesConfigRelPath)}, args...)

	var result json.RawMessage
	err := retry.Do(
		func() error {
			stdout, _, execErr := h.runner.Exec(ctx, cmd, container.Options{})
			res, err := parseOutput(stdout)
			if err == nil {
				result = res
				return nil
			}

			var hermesErr *Error
			if !errors.As(err, &hermesErr) && execErr != nil {
				return execErr
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(h.retryAttempts),
		retry.Delay(h.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isSequenceMismatch),
		retry.OnRetry(func(n uint, err error) {
			h.logger.Warn("retrying hermes command", zap.Strings("args", args), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("hermes %s: %w", strings.Join(subcommand(args), " "), err)
	}
	return result, nil
}

// Error is a failure reported by hermes in its JSON output.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

type hermesResponse struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

// parseOutput finds the last status line in hermes' JSON output.
// Log lines are interleaved with the result and carry no status.
func parseOutput(stdout []byte) (json.RawMessage, error) {
	lines := bytes.Split(bytes.TrimSpace(stdout), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		var resp hermesResponse
		if err := json.Unmarshal(lines[i], &resp); err != nil || resp.Status == "" {
			continue
		}
		if resp.Status != "success" {
			var msg string
			if err := json.Unmarshal(resp.Result, &msg); err != nil {
				msg = string(resp.Result)
			}
			return nil, &Error{Message: msg}
		}
		return resp.Result, nil
	}
	return nil, errors.New("no result found in hermes output")
}

func isSequenceMismatch(err error) bool {
	var hermesErr *Error
	return errors.As(err, &hermesErr) && strings.Contains(hermesErr.Message, sequenceMismatch)
}

func subcommand(args []string) []string {
	if len(args) > 2 {
		return args[:2]
	}
	return args
}

func indexOfChain(chains []types.ChainConfig, chainID string) int {
	for i, chain := range chains {
		if chain.ChainID == chainID {
			return i
		}
	}
	return -1
}
