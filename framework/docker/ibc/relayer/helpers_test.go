package relayer

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/celestiaorg/relaytest/framework/config"
	"github.com/celestiaorg/relaytest/framework/docker/container"
	"github.com/celestiaorg/relaytest/framework/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	connectiontypes "github.com/cosmos/ibc-go/v8/modules/core/03-connection/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"github.com/cosmos/ibc-go/v8/modules/core/exported"
	"go.uber.org/zap"
)

const logLine = `{"timestamp":"2025-01-01T00:00:00.000000Z","level":"INFO","fields":{"message":"running hermes"},"target":"hermes"}`

// fakeRunner records files and commands and answers commands with respond.
type fakeRunner struct {
	mu      sync.Mutex
	files   map[string][]byte
	cmds    [][]string
	respond func(args []string) (string, error)
}

func newFakeRunner(respond func(args []string) (string, error)) *fakeRunner {
	return &fakeRunner{files: make(map[string][]byte), respond: respond}
}

func (f *fakeRunner) Exec(_ context.Context, cmd []string, _ container.Options) ([]byte, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cmds = append(f.cmds, cmd)
	// hermes --json --config <path> <args...>
	stdout, err := f.respond(cmd[4:])
	return []byte(stdout), nil, err
}

func (f *fakeRunner) WriteFile(_ context.Context, relPath string, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.files[relPath] = content
	return nil
}

func (f *fakeRunner) commands() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.cmds...)
}

func newTestHermes(logger *zap.Logger, runner commandRunner) *Hermes {
	h := newHermes(logger, runner, config.Default().Relayer)
	h.retryDelay = 0
	return h
}

func successLine(result any) string {
	bz, err := json.Marshal(map[string]any{"status": "success", "result": result})
	if err != nil {
		panic(err)
	}
	return logLine + "\n" + string(bz) + "\n"
}

func errorLine(msg string) string {
	bz, err := json.Marshal(map[string]any{"status": "error", "result": msg})
	if err != nil {
		panic(err)
	}
	return logLine + "\n" + string(bz) + "\n"
}

// flags maps every --flag in args to the value following it.
func flags(args []string) map[string]string {
	out := make(map[string]string)
	for i, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
			out[arg] = args[i+1]
		} else {
			out[arg] = ""
		}
	}
	return out
}

// fakeHermes produces hermes --json output and hands out identifiers like a chain would.
type fakeHermes struct {
	mu          sync.Mutex
	clients     map[string]uint64
	connections uint64
	channels    uint64
	// counterparty connection id by a-side connection id
	counterparty map[string]string
}

func newFakeHermes() *fakeHermes {
	return &fakeHermes{clients: make(map[string]uint64), counterparty: make(map[string]string)}
}

func (f *fakeHermes) respond(args []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl := flags(args)
	switch strings.Join(args[:2], " ") {
	case "keys add":
		return successLine("Added key '" + fl["--key-name"] + "' on chain " + fl["--chain"]), nil
	case "create client":
		host := fl["--host-chain"]
		id := clienttypes.FormatClientIdentifier(exported.Tendermint, f.clients[host])
		f.clients[host]++
		return successLine(map[string]any{
			"CreateClient": map[string]any{"client_id": id, "client_type": exported.Tendermint},
		}), nil
	case "create connection":
		idA := connectiontypes.FormatConnectionIdentifier(f.connections)
		idB := connectiontypes.FormatConnectionIdentifier(f.connections + 1)
		f.connections += 2
		f.counterparty[idA] = idB
		return successLine(map[string]any{
			"delay_period": map[string]any{"secs": 0, "nanos": 0},
			"a_side":       map[string]any{"client_id": fl["--a-client"], "connection_id": idA},
			"b_side":       map[string]any{"client_id": fl["--b-client"], "connection_id": idB},
		}), nil
	case "create channel":
		version := fl["--channel-version"]
		if version == "" {
			version = "ics20-1"
		}
		idA := channeltypes.FormatChannelIdentifier(f.channels)
		idB := channeltypes.FormatChannelIdentifier(f.channels + 1)
		f.channels += 2
		return successLine(map[string]any{
			"ordering": "Unordered",
			"a_side": map[string]any{
				"connection_id": fl["--a-connection"],
				"port_id":       fl["--a-port"],
				"channel_id":    idA,
				"version":       version,
			},
			"b_side": map[string]any{
				"connection_id": f.counterparty[fl["--a-connection"]],
				"port_id":       fl["--b-port"],
				"channel_id":    idB,
				"version":       version,
			},
		}), nil
	}
	return errorLine("unknown command " + strings.Join(args, " ")), nil
}

func testChains() []types.ChainConfig {
	return []types.ChainConfig{
		{
			ChainID:         "chain-a",
			RPCAddress:      "http://chain-a:26657",
			GRPCAddress:     "chain-a:9090",
			Bech32Prefix:    "celestia",
			Denom:           "utia",
			GasPrices:       "0.025utia",
			RelayerMnemonic: "abandon abandon art",
		},
		{
			ChainID:      "chain-b",
			RPCAddress:   "http://chain-b:26657",
			GRPCAddress:  "chain-b:9090",
			Bech32Prefix: "cosmos",
			Denom:        "stake",
		},
	}
}
