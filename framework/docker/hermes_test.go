package docker

import (
	"github.com/celestiaorg/relaytest/framework/config"
	"github.com/celestiaorg/relaytest/framework/docker/container"
	"github.com/celestiaorg/relaytest/framework/docker/internal"
	"github.com/celestiaorg/relaytest/framework/docker/ibc"
	"github.com/celestiaorg/relaytest/framework/docker/ibc/relayer"
	"github.com/celestiaorg/relaytest/framework/types"
)

func (s *DockerTestSuite) TestHermesContainer() {
	hermes := relayer.NewHermes(s.logger, s.dockerClient, s.T().Name(), s.networkID, config.Default().Relayer)
	s.Require().NoError(hermes.Start(s.ctx))
	s.T().Cleanup(func() {
		_ = hermes.Stop(s.ctx)
	})

	node := hermes.Node()
	inspect, err := s.dockerClient.ContainerInspect(s.ctx, node.ContainerID())
	s.Require().NoError(err)
	s.Require().Equal(s.T().Name(), inspect.Config.Labels[internal.CleanupLabel])

	ip, err := node.InternalIP(s.ctx)
	s.Require().NoError(err)
	s.Require().NotEmpty(ip)

	connector := ibc.NewConnector(hermes, ibc.WithConnectorLogger(s.logger))
	s.Require().NoError(connector.AddChains(s.ctx, types.ChainConfig{
		ChainID:      "chain-a",
		RPCAddress:   "http://chain-a:26657",
		GRPCAddress:  "chain-a:9090",
		Bech32Prefix: "celestia",
		Denom:        "utia",
		GasPrices:    "0.025utia",
	}))

	stdout, _, err := node.Exec(s.ctx, []string{"cat", ".hermes/config.toml"}, container.Options{})
	s.Require().NoError(err)
	s.Require().Contains(string(stdout), `id = "chain-a"`)

	stdout, _, err = node.Exec(s.ctx, []string{"hermes", "version"}, container.Options{})
	s.Require().NoError(err)
	s.Require().Contains(string(stdout), config.DefaultRelayerVersion)

	_, _, err = node.Exec(s.ctx, []string{"false"}, container.Options{})
	var exitErr *container.ExitError
	s.Require().ErrorAs(err, &exitErr)
	s.Require().Equal(1, exitErr.ExitCode)
}
