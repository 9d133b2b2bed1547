package docker

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	dockerclient "github.com/celestiaorg/relaytest/framework/docker/client"
	"github.com/celestiaorg/relaytest/framework/docker/internal"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/moby/moby/client"
	"github.com/moby/moby/errdefs"
)

// SetupTestingT is a subset of testing.T required for Setup.
type SetupTestingT interface {
	Helper()

	Name() string

	Failed() bool
	Cleanup(func())

	Logf(format string, args ...any)
}

// Setup returns a new Docker Client and the ID of a configured network, associated with t.
// Every resource created through the client should carry the client's cleanup label.
//
// If any part of the setup fails, Setup panics because the test cannot continue.
func Setup(t SetupTestingT) (*dockerclient.Client, string) {
	t.Helper()

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		panic(fmt.Errorf("failed to create docker client: %v", err))
	}

	// Clean up docker resources at end of test.
	t.Cleanup(Cleanup(t, cli))

	// Also eagerly clean up any leftover resources from a previous test run,
	// e.g. if the test was interrupted.
	Cleanup(t, cli)()

	name := fmt.Sprintf("relaytest-%s", randomLowerCaseLetters(8))
	nw, err := cli.NetworkCreate(context.TODO(), name, network.CreateOptions{
		Driver: "bridge",
		Labels: map[string]string{internal.CleanupLabel: t.Name()},
	})
	if err != nil {
		panic(fmt.Errorf("failed to create docker network: %v", err))
	}

	return dockerclient.NewClient(cli, t.Name()), nw.ID
}

// Cleanup stops and removes every container labelled for t and prunes its networks.
// Set KEEP_CONTAINERS to keep them around, LOG_DIR to collect the logs of failed tests.
func Cleanup(t SetupTestingT, cli *client.Client) func() {
	return func() {
		keepContainers := os.Getenv("KEEP_CONTAINERS") != ""
		logDir := os.Getenv("LOG_DIR")

		ctx := context.TODO()
		cs, err := cli.ContainerList(ctx, container.ListOptions{
			All: true,
			Filters: filters.NewArgs(
				filters.Arg("label", internal.CleanupLabel+"="+t.Name()),
			),
		})
		if err != nil {
			t.Logf("Failed to list containers during docker cleanup: %v", err)
			return
		}

		if keepContainers {
			t.Logf("Keeping containers - Docker cleanup skipped")
			return
		}

		for _, c := range cs {
			if t.Failed() && logDir != "" {
				saveContainerLogs(ctx, t, cli, c.ID, strings.TrimPrefix(c.Names[0], "/"), logDir)
			}

			timeout := 10
			if err := cli.ContainerStop(ctx, c.ID, container.StopOptions{Timeout: &timeout}); IsLoggableStopError(err) {
				t.Logf("Failed to stop container %s during docker cleanup: %v", c.ID, err)
			}
			if err := cli.ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true}); err != nil {
				t.Logf("Failed to remove container %s during docker cleanup: %v", c.ID, err)
			}
		}

		PruneNetworksWithRetry(ctx, t, cli)
	}
}

// PruneNetworksWithRetry removes the networks labelled for t, retrying while another prune is in progress.
func PruneNetworksWithRetry(ctx context.Context, t SetupTestingT, cli *client.Client) {
	var deleted []string
	err := retry.Do(
		func() error {
			res, err := cli.NetworksPrune(ctx, filters.NewArgs(filters.Arg("label", internal.CleanupLabel+"="+t.Name())))
			if err != nil {
				if errdefs.IsConflict(err) {
					// Prune is already in progress; try again.
					return err
				}

				// Give up on any other error.
				return retry.Unrecoverable(err)
			}

			deleted = res.NetworksDeleted
			return nil
		},
		retry.Context(ctx),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(500*time.Millisecond),
	)
	if err != nil {
		t.Logf("Failed to prune networks during docker cleanup: %v", err)
		return
	}

	if len(deleted) > 0 {
		t.Logf("Pruned unused networks: %v", deleted)
	}
}

// IsLoggableStopError reports whether err from ContainerStop is worth logging.
func IsLoggableStopError(err error) bool {
	if err == nil {
		return false
	}
	return !(errdefs.IsNotModified(err) || errdefs.IsNotFound(err))
}

func saveContainerLogs(ctx context.Context, t SetupTestingT, cli *client.Client, containerID, containerName, logDir string) {
	rc, err := cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       "all",
	})
	if err != nil {
		t.Logf("Failed to read logs of container %s: %v", containerName, err)
		return
	}
	defer rc.Close()

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Logf("Failed to create log dir %s: %v", logDir, err)
		return
	}
	out, err := os.Create(filepath.Join(logDir, containerName+".log"))
	if err != nil {
		t.Logf("Failed to create log file for container %s: %v", containerName, err)
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		t.Logf("Failed to write logs of container %s: %v", containerName, err)
	}
}

const lowerCaseLetters = "abcdefghijklmnopqrstuvwxyz"

func randomLowerCaseLetters(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = lowerCaseLetters[rand.Intn(len(lowerCaseLetters))]
	}
	return string(b)
}
