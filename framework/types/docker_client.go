package types

import (
	"github.com/moby/moby/client"
)

// DockerClient extends the Docker client.CommonAPIClient interface
// with a CleanupLabel method for resource tagging and cleanup.
type DockerClient interface {
	client.CommonAPIClient
	CleanupLabel() string
}
