package internal

import (
	"context"
	"fmt"

	dockerclient "github.com/moby/moby/client"
)

// ContainerIP returns the address of a container on networkID.
func ContainerIP(ctx context.Context, client dockerclient.ContainerAPIClient, containerID, networkID string) (string, error) {
	inspect, err := client.ContainerInspect(ctx, containerID)
	if err != nil {
		return "", fmt.Errorf("inspecting container: %w", err)
	}
	if inspect.NetworkSettings == nil {
		return "", fmt.Errorf("container network settings not available")
	}

	for _, endpoint := range inspect.NetworkSettings.Networks {
		if endpoint != nil && endpoint.NetworkID == networkID && endpoint.IPAddress != "" {
			return endpoint.IPAddress, nil
		}
	}
	return "", fmt.Errorf("container %s has no address on network %s", containerID, networkID)
}
