package internal

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/docker/docker/api/types/filters"
	dockerimagetypes "github.com/docker/docker/api/types/image"
	"github.com/moby/moby/client"
)

// CleanupLabel is set on every docker resource a test creates, with the test name as value.
const CleanupLabel = "relaytest.test"

// Allow multiple goroutines to check for images
// by using a protected package-level variable.
var (
	ensureImageMu sync.Mutex
	pulledImages  = make(map[string]struct{})
)

const (
	pullAttempts     = 3
	initialPullDelay = 1 * time.Second
	maxPullDelay     = 10 * time.Second
)

// EnsureImage pulls ref unless it is already present locally.
func EnsureImage(ctx context.Context, cli client.ImageAPIClient, ref string) error {
	ensureImageMu.Lock()
	defer ensureImageMu.Unlock()

	if _, ok := pulledImages[ref]; ok {
		return nil
	}

	images, err := cli.ImageList(ctx, dockerimagetypes.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", ref)),
	})
	if err != nil {
		return fmt.Errorf("listing images to check %s presence: %w", ref, err)
	}

	if len(images) > 0 {
		pulledImages[ref] = struct{}{}
		return nil
	}

	err = retry.Do(
		func() error {
			rc, err := cli.ImagePull(ctx, ref, dockerimagetypes.PullOptions{})
			if err != nil {
				return fmt.Errorf("pulling %s: %w", ref, err)
			}

			_, _ = io.Copy(io.Discard, rc)
			_ = rc.Close()
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(pullAttempts),
		retry.Delay(initialPullDelay),
		retry.MaxDelay(maxPullDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("failed to pull %s after retries: %w", ref, err)
	}

	pulledImages[ref] = struct{}{}
	return nil
}
