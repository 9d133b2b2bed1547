package container

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/celestiaorg/relaytest/framework/docker/internal"
	"github.com/celestiaorg/relaytest/framework/types"
	dockercontainer "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	"go.uber.org/zap"
)

// Image is a docker image reference split into its parts.
type Image struct {
	Repository string
	Version    string
	UIDGID     string
}

// Ref returns the image reference, e.g. ghcr.io/informalsystems/hermes:1.8.2.
func (i Image) Ref() string {
	if i.Version == "" {
		return i.Repository
	}
	return i.Repository + ":" + i.Version
}

// Node is a long-running container that commands are executed in.
type Node struct {
	Logger       *zap.Logger
	DockerClient types.DockerClient
	NetworkID    string
	TestName     string
	Image        Image
	HomeDir      string
	Name         string
	ExposedPorts nat.PortSet

	containerID string
}

// NewNode creates a Node. Nothing is created in docker until Start is called.
func NewNode(
	logger *zap.Logger,
	dockerClient types.DockerClient,
	networkID string,
	testName string,
	image Image,
	homeDir string,
	name string,
) *Node {
	containerName := internal.ContainerName(testName, name)
	return &Node{
		Logger:       logger.With(zap.String("container", containerName)),
		DockerClient: dockerClient,
		NetworkID:    networkID,
		TestName:     testName,
		Image:        image,
		HomeDir:      homeDir,
		Name:         name,
		ExposedPorts: nat.PortSet{},
	}
}

// ContainerName is both the container name and its hostname on the network.
func (n *Node) ContainerName() string {
	return internal.ContainerName(n.TestName, n.Name)
}

// ContainerID returns the id of the running container, or "" before Start.
func (n *Node) ContainerID() string {
	return n.containerID
}

// InternalIP returns the node's address on its docker network.
func (n *Node) InternalIP(ctx context.Context) (string, error) {
	if n.containerID == "" {
		return "", fmt.Errorf("container %s is not running", n.ContainerName())
	}
	return internal.ContainerIP(ctx, n.DockerClient, n.containerID, n.NetworkID)
}

// Start pulls the image if needed and starts an idle container that Exec runs commands in.
func (n *Node) Start(ctx context.Context) error {
	if n.containerID != "" {
		return nil
	}

	if err := internal.EnsureImage(ctx, n.DockerClient, n.Image.Ref()); err != nil {
		return err
	}

	name := n.ContainerName()
	cc, err := n.DockerClient.ContainerCreate(
		ctx,
		&dockercontainer.Config{
			Image:        n.Image.Ref(),
			Entrypoint:   []string{"sleep", "infinity"},
			User:         n.Image.UIDGID,
			Hostname:     name,
			WorkingDir:   n.HomeDir,
			ExposedPorts: n.ExposedPorts,
			Labels:       map[string]string{internal.CleanupLabel: n.DockerClient.CleanupLabel()},
		},
		&dockercontainer.HostConfig{
			AutoRemove: false,
		},
		&network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				n.NetworkID: {},
			},
		},
		nil,
		name,
	)
	if err != nil {
		return fmt.Errorf("failed to create container %s: %w", name, err)
	}

	if err := n.DockerClient.ContainerStart(ctx, cc.ID, dockercontainer.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container %s: %w", name, err)
	}

	n.containerID = cc.ID
	n.Logger.Info("container started", zap.String("image", n.Image.Ref()))
	return nil
}

// Stop stops and removes the container.
func (n *Node) Stop(ctx context.Context) error {
	if n.containerID == "" {
		return nil
	}

	timeout := 10
	if err := n.DockerClient.ContainerStop(ctx, n.containerID, dockercontainer.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", n.ContainerName(), err)
	}
	if err := n.DockerClient.ContainerRemove(ctx, n.containerID, dockercontainer.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container %s: %w", n.ContainerName(), err)
	}

	n.containerID = ""
	return nil
}

// Exec runs cmd in the container and returns its stdout and stderr.
// A non-zero exit code is reported as an *ExitError that includes stderr.
func (n *Node) Exec(ctx context.Context, cmd []string, opts Options) ([]byte, []byte, error) {
	if n.containerID == "" {
		return nil, nil, fmt.Errorf("container %s is not running", n.ContainerName())
	}

	user := opts.User
	if user == "" {
		user = n.Image.UIDGID
	}

	execConfig := dockercontainer.ExecOptions{
		User:         user,
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          cmd,
		Env:          opts.Env,
		WorkingDir:   n.HomeDir,
	}

	exec, err := n.DockerClient.ContainerExecCreate(ctx, n.containerID, execConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create exec: %w", err)
	}

	resp, err := n.DockerClient.ContainerExecAttach(ctx, exec.ID, dockercontainer.ExecAttachOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer resp.Close()

	var stdout, stderr bytes.Buffer
	outputDone := make(chan error, 1)
	go func() {
		// StdCopy demultiplexes the stream into two buffers
		_, err := stdcopy.StdCopy(&stdout, &stderr, resp.Reader)
		outputDone <- err
	}()

	select {
	case err := <-outputDone:
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read exec output: %w", err)
		}
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	inspect, err := n.DockerClient.ContainerExecInspect(ctx, exec.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to inspect exec: %w", err)
	}

	n.Logger.Debug("exec", zap.Strings("cmd", cmd), zap.Int("exit_code", inspect.ExitCode))
	if inspect.ExitCode != 0 {
		return stdout.Bytes(), stderr.Bytes(), &ExitError{Cmd: cmd, ExitCode: inspect.ExitCode, Stderr: stderr.String()}
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

// WriteFile writes content to relPath below the node's home directory.
func (n *Node) WriteFile(ctx context.Context, relPath string, content []byte) error {
	if n.containerID == "" {
		return fmt.Errorf("container %s is not running", n.ContainerName())
	}

	uid, gid, hasOwner := splitUIDGID(n.Image.UIDGID)
	now := time.Now()

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	for _, dir := range parentDirs(relPath) {
		dirHeader := &tar.Header{
			Name:     dir + "/",
			Mode:     0o755,
			ModTime:  now,
			Typeflag: tar.TypeDir,
		}
		if hasOwner {
			dirHeader.Uid, dirHeader.Gid = uid, gid
		}
		if err := tw.WriteHeader(dirHeader); err != nil {
			return fmt.Errorf("failed to write tar header for %s: %w", dir, err)
		}
	}

	header := &tar.Header{
		Name:     relPath,
		Mode:     0o600,
		Size:     int64(len(content)),
		ModTime:  now,
		Typeflag: tar.TypeReg,
	}
	if hasOwner {
		header.Uid, header.Gid = uid, gid
	}

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}
	if _, err := tw.Write(content); err != nil {
		return fmt.Errorf("failed to write %s to tar: %w", relPath, err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}

	if err := n.DockerClient.CopyToContainer(ctx, n.containerID, n.HomeDir, &tarBuf, dockercontainer.CopyToContainerOptions{}); err != nil {
		return fmt.Errorf("failed to copy %s to container: %w", path.Join(n.HomeDir, relPath), err)
	}
	return nil
}

// parentDirs returns the directories leading to relPath, outermost first.
func parentDirs(relPath string) []string {
	var dirs []string
	for dir := path.Dir(path.Clean(relPath)); dir != "." && dir != "/"; dir = path.Dir(dir) {
		dirs = append([]string{dir}, dirs...)
	}
	return dirs
}

// ExitError is returned by Exec when the command exits with a non-zero code.
type ExitError struct {
	Cmd      []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%v exited with code %d: %s", e.Cmd, e.ExitCode, e.Stderr)
}
