package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestImageRef(t *testing.T) {
	require.Equal(t, "ghcr.io/informalsystems/hermes:1.8.2", Image{Repository: "ghcr.io/informalsystems/hermes", Version: "1.8.2"}.Ref())
	require.Equal(t, "busybox", Image{Repository: "busybox"}.Ref())
}

func TestSplitUIDGID(t *testing.T) {
	uid, gid, ok := splitUIDGID("1000:1001")
	require.True(t, ok)
	require.Equal(t, 1000, uid)
	require.Equal(t, 1001, gid)

	for _, bad := range []string{"", "1000", "a:1", "1:b"} {
		_, _, ok := splitUIDGID(bad)
		require.False(t, ok, bad)
	}
}

func TestNodeRequiresStart(t *testing.T) {
	node := NewNode(zaptest.NewLogger(t), nil, "net", "TestNode/sub", Image{Repository: "busybox"}, "/home", "hermes")
	require.Equal(t, "TestNode_sub-hermes", node.ContainerName())
	require.Empty(t, node.ContainerID())

	_, _, err := node.Exec(context.Background(), []string{"true"}, Options{})
	require.ErrorContains(t, err, "is not running")
	require.ErrorContains(t, node.WriteFile(context.Background(), "config.toml", nil), "is not running")
	_, err = node.InternalIP(context.Background())
	require.ErrorContains(t, err, "is not running")
	require.NoError(t, node.Stop(context.Background()))
}

func TestParentDirs(t *testing.T) {
	require.Equal(t, []string{".hermes", ".hermes/mnemonics"}, parentDirs(".hermes/mnemonics/chain-a.txt"))
	require.Equal(t, []string{".hermes"}, parentDirs(".hermes/config.toml"))
	require.Empty(t, parentDirs("config.toml"))
}

func TestExitError(t *testing.T) {
	err := &ExitError{Cmd: []string{"hermes", "version"}, ExitCode: 2, Stderr: "boom"}
	require.Equal(t, "[hermes version] exited with code 2: boom", err.Error())
}
