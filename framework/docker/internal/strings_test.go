package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContainerName(t *testing.T) {
	tests := []struct {
		name     string
		testName string
		nodeName string
		expected string
	}{
		{
			name:     "plain",
			testName: "TestBootstrap",
			nodeName: "hermes",
			expected: "TestBootstrap-hermes",
		},
		{
			name:     "subtest slashes are sanitized",
			testName: "TestBootstrap/transfer_ports",
			nodeName: "hermes",
			expected: "TestBootstrap_transfer_ports-hermes",
		},
		{
			name:     "long names are condensed",
			testName: strings.Repeat("a", 70),
			nodeName: "hermes",
			expected: strings.Repeat("a", 30) + "_._" + strings.Repeat("a", 23) + "-hermes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ContainerName(tt.testName, tt.nodeName))
		})
	}
}

func TestCondenseHostName(t *testing.T) {
	require.Equal(t, "short", CondenseHostName("short"))

	condensed := CondenseHostName(strings.Repeat("x", 64))
	require.Len(t, condensed, 63)
	require.Contains(t, condensed, "_._")
}
