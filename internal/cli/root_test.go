package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd("test-version")

	assert.Equal(t, "fcctl", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestRootCmdHasSubcommands(t *testing.T) {
	cmd := NewRootCmd("test-version")

	subcommands := []string{
		"version",
		"run",
		"boot",
		"drives",
		"network",
		"machine",
		"balloon",
		"metrics",
		"mmds",
		"actions",
		"snapshots",
		"dashboard",
	}

	for _, name := range subcommands {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "subcommand %s not found", name)
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := NewRootCmd("1.2.3")
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	require.NoError(t, err)
}

func TestBootCmdRequiresKernel(t *testing.T) {
	cmd := NewRootCmd("test")
	cmd.SetArgs([]string{"boot", "set"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestDrivesCmdRequiresIdAndPath(t *testing.T) {
	cmd := NewRootCmd("test")
	cmd.SetArgs([]string{"drives", "add"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestNetworkCmdRequiresIdAndTap(t *testing.T) {
	cmd := NewRootCmd("test")
	cmd.SetArgs([]string{"network", "add"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestSnapshotCreateRequiresPaths(t *testing.T) {
	cmd := NewRootCmd("test")
	cmd.SetArgs([]string{"snapshots", "create"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestBalloonSetRequiresAmount(t *testing.T) {
	cmd := NewRootCmd("test")
	cmd.SetArgs([]string{"balloon", "set"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestRunCmdRequiresKernelAndRootfs(t *testing.T) {
	cmd := NewRootCmd("test")
	cmd.SetArgs([]string{"run"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestMmdsSetKeyRequiresSet(t *testing.T) {
	cmd := NewRootCmd("test")
	cmd.SetArgs([]string{"mmds", "set-key"})

	err := cmd.Execute()
	require.Error(t, err)
}
