// Package cli implements fcctl, a thin demonstration CLI over
// pkg/microvm and its supporting internal packages: one subcommand per
// resource (boot.go, drives.go, network.go, machine.go, balloon.go,
// actions.go, snapshots.go), a cobra+viper root command (root.go), and
// a live status dashboard (dashboard.go).
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantaform/firecracker-sdk/internal/transport"
)

// apiClient builds a transport.Client bound to the --socket flag (or
// its FCCTL_SOCKET/config equivalent), for subcommands that drive an
// already-running microVM directly over its API socket.
func apiClient(cmd *cobra.Command) (*transport.Client, error) {
	socket := viper.GetString("socket")
	if socket == "" {
		return nil, fmt.Errorf("no API socket configured; use --socket or set FCCTL_SOCKET")
	}
	return transport.New(socket), nil
}

// viperSocket returns the configured --socket value for display purposes,
// without the apiClient validation error.
func viperSocket() string {
	return viper.GetString("socket")
}
