// Command fcctl is a thin demonstration CLI over pkg/microvm: it boots
// one Firecracker microVM per invocation of "run", or drives a
// long-lived instance through its lifecycle via individual resource
// subcommands talking to an already-running instance's API socket.
package main

import (
	"fmt"
	"os"

	"github.com/quantaform/firecracker-sdk/internal/cli"
)

var version = "dev"

func main() {
	root := cli.NewRootCmd(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
