package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

func newNetworkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "network",
		Aliases: []string{"net"},
		Short:   "Manage network interfaces for a running instance",
	}

	cmd.AddCommand(newNetworkAddCmd())
	cmd.AddCommand(newNetworkUpdateCmd())

	return cmd
}

func newNetworkAddCmd() *cobra.Command {
	var (
		ifaceID     string
		hostDevName string
		guestMAC    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Attach a network interface to the instance",
		Example: `  # Add network interface with tap device
  fcctl network add --socket /tmp/fc.sock --id eth0 --tap tap0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			iface := fcapi.NetworkInterface{
				IfaceID:     ifaceID,
				HostDevName: hostDevName,
				GuestMAC:    guestMAC,
			}

			path := fcapi.Endpoints[fcapi.KindNetworkInterface].MemberPath(ifaceID)
			if err := client.Put(cmd.Context(), path, iface); err != nil {
				return fmt.Errorf("add network interface: %w", err)
			}

			fmt.Printf("network interface %q added\n", ifaceID)
			return nil
		},
	}

	cmd.Flags().StringVar(&ifaceID, "id", "", "unique identifier for the interface (required)")
	cmd.Flags().StringVar(&hostDevName, "tap", "", "name of the TAP device on host (required)")
	cmd.Flags().StringVar(&guestMAC, "mac", "", "MAC address for the guest interface")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("tap")

	return cmd
}

func newNetworkUpdateCmd() *cobra.Command {
	var (
		ifaceID string
		rxBw    int64
		txBw    int64
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Patch network interface rate limits post-boot",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			patch := fcapi.NetworkInterface{IfaceID: ifaceID}
			if rxBw > 0 {
				patch.RxRateLimiter = &fcapi.RateLimiter{Bandwidth: &fcapi.TokenBucket{Size: rxBw, RefillTime: 1000}}
			}
			if txBw > 0 {
				patch.TxRateLimiter = &fcapi.RateLimiter{Bandwidth: &fcapi.TokenBucket{Size: txBw, RefillTime: 1000}}
			}

			path := fcapi.Endpoints[fcapi.KindNetworkInterface].MemberPath(ifaceID)
			if err := client.Patch(cmd.Context(), path, patch); err != nil {
				return fmt.Errorf("update network interface: %w", err)
			}

			fmt.Printf("network interface %q updated\n", ifaceID)
			return nil
		},
	}

	cmd.Flags().StringVar(&ifaceID, "id", "", "interface identifier (required)")
	cmd.Flags().Int64Var(&rxBw, "rx-bandwidth", 0, "RX bandwidth limit in bytes/sec")
	cmd.Flags().Int64Var(&txBw, "tx-bandwidth", 0, "TX bandwidth limit in bytes/sec")
	cmd.MarkFlagRequired("id")

	return cmd
}
