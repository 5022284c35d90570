package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

func newActionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Trigger instance-level actions on a running instance",
	}

	cmd.AddCommand(newActionsStartCmd())
	cmd.AddCommand(newActionsCtrlAltDelCmd())
	cmd.AddCommand(newActionsFlushMetricsCmd())
	cmd.AddCommand(newActionsPauseCmd())
	cmd.AddCommand(newActionsResumeCmd())

	return cmd
}

func newActionsStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the instance (InstanceStart)",
		Long: `Start the instance. This requires that boot source and at least
a root drive have already been configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}
			if err := client.CreateSyncAction(cmd.Context(), fcapi.ActionInstanceStart); err != nil {
				return fmt.Errorf("start instance: %w", err)
			}
			fmt.Println("instance started")
			return nil
		},
	}
}

func newActionsCtrlAltDelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ctrl-alt-del",
		Short: "Send a graceful shutdown signal (SendCtrlAltDel)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}
			if err := client.CreateSyncAction(cmd.Context(), fcapi.ActionSendCtrlAltDel); err != nil {
				return fmt.Errorf("send ctrl-alt-del: %w", err)
			}
			fmt.Println("ctrl-alt-del sent")
			return nil
		},
	}
}

func newActionsFlushMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush-metrics",
		Short: "Force an immediate metrics flush (FlushMetrics)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}
			if err := client.CreateSyncAction(cmd.Context(), fcapi.ActionFlushMetrics); err != nil {
				return fmt.Errorf("flush metrics: %w", err)
			}
			fmt.Println("metrics flushed")
			return nil
		},
	}
}

func newActionsPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause a running instance (PATCH /vm)",
		Long:  `Pause the instance's vCPUs. State is preserved in memory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}
			if err := client.PatchVM(cmd.Context(), fcapi.VMStatePaused); err != nil {
				return fmt.Errorf("pause instance: %w", err)
			}
			fmt.Println("instance paused")
			return nil
		},
	}
}

func newActionsResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused instance (PATCH /vm)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}
			if err := client.PatchVM(cmd.Context(), fcapi.VMStateResumed); err != nil {
				return fmt.Errorf("resume instance: %w", err)
			}
			fmt.Println("instance resumed")
			return nil
		},
	}
}
