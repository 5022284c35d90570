package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

func newBalloonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balloon",
		Short: "Manage the memory balloon device",
		Long:  `Control the virtio-balloon device for dynamic memory management.`,
	}

	cmd.AddCommand(newBalloonSetCmd())
	cmd.AddCommand(newBalloonGetCmd())
	cmd.AddCommand(newBalloonStatsCmd())
	cmd.AddCommand(newBalloonUpdateCmd())

	return cmd
}

func newBalloonSetCmd() *cobra.Command {
	var (
		amountMib             int64
		deflateOnOom          bool
		statsPollingIntervalS int64
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Configure the memory balloon device",
		Example: `  # Set balloon target to 256 MiB
  fcctl balloon set --socket /tmp/fc.sock --amount 256 --deflate-on-oom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			balloon := fcapi.Balloon{
				AmountMib:             amountMib,
				DeflateOnOom:          deflateOnOom,
				StatsPollingIntervalS: statsPollingIntervalS,
			}

			if err := client.Put(cmd.Context(), fcapi.Endpoints[fcapi.KindBalloon].Path, balloon); err != nil {
				return fmt.Errorf("set balloon: %w", err)
			}

			fmt.Println("balloon configured")
			return nil
		},
	}

	cmd.Flags().Int64Var(&amountMib, "amount", 0, "target balloon size in MiB (required)")
	cmd.Flags().BoolVar(&deflateOnOom, "deflate-on-oom", false, "deflate balloon on guest OOM")
	cmd.Flags().Int64Var(&statsPollingIntervalS, "stats-interval", 0, "stats polling interval in seconds")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func newBalloonGetCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get the current balloon configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			var balloon fcapi.Balloon
			if err := client.Describe(cmd.Context(), fcapi.Endpoints[fcapi.KindBalloon].Path, &balloon); err != nil {
				return fmt.Errorf("get balloon: %w", err)
			}

			if outputJSON {
				data, err := json.MarshalIndent(balloon, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			} else {
				fmt.Printf("Target Amount: %d MiB\n", balloon.AmountMib)
				fmt.Printf("Deflate on OOM: %v\n", balloon.DeflateOnOom)
				if balloon.StatsPollingIntervalS > 0 {
					fmt.Printf("Stats Polling Interval: %d s\n", balloon.StatsPollingIntervalS)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	return cmd
}

func newBalloonStatsCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Get balloon statistics",
		Long:  `Get detailed memory statistics from the balloon device.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			var stats fcapi.BalloonStats
			if err := client.Describe(cmd.Context(), "/balloon/statistics", &stats); err != nil {
				return fmt.Errorf("get balloon stats: %w", err)
			}

			if outputJSON {
				data, err := json.MarshalIndent(stats, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			} else {
				fmt.Printf("Target Pages: %d\n", stats.TargetPages)
				fmt.Printf("Actual Pages: %d\n", stats.ActualPages)
				fmt.Printf("Target Memory: %d MiB\n", stats.TargetMib)
				fmt.Printf("Actual Memory: %d MiB\n", stats.ActualMib)
				if stats.FreeMemory > 0 {
					fmt.Printf("Free Memory: %d bytes\n", stats.FreeMemory)
				}
				if stats.TotalMemory > 0 {
					fmt.Printf("Total Memory: %d bytes\n", stats.TotalMemory)
				}
				if stats.AvailableMemory > 0 {
					fmt.Printf("Available Memory: %d bytes\n", stats.AvailableMemory)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	return cmd
}

func newBalloonUpdateCmd() *cobra.Command {
	var amountMib int64

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Patch the balloon target size post-boot",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			if err := client.Patch(cmd.Context(), fcapi.Endpoints[fcapi.KindBalloon].Path, fcapi.BalloonUpdate{AmountMib: amountMib}); err != nil {
				return fmt.Errorf("update balloon: %w", err)
			}

			fmt.Printf("balloon target updated to %d MiB\n", amountMib)
			return nil
		},
	}

	cmd.Flags().Int64Var(&amountMib, "amount", 0, "new target balloon size in MiB (required)")
	cmd.MarkFlagRequired("amount")

	return cmd
}
