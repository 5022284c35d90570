package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

func newMachineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "machine",
		Short: "Configure and query machine settings",
	}

	cmd.AddCommand(newMachineConfigCmd())
	cmd.AddCommand(newMachineInfoCmd())
	cmd.AddCommand(newMachineVersionCmd())

	return cmd
}

func newMachineConfigCmd() *cobra.Command {
	var (
		vcpuCount       int
		memSizeMib      int
		smt             bool
		cpuTemplate     string
		trackDirtyPages bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configure the instance's vCPU and memory shape",
		Example: `  # Set 2 vCPUs and 512 MiB memory
  fcctl machine config --socket /tmp/fc.sock --vcpus 2 --memory 512`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			cfg := fcapi.MachineConfig{
				VCPUCount:       vcpuCount,
				MemSizeMib:      memSizeMib,
				SMT:             smt,
				CPUTemplate:     cpuTemplate,
				TrackDirtyPages: trackDirtyPages,
			}

			if err := client.Put(cmd.Context(), fcapi.Endpoints[fcapi.KindMachineConfig].Path, cfg); err != nil {
				return fmt.Errorf("set machine config: %w", err)
			}

			fmt.Println("machine configuration set")
			return nil
		},
	}

	cmd.Flags().IntVar(&vcpuCount, "vcpus", 1, "number of vCPUs")
	cmd.Flags().IntVar(&memSizeMib, "memory", 128, "memory size in MiB")
	cmd.Flags().BoolVar(&smt, "smt", false, "enable SMT (simultaneous multithreading)")
	cmd.Flags().StringVar(&cpuTemplate, "cpu-template", "", "CPU template (C3, T2, T2S, T2CL, T2A, V1N1, None)")
	cmd.Flags().BoolVar(&trackDirtyPages, "track-dirty-pages", false, "enable dirty page tracking for snapshots")

	return cmd
}

func newMachineInfoCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Get the current machine configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			var cfg fcapi.MachineConfig
			if err := client.Describe(cmd.Context(), fcapi.Endpoints[fcapi.KindMachineConfig].Path, &cfg); err != nil {
				return fmt.Errorf("get machine config: %w", err)
			}

			if outputJSON {
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			} else {
				fmt.Printf("vCPUs: %d\n", cfg.VCPUCount)
				fmt.Printf("Memory: %d MiB\n", cfg.MemSizeMib)
				fmt.Printf("SMT: %v\n", cfg.SMT)
				if cfg.CPUTemplate != "" {
					fmt.Printf("CPU Template: %s\n", cfg.CPUTemplate)
				}
				fmt.Printf("Track Dirty Pages: %v\n", cfg.TrackDirtyPages)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	return cmd
}

func newMachineVersionCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Get the running Firecracker's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			var version fcapi.Version
			if err := client.Describe(cmd.Context(), "/version", &version); err != nil {
				return fmt.Errorf("get version: %w", err)
			}

			if outputJSON {
				data, err := json.MarshalIndent(version, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			} else {
				fmt.Printf("Firecracker Version: %s\n", version.FirecrackerVersion)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	return cmd
}
