package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

func newBootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boot",
		Short: "Manage boot source configuration for a running instance",
	}

	cmd.AddCommand(newBootSetCmd())
	cmd.AddCommand(newBootGetCmd())

	return cmd
}

func newBootSetCmd() *cobra.Command {
	var (
		kernelPath string
		initrdPath string
		bootArgs   string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the boot source for the instance",
		Example: `  # Set kernel with default boot args
  fcctl boot set --socket /tmp/fc.sock --kernel /path/to/vmlinux

  # Set kernel with custom boot args
  fcctl boot set --socket /tmp/fc.sock --kernel /path/to/vmlinux --boot-args "console=ttyS0 reboot=k panic=1"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			bootSource := fcapi.BootSource{
				KernelImagePath: kernelPath,
				InitrdPath:      initrdPath,
				BootArgs:        bootArgs,
			}

			if err := client.Put(cmd.Context(), fcapi.Endpoints[fcapi.KindBootSource].Path, bootSource); err != nil {
				return fmt.Errorf("set boot source: %w", err)
			}

			fmt.Println("Boot source configured successfully")
			return nil
		},
	}

	cmd.Flags().StringVar(&kernelPath, "kernel", "", "path to the kernel image (required)")
	cmd.Flags().StringVar(&initrdPath, "initrd", "", "path to the initrd image")
	cmd.Flags().StringVar(&bootArgs, "boot-args", "console=ttyS0 reboot=k panic=1 pci=off", "kernel boot arguments")
	cmd.MarkFlagRequired("kernel")

	return cmd
}

func newBootGetCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get the current vm/config, including the boot source",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			var result map[string]interface{}
			if err := client.Describe(cmd.Context(), "/vm/config", &result); err != nil {
				return fmt.Errorf("get vm config: %w", err)
			}

			if outputJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if bs, ok := result["boot-source"].(map[string]interface{}); ok {
				fmt.Printf("Kernel: %v\n", bs["kernel_image_path"])
				if v, ok := bs["initrd_path"]; ok {
					fmt.Printf("Initrd: %v\n", v)
				}
				if v, ok := bs["boot_args"]; ok {
					fmt.Printf("Boot Args: %v\n", v)
				}
				return nil
			}

			fmt.Println("boot source not yet configured")
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	return cmd
}
