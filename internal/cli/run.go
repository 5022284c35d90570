package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
	"github.com/quantaform/firecracker-sdk/pkg/fcapi/schema"
	"github.com/quantaform/firecracker-sdk/pkg/microvm"
)

func newRunCmd() *cobra.Command {
	var (
		name       string
		vcpus      int
		memoryMiB  int
		kernel     string
		rootfs     string
		bootArgs   string
		background bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Boot a Firecracker microVM and drive it through its full lifecycle",
		Long: `Configure a boot source, a root drive and a machine shape, then boot
and start a microVM in this process. Foreground mode waits on a signal and
shuts the instance down gracefully; --background starts it and returns.`,
		Example: `  # Start with auto-generated name
  fcctl run --kernel /path/to/vmlinux --rootfs /path/to/rootfs.ext4

  # Start with custom shape
  fcctl run --name web-1 --vcpus 2 --memory 512 --kernel vmlinux --rootfs rootfs.ext4

  # Start in background, return immediately
  fcctl run --name worker-1 --background --kernel vmlinux --rootfs rootfs.ext4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMicroVM(cmd.Context(), name, vcpus, memoryMiB, kernel, rootfs, bootArgs, background)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name for the microVM (auto-generated if not provided)")
	cmd.Flags().IntVar(&vcpus, "vcpus", 1, "number of vCPUs for the microVM")
	cmd.Flags().IntVar(&memoryMiB, "memory", 128, "memory in MiB for the microVM")
	cmd.Flags().StringVar(&kernel, "kernel", "", "path to the kernel image (required)")
	cmd.Flags().StringVar(&rootfs, "rootfs", "", "path to the root filesystem image (required)")
	cmd.Flags().StringVar(&bootArgs, "boot-args", "console=ttyS0 reboot=k panic=1 pci=off", "kernel boot arguments")
	cmd.Flags().BoolVar(&background, "background", false, "start the instance and return without waiting")
	cmd.MarkFlagRequired("kernel")
	cmd.MarkFlagRequired("rootfs")

	return cmd
}

func runMicroVM(ctx context.Context, name string, vcpus, memoryMiB int, kernel, rootfs, bootArgs string, background bool) error {
	if name == "" {
		name = "fc-" + uuid.New().String()[:8]
	}

	binaryPath := viper.GetString("binary")

	spec := microvm.New(
		microvm.WithID(name),
		microvm.WithBinaryPath(binaryPath),
	)

	if err := spec.Configure(fcapi.KindBootSource, schema.Bag{
		"kernel_image_path": kernel,
		"boot_args":         bootArgs,
	}); err != nil {
		return fmt.Errorf("configure boot source: %w", err)
	}

	if err := spec.Configure(fcapi.KindMachineConfig, schema.Bag{
		"vcpu_count":   vcpus,
		"mem_size_mib": memoryMiB,
	}); err != nil {
		return fmt.Errorf("configure machine: %w", err)
	}

	if err := spec.Add(fcapi.KindDrive, "rootfs", schema.Bag{
		"drive_id":       "rootfs",
		"path_on_host":   rootfs,
		"is_root_device": true,
		"is_read_only":   false,
	}); err != nil {
		return fmt.Errorf("configure root drive: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"name":   name,
		"vcpus":  vcpus,
		"memory": memoryMiB,
	}).Info("starting microVM")

	if err := spec.Start(ctx); err != nil {
		return fmt.Errorf("start microVM: %w", err)
	}

	fmt.Println()
	fmt.Println("=== MicroVM Started ===")
	fmt.Printf("ID:     %s\n", spec.ID())
	fmt.Printf("vCPUs:  %d\n", vcpus)
	fmt.Printf("Memory: %d MiB\n", memoryMiB)
	fmt.Printf("Kernel: %s\n", kernel)
	fmt.Printf("Rootfs: %s\n", rootfs)
	fmt.Printf("Socket: %s\n", spec.APISocketPath())
	fmt.Println()

	if background {
		fmt.Println("Running in background. Manage it with:")
		fmt.Printf("  fcctl actions pause   --socket %s\n", spec.APISocketPath())
		fmt.Printf("  fcctl actions resume  --socket %s\n", spec.APISocketPath())
		fmt.Printf("  fcctl actions ctrl-alt-del --socket %s\n", spec.APISocketPath())
		return nil
	}

	fmt.Println("Press Ctrl+C to shut down gracefully")
	fmt.Println()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := spec.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("graceful shutdown failed, forcing stop")
		return spec.Stop(shutdownCtx)
	}

	return nil
}
