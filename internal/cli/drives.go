package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

func newDrivesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drives",
		Short: "Manage block devices for a running instance",
	}

	cmd.AddCommand(newDrivesAddCmd())
	cmd.AddCommand(newDrivesUpdateCmd())

	return cmd
}

func newDrivesAddCmd() *cobra.Command {
	var (
		driveID    string
		pathOnHost string
		isRoot     bool
		readOnly   bool
		cacheType  string
		ioEngine   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Attach a block device to the instance",
		Example: `  # Add root filesystem
  fcctl drives add --socket /tmp/fc.sock --id rootfs --path /path/to/rootfs.ext4 --root`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			drive := fcapi.Drive{
				DriveID:      driveID,
				PathOnHost:   pathOnHost,
				IsRootDevice: isRoot,
				IsReadOnly:   readOnly,
				CacheType:    cacheType,
				IoEngine:     ioEngine,
			}

			path := fcapi.Endpoints[fcapi.KindDrive].MemberPath(driveID)
			if err := client.Put(cmd.Context(), path, drive); err != nil {
				return fmt.Errorf("add drive: %w", err)
			}

			fmt.Printf("drive %q added\n", driveID)
			return nil
		},
	}

	cmd.Flags().StringVar(&driveID, "id", "", "unique identifier for the drive (required)")
	cmd.Flags().StringVar(&pathOnHost, "path", "", "path to the drive image on host (required)")
	cmd.Flags().BoolVar(&isRoot, "root", false, "mark as root device")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "mount as read-only")
	cmd.Flags().StringVar(&cacheType, "cache-type", "", "cache type (Unsafe, Writeback)")
	cmd.Flags().StringVar(&ioEngine, "io-engine", "", "I/O engine (Sync, Async)")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("path")

	return cmd
}

func newDrivesUpdateCmd() *cobra.Command {
	var (
		driveID    string
		pathOnHost string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Patch a drive's backing file path post-boot",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			path := fcapi.Endpoints[fcapi.KindDrive].MemberPath(driveID)
			patch := fcapi.Drive{DriveID: driveID, PathOnHost: pathOnHost}
			if err := client.Patch(cmd.Context(), path, patch); err != nil {
				return fmt.Errorf("update drive: %w", err)
			}

			fmt.Printf("drive %q updated\n", driveID)
			return nil
		},
	}

	cmd.Flags().StringVar(&driveID, "id", "", "drive identifier (required)")
	cmd.Flags().StringVar(&pathOnHost, "path", "", "new path to the drive image (required)")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("path")

	return cmd
}
