package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

func newSnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snapshot"},
		Short:   "Manage microVM snapshots",
	}

	cmd.AddCommand(newSnapshotsCreateCmd())
	cmd.AddCommand(newSnapshotsLoadCmd())

	return cmd
}

func newSnapshotsCreateCmd() *cobra.Command {
	var (
		snapshotPath string
		memFilePath  string
		snapshotType string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a snapshot of the microVM",
		Long: `Create a snapshot of the running microVM. The VM must be paused
before creating a snapshot. Snapshots include VM state and optionally memory.`,
		Example: `  # Create a full snapshot
  fcctl snapshots create --socket /tmp/fc.sock --snapshot-path /path/to/snapshot --mem-path /path/to/mem

  # Create a diff snapshot (requires track-dirty-pages enabled)
  fcctl snapshots create --socket /tmp/fc.sock --snapshot-path /path/to/snapshot --mem-path /path/to/mem --type Diff`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			params := fcapi.SnapshotCreate{
				SnapshotPath: snapshotPath,
				MemFilePath:  memFilePath,
				SnapshotType: snapshotType,
			}

			if err := client.CreateSnapshot(cmd.Context(), params); err != nil {
				return fmt.Errorf("create snapshot: %w", err)
			}

			fmt.Println("snapshot created")
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot-path", "", "path to save the snapshot file (required)")
	cmd.Flags().StringVar(&memFilePath, "mem-path", "", "path to save the memory file (required)")
	cmd.Flags().StringVar(&snapshotType, "type", fcapi.SnapshotTypeFull, "snapshot type (Full, Diff)")
	cmd.MarkFlagRequired("snapshot-path")
	cmd.MarkFlagRequired("mem-path")

	return cmd
}

func newSnapshotsLoadCmd() *cobra.Command {
	var (
		snapshotPath        string
		memFilePath         string
		memBackendType      string
		networkOverrides    []string
		enableDiffSnapshots bool
		resumeVM            bool
		trackDirtyPages     bool
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a snapshot into a new microVM",
		Long: `Load a previously created snapshot to restore a microVM to a saved state.
This is used to quickly start a VM from a known state.`,
		Example: `  # Load snapshot and resume immediately
  fcctl snapshots load --socket /tmp/fc.sock --snapshot-path /path/to/snapshot --mem-path /path/to/mem --resume

  # Load snapshot and re-home an interface onto a new tap device
  fcctl snapshots load --socket /tmp/fc.sock --snapshot-path /path/to/snapshot --network-override eth0=tap1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			params := fcapi.SnapshotLoad{
				SnapshotPath:        snapshotPath,
				MemFilePath:         memFilePath,
				EnableDiffSnapshots: enableDiffSnapshots,
				ResumeVM:            resumeVM,
				TrackDirtyPages:     trackDirtyPages,
			}

			if memBackendType != "" {
				params.MemBackend = &fcapi.MemoryBackend{
					BackendType: memBackendType,
					BackendPath: memFilePath,
				}
				params.MemFilePath = ""
			}

			for _, kv := range networkOverrides {
				ifaceID, hostDevName, ok := splitKeyValue(kv)
				if !ok {
					return fmt.Errorf("invalid --network-override %q, expected iface_id=tap_name", kv)
				}
				params.NetworkOverrides = append(params.NetworkOverrides, fcapi.NetworkOverride{
					IfaceID:     ifaceID,
					HostDevName: hostDevName,
				})
			}

			if err := client.LoadSnapshot(cmd.Context(), params); err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}

			fmt.Println("snapshot loaded")
			if resumeVM {
				fmt.Println("instance resumed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot-path", "", "path to the snapshot file (required)")
	cmd.Flags().StringVar(&memFilePath, "mem-path", "", "path to the memory file")
	cmd.Flags().StringVar(&memBackendType, "mem-backend-type", "", "memory backend type (File, Uffd); defaults to mem-path if unset")
	cmd.Flags().StringArrayVar(&networkOverrides, "network-override", nil, "re-home a snapshotted interface onto a new host tap, iface_id=tap_name")
	cmd.Flags().BoolVar(&enableDiffSnapshots, "enable-diff", false, "enable incremental/diff snapshots")
	cmd.Flags().BoolVar(&resumeVM, "resume", false, "resume the VM after loading")
	cmd.Flags().BoolVar(&trackDirtyPages, "track-dirty-pages", false, "continue tracking dirty pages after load")
	cmd.MarkFlagRequired("snapshot-path")

	return cmd
}
