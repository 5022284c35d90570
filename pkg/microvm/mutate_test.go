package microvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
	"github.com/quantaform/firecracker-sdk/pkg/fcapi/schema"
)

func TestConfigureBootSourceWhileInitial(t *testing.T) {
	s := New()

	err := s.Configure(fcapi.KindBootSource, schema.Bag{"kernel_image_path": "/boot/vmlinux"})
	require.NoError(t, err)

	bs, ok := s.BootSource()
	require.True(t, ok)
	assert.Equal(t, "/boot/vmlinux", bs.KernelImagePath)
}

func TestConfigureRejectsUnknownField(t *testing.T) {
	s := New()

	err := s.Configure(fcapi.KindBootSource, schema.Bag{"bogus": "x"})
	var valErr *schema.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestConfigureRejectsMissingRequiredOnCreate(t *testing.T) {
	s := New()

	err := s.Configure(fcapi.KindMachineConfig, schema.Bag{"vcpu_count": 2})
	var valErr *schema.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "mem_size_mib", valErr.Field)
}

func TestConfigureMergesOverExistingValue(t *testing.T) {
	s := New()
	require.NoError(t, s.Configure(fcapi.KindMachineConfig, schema.Bag{"vcpu_count": 2, "mem_size_mib": 512}))
	require.NoError(t, s.Configure(fcapi.KindMachineConfig, schema.Bag{"mem_size_mib": 1024}))

	mc, ok := s.MachineConfig()
	require.True(t, ok)
	assert.Equal(t, 2, mc.VCPUCount)
	assert.Equal(t, 1024, mc.MemSizeMib)
}

func TestConfigureRejectsCollectionKind(t *testing.T) {
	s := New()
	err := s.Configure(fcapi.KindDrive, schema.Bag{"drive_id": "rootfs"})
	var invalid *InvalidResourceError
	assert.ErrorAs(t, err, &invalid)
}

func TestConfigureRejectsFirstTimeAfterBoot(t *testing.T) {
	s := New()
	s.state = StateRunning

	err := s.Configure(fcapi.KindBalloon, schema.Bag{"amount_mib": 64, "stats_polling_interval_s": 1})
	var cannotCreate *CannotCreateAfterBootError
	require.ErrorAs(t, err, &cannotCreate)
	assert.Equal(t, "balloon", cannotCreate.Kind)
}

func TestConfigureAllowsPostBootPatchOfExistingResource(t *testing.T) {
	s := New()
	require.NoError(t, s.Configure(fcapi.KindBalloon, schema.Bag{"amount_mib": int64(64), "deflate_on_oom": true}))
	s.state = StateRunning

	err := s.Configure(fcapi.KindBalloon, schema.Bag{"amount_mib": int64(128)})
	require.NoError(t, err)

	b, ok := s.Balloon()
	require.True(t, ok)
	assert.EqualValues(t, 128, b.AmountMib)
}

func TestAddDriveWhileInitial(t *testing.T) {
	s := New()
	err := s.Add(fcapi.KindDrive, "rootfs", schema.Bag{
		"drive_id":       "rootfs",
		"is_root_device": true,
		"path_on_host":   "/var/lib/rootfs.ext4",
	})
	require.NoError(t, err)

	d, ok := s.Drive("rootfs")
	require.True(t, ok)
	assert.True(t, d.IsRootDevice)
}

func TestAddRejectsNewMemberAfterBoot(t *testing.T) {
	s := New()
	s.state = StateRunning

	err := s.Add(fcapi.KindDrive, "rootfs", schema.Bag{"drive_id": "rootfs", "is_root_device": true})
	var cannotAdd *CannotAddMemberError
	require.ErrorAs(t, err, &cannotAdd)
	assert.Equal(t, "rootfs", cannotAdd.ID)
}

func TestAddAllowsPostBootPatchOfExistingMember(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(fcapi.KindDrive, "rootfs", schema.Bag{
		"drive_id": "rootfs", "is_root_device": true, "path_on_host": "/a.ext4",
	}))
	s.state = StateRunning

	require.NoError(t, s.Add(fcapi.KindDrive, "rootfs", schema.Bag{"path_on_host": "/b.ext4"}))

	d, ok := s.Drive("rootfs")
	require.True(t, ok)
	assert.Equal(t, "/b.ext4", d.PathOnHost)
}

func TestConfigureRejectsAfterExited(t *testing.T) {
	s := New()
	s.state = StateExited

	err := s.Configure(fcapi.KindBootSource, schema.Bag{"kernel_image_path": "/boot/vmlinux"})
	var invalidState *InvalidStateError
	assert.ErrorAs(t, err, &invalidState)
}
