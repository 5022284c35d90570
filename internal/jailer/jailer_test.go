package jailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	s := New(123, 100)
	assert.Equal(t, DefaultCgroupVersion, s.CgroupVersion)
	assert.Equal(t, DefaultChrootBaseDir, s.ChrootBaseDir)
}

func TestValidateRejectsNegativeIDs(t *testing.T) {
	s := New(-1, 100)
	require.Error(t, s.Validate())
}

func TestArgvSortsFlagsAndSeparatesInnerArgv(t *testing.T) {
	s := New(123, 100)
	s.Netns = "fc-ns"
	s.NewPidNS = true
	s.Daemonize = true
	s.Cgroup("cpu.cpus", "0-1")
	s.Cgroup("memory.max", "512M")
	s.ResourceLimit("no-file", "1024")

	binary, argv := Argv(s, "vm-1", "/usr/bin/firecracker", []string{"--api-sock", "/tmp/fc.sock"})

	assert.Equal(t, DefaultJailerPath, binary)
	assert.Equal(t, []string{
		"--id", "vm-1",
		"--exec-file", "/usr/bin/firecracker",
		"--cgroup", "cpu.cpus=0-1",
		"--cgroup", "memory.max=512M",
		"--cgroup-version", DefaultCgroupVersion,
		"--chroot-base-dir", DefaultChrootBaseDir,
		"--daemonize",
		"--gid", "100",
		"--netns", "fc-ns",
		"--new-pid-ns",
		"--resource-limit", "no-file=1024",
		"--uid", "123",
		"--",
		"--api-sock", "/tmp/fc.sock",
	}, argv)
}
