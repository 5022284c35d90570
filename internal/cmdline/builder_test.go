package cmdline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantaform/firecracker-sdk/internal/jailer"
)

func TestBuildSortsArgvByFlagName(t *testing.T) {
	res, err := Build(Input{
		Binary:      "/usr/bin/firecracker",
		ID:          "vm-1",
		APISockPath: "/tmp/vm-1.sock",
		Options: Options{
			ShowLevel: true,
			Level:     "debug",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"--api-sock", "/tmp/vm-1.sock",
		"--id", "vm-1",
		"--level", "debug",
		"--show-level",
	}, res.Argv)
	assert.Equal(t, "/usr/bin/firecracker", res.Binary)
	assert.Contains(t, res.Argv, "--api-sock")
	assert.Contains(t, res.Argv, "--id")
	assert.Equal(t, "/tmp/vm-1.sock", res.SocketPath)
}

func TestBuildOmitsFalseBooleans(t *testing.T) {
	res, err := Build(Input{
		Binary:      "/usr/bin/firecracker",
		ID:          "vm-1",
		APISockPath: "/tmp/vm-1.sock",
		Options:     Options{ShowLevel: false},
	})
	require.NoError(t, err)
	assert.NotContains(t, res.Argv, "--show-level")
}

func TestBuildNoAPIEmitsNoApiFlag(t *testing.T) {
	res, err := Build(Input{
		Binary: "/usr/bin/firecracker",
		ID:     "vm-1",
		NoAPI:  true,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Argv, "--no-api")
	assert.NotContains(t, res.Argv, "--api-sock")
	assert.Equal(t, "", res.SocketPath)
}

func TestBuildWritesAutoGeneratedConfigFile(t *testing.T) {
	dir := t.TempDir()
	res, err := Build(Input{
		Binary:         "/usr/bin/firecracker",
		ID:             "vm-1",
		NoAPI:          true,
		AutoConfigJSON: []byte(`{"boot-source":{}}`),
		TmpDir:         dir,
	})
	require.NoError(t, err)

	expectedPath := filepath.Join(dir, "vm-1.config.json")
	assert.Equal(t, expectedPath, res.ConfigFilePath)
	assert.Contains(t, res.Argv, "--config-file")

	data, err := os.ReadFile(expectedPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"boot-source":{}}`, string(data))
}

func TestBuildWithJailerOmitsTopLevelIDAndWrapsArgv(t *testing.T) {
	j := jailer.New(123, 100)
	res, err := Build(Input{
		Binary:      "/usr/bin/firecracker",
		ID:          "vm-1",
		APISockPath: "/tmp/vm-1.sock",
		Jailer:      j,
	})
	require.NoError(t, err)

	assert.Equal(t, jailer.DefaultJailerPath, res.Binary)
	assert.Contains(t, res.Argv, "--exec-file")
	assert.Contains(t, res.Argv, "/usr/bin/firecracker")

	sepIdx := -1
	for i, a := range res.Argv {
		if a == "--" {
			sepIdx = i
			break
		}
	}
	require.GreaterOrEqual(t, sepIdx, 0)
	innerArgv := res.Argv[sepIdx+1:]
	assert.NotContains(t, innerArgv, "--id")
	assert.Contains(t, innerArgv, "--api-sock")
}
