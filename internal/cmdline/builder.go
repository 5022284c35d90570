// Package cmdline builds the argv (and, when required, the
// auto-generated JSON config file) used to launch the Firecracker
// process, plus the jailer-wrapped variant.
package cmdline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/quantaform/firecracker-sdk/internal/jailer"
)

// Options is every recognized Firecracker process flag a caller may set
// via SetOption, prior to state leaving "initial".
type Options struct {
	BootTimer      bool
	NoSeccomp      bool
	ShowLevel      bool
	ShowLogOrigin  bool
	EnablePci      bool

	HTTPAPIMaxPayloadSize *int64
	MmdsSizeLimit         *int64
	StartTimeUs           *int64
	StartTimeCPUUs        *int64
	ParentCPUTimeUs       *int64

	Level         string
	LogPath       string
	MetricsPath   string
	Metadata      string
	Module        string
	SeccompFilter string
}

// flag is one emitted argv entry before final sorting.
type flag struct {
	name     string // includes leading "--"
	value    string
	boolOnly bool
}

func (o Options) flags() []flag {
	var fl []flag

	addBool := func(name string, set bool) {
		if set {
			fl = append(fl, flag{name: name, boolOnly: true})
		}
	}
	addBool("--boot-timer", o.BootTimer)
	addBool("--no-seccomp", o.NoSeccomp)
	addBool("--show-level", o.ShowLevel)
	addBool("--show-log-origin", o.ShowLogOrigin)
	addBool("--enable-pci", o.EnablePci)

	addInt := func(name string, v *int64) {
		if v != nil {
			fl = append(fl, flag{name: name, value: fmt.Sprintf("%d", *v)})
		}
	}
	addInt("--http-api-max-payload-size", o.HTTPAPIMaxPayloadSize)
	addInt("--mmds-size-limit", o.MmdsSizeLimit)
	addInt("--start-time-us", o.StartTimeUs)
	addInt("--start-time-cpu-us", o.StartTimeCPUUs)
	addInt("--parent-cpu-time-us", o.ParentCPUTimeUs)

	addStr := func(name, v string) {
		if v != "" {
			fl = append(fl, flag{name: name, value: v})
		}
	}
	addStr("--level", o.Level)
	addStr("--log-path", o.LogPath)
	addStr("--metrics-path", o.MetricsPath)
	addStr("--metadata", o.Metadata)
	addStr("--module", o.Module)
	addStr("--seccomp-filter", o.SeccompFilter)

	return fl
}

// Input is everything the builder needs to materialize one launch
// command for a VM spec.
type Input struct {
	Binary         string // resolved Firecracker binary path
	ID             string
	APISockPath    string // "" when NoAPI
	NoAPI          bool
	ConfigFilePath string // explicitly supplied config file, if any
	Options        Options
	Jailer         *jailer.Spec

	// AutoConfigJSON, when non-nil, is the serialized declarative spec
	// the builder writes to <TmpDir>/<ID>.config.json and points
	// --config-file at, used only when NoAPI is set and no explicit
	// ConfigFilePath was supplied.
	AutoConfigJSON []byte
	TmpDir         string
}

// Result is the materialized launch command: binary, argv, an optional
// config file path, and the API socket path (empty when NoAPI is set).
type Result struct {
	Binary         string
	Argv           []string
	ConfigFilePath string
	SocketPath     string
}

// Build materializes the launch command for in.
func Build(in Input) (Result, error) {
	var fl []flag

	fl = append(fl, in.Options.flags()...)

	if in.Jailer == nil {
		fl = append(fl, flag{name: "--id", value: in.ID})
	}

	if in.NoAPI {
		fl = append(fl, flag{name: "--no-api", boolOnly: true})
	} else {
		fl = append(fl, flag{name: "--api-sock", value: in.APISockPath})
	}

	configFilePath := in.ConfigFilePath
	if configFilePath == "" && in.NoAPI && in.AutoConfigJSON != nil {
		tmpDir := in.TmpDir
		if tmpDir == "" {
			tmpDir = os.TempDir()
		}
		configFilePath = filepath.Join(tmpDir, in.ID+".config.json")
		if err := os.WriteFile(configFilePath, in.AutoConfigJSON, 0644); err != nil {
			return Result{}, fmt.Errorf("write auto-generated config file: %w", err)
		}
	}
	if configFilePath != "" {
		fl = append(fl, flag{name: "--config-file", value: configFilePath})
	}

	sort.SliceStable(fl, func(i, j int) bool { return fl[i].name < fl[j].name })

	argv := make([]string, 0, len(fl)*2)
	for _, f := range fl {
		if f.boolOnly {
			argv = append(argv, f.name)
			continue
		}
		argv = append(argv, f.name, f.value)
	}

	binary := in.Binary
	if in.Jailer != nil {
		jailerBinary, jailerArgv := jailer.Argv(in.Jailer, in.ID, in.Binary, argv)
		binary = jailerBinary
		argv = jailerArgv
	}

	socketPath := in.APISockPath
	if in.NoAPI {
		socketPath = ""
	}

	return Result{
		Binary:         binary,
		Argv:           argv,
		ConfigFilePath: configFilePath,
		SocketPath:     socketPath,
	}, nil
}

// DryRun is a non-executing view: the same binary and args a Build
// would produce, plus the REST-path-keyed map of what Apply would still
// send (resources already applied are omitted by the caller before
// invoking DryRun).
type DryRun struct {
	Binary  string
	Args    []string
	APISock string
	Config  map[string]interface{}
}

// BuildDryRun assembles a DryRun view from a Build Result and a
// caller-assembled (resource-kind -> value) config map.
func BuildDryRun(res Result, config map[string]interface{}) DryRun {
	return DryRun{Binary: res.Binary, Args: res.Argv, APISock: res.SocketPath, Config: config}
}

// MarshalConfigFile serializes v (typically the microvm package's own
// config-file-shaped struct) for use as Input.AutoConfigJSON.
func MarshalConfigFile(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
