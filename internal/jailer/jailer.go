// Package jailer translates a jailer configuration into the argv for
// the jailer sandboxing wrapper binary, which re-execs Firecracker
// inside a chroot and cgroup after dropping privileges.
package jailer

import (
	"fmt"
	"sort"
	"strconv"
)

// Spec is a jailer configuration, attachable to a VM specification only
// while it is in its initial state.
type Spec struct {
	UID             int
	GID             int
	ParentCgroup    string
	Cgroups         map[string]string
	Netns           string
	ResourceLimits  map[string]string
	Daemonize       bool
	NewPidNS        bool
	JailerPath      string
	CgroupVersion   string
	ChrootBaseDir   string
}

// DefaultCgroupVersion and DefaultChrootBaseDir are applied by New when
// the caller leaves them unset.
const (
	DefaultCgroupVersion = "1"
	DefaultChrootBaseDir = "/srv/jailer"
	DefaultJailerPath    = "jailer"
)

// New returns a Spec with required uid/gid and the spec's documented
// defaults for cgroup_version and chroot_base_dir.
func New(uid, gid int) *Spec {
	return &Spec{
		UID:           uid,
		GID:           gid,
		Cgroups:       map[string]string{},
		ResourceLimits: map[string]string{},
		JailerPath:    DefaultJailerPath,
		CgroupVersion: DefaultCgroupVersion,
		ChrootBaseDir: DefaultChrootBaseDir,
	}
}

// Cgroup sets one cgroup controller=value pair (the jailer's --cgroup
// name=value flag).
func (s *Spec) Cgroup(name, value string) {
	s.Cgroups[name] = value
}

// ResourceLimit sets one rlimit name=value pair (the jailer's
// --resource-limit name=value flag).
func (s *Spec) ResourceLimit(name, value string) {
	s.ResourceLimits[name] = value
}

// Validate enforces the required, non-negative uid/gid.
func (s *Spec) Validate() error {
	if s.UID < 0 {
		return fmt.Errorf("jailer: uid must be non-negative")
	}
	if s.GID < 0 {
		return fmt.Errorf("jailer: gid must be non-negative")
	}
	return nil
}

// flag is one emitted jailer argv entry before final sorting.
type flag struct {
	name     string // includes leading "--"
	value    string
	boolOnly bool
}

// Argv builds the full jailer command line: --id and --exec-file first,
// then the jailer's own flags (all of --uid, --gid, --parent-cgroup,
// --netns, --cgroup-version, --chroot-base-dir, --new-pid-ns,
// --daemonize, and one --cgroup k=v / --resource-limit k=v per map
// entry, merged into a single set sorted by flag name), then "--" followed by innerArgv
// (the Firecracker argv with --id stripped, since the jailer owns id
// assignment).
func Argv(s *Spec, vmID, firecrackerBinary string, innerArgv []string) (binary string, argv []string) {
	var fl []flag

	fl = append(fl, flag{name: "--uid", value: strconv.Itoa(s.UID)})
	fl = append(fl, flag{name: "--gid", value: strconv.Itoa(s.GID)})
	if s.ParentCgroup != "" {
		fl = append(fl, flag{name: "--parent-cgroup", value: s.ParentCgroup})
	}
	if s.Netns != "" {
		fl = append(fl, flag{name: "--netns", value: s.Netns})
	}
	if s.CgroupVersion != "" {
		fl = append(fl, flag{name: "--cgroup-version", value: s.CgroupVersion})
	}
	if s.ChrootBaseDir != "" {
		fl = append(fl, flag{name: "--chroot-base-dir", value: s.ChrootBaseDir})
	}
	if s.NewPidNS {
		fl = append(fl, flag{name: "--new-pid-ns", boolOnly: true})
	}
	if s.Daemonize {
		fl = append(fl, flag{name: "--daemonize", boolOnly: true})
	}
	for _, name := range sortedKeys(s.Cgroups) {
		fl = append(fl, flag{name: "--cgroup", value: fmt.Sprintf("%s=%s", name, s.Cgroups[name])})
	}
	for _, name := range sortedKeys(s.ResourceLimits) {
		fl = append(fl, flag{name: "--resource-limit", value: fmt.Sprintf("%s=%s", name, s.ResourceLimits[name])})
	}

	sort.SliceStable(fl, func(i, j int) bool { return fl[i].name < fl[j].name })

	argv = append(argv, "--id", vmID, "--exec-file", firecrackerBinary)
	for _, f := range fl {
		if f.boolOnly {
			argv = append(argv, f.name)
			continue
		}
		argv = append(argv, f.name, f.value)
	}

	argv = append(argv, "--")
	argv = append(argv, innerArgv...)

	return s.JailerPath, argv
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
