package fcapi

// Kind identifies one of the resource slots a VM specification carries.
type Kind string

const (
	KindBootSource        Kind = "boot_source"
	KindMachineConfig     Kind = "machine_config"
	KindBalloon           Kind = "balloon"
	KindCPUConfig         Kind = "cpu_config"
	KindEntropy           Kind = "entropy"
	KindLogger            Kind = "logger"
	KindMetrics           Kind = "metrics"
	KindMmdsConfig        Kind = "mmds_config"
	KindMmds              Kind = "mmds"
	KindSerial            Kind = "serial"
	KindVsock             Kind = "vsock"
	KindDrive             Kind = "drives"
	KindNetworkInterface  Kind = "network_interfaces"
	KindPmem              Kind = "pmems"
)

// Collection reports whether a Kind is keyed-collection (true) or a
// singleton slot (false).
func (k Kind) Collection() bool {
	switch k {
	case KindDrive, KindNetworkInterface, KindPmem:
		return true
	default:
		return false
	}
}

// Endpoint is the REST-routing metadata for one resource kind: its base
// path, and, for collections, the JSON field carrying the member's id.
type Endpoint struct {
	Path    string
	IDField string
}

// Endpoints maps every resource Kind to its REST endpoint metadata, per
// the Firecracker OpenAPI surface.
var Endpoints = map[Kind]Endpoint{
	KindBootSource:       {Path: "/boot-source"},
	KindMachineConfig:    {Path: "/machine-config"},
	KindBalloon:          {Path: "/balloon"},
	KindCPUConfig:        {Path: "/cpu-config"},
	KindEntropy:          {Path: "/entropy"},
	KindLogger:           {Path: "/logger"},
	KindMetrics:          {Path: "/metrics"},
	KindMmdsConfig:       {Path: "/mmds/config"},
	KindMmds:             {Path: "/mmds"},
	KindSerial:           {Path: "/serial"},
	KindVsock:            {Path: "/vsock"},
	KindDrive:            {Path: "/drives", IDField: "drive_id"},
	KindNetworkInterface: {Path: "/network-interfaces", IDField: "iface_id"},
	KindPmem:             {Path: "/pmem", IDField: "id"},
}

// MemberPath returns the per-member endpoint path for a collection
// resource, e.g. "/drives/rootfs".
func (e Endpoint) MemberPath(id string) string {
	return e.Path + "/" + id
}

// ApplyOrder is the fixed resource traversal order the apply engine
// walks on every reconciliation pass: collections first (drives,
// network_interfaces, pmems), then mmds, then the remaining singletons.
var ApplyOrder = []Kind{
	KindDrive,
	KindNetworkInterface,
	KindPmem,
	KindMmds,
	KindBalloon,
	KindBootSource,
	KindCPUConfig,
	KindEntropy,
	KindLogger,
	KindMachineConfig,
	KindMetrics,
	KindMmdsConfig,
	KindSerial,
	KindVsock,
}
