// Package fcapi holds the wire-format types exchanged with a Firecracker
// microVM's REST control plane, plus the static metadata (endpoint path,
// collection id field) used to route them.
package fcapi

// BootSource configures the kernel and initrd a microVM boots from.
type BootSource struct {
	KernelImagePath string `json:"kernel_image_path"`
	InitrdPath      string `json:"initrd_path,omitempty"`
	BootArgs        string `json:"boot_args,omitempty"`
}

// Drive represents a block device attached to the microVM.
type Drive struct {
	DriveID      string       `json:"drive_id"`
	PathOnHost   string       `json:"path_on_host,omitempty"`
	IsRootDevice bool         `json:"is_root_device"`
	IsReadOnly   bool         `json:"is_read_only,omitempty"`
	Partuuid     string       `json:"partuuid,omitempty"`
	CacheType    string       `json:"cache_type,omitempty"`
	IoEngine     string       `json:"io_engine,omitempty"`
	Socket       string       `json:"socket,omitempty"`
	RateLimiter  *RateLimiter `json:"rate_limiter,omitempty"`
}

// NetworkInterface represents a host tap device attached to the microVM.
type NetworkInterface struct {
	IfaceID       string       `json:"iface_id"`
	HostDevName   string       `json:"host_dev_name,omitempty"`
	GuestMAC      string       `json:"guest_mac,omitempty"`
	RxRateLimiter *RateLimiter `json:"rx_rate_limiter,omitempty"`
	TxRateLimiter *RateLimiter `json:"tx_rate_limiter,omitempty"`
}

// Pmem represents a persistent memory backed block device.
type Pmem struct {
	ID         string `json:"id"`
	PathOnHost string `json:"path_on_host"`
	RootDevice bool   `json:"root_device,omitempty"`
	ReadOnly   bool   `json:"read_only,omitempty"`
}

// MachineConfig describes the vCPU and memory shape of the microVM.
type MachineConfig struct {
	VCPUCount       int    `json:"vcpu_count"`
	MemSizeMib      int    `json:"mem_size_mib"`
	SMT             bool   `json:"smt,omitempty"`
	CPUTemplate     string `json:"cpu_template,omitempty"`
	TrackDirtyPages bool   `json:"track_dirty_pages,omitempty"`
	HugePages       string `json:"huge_pages,omitempty"`
}

// Balloon configures the memory balloon device.
type Balloon struct {
	AmountMib             int64 `json:"amount_mib"`
	DeflateOnOom          bool  `json:"deflate_on_oom"`
	StatsPollingIntervalS int64 `json:"stats_polling_interval_s,omitempty"`
}

// BalloonStats reports the current balloon device statistics.
type BalloonStats struct {
	TargetPages        int64 `json:"target_pages"`
	ActualPages        int64 `json:"actual_pages"`
	TargetMib          int64 `json:"target_mib"`
	ActualMib          int64 `json:"actual_mib"`
	SwapIn             int64 `json:"swap_in,omitempty"`
	SwapOut            int64 `json:"swap_out,omitempty"`
	MajorFaults        int64 `json:"major_faults,omitempty"`
	MinorFaults        int64 `json:"minor_faults,omitempty"`
	FreeMemory         int64 `json:"free_memory,omitempty"`
	TotalMemory        int64 `json:"total_memory,omitempty"`
	AvailableMemory    int64 `json:"available_memory,omitempty"`
	DiskCaches         int64 `json:"disk_caches,omitempty"`
	HugetlbAllocations int64 `json:"hugetlb_allocations,omitempty"`
	HugetlbFailures    int64 `json:"hugetlb_failures,omitempty"`
}

// BalloonStatsUpdate patches only the statistics polling interval.
type BalloonStatsUpdate struct {
	StatsPollingIntervalS int64 `json:"stats_polling_interval_s"`
}

// BalloonUpdate patches only the balloon target size.
type BalloonUpdate struct {
	AmountMib int64 `json:"amount_mib"`
}

// CPUConfig carries opaque CPU template modifiers. Firecracker treats the
// contents as an arbitrary JSON document; the SDK never interprets it.
type CPUConfig struct {
	KvmCapabilities []string                 `json:"kvm_capabilities,omitempty"`
	VcpuFeatures    []map[string]interface{} `json:"vcpu_features,omitempty"`
	CPUIDModifiers  []map[string]interface{} `json:"cpuid_modifiers,omitempty"`
	MsrModifiers    []map[string]interface{} `json:"msr_modifiers,omitempty"`
	RegModifiers    []map[string]interface{} `json:"reg_modifiers,omitempty"`
}

// Entropy configures the virtio-rng device.
type Entropy struct {
	RateLimiter *RateLimiter `json:"rate_limiter,omitempty"`
}

// Logger configures Firecracker's own logging sink.
type Logger struct {
	LogPath       string `json:"log_path"`
	Level         string `json:"level,omitempty"`
	ShowLevel     bool   `json:"show_level,omitempty"`
	ShowLogOrigin bool   `json:"show_log_origin,omitempty"`
	Module        string `json:"module,omitempty"`
}

// Metrics configures the metrics FIFO/file sink.
type Metrics struct {
	MetricsPath string `json:"metrics_path"`
}

// MmdsConfig wires the metadata service to a set of network interfaces.
type MmdsConfig struct {
	NetworkInterfaces []string `json:"network_interfaces"`
	Version           string   `json:"version,omitempty"`
	IPv4Address       string   `json:"ipv4_address,omitempty"`
	ImdsCompat        bool     `json:"imds_compat,omitempty"`
}

// Serial configures the serial console output sink.
type Serial struct {
	OutputPath string `json:"output_path,omitempty"`
}

// Vsock configures the virtio-vsock device.
type Vsock struct {
	GuestCID int64  `json:"guest_cid"`
	UDSPath  string `json:"uds_path"`
	VsockID  string `json:"vsock_id,omitempty"`
}

// RateLimiter bounds a device's I/O with a pair of token buckets.
type RateLimiter struct {
	Bandwidth *TokenBucket `json:"bandwidth"`
	Ops       *TokenBucket `json:"ops"`
}

// TokenBucket is one leg (bandwidth or ops) of a RateLimiter.
type TokenBucket struct {
	Size         int64 `json:"size"`
	OneTimeBurst int64 `json:"one_time_burst,omitempty"`
	RefillTime   int64 `json:"refill_time"`
}

// Action requests an instance-level operation (start, send-ctrl-alt-del...).
type Action struct {
	ActionType string `json:"action_type"`
}

const (
	ActionInstanceStart     = "InstanceStart"
	ActionSendCtrlAltDel    = "SendCtrlAltDel"
	ActionFlushMetrics      = "FlushMetrics"
)

// VMState is the body of a PATCH /vm request ("Paused" or "Resumed").
type VMState struct {
	State string `json:"state"`
}

const (
	VMStatePaused   = "Paused"
	VMStateResumed  = "Resumed"
)

// SnapshotCreate is the body of a PUT /snapshot/create request.
type SnapshotCreate struct {
	SnapshotPath string `json:"snapshot_path"`
	MemFilePath  string `json:"mem_file_path,omitempty"`
	SnapshotType string `json:"snapshot_type,omitempty"`
}

// SnapshotLoad is the body of a PUT /snapshot/load request.
type SnapshotLoad struct {
	SnapshotPath        string             `json:"snapshot_path"`
	MemFilePath         string             `json:"mem_file_path,omitempty"`
	MemBackend          *MemoryBackend     `json:"mem_backend,omitempty"`
	NetworkOverrides    []NetworkOverride  `json:"network_overrides,omitempty"`
	EnableDiffSnapshots bool               `json:"enable_diff_snapshots,omitempty"`
	ResumeVM            bool               `json:"resume_vm,omitempty"`
	TrackDirtyPages     bool               `json:"track_dirty_pages,omitempty"`
}

// MemoryBackend selects how snapshot memory is restored.
type MemoryBackend struct {
	BackendType string `json:"backend_type"`
	BackendPath string `json:"backend_path"`
}

const (
	MemoryBackendFile = "File"
	MemoryBackendUffd = "Uffd"
)

// NetworkOverride re-homes a snapshotted interface onto a new host tap.
type NetworkOverride struct {
	IfaceID     string `json:"iface_id"`
	HostDevName string `json:"host_dev_name"`
}

const (
	SnapshotTypeFull = "Full"
	SnapshotTypeDiff = "Diff"
)

// Version reports the running Firecracker's version string.
type Version struct {
	FirecrackerVersion string `json:"firecracker_version"`
}

// InstanceInfo reports top-level instance metadata from GET /.
type InstanceInfo struct {
	ID      string `json:"id"`
	State   string `json:"state"`
	VMMVersion string `json:"vmm_version"`
	AppName string `json:"app_name"`
}

// Error is the JSON shape of a non-2xx Firecracker API response.
type Error struct {
	FaultMessage string `json:"fault_message"`
}
