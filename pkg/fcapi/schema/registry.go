package schema

import "github.com/quantaform/firecracker-sdk/pkg/fcapi"

// Registry is the central, declarative table of every resource's
// pre/post-boot schema.
var Registry = map[fcapi.Kind]Resource{
	fcapi.KindBootSource: {
		Pre: Schema{Fields: []Field{
			{Name: "kernel_image_path", Required: true, Type: TypeString},
			{Name: "boot_args", Type: TypeString},
			{Name: "initrd_path", Type: TypeString},
		}},
	},
	fcapi.KindMachineConfig: {
		Pre: Schema{Fields: []Field{
			{Name: "vcpu_count", Required: true, Type: TypePosInt},
			{Name: "mem_size_mib", Required: true, Type: TypePosInt},
			{Name: "smt", Type: TypeBool},
			{Name: "track_dirty_pages", Type: TypeBool},
			{Name: "huge_pages", Type: TypeString},
			{Name: "cpu_template", Type: TypeString},
		}},
		Post: Schema{Fields: []Field{
			{Name: "vcpu_count", Type: TypePosInt},
			{Name: "mem_size_mib", Type: TypePosInt},
			{Name: "smt", Type: TypeBool},
			{Name: "track_dirty_pages", Type: TypeBool},
			{Name: "huge_pages", Type: TypeString},
			{Name: "cpu_template", Type: TypeString},
		}},
	},
	fcapi.KindBalloon: {
		Pre: Schema{Fields: []Field{
			{Name: "amount_mib", Required: true, Type: TypeNonNegInt},
			{Name: "deflate_on_oom", Required: true, Type: TypeBool},
			{Name: "stats_polling_interval_s", Type: TypeNonNegInt},
		}},
		Post: Schema{Fields: []Field{
			{Name: "amount_mib", Type: TypeNonNegInt},
			{Name: "stats_polling_interval_s", Type: TypeNonNegInt},
		}},
	},
	fcapi.KindCPUConfig: {
		Pre: Schema{Fields: []Field{
			{Name: "cpuid_modifiers", Type: TypeOpaque},
			{Name: "msr_modifiers", Type: TypeOpaque},
			{Name: "reg_modifiers", Type: TypeOpaque},
			{Name: "vcpu_features", Type: TypeOpaque},
			{Name: "kvm_capabilities", Type: TypeOpaque},
		}},
	},
	fcapi.KindEntropy: {
		Pre: Schema{Fields: []Field{
			{Name: "rate_limiter", Type: TypeOpaque},
		}},
	},
	fcapi.KindLogger: {
		Pre: Schema{Fields: []Field{
			{Name: "log_path", Type: TypeString},
			{Name: "level", Type: TypeString},
			{Name: "show_level", Type: TypeBool},
			{Name: "show_log_origin", Type: TypeBool},
			{Name: "module", Type: TypeString},
		}},
	},
	fcapi.KindMetrics: {
		Pre: Schema{Fields: []Field{
			{Name: "metrics_path", Required: true, Type: TypeString},
		}},
	},
	fcapi.KindMmdsConfig: {
		Pre: Schema{Fields: []Field{
			{Name: "network_interfaces", Required: true, Type: TypeStringList},
			{Name: "version", Type: TypeString},
			{Name: "ipv4_address", Type: TypeString},
			{Name: "imds_compat", Type: TypeBool},
		}},
	},
	fcapi.KindMmds: {
		// The metadata document is an arbitrary JSON map; always legal
		// to replace regardless of boot window.
		Pre: Schema{Fields: []Field{
			{Name: "data", Type: TypeOpaque},
		}},
		Post: Schema{Fields: []Field{
			{Name: "data", Type: TypeOpaque},
		}},
	},
	fcapi.KindSerial: {
		Pre: Schema{Fields: []Field{
			{Name: "output_path", Type: TypeString},
		}},
	},
	fcapi.KindVsock: {
		Pre: Schema{Fields: []Field{
			{Name: "guest_cid", Required: true, Type: TypePosInt},
			{Name: "uds_path", Required: true, Type: TypeString},
			{Name: "vsock_id", Type: TypeString},
		}},
	},
	fcapi.KindDrive: {
		Pre: Schema{Fields: []Field{
			{Name: "drive_id", Required: true, Type: TypeString},
			{Name: "is_root_device", Required: true, Type: TypeBool},
			{Name: "path_on_host", Type: TypeString},
			{Name: "partuuid", Type: TypeString},
			{Name: "cache_type", Type: TypeString},
			{Name: "is_read_only", Type: TypeBool},
			{Name: "rate_limiter", Type: TypeOpaque},
			{Name: "io_engine", Type: TypeString},
			{Name: "socket", Type: TypeString},
		}},
		Post: Schema{Fields: []Field{
			{Name: "drive_id", Type: TypeString},
			{Name: "path_on_host", Type: TypeString},
			{Name: "rate_limiter", Type: TypeOpaque},
		}},
	},
	fcapi.KindNetworkInterface: {
		Pre: Schema{Fields: []Field{
			{Name: "iface_id", Required: true, Type: TypeString},
			{Name: "host_dev_name", Required: true, Type: TypeString},
			{Name: "guest_mac", Type: TypeString},
			{Name: "rx_rate_limiter", Type: TypeOpaque},
			{Name: "tx_rate_limiter", Type: TypeOpaque},
		}},
		Post: Schema{Fields: []Field{
			{Name: "iface_id", Type: TypeString},
			{Name: "rx_rate_limiter", Type: TypeOpaque},
			{Name: "tx_rate_limiter", Type: TypeOpaque},
		}},
	},
	fcapi.KindPmem: {
		Pre: Schema{Fields: []Field{
			{Name: "id", Required: true, Type: TypeString},
			{Name: "path_on_host", Required: true, Type: TypeString},
			{Name: "root_device", Type: TypeBool},
			{Name: "read_only", Type: TypeBool},
		}},
	},
}

// For selects the schema to validate against for a given resource kind
// and boot window; the bool result reports whether kind is registered.
// preBootWindow is true while the state permits any field (initial,
// started); false once only post-boot fields are legal (running, paused,
// shutdown).
func For(kind fcapi.Kind, preBootWindow bool) (Schema, bool) {
	r, ok := Registry[kind]
	if !ok {
		return Schema{}, false
	}
	if preBootWindow {
		return r.Pre, true
	}
	return r.Post, true
}
