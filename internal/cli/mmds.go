package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

func newMmdsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mmds",
		Short: "Manage the microVM metadata service document",
		Long: `Read and write the MMDS (MicroVM Metadata Service) document exposed
to the guest over the virtio-vsock or network MMDS transport.`,
	}

	cmd.AddCommand(newMmdsGetCmd())
	cmd.AddCommand(newMmdsReplaceCmd())
	cmd.AddCommand(newMmdsSetKeyCmd())
	cmd.AddCommand(newMmdsConfigCmd())

	return cmd
}

func newMmdsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current MMDS document",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			var doc map[string]interface{}
			if err := client.Describe(cmd.Context(), "/mmds", &doc); err != nil {
				return fmt.Errorf("get mmds: %w", err)
			}

			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func newMmdsReplaceCmd() *cobra.Command {
	var jsonDoc string

	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Replace the entire MMDS document",
		Example: `  # Replace with an inline JSON document
  fcctl mmds replace --socket /tmp/fc.sock --json '{"latest":{"meta-data":{"instance-id":"i-123"}}}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			var doc map[string]interface{}
			if err := json.Unmarshal([]byte(jsonDoc), &doc); err != nil {
				return fmt.Errorf("parse --json: %w", err)
			}

			if err := client.Put(cmd.Context(), "/mmds", doc); err != nil {
				return fmt.Errorf("replace mmds: %w", err)
			}

			fmt.Println("mmds document replaced")
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonDoc, "json", "", "replacement document as a JSON object (required)")
	cmd.MarkFlagRequired("json")

	return cmd
}

func newMmdsSetKeyCmd() *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:   "set-key",
		Short: "Patch one or more top-level keys of the MMDS document",
		Example: `  # Set two top-level keys without disturbing the rest of the document
  fcctl mmds set-key --socket /tmp/fc.sock --set instance-id=i-123 --set region=us-east-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			var doc map[string]interface{}
			if err := client.Describe(cmd.Context(), "/mmds", &doc); err != nil {
				return fmt.Errorf("get mmds: %w", err)
			}
			if doc == nil {
				doc = make(map[string]interface{}, len(pairs))
			}
			for _, kv := range pairs {
				key, value, ok := splitKeyValue(kv)
				if !ok {
					return fmt.Errorf("invalid --set %q, expected key=value", kv)
				}
				doc[key] = value
			}

			if err := client.Put(cmd.Context(), "/mmds", doc); err != nil {
				return fmt.Errorf("set mmds key: %w", err)
			}

			fmt.Println("mmds document patched")
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "set", nil, "key=value pair to merge into the document, repeatable")
	cmd.MarkFlagRequired("set")

	return cmd
}

func newMmdsConfigCmd() *cobra.Command {
	var (
		version        string
		ipv4Address    string
		networkIfaces  []string
		imdsCompatible bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configure the MMDS transport (version, address, attached interfaces)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			cfg := fcapi.MmdsConfig{
				Version:           version,
				IPv4Address:       ipv4Address,
				NetworkInterfaces: networkIfaces,
				ImdsCompat:        imdsCompatible,
			}

			if err := client.Put(cmd.Context(), fcapi.Endpoints[fcapi.KindMmdsConfig].Path, cfg); err != nil {
				return fmt.Errorf("configure mmds transport: %w", err)
			}

			fmt.Println("mmds transport configured")
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "V2", "MMDS protocol version (V1, V2)")
	cmd.Flags().StringVar(&ipv4Address, "ipv4-address", "169.254.169.254", "link-local address the guest reaches MMDS at")
	cmd.Flags().StringArrayVar(&networkIfaces, "iface", nil, "network interface ID to attach MMDS to, repeatable (required)")
	cmd.Flags().BoolVar(&imdsCompatible, "imds-compatible", false, "expose the document in EC2 IMDS-compatible form")
	cmd.MarkFlagRequired("iface")

	return cmd
}

// splitKeyValue splits a "key=value" CLI argument on the first '='.
func splitKeyValue(s string) (key, value string, ok bool) {
	idx := strings.IndexByte(s, '=')
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}
