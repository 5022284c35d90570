package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

func newMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Configure and inspect the metrics sink",
		Long: `Firecracker streams metrics as newline-delimited JSON to a file on
the host rather than serving them over the API; "configure" wires that file
in, "tail" reads the most recent lines directly off disk.`,
	}

	cmd.AddCommand(newMetricsConfigureCmd())
	cmd.AddCommand(newMetricsTailCmd())

	return cmd
}

func newMetricsConfigureCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Point the metrics sink at a file (PUT /metrics)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}

			if err := client.Put(cmd.Context(), fcapi.Endpoints[fcapi.KindMetrics].Path, fcapi.Metrics{MetricsPath: path}); err != nil {
				return fmt.Errorf("configure metrics: %w", err)
			}

			fmt.Printf("metrics sink set to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "path to the metrics output file (required)")
	cmd.MarkFlagRequired("path")

	return cmd
}

func newMetricsTailCmd() *cobra.Command {
	var (
		path  string
		lines int
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the last lines of the metrics file",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat metrics file: %w", err)
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open metrics file: %w", err)
			}
			defer f.Close()

			var buf []string
			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				buf = append(buf, scanner.Text())
				if len(buf) > lines {
					buf = buf[1:]
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read metrics file: %w", err)
			}

			fmt.Printf("%s (%s)\n", path, units.BytesSize(float64(info.Size())))
			fmt.Println(strings.Join(buf, "\n"))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "path to the metrics output file (required)")
	cmd.Flags().IntVar(&lines, "lines", 10, "number of trailing lines to print")
	cmd.MarkFlagRequired("path")

	return cmd
}
