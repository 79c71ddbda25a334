package commands

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type versionResult struct {
	Host    string `json:"host" yaml:"host"`
	Version string `json:"version" yaml:"version"`
}

// NewVersionCommand queries a running server for its version.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base := strings.TrimRight(host, "/")
			if !strings.Contains(base, "://") {
				base = "http://" + base
			}

			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get(base + "/api/version")
			if err != nil {
				return fmt.Errorf("server is not responding: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server answered HTTP %d", resp.StatusCode)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			version := strings.TrimSpace(string(body))
			if version == "" {
				return fmt.Errorf("no version detected")
			}

			return newPrinter(rootOpts, cmd.OutOrStdout()).print(
				versionResult{Host: base, Version: version},
				version,
			)
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost:8080", "server host:port to query")

	return cmd
}
