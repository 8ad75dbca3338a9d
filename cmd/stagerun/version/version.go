package version

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/askiada/go-stage/cmd/stagerun/version.Version=...".
var Version = "dev"

// NewCmd creates the `stagerun version` command.
func NewCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !asJSON {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "stagerun %s\n", Version)

				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(map[string]string{
				"version": Version,
				"go":      runtime.Version(),
				"go_os":   runtime.GOOS,
				"go_arch": runtime.GOARCH,
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print detailed JSON version info")

	return cmd
}
