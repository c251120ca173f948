package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tablook/pkg/core"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display tablook version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tablook v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "semantic model schema %s, %s\n", core.SchemaVersion, runtime.Version())
		},
	}
}
