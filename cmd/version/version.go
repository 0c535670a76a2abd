package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conveydesk/convey-cli/internal/runtime"
)

// Default placeholder value, overridden at release time via ldflags.
var Version = "development"

func New(runtimeContext *runtime.Context) *cobra.Command {
	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the convey version",
		Long:  "This command prints the current version of the convey CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "convey", Version)
			return nil
		},
	}

	return versionCmd
}
