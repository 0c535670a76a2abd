package property

import (
	"github.com/spf13/cobra"

	"github.com/conveydesk/convey-cli/cmd/property/create"
	"github.com/conveydesk/convey-cli/cmd/property/delete"
	"github.com/conveydesk/convey-cli/cmd/property/get"
	"github.com/conveydesk/convey-cli/cmd/property/list"
	"github.com/conveydesk/convey-cli/cmd/property/update"
	"github.com/conveydesk/convey-cli/internal/runtime"
)

func New(runtimeContext *runtime.Context) *cobra.Command {
	propertyCmd := &cobra.Command{
		Use:   "property",
		Short: "Manages property files",
		Long:  `The property command allows you to create and manage conveyancing property files.`,
	}

	propertyCmd.AddCommand(create.New(runtimeContext))
	propertyCmd.AddCommand(list.New(runtimeContext))
	propertyCmd.AddCommand(get.New(runtimeContext))
	propertyCmd.AddCommand(update.New(runtimeContext))
	propertyCmd.AddCommand(delete.New(runtimeContext))

	return propertyCmd
}
