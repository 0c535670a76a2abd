package profile

import (
	"github.com/spf13/cobra"

	"github.com/conveydesk/convey-cli/cmd/profile/delete"
	"github.com/conveydesk/convey-cli/cmd/profile/list"
	"github.com/conveydesk/convey-cli/cmd/profile/rename"
	"github.com/conveydesk/convey-cli/cmd/profile/use"
	"github.com/conveydesk/convey-cli/internal/runtime"
)

func New(runtimeContext *runtime.Context) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manages saved sign-in profiles",
		Long:  "Manage saved sign-in profiles so you can switch between ConveyDesk accounts without logging in again.",
	}

	profileCmd.AddCommand(list.New(runtimeContext))
	profileCmd.AddCommand(use.New(runtimeContext))
	profileCmd.AddCommand(delete.New(runtimeContext))
	profileCmd.AddCommand(rename.New(runtimeContext))

	return profileCmd
}
