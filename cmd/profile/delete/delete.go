package delete

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/conveydesk/convey-cli/internal/profiles"
	"github.com/conveydesk/convey-cli/internal/runtime"
)

func New(runtimeCtx *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <profile-name>",
		Short: "Delete a saved sign-in profile",
		Long:  "Remove the named profile. Deleting the active profile also clears the stored credentials.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeCtx, cmd.OutOrStdout())
			return h.execute(args[0])
		},
	}

	return cmd
}

type handler struct {
	log *zerolog.Logger
	out io.Writer
}

func newHandler(ctx *runtime.Context, out io.Writer) *handler {
	return &handler{
		log: ctx.Logger,
		out: out,
	}
}

func (h *handler) execute(name string) error {
	profileMgr, err := profiles.New(h.log)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	wasActive := profileMgr.GetActiveProfileName() == name
	if err := profileMgr.DeleteProfile(name); err != nil {
		return err
	}

	fmt.Fprintf(h.out, "Deleted profile %s\n", name)
	if wasActive {
		if next := profileMgr.GetActiveProfileName(); next != "" {
			fmt.Fprintf(h.out, "Active profile is now %s\n", next)
		} else {
			fmt.Fprintln(h.out, "No profiles remain, run convey login to sign in again")
		}
	}
	return nil
}
