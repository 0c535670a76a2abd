package rename

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
		Use:   "rename <old-name> <new-name>",
		Short: "Rename a saved sign-in profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeCtx, cmd.OutOrStdout())
			return h.execute(args[0], args[1])
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

func (h *handler) execute(oldName, newName string) error {
	profileMgr, err := profiles.New(h.log)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if err := profileMgr.RenameProfile(oldName, newName); err != nil {
		return err
	}

	fmt.Fprintf(h.out, "Renamed profile %s to %s\n", oldName, newName)
	return nil
}
