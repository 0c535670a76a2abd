package use

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
		Use:   "use <profile-name>",
		Short: "Switch to a saved sign-in profile",
		Long:  "Set the named profile as the active profile and use its credentials for subsequent commands.",
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

	if err := profileMgr.SetActiveProfile(name); err != nil {
		return err
	}

	p := profileMgr.GetProfile(name)
	fmt.Fprintf(h.out, "Switched to profile %s\n", name)
	if p.Email != "" {
		fmt.Fprintf(h.out, "Signed in as %s\n", p.Email)
	}
	return nil
}
