package list

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/conveydesk/convey-cli/internal/profiles"
	"github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/ui"
)

func New(runtimeCtx *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved sign-in profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeCtx, cmd.OutOrStdout())
			return h.execute()
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

func (h *handler) execute() error {
	profileMgr, err := profiles.New(h.log)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	profileList := profileMgr.ListProfiles()
	if len(profileList) == 0 {
		fmt.Fprintf(h.out, "No profiles found. Run %s to create one.\n", ui.RenderCommand("convey login"))
		return nil
	}

	active := profileMgr.GetActiveProfileName()
	for _, p := range profileList {
		marker := "  "
		if p.Name == active {
			marker = "* "
		}
		fmt.Fprintf(h.out, "%s%-20s", marker, p.Name)
		if p.Email != "" {
			fmt.Fprintf(h.out, "  %s", p.Email)
		}
		if p.Role != "" {
			fmt.Fprintf(h.out, "  [%s]", p.Role)
		}
		fmt.Fprintln(h.out)
	}

	fmt.Fprintf(h.out, "\nTo switch profiles, run: %s\n", ui.RenderCommand("convey profile use <name>"))
	return nil
}
