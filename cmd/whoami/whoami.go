package whoami

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/conveydesk/convey-cli/internal/access"
	"github.com/conveydesk/convey-cli/internal/client/graphqlclient"
	"github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/ui"
)

func New(runtimeCtx *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show your current account details",
		Long:  "Fetches your account details (email, role and granted permissions).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := NewHandler(runtimeCtx)
			return h.Execute(cmd.Context())
		},
	}
	return cmd
}

type Handler struct {
	log    *zerolog.Logger
	client *graphqlclient.Client
}

func NewHandler(ctx *runtime.Context) *Handler {
	return &Handler{
		log:    ctx.Logger,
		client: ctx.GraphQLClient(),
	}
}

func (h *Handler) Execute(ctx context.Context) error {
	user, err := ui.WithSpinnerResult("Fetching account details...", func() (*access.User, error) {
		return h.client.Viewer(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to fetch account details: %w", err)
	}

	ui.Line()
	ui.Title("Account Details")
	ui.Box(formatUser(user))
	ui.Line()

	return nil
}

func formatUser(user *access.User) string {
	grants := "(none)"
	if len(user.Grants) > 0 {
		grants = strings.Join(user.Grants, ", ")
	}

	return fmt.Sprintf("Account ID:  %s\nEmail:       %s\nRole:        %s\nGrants:      %s",
		user.ID, user.Email, user.Role, grants)
}
