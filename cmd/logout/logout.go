package logout

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/conveydesk/convey-cli/internal/auth"
	"github.com/conveydesk/convey-cli/internal/credentials"
	"github.com/conveydesk/convey-cli/internal/environments"
	"github.com/conveydesk/convey-cli/internal/runtime"
)

func New(runtimeCtx *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Revoke authentication tokens and remove local credentials",
		Long:  "Invalidates the current authentication tokens and deletes stored credentials.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeCtx)
			return h.execute(cmd.Context())
		},
	}
	return cmd
}

type handler struct {
	log            *zerolog.Logger
	credentials    *credentials.Credentials
	environmentSet *environments.EnvironmentSet
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:            ctx.Logger,
		credentials:    ctx.Credentials,
		environmentSet: ctx.EnvironmentSet,
	}
}

func (h *handler) execute(ctx context.Context) error {
	if h.credentials == nil || h.credentials.Tokens == nil || h.credentials.Tokens.AccessToken == "" {
		h.log.Info().Msg("user not logged in")
		return nil
	}

	if h.credentials.AuthType == credentials.AuthTypeBearer && h.credentials.Tokens.RefreshToken != "" {
		h.log.Debug().Msg("Revoking refresh token")
		svc := auth.NewOAuthService(h.environmentSet)
		if err := svc.RevokeToken(ctx, h.credentials.Tokens.RefreshToken); err != nil {
			h.log.Warn().Err(err).Msg("Failed to revoke refresh token")
		} else {
			h.log.Debug().Msg("Refresh token revoked")
		}
	}

	if err := credentials.Remove(); err != nil {
		return err
	}

	h.log.Info().Msg("Logged out successfully")
	return nil
}
