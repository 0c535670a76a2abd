package runtime

import (
	stdcontext "context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/conveydesk/convey-cli/internal/access"
	"github.com/conveydesk/convey-cli/internal/client/graphqlclient"
	"github.com/conveydesk/convey-cli/internal/client/propertyclient"
	"github.com/conveydesk/convey-cli/internal/credentials"
	"github.com/conveydesk/convey-cli/internal/environments"
	"github.com/conveydesk/convey-cli/internal/session"
	"github.com/conveydesk/convey-cli/internal/settings"
)

// Context carries the collaborators a command handler needs, attached
// step by step by the root command's PersistentPreRunE.
type Context struct {
	Logger         *zerolog.Logger
	Viper          *viper.Viper
	Settings       *settings.Settings
	Credentials    *credentials.Credentials
	EnvironmentSet *environments.EnvironmentSet
	Session        *session.Session
}

func NewContext(logger *zerolog.Logger, v *viper.Viper) *Context {
	return &Context{
		Logger:  logger,
		Viper:   v,
		Session: session.New(access.NewGate(access.DefaultRolePermissions())),
	}
}

func (ctx *Context) AttachSettings() error {
	var err error

	ctx.Settings, err = settings.New(ctx.Logger, ctx.Viper)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	return nil
}

func (ctx *Context) AttachEnvironmentSet() error {
	var err error

	ctx.EnvironmentSet, err = environments.New()
	if err != nil {
		return fmt.Errorf("failed to load environment details: %w", err)
	}

	return nil
}

func (ctx *Context) AttachCredentials() error {
	var err error

	ctx.Credentials, err = credentials.New(ctx.Logger)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// AttachSession resolves the authenticated account via the GraphQL API
// and begins a session over it. Requires credentials and an environment
// set to be attached first.
func (ctx *Context) AttachSession(fetchCtx stdcontext.Context) error {
	if ctx.Credentials == nil {
		return fmt.Errorf("credentials not attached")
	}
	if ctx.EnvironmentSet == nil {
		return fmt.Errorf("failed to load environment")
	}

	user, err := ctx.GraphQLClient().Viewer(fetchCtx)
	if err != nil {
		return fmt.Errorf("failed to resolve account: %w", err)
	}

	var tokens *credentials.TokenSet
	if ctx.Credentials != nil {
		tokens = ctx.Credentials.Tokens
	}
	ctx.Session.Begin(user, tokens)
	return nil
}

// GraphQLClient builds a client over the attached credentials and
// environment set.
func (ctx *Context) GraphQLClient() *graphqlclient.Client {
	return graphqlclient.New(ctx.Credentials, ctx.EnvironmentSet, ctx.Logger)
}

// PropertyClient builds a REST client for property file operations.
func (ctx *Context) PropertyClient() *propertyclient.Client {
	return propertyclient.New(ctx.Credentials, ctx.EnvironmentSet, ctx.Logger)
}
