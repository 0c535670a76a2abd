package graphqlclient

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/machinebox/graphql"
	"github.com/rs/zerolog"

	"github.com/conveydesk/convey-cli/internal/auth"
	"github.com/conveydesk/convey-cli/internal/credentials"
	"github.com/conveydesk/convey-cli/internal/environments"
)

// Client wraps the platform GraphQL API with bearer/API-key auth and
// refresh-on-expiry.
type Client struct {
	client *graphql.Client
	creds  *credentials.Credentials
	log    *zerolog.Logger
	auth   *auth.OAuthService
}

func New(creds *credentials.Credentials, environmentSet *environments.EnvironmentSet, l *zerolog.Logger) *Client {
	gqlClient := graphql.NewClient(environmentSet.GraphQLURL)
	gqlClient.Log = func(s string) {
		l.Debug().Str("client", "GraphQL").Msg(redactSensitiveHeaders(s))
	}

	return &Client{
		client: gqlClient,
		creds:  creds,
		log:    l,
		auth:   auth.NewOAuthService(environmentSet),
	}
}

var authHeaderRe = regexp.MustCompile(`Authorization:\[(?:Bearer|Apikey)[^\]]*\]`)

// redactSensitiveHeaders strips credentials from the wire-level debug
// lines emitted by the graphql client before they reach the log.
func redactSensitiveHeaders(s string) string {
	return authHeaderRe.ReplaceAllString(s, "Authorization:[[REDACTED]]")
}

// Execute runs the request with auth headers attached, refreshing tokens
// first when the access token is expired or about to expire.
func (c *Client) Execute(ctx context.Context, req *graphql.Request, resp any) error {
	if c.creds == nil {
		return fmt.Errorf("credentials not provided")
	}
	req.Header.Set("User-Agent", "convey-cli")
	if err := c.CheckTokenValidityIfExists(ctx); err != nil {
		return fmt.Errorf("token validity check failed: %w", err)
	}

	switch c.creds.AuthType {
	case credentials.AuthTypeApiKey:
		if c.creds.APIKey != "" {
			req.Header.Set("Authorization", "Apikey "+c.creds.APIKey)
		}
	default:
		if c.creds.Tokens != nil && c.creds.Tokens.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.creds.Tokens.AccessToken)
		}
	}
	return c.client.Run(ctx, req, resp)
}

// RefreshTokens swaps the stored token set for a fresh one and persists it.
func (c *Client) RefreshTokens(ctx context.Context) error {
	if c.creds == nil || c.creds.Tokens == nil || c.creds.Tokens.RefreshToken == "" {
		return fmt.Errorf("no refresh token available")
	}
	c.log.Debug().Msg("refreshing tokens")
	newTokens, err := c.auth.RefreshToken(ctx, c.creds.Tokens)
	if err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}
	c.log.Debug().Msg("token refreshed")
	c.creds.Tokens = newTokens
	if err := credentials.Save(newTokens); err != nil {
		c.log.Error().Err(err).Msg("failed to save credentials")
		return err
	}
	c.log.Debug().Msg("refreshed tokens saved to disk")
	return nil
}

// CheckTokenValidityIfExists refreshes the token set when the access
// token is expired or approaching expiry. No-op for API-key auth.
func (c *Client) CheckTokenValidityIfExists(ctx context.Context) error {
	if c.creds == nil || c.creds.Tokens == nil || c.creds.Tokens.AccessToken == "" {
		return nil
	}
	needsRefresh, err := auth.TokenNeedsRefresh(c.creds.Tokens.AccessToken, time.Now())
	if err != nil {
		return err
	}
	if needsRefresh {
		c.log.Debug().Msg("token expired or approaching expiration, refreshing")
		return c.RefreshTokens(ctx)
	}
	return nil
}
